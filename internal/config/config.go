package config

import "os"

type Config struct {
	Port string

	DeepgramAPIKey  string
	DeepgramBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	GoogleTTSAPIKey  string
	GoogleTTSBaseURL string

	// RedisAddr switches the synthesis cache to the Redis driver when set.
	RedisAddr     string
	RedisPassword string

	LogLevel string
	LogJSON  bool
	LogFile  string
}

func Load() Config {
	return Config{
		Port:             getenv("PORT", "3000"),
		DeepgramAPIKey:   getenv("DEEPGRAM_API_KEY", ""),
		DeepgramBaseURL:  getenv("DEEPGRAM_BASE_URL", ""),
		GeminiAPIKey:     getenv("GEMINI_API_KEY", ""),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		GoogleTTSAPIKey:  getenv("GOOGLE_TTS_API_KEY", ""),
		GoogleTTSBaseURL: getenv("GOOGLE_TTS_BASE_URL", ""),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogJSON:          getenv("LOG_JSON", "") == "1",
		LogFile:          getenv("LOG_FILE", ""),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
