package tts

// Voice describes one entry of the fixed synthesis catalog. Standard-tier
// voices are the default; Neural2 premium voices are only used when a client
// selects them by id.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"voice_name"`
	DisplayName string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender"`
	Quality     string `json:"quality"`
	Cost        string `json:"cost"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended"`
}

const DefaultVoiceID = "female"

var voiceOrder = []string{
	"female", "male", "female_warm", "british_female", "british_male",
	"female_premium", "male_premium", "female_neural2", "male_neural2",
}

var voiceCatalog = map[string]Voice{
	"female": {
		ID: "female", Name: "en-US-Standard-C", DisplayName: "High-Quality Female (US)",
		Language: "en-US", Gender: "female", Quality: "Standard", Cost: "$4/1M chars",
		Description: "High-quality female voice - excellent for teaching", Recommended: true,
	},
	"male": {
		ID: "male", Name: "en-US-Standard-D", DisplayName: "High-Quality Male (US)",
		Language: "en-US", Gender: "male", Quality: "Standard", Cost: "$4/1M chars",
		Description: "High-quality male voice - clear and authoritative", Recommended: true,
	},
	"female_warm": {
		ID: "female_warm", Name: "en-US-Standard-E", DisplayName: "Warm Female (US)",
		Language: "en-US", Gender: "female", Quality: "Standard", Cost: "$4/1M chars",
		Description: "Warm, engaging female voice", Recommended: true,
	},
	"british_female": {
		ID: "british_female", Name: "en-GB-Standard-A", DisplayName: "Sophisticated British Female",
		Language: "en-GB", Gender: "female", Quality: "Standard", Cost: "$4/1M chars",
		Description: "Sophisticated British female voice", Recommended: true,
	},
	"british_male": {
		ID: "british_male", Name: "en-GB-Standard-B", DisplayName: "Distinguished British Male",
		Language: "en-GB", Gender: "male", Quality: "Standard", Cost: "$4/1M chars",
		Description: "Distinguished British male voice", Recommended: true,
	},
	"female_premium": {
		ID: "female_premium", Name: "en-US-Neural2-H", DisplayName: "Ultra-Expressive Female (US)",
		Language: "en-US", Gender: "female", Quality: "Neural2 Premium", Cost: "$16/1M chars",
		Description: "Ultra-expressive Neural2 female - maximum emotional range",
	},
	"male_premium": {
		ID: "male_premium", Name: "en-US-Neural2-J", DisplayName: "Ultra-Expressive Male (US)",
		Language: "en-US", Gender: "male", Quality: "Neural2 Premium", Cost: "$16/1M chars",
		Description: "Ultra-expressive Neural2 male - maximum emotional range",
	},
	"female_neural2": {
		ID: "female_neural2", Name: "en-US-Neural2-C", DisplayName: "Premium Female (US)",
		Language: "en-US", Gender: "female", Quality: "Neural2 Premium", Cost: "$16/1M chars",
		Description: "Premium Neural2 female voice - very natural",
	},
	"male_neural2": {
		ID: "male_neural2", Name: "en-US-Neural2-D", DisplayName: "Premium Male (US)",
		Language: "en-US", Gender: "male", Quality: "Neural2 Premium", Cost: "$16/1M chars",
		Description: "Premium Neural2 male voice - very natural",
	},
}

// LookupVoice resolves a voice id; unknown or empty ids fall back to the
// default standard female voice.
func LookupVoice(id string) Voice {
	if v, ok := voiceCatalog[id]; ok {
		return v
	}
	return voiceCatalog[DefaultVoiceID]
}

// Catalog returns the fixed voice list in stable order.
func Catalog() []Voice {
	out := make([]Voice, 0, len(voiceOrder))
	for _, id := range voiceOrder {
		out = append(out, voiceCatalog[id])
	}
	return out
}
