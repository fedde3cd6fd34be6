package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvoice/voicetutor-backend/internal/core/dialogue"
	"github.com/edvoice/voicetutor-backend/internal/core/stt"
	"github.com/edvoice/voicetutor-backend/internal/core/tts"
	"github.com/edvoice/voicetutor-backend/internal/repo/memory"
	"github.com/edvoice/voicetutor-backend/internal/repo/voicecache"
)

type genStub struct {
	mu      sync.Mutex
	reply   string
	history [][]dialogue.Message
}

func (g *genStub) Generate(ctx context.Context, system string, history []dialogue.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, append([]dialogue.Message(nil), history...))
	return g.reply, nil
}

func (g *genStub) lastUserMessage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.history) == 0 {
		return ""
	}
	last := g.history[len(g.history)-1]
	return last[len(last)-1].Content
}

type ttsStub struct {
	mu    sync.Mutex
	audio []byte
	delay time.Duration
	calls int
}

func (s *ttsStub) Synthesize(ctx context.Context, input tts.Input, voice tts.Voice) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	audio := s.audio
	delay := s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return audio, nil
}

func (s *ttsStub) setDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *ttsStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	deepgram *httptest.Server
	gen      *genStub
	synth    *ttsStub
	repo     *memory.SessionRepo
	server   *httptest.Server
}

// newFixture wires real components around stubbed external backends and
// serves the orchestrator over a live websocket.
func newFixture(t *testing.T, transcript string, sttDelay time.Duration) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	deepgram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sttDelay > 0 {
			time.Sleep(sttDelay)
		}
		fmt.Fprintf(w, `{"results":{"channels":[{"alternatives":[{"transcript":%q,"confidence":0.9}]}]}}`, transcript)
	}))

	gen := &genStub{reply: "Generated tutoring reply for the student."}
	synth := &ttsStub{audio: bytes.Repeat([]byte{7}, 2000)}

	transcriber := stt.New(stt.Config{APIKey: "k", BaseURL: deepgram.URL}, log)
	engine := dialogue.NewEngine(gen, log)
	synthesizer := tts.NewSynthesizer(synth, voicecache.NewMemoryStore(), log)
	repo := memory.NewSessionRepo()
	orch := New(repo, transcriber, engine, synthesizer, log)

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		orch.HandleConnection(conn)
	}))

	t.Cleanup(func() {
		server.Close()
		deepgram.Close()
	})
	return &fixture{deepgram: deepgram, gen: gen, synth: synth, repo: repo, server: server}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	msgType string
	text    string
	raw     map[string]interface{}
	binary  []byte
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)

	if mt == websocket.BinaryMessage {
		return frame{msgType: "__binary__", binary: data}
	}
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	f := frame{raw: raw}
	f.msgType, _ = raw["type"].(string)
	f.text, _ = raw["text"].(string)
	return f
}

// readUntil consumes frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) frame {
	t.Helper()
	for i := 0; i < 20; i++ {
		f := readFrame(t, conn)
		if f.msgType == msgType {
			return f
		}
	}
	t.Fatalf("never received %q", msgType)
	return frame{}
}

func sendCommand(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func sendAudio(t *testing.T, conn *websocket.Conn, size int) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, size)))
}

func TestConnectionEstablished(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)

	hello := readFrame(t, conn)
	assert.Equal(t, "connection_established", hello.msgType)
	assert.NotEmpty(t, hello.raw["conversation_id"])
}

func TestPingPong(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestSetVoice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{"type":"set_voice","voice_id":"british_female"}`)
	changed := readFrame(t, conn)
	assert.Equal(t, "voice_changed", changed.msgType)
	assert.Equal(t, "british_female", changed.raw["voice_id"])
	assert.Equal(t, "en-GB-Standard-A", changed.raw["voice_name"])
	assert.Equal(t, "en-GB", changed.raw["language"])
	assert.Equal(t, "Standard", changed.raw["quality"])
}

func TestSetContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{"type":"set_context","context":{"companionName":"Ada","subject":"math","unitTitle":"Fractions"}}`)
	assert.Equal(t, "context_set", readFrame(t, conn).msgType)
}

func TestMalformedCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{not json`)
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame.msgType)

	// Session survives the bad message.
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestStartConversationDeliversIntroduction(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{"type":"start_conversation"}`)
	intro := readUntil(t, conn, "ai_response")
	assert.Contains(t, intro.text, "delighted")

	assert.Equal(t, "audio_start", readFrame(t, conn).msgType)
	audio := readFrame(t, conn)
	assert.Equal(t, "__binary__", audio.msgType)
	assert.Len(t, audio.binary, 2000)
	assert.Equal(t, "audio_end", readFrame(t, conn).msgType)

	// start_conversation is idempotent: a second one produces nothing, so
	// the next frame after a ping is the pong.
	sendCommand(t, conn, `{"type":"start_conversation"}`)
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestIntroductionBlocksConcurrentTurn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	f.synth.setDelay(300 * time.Millisecond)

	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendCommand(t, conn, `{"type":"start_conversation"}`)
	// Land while the greeting is still synthesizing.
	time.Sleep(50 * time.Millisecond)
	sendAudio(t, conn, 5000)

	// The introduction holds the turn slot, so only its frames arrive and
	// they arrive contiguous. A concurrent user turn would inject
	// processing_start before the greeting's audio_end.
	var got []string
	for {
		fr := readFrame(t, conn)
		got = append(got, fr.msgType)
		if fr.msgType == "audio_end" {
			break
		}
	}
	assert.Equal(t, []string{"ai_response", "audio_start", "__binary__", "audio_end"}, got)

	// The frame sent mid-greeting was dropped, not queued.
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestFullTurnWithCannedReplyAndCache(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendAudio(t, conn, 5000)
	assert.Equal(t, "processing_start", readFrame(t, conn).msgType)

	transcript := readFrame(t, conn)
	assert.Equal(t, "transcript", transcript.msgType)
	assert.Equal(t, "hello", transcript.text)

	reply := readFrame(t, conn)
	assert.Equal(t, "ai_response", reply.msgType)
	assert.True(t, strings.HasPrefix(reply.text, "Hello there!"), "canned greeting expected, got %q", reply.text)

	assert.Equal(t, "audio_start", readFrame(t, conn).msgType)
	assert.Equal(t, "__binary__", readFrame(t, conn).msgType)
	assert.Equal(t, "audio_end", readFrame(t, conn).msgType)
	require.Equal(t, 1, f.synth.callCount())

	// Identical utterance again: same reply text, audio now cache-served.
	sendAudio(t, conn, 5000)
	readUntil(t, conn, "audio_end")
	assert.Equal(t, 1, f.synth.callCount(), "second synthesis must be a cache hit")
}

func TestTurnMutualExclusion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 300*time.Millisecond)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendAudio(t, conn, 5000)
	sendAudio(t, conn, 5000)

	readUntil(t, conn, "audio_end")

	// Exactly one turn ran; the second frame was dropped, so pong is the
	// very next frame.
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestTinyFrameIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendAudio(t, conn, 100)
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType, "no turn may start for tiny frames")
}

func TestInterruptConditionsNextTurnOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "tell me more about gravity", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	// Seed context with a completed turn first.
	sendAudio(t, conn, 5000)
	readUntil(t, conn, "audio_end")

	sendCommand(t, conn, `{"type":"interrupt_ai"}`)
	sendAudio(t, conn, 5000)
	readUntil(t, conn, "audio_end")
	assert.True(t, strings.HasPrefix(f.gen.lastUserMessage(), "[User interrupted] "), "got %q", f.gen.lastUserMessage())

	// The flag was consumed; the turn after is unmarked.
	sendAudio(t, conn, 5000)
	readUntil(t, conn, "audio_end")
	assert.Equal(t, "tell me more about gravity", f.gen.lastUserMessage())
}

func TestSynthesisFailureStillCompletesTurn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "tell me more about gravity", 0)
	f.synth.audio = bytes.Repeat([]byte{7}, 200)

	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendAudio(t, conn, 5000)
	readUntil(t, conn, "ai_response")
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame.msgType)
	assert.Contains(t, errFrame.raw["message"], "Audio generation")

	// Turn flag was released: a new turn starts immediately.
	sendAudio(t, conn, 5000)
	assert.Equal(t, "processing_start", readFrame(t, conn).msgType)
}

func TestNoSpeechDetected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")

	sendAudio(t, conn, 5000)
	assert.Equal(t, "processing_start", readFrame(t, conn).msgType)
	assert.Equal(t, "no_speech_detected", readFrame(t, conn).msgType)

	// No context was created for the empty turn.
	sendCommand(t, conn, `{"type":"ping"}`)
	assert.Equal(t, "pong", readFrame(t, conn).msgType)
}

func TestSessionRemovedOnDisconnect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "hello", 0)
	conn := f.dial(t)
	readUntil(t, conn, "connection_established")
	require.Equal(t, int64(1), f.repo.Count())

	conn.Close()
	require.Eventually(t, func() bool {
		return f.repo.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
