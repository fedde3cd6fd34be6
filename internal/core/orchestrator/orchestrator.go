// Package orchestrator drives the per-session conversation state machine:
// it owns the websocket receive loop, dispatches control messages, and runs
// each transcribe→generate→synthesize turn as its own goroutine guarded by
// the session's single-turn flag.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/edvoice/voicetutor-backend/internal/core/dialogue"
	"github.com/edvoice/voicetutor-backend/internal/core/stt"
	"github.com/edvoice/voicetutor-backend/internal/core/tts"
	"github.com/edvoice/voicetutor-backend/internal/repo/memory"
	"github.com/edvoice/voicetutor-backend/pkg/types"
	"github.com/edvoice/voicetutor-backend/pkg/ws"
)

const (
	readLimit    = 8 << 20
	readDeadline = 60 * time.Second

	// minDeliverableAudio is the floor for sending a synthesized reply as
	// audio frames; below it the client gets an error event instead.
	minDeliverableAudio = 1000
)

type Orchestrator struct {
	registry *memory.SessionRepo
	stt      *stt.Transcriber
	engine   *dialogue.Engine
	synth    *tts.Synthesizer
	log      *logrus.Logger
}

func New(registry *memory.SessionRepo, transcriber *stt.Transcriber, engine *dialogue.Engine, synth *tts.Synthesizer, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		stt:      transcriber,
		engine:   engine,
		synth:    synth,
		log:      log,
	}
}

// HandleConnection owns one client connection for its whole lifetime. It
// returns when the transport closes; by then the session is removed from the
// registry and all of its turn goroutines have finished.
func (o *Orchestrator) HandleConnection(raw *websocket.Conn) {
	id := uuid.NewString()
	conn := ws.Wrap(raw)
	sess := memory.NewSession(id, conn)
	sess.SetState(memory.StateActive)
	o.registry.Save(sess)

	log := o.log.WithField("conversation_id", id)
	log.Info("conversation connected")

	defer func() {
		sess.SetState(memory.StateClosed)
		o.registry.Remove(id)
		conn.Close()
		// Let in-flight turns finish or time out before dropping context;
		// their sends on the closed conn are swallowed by the wrapper.
		sess.JoinTurns()
		o.engine.ClearContext(id)
		log.Info("conversation closed")
	}()

	raw.SetReadLimit(readLimit)
	raw.SetReadDeadline(time.Now().Add(readDeadline))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	_ = conn.SendJSON(types.ConnectionEstablished{
		Type:           "connection_established",
		ConversationID: id,
		Message:        "Connected to Voice Tutor - ready to talk!",
	})

	for {
		mt, msg, err := raw.ReadMessage()
		if err != nil {
			return
		}
		raw.SetReadDeadline(time.Now().Add(readDeadline))

		switch mt {
		case websocket.BinaryMessage:
			o.handleAudio(sess, msg, log)
		case websocket.TextMessage:
			o.handleCommand(sess, msg, log)
		}
	}
}

// handleAudio applies the frame gate and spawns the turn pipeline. Frames
// arriving while a turn is in flight are dropped: utterances are never
// queued, the interrupt control message is the only overlap signal honored.
func (o *Orchestrator) handleAudio(sess *memory.Session, audio []byte, log *logrus.Entry) {
	if len(audio) <= stt.MinAudioBytes {
		log.WithField("bytes", len(audio)).Debug("audio frame too small, skipping")
		return
	}
	if !sess.BeginTurn() {
		log.Debug("turn already in flight, dropping frame")
		return
	}

	frame := make([]byte, len(audio))
	copy(frame, audio)

	sess.TrackTurn()
	go func() {
		defer sess.TurnDone()
		o.runTurn(sess, frame, log)
	}()
}

// runTurn is one complete turn. The turn flag is released on every exit
// path, including panics, so a failed pipeline can never wedge the session.
func (o *Orchestrator) runTurn(sess *memory.Session, audio []byte, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("turn pipeline panicked")
			_ = sess.Conn.SendJSON(types.ErrorMessage{Type: "error", Message: "Processing error"})
		}
		sess.EndTurn()
	}()

	ctx := context.Background()
	conn := sess.Conn

	_ = conn.SendJSON(types.Event{Type: "processing_start"})

	transcript := o.stt.Transcribe(ctx, audio)
	if transcript == "" {
		log.Info("no speech detected")
		_ = conn.SendJSON(types.Event{Type: "no_speech_detected"})
		return
	}

	_ = conn.SendJSON(types.TextMessage{
		Type:      "transcript",
		Text:      transcript,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	interrupted := sess.ConsumeInterrupted()
	reply := o.engine.Reply(ctx, sess.ID, transcript, interrupted, sess.IntroContext())

	_ = conn.SendJSON(types.TextMessage{
		Type:      "ai_response",
		Text:      reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	audioReply := o.synth.Synthesize(ctx, reply, sess.VoiceID())
	if len(audioReply) >= minDeliverableAudio {
		o.deliverAudio(conn, audioReply)
		sess.IncTurnCount()
		log.WithField("bytes", len(audioReply)).Info("turn completed with audio")
		return
	}

	// Text already went out, so the turn still counts as answered.
	log.Warn("audio generation failed for turn")
	_ = conn.SendJSON(types.ErrorMessage{Type: "error", Message: "Audio generation temporarily unavailable"})
}

func (o *Orchestrator) handleCommand(sess *memory.Session, msg []byte, log *logrus.Entry) {
	var cmd types.ClientCommand
	if err := json.Unmarshal(msg, &cmd); err != nil {
		log.WithError(err).Error("invalid control message")
		_ = sess.Conn.SendJSON(types.ErrorMessage{Type: "error", Message: "Invalid JSON format"})
		return
	}

	switch cmd.Type {
	case "ping":
		_ = sess.Conn.SendJSON(types.Event{Type: "pong"})

	case "interrupt_ai":
		sess.SetInterrupted()
		log.Info("ai interrupted")

	case "set_voice":
		voiceID := cmd.VoiceID
		if voiceID == "" {
			voiceID = tts.DefaultVoiceID
		}
		sess.SetVoiceID(voiceID)
		voice := tts.LookupVoice(voiceID)
		_ = sess.Conn.SendJSON(types.VoiceChanged{
			Type:      "voice_changed",
			VoiceID:   voiceID,
			VoiceName: voice.Name,
			Language:  voice.Language,
			Quality:   voice.Quality,
			Cost:      voice.Cost,
			Message:   "Voice changed to " + voice.Description,
		})

	case "set_context":
		sess.SetIntroContext(cmd.Context)
		// Discard any existing context so the next turn reseeds with the
		// new instruction.
		o.engine.ClearContext(sess.ID)
		_ = sess.Conn.SendJSON(types.ContextSet{
			Type:    "context_set",
			Message: "Context configured successfully",
		})
		log.Info("context set")

	case "start_conversation":
		// The introduction is a turn like any other: it claims the turn
		// slot so audio frames arriving mid-greeting are dropped instead
		// of racing it on the wire.
		if !sess.BeginTurn() {
			log.Debug("turn already in flight, ignoring start_conversation")
			return
		}
		if !sess.MarkIntroSent() {
			sess.EndTurn()
			return
		}
		sess.TrackTurn()
		go func() {
			defer sess.TurnDone()
			defer sess.EndTurn()
			o.runIntroduction(sess, log)
		}()

	default:
		log.WithField("type", cmd.Type).Debug("ignoring unknown command")
	}
}

// runIntroduction delivers the one-time templated greeting as text and,
// when synthesis succeeds, as audio.
func (o *Orchestrator) runIntroduction(sess *memory.Session, log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("introduction panicked")
		}
	}()

	conn := sess.Conn
	intro := o.engine.Introduction(sess.ID, sess.IntroContext())

	_ = conn.SendJSON(types.TextMessage{
		Type:      "ai_response",
		Text:      intro,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	audio := o.synth.Synthesize(context.Background(), intro, sess.VoiceID())
	if len(audio) > tts.MinValidAudio {
		o.deliverAudio(conn, audio)
		log.Info("introduction delivered")
		return
	}

	_ = conn.SendJSON(types.TextMessage{
		Type:      "ai_response",
		Text:      "I'm experiencing a brief technical moment with audio, but I'm absolutely here and excited to help you learn! Please go ahead and speak - I'm listening.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (o *Orchestrator) deliverAudio(conn *ws.Conn, audio []byte) {
	_ = conn.SendJSON(types.Event{Type: "audio_start"})
	_ = conn.SendBinary(audio)
	_ = conn.SendJSON(types.Event{Type: "audio_end"})
}
