// Package dialogue owns per-session conversation state and reply
// generation: a bounded rolling context per session, a canned-reply table
// for the most common utterances, and the external generation backend.
package dialogue

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edvoice/voicetutor-backend/pkg/types"
)

const (
	generateTimeout = 30 * time.Second

	// interruptionMarker lets the backend condition its reply on the user
	// having spoken over the previous answer.
	interruptionMarker = "[User interrupted] "

	backendErrorFallback = "I'm experiencing a small hiccup, but I'm absolutely committed to helping you learn. Let's try that again."
	emptyReplyFallback   = "I'm having a brief technical moment, but I'm still here and excited to help. Could you share that thought again?"
)

// Backend is the external text-generation call.
type Backend interface {
	Generate(ctx context.Context, system string, history []Message) (string, error)
}

type Engine struct {
	backend Backend
	log     *logrus.Logger

	mu       sync.Mutex
	contexts map[string]*Context
}

func NewEngine(backend Backend, log *logrus.Logger) *Engine {
	return &Engine{
		backend:  backend,
		log:      log,
		contexts: make(map[string]*Context),
	}
}

// Reply produces the assistant reply for one user utterance. It never
// returns an error: backend failures come back as a fixed apologetic
// fallback so the conversation cannot stall.
func (e *Engine) Reply(ctx context.Context, sessionID, text string, interrupted bool, intro *types.IntroContext) string {
	e.mu.Lock()
	conv := e.ensureContextLocked(sessionID, intro)

	if reply, ok := cannedReply(text); ok {
		conv.append(RoleUser, text)
		conv.append(RoleAssistant, reply)
		e.mu.Unlock()
		e.log.WithField("conversation_id", sessionID).Info("canned reply for common query")
		return reply
	}

	if interrupted && conv.messageCount() > 0 {
		text = interruptionMarker + text
	}

	conv.append(RoleUser, text)
	system := conv.systemPrompt()
	history := conv.snapshot()
	e.mu.Unlock()

	if e.backend == nil {
		e.log.Error("generation backend not configured")
		return backendErrorFallback
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	reply, err := e.backend.Generate(genCtx, system, history)
	if err != nil {
		e.log.WithError(err).WithField("conversation_id", sessionID).Error("generation failed")
		return backendErrorFallback
	}
	if reply == "" {
		e.log.WithField("conversation_id", sessionID).Error("generation returned empty reply")
		return emptyReplyFallback
	}

	e.mu.Lock()
	if conv, ok := e.contexts[sessionID]; ok {
		conv.append(RoleAssistant, reply)
	}
	e.mu.Unlock()
	return reply
}

// Introduction seeds (or re-seeds) the session's system instruction and
// returns the templated greeting without calling the backend.
func (e *Engine) Introduction(sessionID string, intro *types.IntroContext) string {
	e.mu.Lock()
	e.contexts[sessionID] = newContext(introSystemPrompt(intro))
	e.mu.Unlock()

	e.log.WithField("conversation_id", sessionID).Info("introduction seeded")
	return introductionGreeting(intro)
}

// ClearContext discards a session's conversation context. The next turn
// recreates it lazily.
func (e *Engine) ClearContext(sessionID string) {
	e.mu.Lock()
	delete(e.contexts, sessionID)
	e.mu.Unlock()
}

// ActiveContexts reports how many sessions currently hold context.
func (e *Engine) ActiveContexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

func (e *Engine) ensureContextLocked(sessionID string, intro *types.IntroContext) *Context {
	if conv, ok := e.contexts[sessionID]; ok {
		return conv
	}
	conv := newContext(buildSystemPrompt(intro))
	e.contexts[sessionID] = conv
	return conv
}

// introSystemPrompt picks the instruction seeded by Introduction; a missing
// intro context gets the generic variant.
func introSystemPrompt(intro *types.IntroContext) string {
	if intro == nil {
		return genericIntroSystemPrompt
	}
	return buildSystemPrompt(intro)
}
