package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/edvoice/voicetutor-backend/pkg/types"
	"github.com/edvoice/voicetutor-backend/pkg/ws"
)

type State int32

const (
	StateCreated State = iota
	StateActive
	StateClosed
)

// Session is the per-connection record. The turn flag is the mutual exclusion
// for the transcribe→generate→synthesize pipeline: at most one turn runs per
// session, extra audio frames are dropped while it is set.
type Session struct {
	ID        string
	Conn      *ws.Conn
	CreatedAt time.Time

	state        atomic.Int32
	turnInFlight atomic.Bool

	mu             sync.Mutex
	voiceID        string
	introContext   *types.IntroContext
	wasInterrupted bool
	introSent      bool
	turnCount      int64

	// turns tracks in-flight turn goroutines so teardown can join them.
	turns sync.WaitGroup
}

func NewSession(id string, conn *ws.Conn) *Session {
	s := &Session{ID: id, Conn: conn, CreatedAt: time.Now()}
	s.state.Store(int32(StateCreated))
	return s
}

func (s *Session) State() State         { return State(s.state.Load()) }
func (s *Session) SetState(state State) { s.state.Store(int32(state)) }

// BeginTurn claims the single turn slot. False means a turn is already
// running and the caller must drop the frame.
func (s *Session) BeginTurn() bool {
	return s.turnInFlight.CompareAndSwap(false, true)
}

// EndTurn releases the turn slot. Must run on every pipeline exit path.
func (s *Session) EndTurn() {
	s.turnInFlight.Store(false)
}

func (s *Session) TurnInFlight() bool {
	return s.turnInFlight.Load()
}

func (s *Session) TrackTurn() { s.turns.Add(1) }
func (s *Session) TurnDone()  { s.turns.Done() }
func (s *Session) JoinTurns() { s.turns.Wait() }

func (s *Session) SetInterrupted() {
	s.mu.Lock()
	s.wasInterrupted = true
	s.mu.Unlock()
}

// ConsumeInterrupted reads and clears the interrupt flag in one step, so the
// marker conditions exactly one turn.
func (s *Session) ConsumeInterrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.wasInterrupted
	s.wasInterrupted = false
	return was
}

func (s *Session) VoiceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceID
}

func (s *Session) SetVoiceID(id string) {
	s.mu.Lock()
	s.voiceID = id
	s.mu.Unlock()
}

func (s *Session) IntroContext() *types.IntroContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.introContext
}

func (s *Session) SetIntroContext(ctx *types.IntroContext) {
	s.mu.Lock()
	s.introContext = ctx
	s.mu.Unlock()
}

// MarkIntroSent returns true the first time only; start_conversation is
// idempotent per session.
func (s *Session) MarkIntroSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.introSent {
		return false
	}
	s.introSent = true
	return true
}

func (s *Session) IncTurnCount() {
	s.mu.Lock()
	s.turnCount++
	s.mu.Unlock()
}

func (s *Session) TurnCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

// SessionRepo is the process-wide registry of live sessions.
type SessionRepo struct {
	m     sync.Map
	count atomic.Int64
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

func (r *SessionRepo) Save(s *Session) {
	if _, loaded := r.m.Swap(s.ID, s); !loaded {
		r.count.Add(1)
	}
}

func (r *SessionRepo) Get(id string) (*Session, bool) {
	v, ok := r.m.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (r *SessionRepo) Remove(id string) {
	if _, loaded := r.m.LoadAndDelete(id); loaded {
		r.count.Add(-1)
	}
}

func (r *SessionRepo) Count() int64 {
	return r.count.Load()
}
