package dialogue

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// maxRollingMessages bounds the conversation window per session. The
	// system instruction is stored apart from the window so eviction can
	// never remove it.
	maxRollingMessages = 10
)

type Message struct {
	Role    string
	Content string
}

// Context holds one session's system instruction plus its bounded rolling
// message window, oldest evicted first.
type Context struct {
	system  string
	rolling []Message
}

func newContext(system string) *Context {
	return &Context{system: system, rolling: make([]Message, 0, maxRollingMessages)}
}

func (c *Context) append(role, content string) {
	if len(c.rolling) >= maxRollingMessages {
		copy(c.rolling, c.rolling[1:])
		c.rolling = c.rolling[:len(c.rolling)-1]
	}
	c.rolling = append(c.rolling, Message{Role: role, Content: content})
}

// snapshot returns a copy of the rolling window, safe to use after the
// engine lock is released.
func (c *Context) snapshot() []Message {
	out := make([]Message, len(c.rolling))
	copy(out, c.rolling)
	return out
}

func (c *Context) systemPrompt() string { return c.system }

func (c *Context) messageCount() int { return len(c.rolling) }
