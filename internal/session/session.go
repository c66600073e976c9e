package session

import (
	"github.com/bowerhall/mitek/internal/weighted"
	"github.com/google/uuid"
)

func NewManager(defaults Defaults) *Manager {
	if defaults.Interval.Validate() != nil {
		defaults.Interval = DefaultInterval
	}
	if defaults.Weights.Validate() != nil {
		defaults.Weights = DefaultWeights
	}

	return &Manager{
		chats:    make(map[int64]*chat),
		defaults: defaults,
		newToken: func() string { return uuid.New().String()[:8] },
	}
}

// lookup returns the chat, creating it on first use. Callers hold m.mu.
func (m *Manager) lookup(chatID int64) *chat {
	c, ok := m.chats[chatID]
	if ok {
		return c
	}

	c = &chat{
		state:    Main,
		interval: m.defaults.Interval,
		weights:  m.defaults.Weights,
	}
	m.chats[chatID] = c

	return c
}

// Get returns a snapshot of the chat's session, creating it if needed.
func (m *Manager) Get(chatID int64) ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.lookup(chatID)
	snap := ChatSession{
		ChatID:   chatID,
		State:    c.state,
		Handle:   c.handle,
		Interval: c.interval,
		Weights:  c.weights,
		Recent:   c.ring.Items(),
	}
	if c.pending != nil {
		p := *c.pending
		snap.Pending = &p
	}

	return snap
}

func (m *Manager) State(chatID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).state
}

// SetState moves the chat to s. Leaving the phrase staging states drops any
// staged phrase.
func (m *Manager) SetState(chatID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.lookup(chatID)
	c.state = s
	if s != AddingPhrase && s != ChoosingList {
		c.pending = nil
	}
}

// TrySetSchedulerHandle registers h as the chat's loop. It fails when a loop
// is already registered.
func (m *Manager) TrySetSchedulerHandle(chatID int64, h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.lookup(chatID)
	if c.handle != nil {
		return false
	}
	c.handle = h

	return true
}

// ClearSchedulerHandle releases the slot only if h still owns it.
func (m *Manager) ClearSchedulerHandle(chatID int64, h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.lookup(chatID)
	if c.handle == nil || c.handle != h {
		return false
	}
	c.handle = nil

	return true
}

// TakeSchedulerHandle removes and returns the chat's handle, or nil.
func (m *Manager) TakeSchedulerHandle(chatID int64) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.lookup(chatID)
	h := c.handle
	c.handle = nil

	return h
}

func (m *Manager) TakeAllSchedulerHandles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	var handles []Handle
	for _, c := range m.chats {
		if c.handle != nil {
			handles = append(handles, c.handle)
			c.handle = nil
		}
	}

	return handles
}

func (m *Manager) SchedulerRunning(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).handle != nil
}

func (m *Manager) Interval(chatID int64) Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).interval
}

func (m *Manager) SetInterval(chatID int64, iv Interval) error {
	if err := iv.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup(chatID).interval = iv

	return nil
}

func (m *Manager) Weights(chatID int64) Weights {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).weights
}

func (m *Manager) SetWeights(chatID int64, w Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup(chatID).weights = w

	return nil
}

// Track records an inbound message as a reply candidate.
func (m *Manager) Track(chatID int64, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup(chatID).ring.Push(msg)
}

func (m *Manager) Recent(chatID int64) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).ring.Items()
}

func (m *Manager) SampleRecent(chatID int64, r weighted.Rand) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(chatID).ring.Sample(r)
}

// StagePhrase holds text until the operator picks a category and returns the
// token the category choice must echo back.
func (m *Manager) StagePhrase(chatID int64, text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := &Pending{Text: text, Token: m.newToken()}
	m.lookup(chatID).pending = p

	return p.Token
}

func (m *Manager) Pending(chatID int64) (Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.lookup(chatID).pending
	if p == nil {
		return Pending{}, false
	}

	return *p, true
}

func (m *Manager) ClearPending(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup(chatID).pending = nil
}
