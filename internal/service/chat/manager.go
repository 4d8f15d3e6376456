package chat

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

// Listener receives session events. It is called outside session locks and
// must not block for long.
type Listener func(chat.Event)

// Manager owns the live sessions, at most one per owner.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	listeners map[string]map[uint64]Listener
	nextID    uint64

	log *zap.Logger
	now func() time.Time
}

// NewManager creates an empty session manager.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		listeners: make(map[string]map[uint64]Listener),
		log:       log.With(zap.String("module", "chat")),
		now:       time.Now,
	}
}

// Open returns the owner's active session, creating one if needed.
func (m *Manager) Open(ownerID string) (*Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	if existing, ok := m.sessions[ownerID]; ok && existing.Active() {
		m.mu.Unlock()
		return existing, nil
	}
	session := newSession(ownerID, m.now(), m.emit)
	m.sessions[ownerID] = session
	m.mu.Unlock()

	m.log.Info("session opened", zap.String("owner_id", ownerID), zap.String("session_id", session.ID()))
	m.emit(session.event(chat.EventSessionOpened, nil, false, true))
	return session, nil
}

// Close discards the owner's session and its transcript. Closing an owner
// without a session is a no-op.
func (m *Manager) Close(ownerID string) {
	ownerID = strings.TrimSpace(ownerID)

	m.mu.Lock()
	session, ok := m.sessions[ownerID]
	delete(m.sessions, ownerID)
	m.mu.Unlock()

	if !ok {
		return
	}
	session.deactivate()

	m.log.Info("session closed", zap.String("owner_id", ownerID), zap.String("session_id", session.ID()))
	m.emit(session.event(chat.EventSessionCleared, nil, false, true))
}

// ClearSession replaces the owner's session with a fresh empty one.
func (m *Manager) ClearSession(ownerID string) (*Session, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	previous := m.sessions[ownerID]
	session := newSession(ownerID, m.now(), m.emit)
	m.sessions[ownerID] = session
	m.mu.Unlock()

	if previous != nil {
		previous.deactivate()
	}

	m.log.Info("session cleared", zap.String("owner_id", ownerID), zap.String("session_id", session.ID()))
	m.emit(session.event(chat.EventSessionCleared, nil, false, true))
	return session, nil
}

// Current returns the owner's active session.
func (m *Manager) Current(ownerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[strings.TrimSpace(ownerID)]
	return session, ok
}

// Subscribe registers fn for the owner's events and returns a function that
// removes it.
func (m *Manager) Subscribe(ownerID string, fn Listener) func() {
	ownerID = strings.TrimSpace(ownerID)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	if m.listeners[ownerID] == nil {
		m.listeners[ownerID] = make(map[uint64]Listener)
	}
	m.listeners[ownerID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners[ownerID], id)
			if len(m.listeners[ownerID]) == 0 {
				delete(m.listeners, ownerID)
			}
		})
	}
}

func (m *Manager) emit(ev chat.Event) {
	m.mu.Lock()
	targets := make([]Listener, 0, len(m.listeners[ev.OwnerID]))
	for _, fn := range m.listeners[ev.OwnerID] {
		targets = append(targets, fn)
	}
	m.mu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}
