// Package identity generates and persists the visitor identifiers that
// correlate analytics events: a process-lifetime session id and a stable
// pseudo-random user id kept in client storage.
package identity

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/kvstore"
)

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// Manager owns the session and user identifiers. All methods degrade to
// in-memory values when the store fails; they never return errors because
// identity resolution must not break the page flow.
type Manager struct {
	store kvstore.Store
	log   *logrus.Logger

	sessionID string

	mu        sync.Mutex
	memUserID string // fallback when the store is unavailable
}

func NewManager(store kvstore.Store, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		store:     store,
		log:       log,
		sessionID: newSessionID(),
	}
}

// SessionID returns the identifier created at construction. A new Manager
// means a new session, mirroring one browser page lifetime.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// UserID returns the stable visitor id, generating and persisting one on
// first use. When the store cannot be read or written the id lives only in
// memory for the life of this Manager.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, err := m.store.Get(kvstore.UserIDKey); err == nil && id != "" {
		return id
	} else if err != nil && err != kvstore.ErrNotFound {
		m.log.WithError(err).Warn("user id storage read failed")
		if m.memUserID != "" {
			return m.memUserID
		}
	}

	id := newUserID()
	if err := m.store.Set(kvstore.UserIDKey, id); err != nil {
		m.log.WithError(err).Warn("user id storage write failed, using in-memory id")
		m.memUserID = id
		return id
	}
	return id
}

// SetUserID overwrites the persisted id, used for identity reconciliation
// after login.
func (m *Manager) SetUserID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.memUserID = id
	if err := m.store.Set(kvstore.UserIDKey, id); err != nil {
		m.log.WithError(err).Warn("user id storage write failed")
	}
}

// newSessionID builds "session_<epochMillis>_<base36x9>".
func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), randomBase36(9))
}

// newUserID builds "user_<base36x9>_<epochMillisBase36>".
func newUserID() string {
	return fmt.Sprintf("user_%s_%s", randomBase36(9), strconv.FormatInt(time.Now().UnixMilli(), 36))
}

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Chars[rand.Intn(len(base36Chars))]
	}
	return string(b)
}
