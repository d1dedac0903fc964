package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

const sessionIDLength = 32 // 32 bytes = 256 bits

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	nowTime  func() time.Time
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
		nowTime:  time.Now,
	}
}

// Create allocates a new session with a random unguessable identifier
func (r *InMemoryRepo) Create() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrapf(err, "[InMemoryRepo.Create] rand.Read")
	}
	sessionID := base64.RawURLEncoding.EncodeToString(b)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = &Session{
		ID:        sessionID,
		CreatedAt: r.nowTime(),
	}
	return sessionID, nil
}

// Get retrieves a session by identifier
func (r *InMemoryRepo) Get(sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrSessionNotFound, "[InMemoryRepo.Get]")
	}
	return copySession(session), nil
}

// AttachFlow stores sign-in flow state on an existing session
func (r *InMemoryRepo) AttachFlow(sessionID string, flow *FlowState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.Wrapf(errors.ErrSessionNotFound, "[InMemoryRepo.AttachFlow]")
	}
	flowCopy := *flow
	session.Flow = &flowCopy
	return nil
}

// Complete clears the flow state and marks the session signed in
func (r *InMemoryRepo) Complete(sessionID, accountID string, claims map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.Wrapf(errors.ErrSessionNotFound, "[InMemoryRepo.Complete]")
	}
	session.Flow = nil
	session.AccountID = accountID
	session.Claims = copyClaims(claims)
	return nil
}

// Destroy removes a session
func (r *InMemoryRepo) Destroy(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func copySession(s *Session) *Session {
	cp := *s
	if s.Flow != nil {
		flow := *s.Flow
		cp.Flow = &flow
	}
	cp.Claims = copyClaims(s.Claims)
	return &cp
}

func copyClaims(claims map[string]any) map[string]any {
	if claims == nil {
		return nil
	}
	cp := make(map[string]any, len(claims))
	for k, v := range claims {
		cp[k] = v
	}
	return cp
}
