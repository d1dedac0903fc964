package sessions

import "time"

// FlowState holds the transient authorization-code flow parameters between
// sign-in initiation and the provider callback.
type FlowState struct {
	State        string
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

// Session tracks one browser session. Flow is present only while a sign-in
// is in progress; AccountID and Claims are set on sign-in completion.
// Sessions hold the account identifier only, never credential material.
type Session struct {
	ID        string
	Flow      *FlowState
	AccountID string
	Claims    map[string]any
	CreatedAt time.Time
}

// SignedIn reports whether the session has completed a sign-in
func (s *Session) SignedIn() bool {
	return s != nil && s.AccountID != ""
}
