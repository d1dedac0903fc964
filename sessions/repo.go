package sessions

// Repo maps opaque session identifiers to session state. Identifiers are
// generated with enough entropy to be unguessable; signing them for cookie
// transport is the server's concern, not this repo's.
type Repo interface {
	// Create allocates a new empty session and returns its identifier.
	Create() (string, error)
	// Get retrieves a session by identifier.
	Get(sessionID string) (*Session, error)
	// AttachFlow stores in-progress sign-in flow state on the session.
	AttachFlow(sessionID string, flow *FlowState) error
	// Complete marks the session signed in: clears the flow state and
	// records the account identifier and user claims.
	Complete(sessionID, accountID string, claims map[string]any) error
	// Destroy removes the session.
	Destroy(sessionID string) error
}
