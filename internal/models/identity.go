package models

// IdentityKind enumerates the three possible user contexts.
type IdentityKind int

const (
	// Anonymous means no session is active; all data operations are refused.
	Anonymous IdentityKind = iota
	// Authenticated means a server-side account session is active.
	Authenticated
	// Guest means a synthetic device-local identity is active. Guest data
	// never reaches the remote store and is wiped when the session ends.
	Guest
)

func (k IdentityKind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Guest:
		return "guest"
	default:
		return "anonymous"
	}
}

// Identity is the currently active user context. Exactly one Identity is
// active at a time; switching identities replaces the active expense
// collection wholesale.
type Identity struct {
	Kind        IdentityKind
	UserID      string
	DisplayName string
}

// AnonymousIdentity is the zero session state.
var AnonymousIdentity = Identity{Kind: Anonymous}

// IsActive reports whether the identity can own an expense collection.
func (i Identity) IsActive() bool {
	return i.Kind != Anonymous
}
