package core

// SessionStatus describes how much of the current principal is resolved.
type SessionStatus int

const (
	Unauthenticated SessionStatus = iota // no identity
	ProfilePending                       // identity present, profile fetch not done yet
	Ready                                // identity and profile present
	ProfileMissing                       // identity present, no profile row found
)

func (s SessionStatus) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case ProfilePending:
		return "profile-pending"
	case Ready:
		return "ready"
	case ProfileMissing:
		return "profile-missing"
	}
	return "unknown"
}

// A Session is the synchronous view of "who is logged in and what can they
// do". It is re-derived from the cookie session on every request.
type Session struct {
	Identity DBIdentity
	Profile  DBProfile // provisional if Status is ProfileMissing
	Status   SessionStatus
}

func (s Session) LoggedIn() bool {
	return s.Identity != nil
}

// Role returns the resolved role, or RoleNone while the profile is
// provisional or absent.
func (s Session) Role() Role {
	if s.Profile == nil {
		return RoleNone
	}
	return s.Profile.Role()
}

// Resolved reports whether a role check may be applied. While the profile
// is pending or missing, a role mismatch must not be treated as final.
func (s Session) Resolved() bool {
	return s.Status == Ready
}
