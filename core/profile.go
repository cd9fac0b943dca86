package core

import (
	"errors"
)

// Role is the editorial capability of a profile. Admin is a superset of
// editor everywhere a role is checked.
type Role string

const (
	RoleNone     Role = "" // provisional profiles have no role yet
	RoleReporter Role = "reporter"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleReporter, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanPublish returns whether the role may move articles to Published or Deactivated.
func (r Role) CanPublish() bool {
	return r == RoleEditor || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

type DBProfile interface {
	ID() string // equals the identity id
	Email() string
	DisplayName() string
	Role() Role
	Active() bool
}

type ProfileDB interface {
	GetProfile(id string) (DBProfile, error)
	GetAllProfiles(limit, offset int) ([]DBProfile, error)
	UpsertProfile(id, email, displayName string, role Role) error
	SetDisplayName(id, displayName string) error
	SetRole(id string, role Role) error
	DeactivateProfile(id string) error
	Writeable() bool
}

// provisionalProfile stands in when an identity exists but its profile row
// could not be found or fetched. The role is left unset, never guessed.
type provisionalProfile struct {
	id    string
	email string
}

func (p provisionalProfile) ID() string          { return p.id }
func (p provisionalProfile) Email() string       { return p.email }
func (p provisionalProfile) DisplayName() string { return p.email }
func (p provisionalProfile) Role() Role          { return RoleNone }
func (p provisionalProfile) Active() bool        { return true }

// ProvisionalProfile wraps an identity into a profile with no role.
func ProvisionalProfile(identity DBIdentity) DBProfile {
	return provisionalProfile{
		id:    identity.ID(),
		email: identity.Email(),
	}
}

// AssignRole shadows ProfileDB.SetRole. Only admins assign roles.
func (c *CoreDB) AssignRole(actor DBProfile, id string, role Role) error {
	if actor == nil || !actor.Role().IsAdmin() {
		return ErrUnauthorized
	}
	if !role.Valid() {
		return errors.New("invalid role")
	}
	return c.ProfileDB.SetRole(id, role)
}

// Deactivate shadows ProfileDB.DeactivateProfile. Profiles are never hard-deleted.
func (c *CoreDB) Deactivate(actor DBProfile, id string) error {
	if actor == nil || !actor.Role().IsAdmin() {
		return ErrUnauthorized
	}
	return c.ProfileDB.DeactivateProfile(id)
}

// UpdateDisplayName shadows ProfileDB.SetDisplayName. A profile can be
// edited by its owner or by an admin.
func (c *CoreDB) UpdateDisplayName(actor DBProfile, id, displayName string) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if actor.ID() != id && !actor.Role().IsAdmin() {
		return ErrUnauthorized
	}
	return c.ProfileDB.SetDisplayName(id, displayName)
}
