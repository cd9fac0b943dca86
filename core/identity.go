package core

import (
	"errors"
)

type DBIdentity interface {
	ID() string
	Email() string // sign-in name
}

type IdentityDB interface {
	ChangePassword(u DBIdentity, old, new string) error
	GetIdentity(id string) (DBIdentity, error)
	GetIdentityByEmail(email string) (DBIdentity, error)
	InsertIdentity(email string) (DBIdentity, error)
	LoginIdentity(email, password string) (DBIdentity, error)
	SetPassword(u DBIdentity, password string) error
	Writeable() bool
}

var ErrEmptyPassword = errors.New("refusing to set empty password")

// SetPassword shadows IdentityDB.SetPassword.
func (c *CoreDB) SetPassword(u DBIdentity, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return c.IdentityDB.SetPassword(u, password)
}

// Register creates an identity with credentials and its profile row in one
// go. New accounts start as reporters. If the profile insert fails, the
// identity still exists and the next session bootstrap degrades to a
// provisional profile, so registration is not rolled back.
func (c *CoreDB) Register(email, displayName, password string) (DBIdentity, error) {

	if password == "" {
		return nil, ErrEmptyPassword
	}

	identity, err := c.IdentityDB.InsertIdentity(email)
	if err != nil {
		return nil, err
	}

	if err := c.IdentityDB.SetPassword(identity, password); err != nil {
		return nil, err
	}

	if err := c.ProfileDB.UpsertProfile(identity.ID(), identity.Email(), displayName, RoleReporter); err != nil {
		return identity, err
	}

	return identity, nil
}
