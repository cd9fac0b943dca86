package sqldb

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jdxmedia/noticias/core"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuth = errors.New("authentication failed")

func clean(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)
	return email
}

type identity struct {
	id    string
	email string
	pass  []byte // bcrypt hash
}

func (u *identity) ID() string {
	return u.id
}

func (u *identity) Email() string {
	return u.email
}

type IdentityDB struct {
	*sql.DB
	get         *sql.Stmt
	getByEmail  *sql.Stmt
	getPassword *sql.Stmt
	insert      *sql.Stmt
	login       *sql.Stmt
	setPassword *sql.Stmt
}

func NewIdentityDB(db *sql.DB) *IdentityDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS identity (
			id varchar(36) PRIMARY KEY,
			mail varchar(128) NOT NULL,
			password varchar(72) NOT NULL,
			UNIQUE(mail)
		);`)

	var identityDB = &IdentityDB{}
	identityDB.DB = db
	identityDB.get = mustPrepare(db, "SELECT mail FROM identity WHERE id = ? LIMIT 1")
	identityDB.getByEmail = mustPrepare(db, "SELECT id FROM identity WHERE mail = ? LIMIT 1")
	identityDB.getPassword = mustPrepare(db, "SELECT password FROM identity WHERE id = ? LIMIT 1")
	identityDB.insert = mustPrepare(db, "INSERT INTO identity (id, mail, password) VALUES (?, ?, '')") // empty password field is safe because no bcrypt hash equals it
	identityDB.login = mustPrepare(db, "SELECT id, password FROM identity WHERE mail = ?")
	identityDB.setPassword = mustPrepare(db, "UPDATE identity SET password = ? WHERE id = ?")
	return identityDB
}

func (db *IdentityDB) Writeable() bool {
	return true
}

// ChangePassword reads the stored hash instead of trusting the identity
// value, which may have been loaded without it.
func (db *IdentityDB) ChangePassword(u core.DBIdentity, old, new string) error {
	var hash []byte
	err := db.getPassword.QueryRow(u.ID()).Scan(&hash)
	if err == sql.ErrNoRows {
		return ErrAuth
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(old)) != nil {
		return ErrAuth
	}
	return db.SetPassword(u, new)
}

func (db *IdentityDB) GetIdentity(id string) (core.DBIdentity, error) {
	var u = &identity{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&u.email)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *IdentityDB) GetIdentityByEmail(email string) (core.DBIdentity, error) {
	var u = &identity{
		email: clean(email),
	}
	err := db.getByEmail.QueryRow(u.email).Scan(&u.id)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *IdentityDB) InsertIdentity(email string) (core.DBIdentity, error) {
	var u = &identity{
		id:    uuid.NewString(),
		email: clean(email),
	}
	if u.email == "" {
		return nil, errors.New("email is required")
	}
	if _, err := db.insert.Exec(u.id, u.email); err != nil {
		return nil, err
	}
	return u, nil
}

func (db *IdentityDB) LoginIdentity(email, password string) (core.DBIdentity, error) {

	email = clean(email)

	var u = &identity{
		email: email,
	}

	err := db.login.QueryRow(email).Scan(&u.id, &u.pass)
	if err == sql.ErrNoRows {
		return nil, ErrAuth // user not found
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword(u.pass, []byte(password)) != nil {
		return nil, ErrAuth // wrong password
	}

	return u, nil
}

func (db *IdentityDB) SetPassword(u core.DBIdentity, password string) error {

	if password == "" {
		return errors.New("no password given")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.setPassword.Exec(hash, u.ID())
	if err != nil {
		return err
	}

	if su, ok := u.(*identity); ok {
		su.pass = hash
	}
	return nil
}
