package sqldb

import (
	"database/sql"
	"time"

	"github.com/jdxmedia/noticias/core"
)

type profile struct {
	id          string
	email       string
	displayName string
	role        string
	active      bool
}

func (p *profile) ID() string {
	return p.id
}

func (p *profile) Email() string {
	return p.email
}

func (p *profile) DisplayName() string {
	return p.displayName
}

func (p *profile) Role() core.Role {
	return core.Role(p.role)
}

func (p *profile) Active() bool {
	return p.active
}

type ProfileDB struct {
	*sql.DB
	deactivate     *sql.Stmt
	get            *sql.Stmt
	getAll         *sql.Stmt
	setDisplayName *sql.Stmt
	setRole        *sql.Stmt
	upsert         *sql.Stmt
}

func NewProfileDB(db *sql.DB) *ProfileDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS profile (
			id varchar(36) PRIMARY KEY,
			mail varchar(128) NOT NULL,
			displayName varchar(128) NOT NULL,
			role varchar(16) NOT NULL,
			active int(1) NOT NULL DEFAULT 1,
			tsCreated int(11) NOT NULL,
			tsUpdated int(11) NOT NULL
		);`)

	var profileDB = &ProfileDB{}
	profileDB.DB = db
	profileDB.deactivate = mustPrepare(db, "UPDATE profile SET active = 0, tsUpdated = ? WHERE id = ?")
	profileDB.get = mustPrepare(db, "SELECT mail, displayName, role, active FROM profile WHERE id = ? LIMIT 1")
	profileDB.getAll = mustPrepare(db, "SELECT id, mail, displayName, role, active FROM profile ORDER BY mail LIMIT ? OFFSET ?")
	profileDB.setDisplayName = mustPrepare(db, "UPDATE profile SET displayName = ?, tsUpdated = ? WHERE id = ?")
	profileDB.setRole = mustPrepare(db, "UPDATE profile SET role = ?, tsUpdated = ? WHERE id = ?")
	// sqlite upsert dialect, mysql needs ON DUPLICATE KEY UPDATE here
	profileDB.upsert = mustPrepare(db,
		`INSERT INTO profile (id, mail, displayName, role, active, tsCreated, tsUpdated) VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET mail = excluded.mail, displayName = excluded.displayName, tsUpdated = excluded.tsUpdated`)
	return profileDB
}

func (db *ProfileDB) Writeable() bool {
	return true
}

func (db *ProfileDB) DeactivateProfile(id string) error {
	_, err := db.deactivate.Exec(time.Now().Unix(), id)
	return err
}

func (db *ProfileDB) GetProfile(id string) (core.DBProfile, error) {
	var p = &profile{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&p.email, &p.displayName, &p.role, &p.active)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (db *ProfileDB) GetAllProfiles(limit, offset int) ([]core.DBProfile, error) {

	var all = []core.DBProfile{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p = &profile{}
		err = rows.Scan(&p.id, &p.email, &p.displayName, &p.role, &p.active)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}

	return all, nil
}

func (db *ProfileDB) SetDisplayName(id, displayName string) error {
	_, err := db.setDisplayName.Exec(displayName, time.Now().Unix(), id)
	return err
}

func (db *ProfileDB) SetRole(id string, role core.Role) error {
	_, err := db.setRole.Exec(string(role), time.Now().Unix(), id)
	return err
}

func (db *ProfileDB) UpsertProfile(id, email, displayName string, role core.Role) error {
	var now = time.Now().Unix()
	_, err := db.upsert.Exec(id, clean(email), displayName, string(role), now, now)
	return err
}
