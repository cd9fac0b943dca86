package sqldb

import (
	"database/sql"

	"github.com/jdxmedia/noticias/core"
)

type SectionDB struct {
	*sql.DB
	delete *sql.Stmt
	get    *sql.Stmt
	getAll *sql.Stmt
	insert *sql.Stmt
	update *sql.Stmt
}

func NewSectionDB(db *sql.DB) *SectionDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS section (
			id varchar(36) PRIMARY KEY,
			name varchar(64) NOT NULL,
			slug varchar(64) NOT NULL,
			description varchar(256) NOT NULL,
			UNIQUE(slug)
		);`)

	var sectionDB = &SectionDB{}
	sectionDB.DB = db
	sectionDB.delete = mustPrepare(db, "DELETE FROM section WHERE id = ?")
	sectionDB.get = mustPrepare(db, "SELECT name, slug, description FROM section WHERE id = ? LIMIT 1")
	sectionDB.getAll = mustPrepare(db, "SELECT id, name, slug, description FROM section ORDER BY name")
	sectionDB.insert = mustPrepare(db, "INSERT INTO section (id, name, slug, description) VALUES (?, ?, ?, ?)")
	sectionDB.update = mustPrepare(db, "UPDATE section SET name = ?, slug = ?, description = ? WHERE id = ?")
	return sectionDB
}

func (db *SectionDB) Writeable() bool {
	return true
}

func (db *SectionDB) DeleteSection(id string) error {
	_, err := db.delete.Exec(id)
	return err
}

func (db *SectionDB) GetSection(id string) (*core.Section, error) {
	var s = &core.Section{
		ID: id,
	}
	err := db.get.QueryRow(id).Scan(&s.Name, &s.Slug, &s.Description)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *SectionDB) GetAllSections() ([]*core.Section, error) {

	var all = []*core.Section{}

	rows, err := db.getAll.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s = &core.Section{}
		if err = rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description); err != nil {
			return nil, err
		}
		all = append(all, s)
	}

	return all, rows.Err()
}

func (db *SectionDB) InsertSection(s *core.Section) error {
	_, err := db.insert.Exec(s.ID, s.Name, s.Slug, s.Description)
	return err
}

func (db *SectionDB) UpdateSection(s *core.Section) error {
	_, err := db.update.Exec(s.Name, s.Slug, s.Description, s.ID)
	return err
}
