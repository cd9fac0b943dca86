package core

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jdxmedia/noticias/util"
)

// A Section is a taxonomy entry. Articles reference it by name only.
type Section struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

type SectionDB interface {
	InsertSection(s *Section) error
	UpdateSection(s *Section) error
	DeleteSection(id string) error
	GetSection(id string) (*Section, error) // ErrNotFound on miss
	GetAllSections() ([]*Section, error)    // ordered by name
	Writeable() bool
}

// CreateSection shadows SectionDB.InsertSection. Sections are editor-managed.
func (c *CoreDB) CreateSection(actor DBProfile, name, description string) (*Section, error) {

	if actor == nil || !actor.Role().CanPublish() {
		return nil, ErrUnauthorized
	}

	var s = &Section{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        util.NormalizeSlug(name),
		Description: description,
	}

	if s.Slug == "" {
		return nil, errors.New("section name is required")
	}

	if err := c.SectionDB.InsertSection(s); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSection shadows SectionDB.UpdateSection.
func (c *CoreDB) UpdateSection(actor DBProfile, s *Section) error {
	if actor == nil || !actor.Role().CanPublish() {
		return ErrUnauthorized
	}
	s.Slug = util.NormalizeSlug(s.Name)
	if s.Slug == "" {
		return errors.New("section name is required")
	}
	return c.SectionDB.UpdateSection(s)
}

// DeleteSection shadows SectionDB.DeleteSection. Articles keep their
// category name, there is no foreign key to release.
func (c *CoreDB) DeleteSection(actor DBProfile, id string) error {
	if actor == nil || !actor.Role().CanPublish() {
		return ErrUnauthorized
	}
	return c.SectionDB.DeleteSection(id)
}
