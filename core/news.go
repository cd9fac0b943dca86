package core

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("not found")
var ErrUnauthorized = errors.New("unauthorized")

// Status is the editorial lifecycle state of an article.
type Status string

const (
	StatusDraft       Status = "Draft"
	StatusDone        Status = "Done"
	StatusPublished   Status = "Published"
	StatusDeactivated Status = "Deactivated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusDone, StatusPublished, StatusDeactivated:
		return true
	default:
		return false
	}
}

// Restricted returns whether moving an article into this status requires
// editor capability.
func (s Status) Restricted() bool {
	return s == StatusPublished || s == StatusDeactivated
}

type Article struct {
	ID        string
	Title     string
	Subtitle  string
	Content   string // markup, rendered as CommonMark
	Category  string // section name, not an enforced foreign key
	ImageURL  string // set and cleared together with ImagePath
	ImagePath string
	Author    string // profile id
	Status    Status
	TsCreated int64
	TsUpdated int64
}

// ArticlePatch is a partial update. Nil fields are left unchanged. The
// image pair must be patched together or not at all.
type ArticlePatch struct {
	Title     *string
	Subtitle  *string
	Content   *string
	Category  *string
	ImageURL  *string
	ImagePath *string
}

type NewsDB interface {
	InsertArticle(a *Article) error
	UpdateArticle(id string, patch ArticlePatch, tsUpdated int64) error
	SetArticleStatus(id string, status Status, tsUpdated int64) error
	DeleteArticle(id string) error
	GetArticle(id string) (*Article, error) // ErrNotFound on miss
	GetAllArticles(status Status) ([]*Article, error)
	GetArticlesByAuthor(author string, status Status) ([]*Article, error)
	Writeable() bool
}

// An ImageUpload is a not-yet-stored image selected in a form.
type ImageUpload struct {
	Filename string
	Src      io.Reader
}

type ArticleDraft struct {
	Title    string
	Subtitle string
	Content  string
	Category string
	Status   Status // defaults to Draft
	Image    *ImageUpload
}

// CreateArticle persists a new article for the given identity. If the draft
// carries an image, the image is stored first and the row references it
// only after the upload succeeded, so a failed upload never leaves a
// dangling reference.
func (c *CoreDB) CreateArticle(identity DBIdentity, draft ArticleDraft) (*Article, error) {

	if identity == nil {
		return nil, ErrUnauthorized
	}

	var status = draft.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	var now = time.Now().Unix()
	var a = &Article{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(draft.Title),
		Subtitle:  strings.TrimSpace(draft.Subtitle),
		Content:   draft.Content,
		Category:  strings.TrimSpace(draft.Category),
		Author:    identity.ID(),
		Status:    status,
		TsCreated: now,
		TsUpdated: now,
	}

	if a.Title == "" {
		return nil, errors.New("title is required")
	}

	if draft.Image != nil {
		url, path, err := c.UploadImage(a.ID, draft.Image.Filename, draft.Image.Src)
		if err != nil {
			return nil, err
		}
		a.ImageURL = url
		a.ImagePath = path
	}

	if err := c.NewsDB.InsertArticle(a); err != nil {
		// the record was not saved, don't keep the blob around
		if a.ImagePath != "" {
			c.DeleteImage(a.ImagePath)
		}
		return nil, err
	}

	return a, nil
}

// UpdateArticle applies a partial update. The status field is never
// touched here, status changes go through SetArticleStatus. An article can
// be edited by its author or by editors.
func (c *CoreDB) UpdateArticle(actor DBProfile, id string, patch ArticlePatch, newImage *ImageUpload) error {

	a, err := c.requireArticleOwnership(actor, id)
	if err != nil {
		return err
	}

	if newImage != nil {
		url, path, err := c.UploadImage(a.ID, newImage.Filename, newImage.Src)
		if err != nil {
			return err // upload failure aborts the record mutation
		}
		patch.ImageURL = &url
		patch.ImagePath = &path
	}

	if (patch.ImageURL == nil) != (patch.ImagePath == nil) {
		return errors.New("image url and path must be patched together")
	}

	if err := c.NewsDB.UpdateArticle(id, patch, time.Now().Unix()); err != nil {
		return err
	}

	// release the replaced blob, best-effort
	if newImage != nil && a.ImagePath != "" {
		c.DeleteImage(a.ImagePath)
	}

	return nil
}

// SetArticleStatus is the authoritative enforcement point for the
// editorial lifecycle: transitions to Published or Deactivated require
// editor capability no matter what the caller's UI allowed. Draft and Done
// are unrestricted for the owning author.
func (c *CoreDB) SetArticleStatus(actor DBProfile, id string, status Status) error {

	if !status.Valid() {
		return fmt.Errorf("invalid status: %s", status)
	}

	a, err := c.NewsDB.GetArticle(id)
	if err != nil {
		return err
	}

	if actor == nil {
		return ErrUnauthorized
	}

	if status.Restricted() {
		if !actor.Role().CanPublish() {
			return ErrUnauthorized
		}
	} else {
		if a.Author != actor.ID() && !actor.Role().CanPublish() {
			return ErrUnauthorized
		}
	}

	return c.NewsDB.SetArticleStatus(id, status, time.Now().Unix())
}

// DeleteArticle removes the stored image first (best-effort, a storage
// failure is logged and does not abort) and the record second. The
// ordering favors not leaving orphaned rows over not leaving orphaned
// blobs.
func (c *CoreDB) DeleteArticle(actor DBProfile, id string) error {

	a, err := c.requireArticleOwnership(actor, id)
	if err != nil {
		return err
	}

	if a.ImagePath != "" {
		c.DeleteImage(a.ImagePath)
	}

	return c.NewsDB.DeleteArticle(id)
}

// UploadImage stores an image in the article's folder and returns its
// public url and storage path. Validation (MIME sniffing, size cap)
// happens inside the store.
func (c *CoreDB) UploadImage(articleID, filename string, src io.Reader) (url string, path string, err error) {

	filename = fmt.Sprintf("%d_%s", time.Now().Unix(), strings.ReplaceAll(filename, " ", "_"))

	if err := c.Uploads.Folder(articleID).Upload(filename, src); err != nil {
		return "", "", err
	}

	return c.Uploads.PublicURL(articleID, filename), articleID + "/" + filename, nil
}

// DeleteImage removes a stored image, best-effort. Failures are logged and
// swallowed, record consistency wins over storage hygiene.
func (c *CoreDB) DeleteImage(path string) {
	articleID, filename, ok := strings.Cut(path, "/")
	if !ok {
		log.Warn().Str("path", path).Msg("not an image path")
		return
	}
	if err := c.Uploads.Folder(articleID).Delete(filename); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("error deleting image")
	}
}

// EditableArticle fetches an article on behalf of an actor who intends to
// mutate it. Drafts are not readable through the mutation forms by anyone
// the mutation itself would reject.
func (c *CoreDB) EditableArticle(actor DBProfile, id string) (*Article, error) {
	return c.requireArticleOwnership(actor, id)
}

func (c *CoreDB) requireArticleOwnership(actor DBProfile, id string) (*Article, error) {

	a, err := c.NewsDB.GetArticle(id)
	if err != nil {
		return nil, err
	}

	if actor == nil {
		return nil, ErrUnauthorized
	}

	if a.Author != actor.ID() && !actor.Role().CanPublish() {
		return nil, ErrUnauthorized
	}

	return a, nil
}
