package sqldb

import (
	"database/sql"
	"testing"

	"github.com/jdxmedia/noticias/core"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIdentityRoundTrip(t *testing.T) {
	db := NewIdentityDB(openTestDB(t))

	u, err := db.InsertIdentity("  Ana@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email(), "email is trimmed and lowercased")

	require.NoError(t, db.SetPassword(u, "secret"))

	got, err := db.GetIdentity(u.ID())
	require.NoError(t, err)
	assert.Equal(t, u.Email(), got.Email())

	got, err = db.GetIdentityByEmail("ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())
}

func TestIdentityLogin(t *testing.T) {
	db := NewIdentityDB(openTestDB(t))

	u, err := db.InsertIdentity("ana@example.com")
	require.NoError(t, err)
	require.NoError(t, db.SetPassword(u, "secret"))

	got, err := db.LoginIdentity("ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())

	_, err = db.LoginIdentity("ana@example.com", "wrong")
	assert.Equal(t, ErrAuth, err)

	_, err = db.LoginIdentity("nobody@example.com", "secret")
	assert.Equal(t, ErrAuth, err, "unknown user and wrong password are indistinguishable")
}

func TestIdentityFreshAccountCannotLogin(t *testing.T) {
	db := NewIdentityDB(openTestDB(t))

	_, err := db.InsertIdentity("ana@example.com")
	require.NoError(t, err)

	// no password was set yet, the empty hash matches nothing
	_, err = db.LoginIdentity("ana@example.com", "")
	assert.Equal(t, ErrAuth, err)
}

func TestIdentityChangePassword(t *testing.T) {
	db := NewIdentityDB(openTestDB(t))

	u, err := db.InsertIdentity("ana@example.com")
	require.NoError(t, err)
	require.NoError(t, db.SetPassword(u, "secret"))

	// the session path loads identities without their hash
	loaded, err := db.GetIdentity(u.ID())
	require.NoError(t, err)

	assert.Equal(t, ErrAuth, db.ChangePassword(loaded, "wrong", "next"))
	require.NoError(t, db.ChangePassword(loaded, "secret", "next"))

	_, err = db.LoginIdentity("ana@example.com", "next")
	assert.NoError(t, err)
}

func TestIdentityDuplicateEmail(t *testing.T) {
	db := NewIdentityDB(openTestDB(t))

	_, err := db.InsertIdentity("ana@example.com")
	require.NoError(t, err)

	_, err = db.InsertIdentity("Ana@example.com")
	assert.Error(t, err, "emails are unique after normalization")
}

func TestProfileUpsert(t *testing.T) {
	db := NewProfileDB(openTestDB(t))

	require.NoError(t, db.UpsertProfile("u1", "ana@example.com", "Ana", core.RoleReporter))

	p, err := db.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.DisplayName())
	assert.Equal(t, core.RoleReporter, p.Role())
	assert.True(t, p.Active())

	// upserting again updates the name but never the role
	require.NoError(t, db.SetRole("u1", core.RoleEditor))
	require.NoError(t, db.UpsertProfile("u1", "ana@example.com", "Ana María", core.RoleReporter))

	p, err = db.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", p.DisplayName())
	assert.Equal(t, core.RoleEditor, p.Role())
}

func TestProfileDeactivate(t *testing.T) {
	db := NewProfileDB(openTestDB(t))

	require.NoError(t, db.UpsertProfile("u1", "ana@example.com", "Ana", core.RoleReporter))
	require.NoError(t, db.DeactivateProfile("u1"))

	// the row survives, soft-deleted
	p, err := db.GetProfile("u1")
	require.NoError(t, err)
	assert.False(t, p.Active())
}

func TestProfileGetAllOrderedByMail(t *testing.T) {
	db := NewProfileDB(openTestDB(t))

	require.NoError(t, db.UpsertProfile("u1", "zoe@example.com", "Zoe", core.RoleReporter))
	require.NoError(t, db.UpsertProfile("u2", "ana@example.com", "Ana", core.RoleReporter))

	all, err := db.GetAllProfiles(10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ana@example.com", all[0].Email())
	assert.Equal(t, "zoe@example.com", all[1].Email())
}

func insertTestArticle(t *testing.T, db *NewsDB, id, author string, status core.Status, tsCreated int64) {
	t.Helper()
	require.NoError(t, db.InsertArticle(&core.Article{
		ID:        id,
		Title:     "Título " + id,
		Author:    author,
		Status:    status,
		TsCreated: tsCreated,
		TsUpdated: tsCreated,
	}))
}

func TestNewsFilterAndOrder(t *testing.T) {
	db := NewNewsDB(openTestDB(t))

	insertTestArticle(t, db, "a", "rep", core.StatusPublished, 100)
	insertTestArticle(t, db, "b", "rep", core.StatusDraft, 200)
	insertTestArticle(t, db, "c", "rep2", core.StatusPublished, 300)

	published, err := db.GetAllArticles(core.StatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "c", published[0].ID, "newest first")
	assert.Equal(t, "a", published[1].ID)

	all, err := db.GetAllArticles("")
	require.NoError(t, err)
	assert.Len(t, all, 3, "empty status means no filter")

	mine, err := db.GetArticlesByAuthor("rep", "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b", mine[0].ID)

	mine, err = db.GetArticlesByAuthor("rep", core.StatusDraft)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b", mine[0].ID)
}

func TestNewsSetStatus(t *testing.T) {
	db := NewNewsDB(openTestDB(t))

	insertTestArticle(t, db, "a", "rep", core.StatusDraft, 100)

	require.NoError(t, db.SetArticleStatus("a", core.StatusPublished, 200))

	a, err := db.GetArticle("a")
	require.NoError(t, err)
	assert.Equal(t, core.StatusPublished, a.Status)
	assert.Equal(t, int64(200), a.TsUpdated)

	assert.Equal(t, core.ErrNotFound, db.SetArticleStatus("missing", core.StatusPublished, 200))
}

func TestNewsPartialUpdate(t *testing.T) {
	db := NewNewsDB(openTestDB(t))

	insertTestArticle(t, db, "a", "rep", core.StatusDraft, 100)

	var title = "Nuevo título"
	require.NoError(t, db.UpdateArticle("a", core.ArticlePatch{Title: &title}, 200))

	a, err := db.GetArticle("a")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo título", a.Title)
	assert.Equal(t, core.StatusDraft, a.Status, "a patch never touches the status")
	assert.Equal(t, int64(200), a.TsUpdated)

	// an empty patch is a no-op, not an error
	require.NoError(t, db.UpdateArticle("a", core.ArticlePatch{}, 300))
	a, _ = db.GetArticle("a")
	assert.Equal(t, int64(200), a.TsUpdated)

	assert.Equal(t, core.ErrNotFound, db.UpdateArticle("missing", core.ArticlePatch{Title: &title}, 300))
}

func TestNewsDelete(t *testing.T) {
	db := NewNewsDB(openTestDB(t))

	insertTestArticle(t, db, "a", "rep", core.StatusDraft, 100)
	require.NoError(t, db.DeleteArticle("a"))

	_, err := db.GetArticle("a")
	assert.Equal(t, core.ErrNotFound, err)
}

func TestSectionCRUD(t *testing.T) {
	db := NewSectionDB(openTestDB(t))

	var s = &core.Section{ID: "s1", Name: "Deportes", Slug: "deportes"}
	require.NoError(t, db.InsertSection(s))

	assert.Error(t, db.InsertSection(&core.Section{ID: "s2", Name: "Deportes 2", Slug: "deportes"}), "slugs are unique")

	got, err := db.GetSection("s1")
	require.NoError(t, err)
	assert.Equal(t, "Deportes", got.Name)

	got.Name = "Deporte"
	got.Slug = "deporte"
	require.NoError(t, db.UpdateSection(got))

	all, err := db.GetAllSections()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Deporte", all[0].Name)

	require.NoError(t, db.DeleteSection("s1"))
	_, err = db.GetSection("s1")
	assert.Equal(t, core.ErrNotFound, err)
}
