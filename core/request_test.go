package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memIdentityDB struct {
	identities map[string]testIdentity // by id
	passwords  map[string]string       // by email
}

func newMemIdentityDB() *memIdentityDB {
	return &memIdentityDB{
		identities: make(map[string]testIdentity),
		passwords:  make(map[string]string),
	}
}

func (db *memIdentityDB) add(id, email, password string) {
	db.identities[id] = testIdentity{id: id, email: email}
	db.passwords[email] = password
}

func (db *memIdentityDB) ChangePassword(u DBIdentity, old, new string) error {
	if db.passwords[u.Email()] != old {
		return errors.New("wrong password")
	}
	db.passwords[u.Email()] = new
	return nil
}

func (db *memIdentityDB) GetIdentity(id string) (DBIdentity, error) {
	if i, ok := db.identities[id]; ok {
		return i, nil
	}
	return nil, ErrNotFound
}

func (db *memIdentityDB) GetIdentityByEmail(email string) (DBIdentity, error) {
	for _, i := range db.identities {
		if i.email == email {
			return i, nil
		}
	}
	return nil, ErrNotFound
}

func (db *memIdentityDB) InsertIdentity(email string) (DBIdentity, error) {
	var i = testIdentity{id: "id-" + email, email: email}
	db.identities[i.id] = i
	return i, nil
}

func (db *memIdentityDB) LoginIdentity(email, password string) (DBIdentity, error) {
	if pass, ok := db.passwords[email]; !ok || pass != password {
		return nil, errors.New("wrong credentials")
	}
	return db.GetIdentityByEmail(email)
}

func (db *memIdentityDB) SetPassword(u DBIdentity, password string) error {
	db.passwords[u.Email()] = password
	return nil
}

func (db *memIdentityDB) Writeable() bool { return true }

type memProfileDB struct {
	profiles map[string]testProfile
}

func newMemProfileDB() *memProfileDB {
	return &memProfileDB{profiles: make(map[string]testProfile)}
}

func (db *memProfileDB) GetProfile(id string) (DBProfile, error) {
	if p, ok := db.profiles[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (db *memProfileDB) GetAllProfiles(limit, offset int) ([]DBProfile, error) {
	var result []DBProfile
	for _, p := range db.profiles {
		result = append(result, p)
	}
	return result, nil
}

func (db *memProfileDB) UpsertProfile(id, email, displayName string, role Role) error {
	db.profiles[id] = testProfile{id: id, role: role, active: true}
	return nil
}

func (db *memProfileDB) SetDisplayName(id, displayName string) error { return nil }

func (db *memProfileDB) SetRole(id string, role Role) error {
	p, ok := db.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.role = role
	db.profiles[id] = p
	return nil
}

func (db *memProfileDB) DeactivateProfile(id string) error {
	p, ok := db.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.active = false
	db.profiles[id] = p
	return nil
}

func (db *memProfileDB) Writeable() bool { return true }

func newSessionTestDB() (*CoreDB, *memIdentityDB, *memProfileDB) {
	var identities = newMemIdentityDB()
	var profiles = newMemProfileDB()
	var db = &CoreDB{
		IdentityDB:     identities,
		ProfileDB:      profiles,
		SessionManager: scs.New(),
	}
	return db, identities, profiles
}

// runRequest runs f inside a loaded scs session and returns the response.
func runRequest(db *CoreDB, cookies []*http.Cookie, f func(req *Request)) *httptest.ResponseRecorder {
	var rec = httptest.NewRecorder()
	var httpreq = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		httpreq.AddCookie(c)
	}
	db.SessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f(db.NewRequest(w, r))
	})).ServeHTTP(rec, httpreq)
	return rec
}

func TestSessionBootstrap(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: true}

	// log in, keep the cookie
	var cookies []*http.Cookie
	rec := runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
		assert.True(t, req.LoggedIn())
		assert.Equal(t, Ready, req.Session.Status)
		assert.Equal(t, RoleReporter, req.Session.Role())
	})
	cookies = rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// the next request derives the same session from the cookie
	runRequest(db, cookies, func(req *Request) {
		assert.True(t, req.LoggedIn())
		assert.Equal(t, "u1", req.Session.Identity.ID())
		assert.Equal(t, RoleReporter, req.Session.Role())
	})
}

func TestSessionWrongPassword(t *testing.T) {
	db, identities, _ := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")

	runRequest(db, nil, func(req *Request) {
		assert.Error(t, req.Login("ana@example.com", "wrong"))
		assert.False(t, req.LoggedIn())
	})
}

func TestSessionDeactivatedAccount(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: false}

	runRequest(db, nil, func(req *Request) {
		assert.Error(t, req.Login("ana@example.com", "secret"))
		assert.False(t, req.LoggedIn())
	})
}

func TestSessionEndsOnDeactivation(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: true}

	var cookies []*http.Cookie
	rec := runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
		require.True(t, req.LoggedIn())
	})
	cookies = rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// an admin deactivates the account while the cookie is still live
	require.NoError(t, profiles.DeactivateProfile("u1"))

	runRequest(db, cookies, func(req *Request) {
		assert.False(t, req.LoggedIn(), "deactivation ends the session at once")
		assert.Equal(t, Unauthenticated, req.Session.Status)
	})

	// the uid was dropped, a repeated request stays signed out even if
	// the account were reactivated later
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: true}
	runRequest(db, cookies, func(req *Request) {
		assert.False(t, req.LoggedIn())
	})
}

func TestSessionStaleUIDIgnored(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: true}

	var cookies []*http.Cookie
	rec := runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
	})
	cookies = rec.Result().Cookies()

	// the account disappears between requests
	delete(identities.identities, "u1")

	runRequest(db, cookies, func(req *Request) {
		assert.False(t, req.LoggedIn())
		assert.Equal(t, Unauthenticated, req.Session.Status)
	})
}

func TestSessionMissingProfileDegrades(t *testing.T) {
	db, identities, _ := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	// no profile row

	runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
		assert.Equal(t, ProfileMissing, req.Session.Status)
		assert.False(t, req.Session.Resolved())
		assert.Equal(t, RoleNone, req.Session.Role())
		assert.Equal(t, "u1", req.Session.Profile.ID(), "provisional profile carries the identity")
	})
}

func TestRefreshProfilePicksUpLateRow(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")

	runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
		require.Equal(t, ProfileMissing, req.Session.Status)

		// the profile row shows up later
		profiles.profiles["u1"] = testProfile{id: "u1", role: RoleEditor, active: true}

		req.RefreshProfile()
		assert.Equal(t, Ready, req.Session.Status)
		assert.Equal(t, RoleEditor, req.Session.Role())
	})
}

func TestRefreshProfileAfterLogoutIsNoop(t *testing.T) {
	db, identities, profiles := newSessionTestDB()
	identities.add("u1", "ana@example.com", "secret")
	profiles.profiles["u1"] = testProfile{id: "u1", role: RoleReporter, active: true}

	runRequest(db, nil, func(req *Request) {
		require.NoError(t, req.Login("ana@example.com", "secret"))
		require.NoError(t, req.Logout())
		require.False(t, req.LoggedIn())

		req.RefreshProfile()
		assert.False(t, req.LoggedIn(), "a refresh must not resurrect a signed-out session")
		assert.Equal(t, Unauthenticated, req.Session.Status)
	})
}

func TestFormTokenIsOneTime(t *testing.T) {
	db, _, _ := newSessionTestDB()

	runRequest(db, nil, func(req *Request) {
		token := req.IssueFormToken()
		require.NotEmpty(t, token)

		assert.False(t, req.ConsumeFormToken("other"), "mismatch fails and burns the token")

		token = req.IssueFormToken()
		assert.True(t, req.ConsumeFormToken(token))
		assert.False(t, req.ConsumeFormToken(token), "second submit fails")
	})
}

func TestNotificationsRenderOnce(t *testing.T) {
	db, _, _ := newSessionTestDB()

	runRequest(db, nil, func(req *Request) {
		req.Success("hecho")
		req.Danger(errors.New("<script>"))

		rendered := string(req.RenderNotifications())
		assert.Contains(t, rendered, "hecho")
		assert.Contains(t, rendered, "&lt;script&gt;", "messages are escaped")
		assert.Empty(t, string(req.RenderNotifications()), "notifications are popped")
	})
}
