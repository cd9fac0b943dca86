package core

import (
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jdxmedia/noticias/util"
	"golang.org/x/text/language"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.EuropeanSpanish, // default, the product is Spanish
	language.AmericanEnglish,
})

var monthNamesEs = strings.NewReplacer(
	"January", "enero",
	"February", "febrero",
	"March", "marzo",
	"April", "abril",
	"May", "mayo",
	"June", "junio",
	"July", "julio",
	"August", "agosto",
	"September", "septiembre",
	"October", "octubre",
	"November", "noviembre",
	"December", "diciembre",
)

// A Request is created by CoreDB.NewRequest. It carries the session view
// of the current principal plus the HTTP plumbing for redirects and
// notifications.
type Request struct {
	db      *CoreDB // unexported, so it can't be accessed in templates
	Session Session

	// http
	writer  http.ResponseWriter
	request *http.Request

	// robustness
	statusWritten bool

	// caching
	language language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and
// http.Request and bootstraps the session: the identity comes from the
// cookie session (the authoritative source, re-read on every request), the
// profile is fetched for it. A failed profile fetch degrades to a
// provisional profile instead of failing the session.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	if uid := c.SessionManager.GetString(httpreq.Context(), "uid"); uid != "" {
		identity, err := c.GetIdentity(uid)
		if identity != nil && err == nil {
			req.Session = Session{
				Identity: identity,
				Status:   ProfilePending,
			}
			req.RefreshProfile()

			// deactivation must not wait for the cookie to expire
			if req.Session.Status == Ready && !req.Session.Profile.Active() {
				c.SessionManager.Remove(httpreq.Context(), "uid")
				req.Session = Session{}
			}
		}
		// a stale uid is ignored, the session stays unauthenticated
	}

	return req
}

// RefreshProfile re-fetches the profile of the current identity. It is
// idempotent and safe to call repeatedly, the last fetch wins. Without an
// identity (e.g. after logout) it applies nothing.
func (req *Request) RefreshProfile() {

	if req.Session.Identity == nil {
		return
	}

	profile, err := req.db.GetProfile(req.Session.Identity.ID())
	if err == nil && profile != nil {
		req.Session.Profile = profile
		req.Session.Status = Ready
	} else {
		req.Session.Profile = ProvisionalProfile(req.Session.Identity)
		req.Session.Status = ProfileMissing
	}
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), "notifications", notifications)
}

// RenderNotifications removes all notifications from the session
// and renders them into an HTML string.
// If the HTTP status had already been written, it does nothing.
func (req *Request) RenderNotifications() template.HTML {
	var r string
	if !req.statusWritten {
		notifications, _ := req.db.SessionManager.Pop(req.request.Context(), "notifications").([]Notification)
		for _, n := range notifications {
			r += `<div class="alert alert-` + n.Style + ` mt-3" role="alert">` + template.HTMLEscapeString(n.Message) + `</div>`
		}
	}
	return template.HTML(r)
}

// Cleanup destroys the session (which means re-setting the cookie with zero
// lifetime) if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

// Login tries to log in a user. On success, the identity id is stored in
// the cookie session and the identity is injected into this Request
// immediately, so a guard running later in the same request does not
// redirect before the session round trip.
func (req *Request) Login(email string, enteredPass string) error {

	if req.LoggedIn() {
		return nil
	}

	identity, err := req.db.LoginIdentity(email, enteredPass)
	if err != nil {
		return err // session state stays untouched, the caller surfaces the message
	}

	req.Session = Session{
		Identity: identity,
		Status:   ProfilePending,
	}
	req.RefreshProfile()

	if req.Session.Status == Ready && !req.Session.Profile.Active() {
		req.Session = Session{}
		return errors.New("account is deactivated")
	}

	req.db.SessionManager.Put(req.request.Context(), "uid", identity.ID())
	req.Success("¡Bienvenido %s!", req.Session.Profile.DisplayName())
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.Session.LoggedIn()
}

// Logout removes the identity from the cookie session and clears the
// Request's session state. If renewing the session token fails, the error
// is propagated and the state is left unchanged so the caller can retry.
func (req *Request) Logout() error {
	if req.LoggedIn() {
		req.db.SessionManager.Remove(req.request.Context(), "uid")
		if err := req.db.SessionManager.RenewToken(req.request.Context()); err != nil {
			req.db.SessionManager.Put(req.request.Context(), "uid", req.Session.Identity.ID())
			return err
		}
		req.Session = Session{}
	}
	req.Cleanup()
	return nil
}

// IssueFormToken stores a one-time token in the session and returns it.
// Mutating forms embed it to guard against duplicate submission.
func (req *Request) IssueFormToken() string {
	token, err := util.RandomString32()
	if err != nil {
		return ""
	}
	req.db.SessionManager.Put(req.request.Context(), "form_token", token)
	return token
}

// ConsumeFormToken removes the stored token and reports whether the given
// one matched it. A second submit of the same form fails the check.
func (req *Request) ConsumeFormToken(token string) bool {
	stored, _ := req.db.SessionManager.Pop(req.request.Context(), "form_token").(string)
	return token != "" && token == stored
}

// FormatDateTime renders a unix timestamp in the request's language.
func (req *Request) FormatDateTime(ts int64) string {
	b, _ := req.language.Base()
	switch b.String() {
	case "es":
		return monthNamesEs.Replace(time.Unix(ts, 0).Format("2 de January de 2006, 15:04"))
	default:
		return time.Unix(ts, 0).Format("January 2, 2006 3:04 PM")
	}
}
