// Package web serves the public site and the role-gated dashboards.
package web

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
)

// we need the CoreDB in the handlers
type Route struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

// Sections is exposed for the navigation and the article form.
func (r *Route) Sections() ([]*core.Section, error) {
	return r.db.GetAllSections()
}

type handler func(http.ResponseWriter, *http.Request, *Route, httprouter.Params) error

// anyRole gates on authentication only.
var anyRole = []core.Role{}

// middleware wraps a handler with the route guard. allowed is nil for
// public routes, empty for authenticated-only routes, or an allow-list of
// roles. The checks run in a fixed order: authentication first, then
// profile resolution, then the role.
func middleware(db *core.CoreDB, prefix string, allowed []core.Role, f handler) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var r = &Route{
			Prefix:  prefix + "/",
			Request: request,
			db:      db,
		}
		defer r.Cleanup()

		if allowed != nil {

			// 1. authentication, strictly before any role comparison

			if !r.LoggedIn() {
				r.SeeOther("/login?redirect=%s", url.QueryEscape(req.URL.RequestURI()))
				return
			}

			// 2. while the profile is unresolved, a role mismatch must not
			// redirect: show the placeholder and try to resolve again

			if len(allowed) > 0 && !r.Session.Resolved() {
				r.RefreshProfile()
				if !r.Session.Resolved() {
					checkingTmpl.Execute(w, r)
					return
				}
			}

			// 3. the role allow-list

			if len(allowed) > 0 && !roleAllowed(r.Session.Role(), allowed) {
				r.SeeOther("/dashboard/no-autorizado")
				return
			}
		}

		if err := f(w, req, r, params); err != nil {
			// probably no template has been executed, so execute error template
			errorTmpl.Execute(w, struct {
				*Route
				Err error
			}{
				Route: r,
				Err:   err,
			})
		}
	}
}

func roleAllowed(role core.Role, allowed []core.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

var checkingTmpl = tmpl(`
	<div class="text-center mt-5" role="status" aria-live="polite">
		<div class="spinner-border" aria-hidden="true"></div>
		<p class="mt-3 text-muted">Comprobando sesión, por favor espera…</p>
	</div>`)

var notFoundTmpl = tmpl(`
	<div class="text-center mt-5">
		<h1>404</h1>
		<p>Esta página no existe.</p>
		<a href="/">Volver al inicio</a>
	</div>`)

// NewRouter assembles the whole site.
func NewRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	var reporters = []core.Role{core.RoleReporter, core.RoleAdmin}
	var editors = []core.Role{core.RoleEditor, core.RoleAdmin}
	var admins = []core.Role{core.RoleAdmin}
	// the article form serves both dashboards, the lifecycle service still
	// checks ownership
	var contributors = []core.Role{core.RoleReporter, core.RoleEditor, core.RoleAdmin}

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, nil, home))
	router.GET("/noticia/:id", middleware(db, prefix, nil, article))
	GETAndPOST("/login", middleware(db, prefix, nil, login))
	GETAndPOST("/register", middleware(db, prefix, nil, register))
	router.GET("/logout", middleware(db, prefix, nil, logout))

	// authenticated
	router.GET("/dashboard", middleware(db, prefix, anyRole, dashboard))
	router.GET("/dashboard/no-autorizado", middleware(db, prefix, anyRole, unauthorized))
	GETAndPOST("/perfil", middleware(db, prefix, anyRole, profile))

	// reporters
	router.GET("/dashboard/reportero", middleware(db, prefix, reporters, reporterDashboard))
	GETAndPOST("/dashboard/reportero/crear", middleware(db, prefix, reporters, createArticle))
	GETAndPOST("/dashboard/reportero/editar/:id", middleware(db, prefix, contributors, editArticle))
	GETAndPOST("/dashboard/reportero/eliminar/:id", middleware(db, prefix, reporters, deleteArticle))
	router.POST("/dashboard/reportero/estado/:id", middleware(db, prefix, reporters, setStatus))

	// editors
	router.GET("/dashboard/editor", middleware(db, prefix, editors, editorDashboard))
	router.POST("/dashboard/editor/estado/:id", middleware(db, prefix, editors, setStatus))
	GETAndPOST("/dashboard/editor/eliminar/:id", middleware(db, prefix, editors, deleteArticle))
	GETAndPOST("/dashboard/editor/secciones", middleware(db, prefix, editors, sections))
	GETAndPOST("/dashboard/editor/seccion/:id", middleware(db, prefix, editors, section))
	router.POST("/dashboard/editor/seccion/:id/eliminar", middleware(db, prefix, editors, deleteSection))

	// admins
	router.GET("/dashboard/admin", middleware(db, prefix, admins, adminDashboard))
	router.POST("/dashboard/admin/rol/:id", middleware(db, prefix, admins, assignRole))
	router.POST("/dashboard/admin/desactivar/:id", middleware(db, prefix, admins, deactivateUser))
	GETAndPOST("/dashboard/admin/usuario/:id", middleware(db, prefix, admins, adminUser))

	// catch-all 404
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var r = &Route{
			Prefix:  prefix + "/",
			Request: db.NewRequest(w, req),
			db:      db,
		}
		defer r.Cleanup()
		w.WriteHeader(http.StatusNotFound)
		notFoundTmpl.Execute(w, r)
	})

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(baseTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var baseTmpl = template.Must(template.New("base").Parse(`
<!DOCTYPE html>
<html lang="es">
	<head>
		<base href="{{ .Prefix }}">
		<link rel="stylesheet" type="text/css" href="/static/bootstrap.min.css">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<title>Noticias JDX</title>
	</head>
	<body>
		<nav class="navbar navbar-expand navbar-dark bg-dark mb-3">
			<div class="container">
				<a class="navbar-brand" href="/">Noticias JDX</a>
				<ul class="navbar-nav ml-auto">
					{{ if .LoggedIn }}
						<li class="nav-item"><a class="nav-link" href="/dashboard">Panel</a></li>
						<li class="nav-item"><a class="nav-link" href="/perfil">{{ .Session.Profile.DisplayName }}</a></li>
						<li class="nav-item"><a class="nav-link" href="/logout">Salir</a></li>
					{{ else }}
						<li class="nav-item"><a class="nav-link" href="/login">Entrar</a></li>
						<li class="nav-item"><a class="nav-link" href="/register">Registrarse</a></li>
					{{ end }}
				</ul>
			</div>
		</nav>
		<div class="container">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>

{{ define "statusfilter" }}
	<ul class="nav nav-pills mb-3">
		<li class="nav-item"><a class="nav-link{{ if not .Filter }} active{{ end }}" href="?">Todas</a></li>
		<li class="nav-item"><a class="nav-link{{ if eq .Filter "Draft" }} active{{ end }}" href="?estado=Draft">Borradores</a></li>
		<li class="nav-item"><a class="nav-link{{ if eq .Filter "Done" }} active{{ end }}" href="?estado=Done">Terminadas</a></li>
		<li class="nav-item"><a class="nav-link{{ if eq .Filter "Published" }} active{{ end }}" href="?estado=Published">Publicadas</a></li>
		<li class="nav-item"><a class="nav-link{{ if eq .Filter "Deactivated" }} active{{ end }}" href="?estado=Deactivated">Desactivadas</a></li>
	</ul>
{{ end }}`))
