package web

import (
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
)

var dashboardTmpl = tmpl(`<h1>Panel</h1>

	{{ if .ProfileMissing }}
		<div class="alert alert-warning">
			Tu perfil todavía no está disponible. Un administrador debe asignarte un rol.
		</div>
	{{ end }}

	<ul>
		{{ if .CanReport }}<li><a href="/dashboard/reportero">Mis noticias</a></li>{{ end }}
		{{ if .CanEdit }}<li><a href="/dashboard/editor">Redacción</a></li>{{ end }}
		{{ if .CanAdmin }}<li><a href="/dashboard/admin">Usuarios</a></li>{{ end }}
		<li><a href="/perfil">Mi perfil</a></li>
	</ul>`)

type dashboardData struct {
	*Route
}

func (data *dashboardData) ProfileMissing() bool {
	return data.Session.Status == core.ProfileMissing
}

func (data *dashboardData) CanReport() bool {
	var role = data.Session.Role()
	return role == core.RoleReporter || role == core.RoleAdmin
}

func (data *dashboardData) CanEdit() bool {
	return data.Session.Role().CanPublish()
}

func (data *dashboardData) CanAdmin() bool {
	return data.Session.Role().IsAdmin()
}

func dashboard(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	// jump straight to the single role-specific panel

	switch r.Session.Role() {
	case core.RoleReporter:
		r.SeeOther("/dashboard/reportero")
		return nil
	case core.RoleEditor:
		r.SeeOther("/dashboard/editor")
		return nil
	}

	return dashboardTmpl.Execute(w, &dashboardData{
		Route: r,
	})
}

var unauthorizedTmpl = tmpl(`
	<div class="text-center mt-5">
		<h1 class="text-danger">No tienes permisos para acceder</h1>
		<a href="/dashboard">Volver al panel</a>
	</div>`)

func unauthorized(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {
	return unauthorizedTmpl.Execute(w, r)
}
