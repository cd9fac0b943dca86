package web

import (
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
)

var adminTmpl = tmpl(`<h1>Usuarios</h1>

	<table class="table">
		<thead>
			<tr><th>Correo</th><th>Nombre</th><th>Rol</th><th>Activo</th><th></th></tr>
		</thead>
		<tbody>
			{{ range .Profiles }}
				<tr>
					<td><a href="/dashboard/admin/usuario/{{ .ID }}">{{ .Email }}</a></td>
					<td>{{ .DisplayName }}</td>
					<td>
						<form method="post" action="/dashboard/admin/rol/{{ .ID }}" class="form-inline">
							<select class="form-control form-control-sm" name="role" onchange="this.form.submit();">
								<option value="reporter" {{ if eq .Role "reporter" }}selected{{ end }}>Reportero</option>
								<option value="editor" {{ if eq .Role "editor" }}selected{{ end }}>Editor</option>
								<option value="admin" {{ if eq .Role "admin" }}selected{{ end }}>Administrador</option>
							</select>
						</form>
					</td>
					<td>{{ if .Active }}Sí{{ else }}No{{ end }}</td>
					<td>
						{{ if .Active }}
							<form method="post" action="/dashboard/admin/desactivar/{{ .ID }}">
								<input type="submit" class="btn btn-sm btn-danger" value="Desactivar">
							</form>
						{{ end }}
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>`)

func adminDashboard(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	profiles, err := r.db.GetAllProfiles(1000, 0)
	if err != nil {
		return err
	}

	return adminTmpl.Execute(w, struct {
		*Route
		Profiles []core.DBProfile
	}{
		Route:    r,
		Profiles: profiles,
	})
}

func assignRole(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var role = core.Role(req.PostFormValue("role"))

	if err := r.db.AssignRole(r.Session.Profile, params.ByName("id"), role); err != nil {
		r.Danger(err)
	} else {
		r.Success("rol actualizado")
	}
	r.SeeOther("/dashboard/admin")
	return nil
}

func deactivateUser(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var id = params.ByName("id")

	if id == r.Session.Identity.ID() {
		r.Danger(core.ErrUnauthorized) // an admin can't lock themselves out
		r.SeeOther("/dashboard/admin")
		return nil
	}

	if err := r.db.Deactivate(r.Session.Profile, id); err != nil {
		r.Danger(err)
	} else {
		r.Success("usuario desactivado")
	}
	r.SeeOther("/dashboard/admin")
	return nil
}

var adminUserTmpl = tmpl(`<h1>{{ .Profile.Email }}</h1>

	<form method="post">
		<div class="form-group">
			<label for="displayName">Nombre</label>
			<input class="form-control" type="text" id="displayName" name="displayName" value="{{ .Profile.DisplayName }}" required>
		</div>
		<div class="form-group">
			<label for="password">Nueva contraseña (dejar vacío para no cambiarla)</label>
			<input class="form-control" type="password" id="password" name="password" autocomplete="new-password">
		</div>
		<input type="submit" class="btn btn-primary" value="Guardar">
	</form>`)

// adminUser lets an admin rename a user and reset their password without
// knowing the old one.
func adminUser(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	p, err := r.db.GetProfile(params.ByName("id"))
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		if name := req.PostFormValue("displayName"); name != p.DisplayName() {
			if err := r.db.UpdateDisplayName(r.Session.Profile, p.ID(), name); err != nil {
				r.Danger(err)
				r.SeeOther("/dashboard/admin/usuario/%s", p.ID())
				return nil
			}
		}

		if password := req.PostFormValue("password"); password != "" {
			identity, err := r.db.GetIdentity(p.ID())
			if err != nil {
				return err
			}
			if err := r.db.SetPassword(identity, password); err != nil {
				r.Danger(err)
				r.SeeOther("/dashboard/admin/usuario/%s", p.ID())
				return nil
			}
		}

		r.Success("usuario guardado")
		r.SeeOther("/dashboard/admin")
		return nil
	}

	return adminUserTmpl.Execute(w, struct {
		*Route
		Profile core.DBProfile
	}{
		Route:   r,
		Profile: p,
	})
}
