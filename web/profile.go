package web

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var profileTmpl = tmpl(`<h1>Perfil</h1>

	<p>
		Correo: {{ .Session.Profile.Email }}<br>
		Rol: {{ .Session.Role }}
	</p>

	<h2>Nombre</h2>

	<form method="post">
		<div class="form-group">
			<input class="form-control" type="text" name="displayName" value="{{ .Session.Profile.DisplayName }}" required>
		</div>
		<input type="submit" class="btn btn-primary" name="rename" value="Guardar">
	</form>

	<h2 class="mt-4">Cambiar contraseña</h2>

	<form method="post">
		<div class="form-group">
			<label for="old">Contraseña actual</label>
			<input class="form-control" type="password" id="old" name="old" autocomplete="current-password" required>
		</div>
		<div class="form-group">
			<label for="new">Nueva contraseña</label>
			<input class="form-control" type="password" id="new" name="new" autocomplete="new-password" required>
		</div>
		<div class="form-group">
			<label for="repeat">Repetir nueva contraseña</label>
			<input class="form-control" type="password" id="repeat" name="repeat" autocomplete="new-password" required>
		</div>
		<input type="submit" class="btn btn-primary" name="password" value="Cambiar">
	</form>`)

func profile(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if req.Method == http.MethodPost {

		switch {
		case req.PostFormValue("rename") != "":
			if err := r.db.UpdateDisplayName(r.Session.Profile, r.Session.Identity.ID(), req.PostFormValue("displayName")); err != nil {
				r.Danger(err)
			} else {
				r.Success("nombre guardado")
			}

		case req.PostFormValue("password") != "":
			if req.PostFormValue("new") != req.PostFormValue("repeat") {
				r.Danger(errors.New("las contraseñas no coinciden"))
				break
			}
			if err := r.db.ChangePassword(r.Session.Identity, req.PostFormValue("old"), req.PostFormValue("new")); err != nil {
				r.Danger(err)
			} else {
				r.Success("contraseña cambiada")
			}
		}

		r.SeeOther("/perfil")
		return nil
	}

	return profileTmpl.Execute(w, r)
}
