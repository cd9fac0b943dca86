package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

var registerTmpl = tmpl(`<h1>Crear cuenta</h1>
	<form method="post" style="max-width: 20rem; margin: auto;">
		<div class="form-group">
			<label>Nombre</label>
			<input type="text" class="form-control" name="name" value="{{ .Name }}" required autofocus>
		</div>
		<div class="form-group">
			<label>E-Mail</label>
			<input type="email" class="form-control" name="email" value="{{ .Email }}" required>
		</div>
		<div class="form-group">
			<label>Contraseña</label>
			<input type="password" class="form-control" name="password" required>
		</div>
		<div class="form-group">
			<label>Repite la contraseña</label>
			<input type="password" class="form-control" name="password2" required>
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-primary" name="register">Registrarse</button>
		</div>
	</form>`)

type registerData struct {
	*Route
	Name  string
	Email string
}

func register(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var name, email string

	if req.Method == http.MethodPost {

		name = strings.TrimSpace(req.PostFormValue("name"))
		email = req.PostFormValue("email")
		password := req.PostFormValue("password")

		err := doRegister(r, name, email, password, req.PostFormValue("password2"))
		if err == nil {
			r.SeeOther("/dashboard")
			return nil
		} else {
			r.Danger(err)
			// keep POST data for name and email fields
		}
	}

	return registerTmpl.Execute(w, &registerData{
		Route: r,
		Name:  name,
		Email: email,
	})
}

func doRegister(r *Route, name, email, password, password2 string) error {

	if name == "" {
		return errors.New("el nombre es obligatorio")
	}

	if password != password2 {
		return errors.New("las contraseñas no coinciden")
	}

	if _, err := r.db.Register(email, name, password); err != nil {
		return err
	}

	// sign in immediately, new accounts should not land on the login form
	return r.Login(email, password)
}
