package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func logout(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {
	if err := r.Logout(); err != nil {
		// state stays untouched so the user can retry
		r.Danger(err)
		r.SeeOther("/dashboard")
		return nil
	}
	r.Success("Hasta pronto")
	r.SeeOther("/login")
	return nil
}
