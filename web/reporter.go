package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
)

var reporterTmpl = tmpl(`<h1>Mis noticias</h1>

	<p>
		<a class="btn btn-primary" href="/dashboard/reportero/crear">Nueva noticia</a>
	</p>

	{{ template "statusfilter" . }}

	<table class="table">
		<thead>
			<tr><th>Título</th><th>Sección</th><th>Estado</th><th>Creada</th><th></th></tr>
		</thead>
		<tbody>
			{{ range .Articles }}
				<tr>
					<td><a href="/noticia/{{ .ID }}">{{ .Title }}</a></td>
					<td>{{ .Category }}</td>
					<td>
						<form method="post" action="/dashboard/reportero/estado/{{ .ID }}" class="form-inline">
							<select class="form-control form-control-sm" name="status" onchange="this.form.submit();">
								{{ $.StatusOptions .Status }}
							</select>
						</form>
					</td>
					<td>{{ $.FormatDateTime .TsCreated }}</td>
					<td>
						<a class="btn btn-sm btn-secondary" href="/dashboard/reportero/editar/{{ .ID }}">Editar</a>
						<a class="btn btn-sm btn-danger" href="/dashboard/reportero/eliminar/{{ .ID }}">Eliminar</a>
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>`)

type reporterData struct {
	*Route
	Articles []*core.Article
	Filter   core.Status
}

// StatusOptions renders the states a reporter can select. Published and
// Deactivated are listed but disabled, the cue is advisory: the actual
// enforcement happens in the lifecycle service.
func (data *reporterData) StatusOptions(current core.Status) template.HTML {
	return statusOptions(current, data.Session.Role().CanPublish())
}

func reporterDashboard(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var filter = core.Status(req.URL.Query().Get("estado"))

	articles, err := r.db.GetArticlesByAuthor(r.Session.Identity.ID(), filter)
	if err != nil {
		return err
	}

	return reporterTmpl.Execute(w, &reporterData{
		Route:    r,
		Articles: articles,
		Filter:   filter,
	})
}

// setStatus serves the status forms of both dashboards. The role check
// lives in the lifecycle service, not here.
func setStatus(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var status = core.Status(req.PostFormValue("status"))

	if err := r.db.SetArticleStatus(r.Session.Profile, params.ByName("id"), status); err != nil {
		if err == core.ErrUnauthorized {
			r.Danger(errors.New("no tienes permisos para ese cambio de estado"))
		} else {
			r.Danger(err)
		}
	} else {
		r.Success("estado cambiado a %s", status)
	}

	if r.Session.Role().CanPublish() {
		r.SeeOther("/dashboard/editor")
	} else {
		r.SeeOther("/dashboard/reportero")
	}
	return nil
}

var deleteTmpl = tmpl(`<h1>Eliminar &raquo;{{ .Article.Title }}&laquo;</h1>

	<p>Se eliminará la noticia y su imagen asociada.</p>

	<p>
		<a class="btn btn-secondary" href="/dashboard">Cancelar</a>
	</p>

	<form method="post">
		<input type="hidden" name="form_token" value="{{ .FormToken }}">
		<input type="submit" class="btn btn-danger" name="delete" value="Eliminar">
	</form>`)

type deleteData struct {
	*Route
	Article   *core.Article
	FormToken string
}

func deleteArticle(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	a, err := r.db.EditableArticle(r.Session.Profile, params.ByName("id"))
	if err == core.ErrNotFound || err == core.ErrUnauthorized {
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost && req.PostFormValue("delete") != "" {

		if !r.ConsumeFormToken(req.PostFormValue("form_token")) {
			r.SeeOther("/dashboard") // duplicate submit, the first one already ran
			return nil
		}

		if err := r.db.DeleteArticle(r.Session.Profile, a.ID); err == nil {
			r.Success("noticia eliminada")
			r.SeeOther("/dashboard")
			return nil
		} else {
			r.Danger(err)
		}
	}

	return deleteTmpl.Execute(w, &deleteData{
		Route:     r,
		Article:   a,
		FormToken: r.IssueFormToken(),
	})
}
