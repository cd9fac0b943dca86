package web

import (
	"html/template"
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
)

var editorTmpl = tmpl(`<h1>Redacción</h1>

	<p>
		<a class="btn btn-secondary" href="/dashboard/editor/secciones">Secciones</a>
	</p>

	{{ template "statusfilter" . }}

	<table class="table">
		<thead>
			<tr><th>Título</th><th>Sección</th><th>Autor</th><th>Estado</th><th>Actualizada</th><th></th></tr>
		</thead>
		<tbody>
			{{ range .Articles }}
				<tr>
					<td><a href="/noticia/{{ .ID }}">{{ .Title }}</a></td>
					<td>{{ .Category }}</td>
					<td>{{ $.AuthorName .Author }}</td>
					<td>
						<form method="post" action="/dashboard/editor/estado/{{ .ID }}" class="form-inline">
							<select class="form-control form-control-sm" name="status" onchange="this.form.submit();">
								{{ $.StatusOptions .Status }}
							</select>
						</form>
					</td>
					<td>{{ $.FormatDateTime .TsUpdated }}</td>
					<td>
						<a class="btn btn-sm btn-secondary" href="/dashboard/reportero/editar/{{ .ID }}">Editar</a>
						<a class="btn btn-sm btn-danger" href="/dashboard/editor/eliminar/{{ .ID }}">Eliminar</a>
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>`)

type editorData struct {
	*Route
	Articles []*core.Article
	Filter   core.Status
	authors  map[string]string
}

func (data *editorData) StatusOptions(current core.Status) template.HTML {
	return statusOptions(current, true)
}

// AuthorName resolves a profile id to a display name, falling back to the
// raw id when the profile row is gone.
func (data *editorData) AuthorName(id string) string {
	if name, ok := data.authors[id]; ok {
		return name
	}
	return id
}

func editorDashboard(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var filter = core.Status(req.URL.Query().Get("estado"))

	articles, err := r.db.GetAllArticles(filter)
	if err != nil {
		return err
	}

	profiles, err := r.db.GetAllProfiles(1000, 0)
	if err != nil {
		return err
	}
	var authors = make(map[string]string)
	for _, p := range profiles {
		authors[p.ID()] = p.DisplayName()
	}

	return editorTmpl.Execute(w, &editorData{
		Route:    r,
		Articles: articles,
		Filter:   filter,
		authors:  authors,
	})
}

var sectionsTmpl = tmpl(`<h1>Secciones</h1>

	<table class="table">
		<thead>
			<tr><th>Nombre</th><th>Slug</th><th></th></tr>
		</thead>
		<tbody>
			{{ range .Sections }}
				<tr>
					<td><a href="/dashboard/editor/seccion/{{ .ID }}">{{ .Name }}</a></td>
					<td>{{ .Slug }}</td>
					<td>
						<form method="post" action="/dashboard/editor/seccion/{{ .ID }}/eliminar">
							<input type="submit" class="btn btn-sm btn-danger" value="Eliminar">
						</form>
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Nueva sección</h2>

	<form method="post" class="form-inline">
		<input class="form-control mr-2" type="text" name="name" placeholder="Nombre" required>
		<input class="form-control mr-2" type="text" name="description" placeholder="Descripción">
		<input type="submit" class="btn btn-primary" value="Crear">
	</form>`)

func sections(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if req.Method == http.MethodPost {
		if _, err := r.db.CreateSection(r.Session.Profile, req.PostFormValue("name"), req.PostFormValue("description")); err != nil {
			r.Danger(err)
		} else {
			r.Success("sección creada")
		}
		r.SeeOther("/dashboard/editor/secciones")
		return nil
	}

	return sectionsTmpl.Execute(w, r)
}

var sectionTmpl = tmpl(`<h1>Editar sección</h1>

	<form method="post">
		<div class="form-group">
			<label for="name">Nombre</label>
			<input class="form-control" type="text" id="name" name="name" value="{{ .Section.Name }}" required>
		</div>
		<div class="form-group">
			<label for="description">Descripción</label>
			<input class="form-control" type="text" id="description" name="description" value="{{ .Section.Description }}">
		</div>
		<input type="submit" class="btn btn-primary" value="Guardar">
	</form>`)

func section(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	s, err := r.db.GetSection(params.ByName("id"))
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		s.Name = req.PostFormValue("name")
		s.Description = req.PostFormValue("description")
		if err := r.db.UpdateSection(r.Session.Profile, s); err != nil {
			r.Danger(err)
		} else {
			r.Success("sección guardada")
		}
		r.SeeOther("/dashboard/editor/secciones")
		return nil
	}

	return sectionTmpl.Execute(w, struct {
		*Route
		Section *core.Section
	}{
		Route:   r,
		Section: s,
	})
}

func deleteSection(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	if err := r.db.DeleteSection(r.Session.Profile, params.ByName("id")); err != nil {
		r.Danger(err)
	} else {
		r.Success("sección eliminada")
	}
	r.SeeOther("/dashboard/editor/secciones")
	return nil
}
