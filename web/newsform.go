package web

import (
	"html/template"
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/jdxmedia/noticias/upload"
	"github.com/julienschmidt/httprouter"
)

var newsFormTmpl = tmpl(`<h1>{{ if .Article.ID }}Editar noticia{{ else }}Nueva noticia{{ end }}</h1>

	<form method="post" enctype="multipart/form-data">
		<input type="hidden" name="form_token" value="{{ .FormToken }}">
		<div class="form-group">
			<label for="title">Título</label>
			<input class="form-control" type="text" id="title" name="title" value="{{ .Article.Title }}" required>
		</div>
		<div class="form-group">
			<label for="subtitle">Subtítulo</label>
			<input class="form-control" type="text" id="subtitle" name="subtitle" value="{{ .Article.Subtitle }}">
		</div>
		<div class="form-group">
			<label for="category">Sección</label>
			<select class="form-control" id="category" name="category">
				<option value=""></option>
				{{ $current := .Article.Category }}
				{{ range .Sections }}
					<option value="{{ .Name }}" {{ if eq .Name $current }}selected{{ end }}>{{ .Name }}</option>
				{{ end }}
			</select>
		</div>
		<div class="form-group">
			<label for="content">Contenido (CommonMark)</label>
			<textarea class="form-control" id="content" name="content" rows="16">{{ .Article.Content }}</textarea>
		</div>
		<div class="form-group">
			<label for="image">Imagen (máx. 5 MB)</label>
			{{ if .Article.ImageURL }}
				<p><img src="{{ .Article.ImageURL }}" alt="" style="max-height: 8rem;"></p>
			{{ end }}
			<input class="form-control-file" type="file" id="image" name="image" accept="image/*">
		</div>
		<div class="form-group">
			<label for="status">Estado</label>
			<select class="form-control" id="status" name="status">
				{{ .StatusOptions .Article.Status }}
			</select>
		</div>
		<input type="submit" class="btn btn-primary" value="Guardar">
	</form>`)

type newsFormData struct {
	*Route
	Article   *core.Article
	Sections  []*core.Section
	FormToken string
}

func (data *newsFormData) StatusOptions(current core.Status) template.HTML {
	return statusOptions(current, data.Session.Role().CanPublish())
}

// formImage reads the uploaded image from the multipart form, if any.
func formImage(req *http.Request) (*core.ImageUpload, error) {
	file, header, err := req.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	filename, err := upload.CleanFilename(header.Filename)
	if err != nil {
		return nil, err
	}
	return &core.ImageUpload{
		Filename: filename,
		Src:      file,
	}, nil
}

func createArticle(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	var a = &core.Article{
		Status: core.StatusDraft,
	}

	if req.Method == http.MethodPost {

		req.Body = http.MaxBytesReader(w, req.Body, 2*upload.MaxImageSize)

		if !r.ConsumeFormToken(req.PostFormValue("form_token")) {
			r.SeeOther("/dashboard/reportero") // duplicate submit
			return nil
		}

		a.Title = req.PostFormValue("title")
		a.Subtitle = req.PostFormValue("subtitle")
		a.Content = req.PostFormValue("content")
		a.Category = req.PostFormValue("category")
		a.Status = core.Status(req.PostFormValue("status"))

		image, err := formImage(req)
		if err != nil {
			return err
		}

		created, err := r.db.CreateArticle(r.Session.Identity, core.ArticleDraft{
			Title:    a.Title,
			Subtitle: a.Subtitle,
			Content:  a.Content,
			Category: a.Category,
			Status:   a.Status,
			Image:    image,
		})
		if err == nil {
			r.Success("noticia creada")
			r.SeeOther("/noticia/%s", created.ID)
			return nil
		}
		r.Danger(err) // re-render the form with the entered values
	}

	sections, err := r.Sections()
	if err != nil {
		return err
	}

	return newsFormTmpl.Execute(w, &newsFormData{
		Route:     r,
		Article:   a,
		Sections:  sections,
		FormToken: r.IssueFormToken(),
	})
}

func editArticle(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	a, err := r.db.EditableArticle(r.Session.Profile, params.ByName("id"))
	if err == core.ErrNotFound || err == core.ErrUnauthorized {
		// don't leak foreign drafts through the form
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		req.Body = http.MaxBytesReader(w, req.Body, 2*upload.MaxImageSize)

		if !r.ConsumeFormToken(req.PostFormValue("form_token")) {
			r.SeeOther("/noticia/%s", a.ID)
			return nil
		}

		var title = req.PostFormValue("title")
		var subtitle = req.PostFormValue("subtitle")
		var content = req.PostFormValue("content")
		var category = req.PostFormValue("category")

		image, err := formImage(req)
		if err != nil {
			return err
		}

		err = r.db.UpdateArticle(r.Session.Profile, a.ID, core.ArticlePatch{
			Title:    &title,
			Subtitle: &subtitle,
			Content:  &content,
			Category: &category,
		}, image)
		if err == nil {
			// the status select is part of the form but runs through its own check
			if status := core.Status(req.PostFormValue("status")); status != a.Status {
				if err := r.db.SetArticleStatus(r.Session.Profile, a.ID, status); err != nil {
					r.Danger(err)
				}
			}
			r.Success("noticia guardada")
			r.SeeOther("/noticia/%s", a.ID)
			return nil
		}

		r.Danger(err)
		a.Title = title
		a.Subtitle = subtitle
		a.Content = content
		a.Category = category
	}

	sections, err := r.Sections()
	if err != nil {
		return err
	}

	return newsFormTmpl.Execute(w, &newsFormData{
		Route:     r,
		Article:   a,
		Sections:  sections,
		FormToken: r.IssueFormToken(),
	})
}
