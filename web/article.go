package web

import (
	"html/template"
	"net/http"

	"github.com/jdxmedia/noticias/core"
	"github.com/julienschmidt/httprouter"
	"gitlab.com/golang-commonmark/markdown"
)

var commonMarkParser *markdown.Markdown = markdown.New(markdown.HTML(true), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

// renderContent translates the stored markup to HTML.
func renderContent(content string) template.HTML {
	return template.HTML(commonMarkParser.RenderToString([]byte(content)))
}

var articleTmpl = tmpl(`<article>
	<h1>{{ .Article.Title }}</h1>
	{{ with .Article.Subtitle }}<p class="lead">{{ . }}</p>{{ end }}
	<p class="text-muted">
		{{ with .Article.Category }}{{ . }} &middot; {{ end }}{{ .FormatDateTime .Article.TsCreated }}
		{{ if ne .Article.Status "Published" }} &middot; <span class="badge badge-warning">{{ .Article.Status }}</span>{{ end }}
	</p>
	{{ if .Article.ImageURL }}
		<p><img class="img-fluid" src="{{ .Article.ImageURL }}" alt=""></p>
	{{ end }}
	{{ .Content }}
</article>`)

type articleData struct {
	*Route
	Article *core.Article
	Content template.HTML
}

func article(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	a, err := r.db.GetArticle(params.ByName("id"))
	if err == core.ErrNotFound {
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		return err
	}

	// unpublished articles are visible to their author and to editors only

	if a.Status != core.StatusPublished {
		var p = r.Session.Profile
		if p == nil || (p.ID() != a.Author && !p.Role().CanPublish()) {
			http.NotFound(w, req)
			return nil
		}
	}

	return articleTmpl.Execute(w, &articleData{
		Route:   r,
		Article: a,
		Content: renderContent(a.Content),
	})
}
