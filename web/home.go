package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jdxmedia/noticias/core"
	"github.com/jdxmedia/noticias/util"
	"github.com/julienschmidt/httprouter"
)

var homeTmpl = tmpl(`<h1>Últimas noticias</h1>

	{{ if not .Articles }}
		<p class="text-muted">Todavía no hay noticias publicadas.</p>
	{{ end }}

	<div class="row">
		{{ range .Articles }}
			<div class="col-md-4 mb-4">
				<div class="card h-100">
					{{ if .ImagePath }}
						<img class="card-img-top" src="{{ $.Thumbnail .ImagePath 400 300 }}" alt="">
					{{ end }}
					<div class="card-body">
						<h5 class="card-title"><a href="/noticia/{{ .ID }}">{{ .Title }}</a></h5>
						{{ with .Subtitle }}<h6 class="card-subtitle mb-2 text-muted">{{ . }}</h6>{{ end }}
						<p class="card-text">{{ $.Teaser . }}</p>
					</div>
					<div class="card-footer text-muted">
						{{ with .Category }}{{ . }} &middot; {{ end }}{{ $.FormatDateTime .TsCreated }}
					</div>
				</div>
			</div>
		{{ end }}
	</div>`)

type homeData struct {
	*Route
	Articles []*core.Article
}

// Teaser renders the article content and extracts a short plain-text excerpt.
func (data *homeData) Teaser(a *core.Article) string {
	return util.Excerpt(string(renderContent(a.Content)), 160)
}

// Thumbnail builds the image url with resize parameters and a fresh
// timestamped signature, the form the upload store accepts. Only jpeg files
// are resized, everything else is served as stored.
func (r *Route) Thumbnail(imagePath string, w, h int) string {

	articleID, filename, ok := strings.Cut(imagePath, "/")
	if !ok {
		return ""
	}

	var url = r.db.Uploads.PublicURL(articleID, filename)

	if !strings.HasSuffix(filename, ".jpg") && !strings.HasSuffix(filename, ".jpeg") {
		return url
	}

	var ts = time.Now().Unix()
	return fmt.Sprintf("%s?w=%d&h=%d&ts=%d&sig=%s", url, w, h, ts, r.db.Uploads.HMAC(articleID, filename, w, h, ts))
}

func home(w http.ResponseWriter, req *http.Request, r *Route, params httprouter.Params) error {

	articles, err := r.db.GetAllArticles(core.StatusPublished)
	if err != nil {
		return err
	}

	return homeTmpl.Execute(w, &homeData{
		Route:    r,
		Articles: articles,
	})
}
