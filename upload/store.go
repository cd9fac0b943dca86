package upload

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// A Store keeps one Folder of uploaded images per article.
type Store interface {
	Folder(articleID string) Folder
	HMAC(articleID string, filename string, w int, h int, ts int64) string
	PublicURL(articleID string, filename string) string
	ServeHTTP(writer http.ResponseWriter, req *http.Request) // implementations will use HMAC and ParseURL
}

// ParseURL parses an url like "5cb4/foo.jpg" or "5cb4/foo.jpg?w=400&h=200".
// The directory part is the article id.
func ParseURL(u *url.URL) (articleID string, filename string, resize bool, w, h int, ts int64, sig []byte) {

	dir, filename := path.Split(u.Path)

	articleID = strings.Trim(dir, "/")
	filename = strings.TrimSpace(filename)
	if articleID == "" || filename == "" {
		return "", "", false, 0, 0, 0, nil
	}

	// search for query keys w and h

	if strings.HasSuffix(filename, ".jpg") || strings.HasSuffix(filename, ".jpeg") {
		w, _ = strconv.Atoi(u.Query().Get("w"))
		h, _ = strconv.Atoi(u.Query().Get("h"))
		resize = w != 0 || h != 0
	}

	// other parameters

	ts, _ = strconv.ParseInt(u.Query().Get("ts"), 10, 64)
	sig = []byte(u.Query().Get("sig"))

	return
}
