package filestore

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jdxmedia/noticias/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDRtestdata")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return &Store{
		CacheDir:   t.TempDir(),
		UploadDir:  t.TempDir(),
		HMACSecret: []byte("test"),
		Resizer:    NoResizer{},
	}
}

func TestUploadAndDelete(t *testing.T) {
	store := newTestStore(t)
	folder := store.Folder("art1")

	require.NoError(t, folder.Upload("foto.png", bytes.NewReader(pngData)))

	has, err := folder.HasFile("foto.png")
	require.NoError(t, err)
	assert.True(t, has)

	files, err := folder.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "foto.png", files[0].Name())
	assert.Equal(t, int64(len(pngData)), files[0].Size())

	require.NoError(t, folder.Delete("foto.png"))

	has, err = folder.HasFile("foto.png")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestUploadRejectsNonImages(t *testing.T) {
	store := newTestStore(t)
	folder := store.Folder("art1")

	err := folder.Upload("nota.html", strings.NewReader("<html><body>hola</body></html>"))
	assert.Equal(t, upload.ErrNotImage, err)

	has, _ := folder.HasFile("nota.html")
	assert.False(t, has, "rejected files leave no trace")
}

func TestUploadRejectsOversizedImages(t *testing.T) {
	store := newTestStore(t)
	folder := store.Folder("art1")

	var big = append(append([]byte{}, pngData...), make([]byte, upload.MaxImageSize)...)

	err := folder.Upload("grande.png", bytes.NewReader(big))
	assert.Equal(t, upload.ErrImageTooLarge, err)

	has, _ := folder.HasFile("grande.png")
	assert.False(t, has, "the partial file is removed")
}

func TestUploadRejectsDuplicates(t *testing.T) {
	store := newTestStore(t)
	folder := store.Folder("art1")

	require.NoError(t, folder.Upload("foto.png", bytes.NewReader(pngData)))
	assert.Error(t, folder.Upload("foto.png", bytes.NewReader(pngData)))
}

func TestFoldersAreIsolated(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Folder("art1").Upload("foto.png", bytes.NewReader(pngData)))

	has, err := store.Folder("art2").HasFile("foto.png")
	require.NoError(t, err)
	assert.False(t, has)
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))
	return buf.Bytes()
}

func serveGet(store *Store, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServeResizeRequiresSignature(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Folder("art1").Upload("foto.jpg", bytes.NewReader(testJPEG(t))))

	assert.Equal(t, http.StatusOK, serveGet(store, "/art1/foto.jpg").Code, "originals are public")
	assert.Equal(t, http.StatusNotFound, serveGet(store, "/art1/foto.jpg?w=400&h=300").Code, "unsigned resize is refused")

	ts := time.Now().Unix()
	signed := fmt.Sprintf("/art1/foto.jpg?w=400&h=300&ts=%d&sig=%s", ts, store.HMAC("art1", "foto.jpg", 400, 300, ts))
	assert.Equal(t, http.StatusOK, serveGet(store, signed).Code)

	stale := ts - 2*86400
	expired := fmt.Sprintf("/art1/foto.jpg?w=400&h=300&ts=%d&sig=%s", stale, store.HMAC("art1", "foto.jpg", 400, 300, stale))
	assert.Equal(t, http.StatusNotFound, serveGet(store, expired).Code, "signatures expire after a day")
}

func TestPublicURL(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "/upload/art1/foto.png", store.PublicURL("art1", "foto.png"))
}
