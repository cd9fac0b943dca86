package upload

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a minimal valid PNG header, enough for content type sniffing
var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage(pngHead, 0))
	assert.NoError(t, CheckImage(pngHead, MaxImageSize))
	assert.Equal(t, ErrImageTooLarge, CheckImage(pngHead, MaxImageSize+1))
	assert.Equal(t, ErrNotImage, CheckImage([]byte("<html><body>"), 0))
	assert.Equal(t, ErrNotImage, CheckImage([]byte("%PDF-1.4"), 0))
}

func TestCleanFilename(t *testing.T) {
	got, err := CleanFilename("foto.jpg")
	require.NoError(t, err)
	assert.Equal(t, "foto.jpg", got)

	got, err = CleanFilename("/etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "passwd", got, "path components are stripped")

	_, err = CleanFilename("   ")
	assert.Error(t, err)
}

func TestParseURL(t *testing.T) {

	u, err := url.Parse("/5cb4/foto.jpg?w=400&h=300&ts=1700000000&sig=abc")
	require.NoError(t, err)

	articleID, filename, resize, w, h, ts, sig := ParseURL(u)
	assert.Equal(t, "5cb4", articleID)
	assert.Equal(t, "foto.jpg", filename)
	assert.True(t, resize)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
	assert.Equal(t, int64(1700000000), ts)
	assert.Equal(t, []byte("abc"), sig)

	// no resize parameters
	u, _ = url.Parse("/5cb4/foto.jpg")
	_, _, resize, _, _, _, _ = ParseURL(u)
	assert.False(t, resize)

	// resizing is for jpeg files only
	u, _ = url.Parse("/5cb4/foto.png?w=400")
	_, _, resize, _, _, _, _ = ParseURL(u)
	assert.False(t, resize)

	// no article id
	u, _ = url.Parse("/foto.jpg")
	articleID, _, _, _, _, _, _ = ParseURL(u)
	assert.Empty(t, articleID)
}

func TestHMACDiffers(t *testing.T) {
	var secret = []byte("secret")
	var a = HMAC(secret, "art", "foto.jpg", 400, 300, 1700000000)

	assert.Equal(t, a, HMAC(secret, "art", "foto.jpg", 400, 300, 1700000000))
	assert.NotEqual(t, a, HMAC(secret, "art", "foto.jpg", 401, 300, 1700000000))
	assert.NotEqual(t, a, HMAC(secret, "art", "other.jpg", 400, 300, 1700000000))
	assert.NotEqual(t, a, HMAC([]byte("other"), "art", "foto.jpg", 400, 300, 1700000000))
}
