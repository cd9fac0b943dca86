package upload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize is the upper bound for a single uploaded image.
const MaxImageSize = 5 << 20 // 5 MiB

var ErrNotImage = errors.New("file is not an image")
var ErrImageTooLarge = errors.New("image exceeds the 5 MiB limit")

// one Folder for one article
type Folder interface {
	ArticleID() string
	Delete(filename string) error
	Files() ([]os.FileInfo, error)
	HasFile(filename string) (bool, error)
	Upload(filename string, src io.Reader) error
}

func CleanFilename(filename string) (string, error) {
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)
	if strings.Contains(filename, "/") || strings.Contains(filename, `\`) {
		return "", errors.New("filename contains a slash")
	}
	if filename == "" {
		return "", errors.New("filename is empty")
	}
	return filename, nil
}

// CheckImage sniffs the content type from the head of the file and rejects
// anything which is not an image. It re-validates what the upload form
// already promised, the form check alone is not an enforcement point.
func CheckImage(head []byte, size int64) error {
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return ErrNotImage
	}
	return nil
}

// Creates an HMAC of a resized uploaded file. Store implementations can use it to prevent DoS attacks on image resizing.
func HMAC(secret []byte, articleID string, filename string, w int, h int, ts int64) string {

	buf := make([]byte, 24)
	binary.PutVarint(buf[0:], ts)
	binary.PutVarint(buf[8:], int64(w))
	binary.PutVarint(buf[16:], int64(h))
	buf = append(buf, []byte(articleID)...)
	buf = append(buf, 0)
	buf = append(buf, []byte(filename)...)

	hash := hmac.New(sha256.New, secret)
	hash.Write(buf)
	return base64.URLEncoding.EncodeToString(hash.Sum(nil))
}
