package core

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jdxmedia/noticias/filestore"
	"github.com/jdxmedia/noticias/upload"
	"github.com/jdxmedia/noticias/util"
	"github.com/rs/zerolog/log"
)

type CoreDB struct {
	IdentityDB
	NewsDB
	ProfileDB
	SectionDB
	SessionManager *scs.SessionManager
	Uploads        upload.Store

	HMACSecret string  // exported because main sets it
	SqlDB      *sql.DB // kept for callers which need transactions
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	if c.HMACSecret == "" {
		var err error
		c.HMACSecret, err = util.RandomString32()
		if err == nil {
			log.Info().Msg("generating random HMAC secret")
		} else {
			return fmt.Errorf("error generating random HMAC secret: %v", err)
		}
	}

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"         // 'The default value is "/". Passing the empty string "" will result in it being set to the path that the cookie was issued from.'
	c.SessionManager.Cookie.Persist = false                 // Don't store cookie across browser sessions. Required for GDPR cookie consent exemption criterion B.
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	if c.Uploads == nil {
		resizer := filestore.FindResizer()
		log.Info().Str("resizer", resizer.Name()).Msg("using JPEG resizer")
		c.Uploads = &filestore.Store{
			CacheDir:   "./cache",
			UploadDir:  "./uploads",
			HMACSecret: []byte(c.HMACSecret),
			Resizer:    resizer,
		}
	}

	return nil
}
