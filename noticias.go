package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jdxmedia/noticias/core"
	"github.com/jdxmedia/noticias/sqldb"
	"github.com/jdxmedia/noticias/sqldb/mysql"
	"github.com/jdxmedia/noticias/sqldb/sqlite3"
	"github.com/jdxmedia/noticias/util"
	"github.com/jdxmedia/noticias/web"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xo/dburl"
	"golang.org/x/term"
)

const defaultDB = "sqlite3:noticias.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

func main() {

	godotenv.Load() // a missing .env file is fine

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var dbArg string // is in both FlagSets

	// default FlagSet

	// A reverse proxy must not strip the prefix. With nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", envOr("NOTICIAS_BASE", ""), "strip off this `prefix` from every HTTP request and prepend it to every link")
	flag.StringVar(&dbArg, "db", envOr("NOTICIAS_DB", defaultDB), "sql database url, see github.com/xo/dburl")
	var hmacKey = flag.String("hmac", envOr("NOTICIAS_HMAC", ""), "use this secret HMAC `key` for serving resized images")
	var listenAddr = flag.String("listen", envOr("NOTICIAS_LISTEN", "127.0.0.1:8080"), "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", envOr("NOTICIAS_DB", defaultDB), "sql database url, see github.com/xo/dburl")
	var initEmail = initFlags.String("admin", "", "create an admin account with this `email` address, prompting for a password")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// optional ini file overrides built-in defaults but not flags or env

	if cfg, err := util.Ini("noticias.ini"); err == nil {
		if dbArg == defaultDB {
			if v, ok := cfg["db"]; ok {
				dbArg = v
			}
		}
		if *hmacKey == "" {
			if v, ok := cfg["hmac"]; ok {
				*hmacKey = v
			}
		}
	} else {
		log.Warn().Err(err).Msg("error reading config file")
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Error().Err(err).Msg("could not parse database url")
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Error().Err(err).Msg("could not open sql database")
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Error().Err(err).Msg("could not ping sql database")
		return
	}

	log.Info().Str("url", dbURL.String()).Msg("using database")

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Error().Str("driver", dbURL.Driver).Msg("unknown database backend")
		return
	}

	db := &core.CoreDB{}
	db.IdentityDB = sqldb.NewIdentityDB(sqlDB)
	db.NewsDB = sqldb.NewNewsDB(sqlDB)
	db.ProfileDB = sqldb.NewProfileDB(sqlDB)
	db.SectionDB = sqldb.NewSectionDB(sqlDB)
	db.HMACSecret = *hmacKey
	db.SqlDB = sqlDB

	if err := db.Init(sessionStore, *base); err != nil {
		log.Error().Err(err).Msg("error initializing") // log.Fatal would not run deferred functions
		return
	}

	defer func() {
		log.Info().Msg("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		if *initEmail != "" {
			insertAdmin(db, *initEmail)
		}
		return
	}

	listen(db, *listenAddr, *base)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// insertAdmin registers an account and promotes it in one go. This is the
// bootstrap path, role assignment is otherwise admin-only.
func insertAdmin(db *core.CoreDB, email string) {

	fmt.Printf("password for %s: ", email)
	pass1, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Error().Err(err).Msg("error reading password")
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Error().Err(err).Msg("error reading password")
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Error().Msg("passwords don't match")
		return
	}

	identity, err := db.Register(email, email, string(pass1))
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("error creating account")
		return
	}

	if err := db.ProfileDB.SetRole(identity.ID(), core.RoleAdmin); err != nil {
		log.Error().Err(err).Msg("error assigning admin role")
		return
	}

	log.Info().Str("email", email).Msg("admin account created")
}

func listen(db *core.CoreDB, addr string, base string) {

	var mux = http.NewServeMux()
	util.HandlePrefix(mux, base+"/static", http.FileServer(http.Dir("static")))
	util.HandlePrefix(mux, base+"/upload", db.Uploads)
	if base == "" {
		mux.Handle("/", web.NewRouter(db, base))
	} else {
		util.HandlePrefix(mux, base, web.NewRouter(db, base))
	}

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error().Err(err).Msg("error listening")
		return
	}

	log.Info().Str("addr", addr).Msg("listening")

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Error().Err(err).Msg("error serving")
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM)
	<-sigintChannel

	log.Info().Msg("shutting down")
	httpSrv.Close()
}
