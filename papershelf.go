package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/lwestrich/papershelf/backend"
	"github.com/lwestrich/papershelf/core"
	"github.com/lwestrich/papershelf/filestore"
	"github.com/lwestrich/papershelf/session"
	"github.com/lwestrich/papershelf/sqldb"
	"github.com/lwestrich/papershelf/util"
	"github.com/lwestrich/papershelf/web"
)

// envConfig holds the secrets and switches that don't belong on the
// command line.
type envConfig struct {
	SecretKey    string `env:"PAPERSHELF_SECRET_KEY"`
	CookieSecure bool   `env:"PAPERSHELF_COOKIE_SECURE" envDefault:"false"`
}

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	// optional config file provides flag defaults, flags override

	fileDefaults, err := util.Ini("papershelf.ini")
	if err != nil {
		fileDefaults = map[string]string{}
	}

	withDefault := func(key, fallback string) string {
		if value, ok := fileDefaults[key]; ok {
			return value
		}
		return fallback
	}

	var dbArg string // is in both FlagSets

	// default FlagSet

	flag.StringVar(&dbArg, "db", withDefault("db", "sqlite3:papershelf.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"), "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", withDefault("listen", "127.0.0.1:8080"), "serve HTTP content at this `ip:port`")
	var uploadDir = flag.String("uploads", withDefault("uploads", "./uploads"), "store uploaded documents in this `directory`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", withDefault("db", "sqlite3:papershelf.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"), "sql database url, see github.com/xo/dburl") // copied from above
	var initUser = initFlags.String("user", "", "create an admin user with this `mail` address")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// environment

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Printf("could not parse environment: %v", err)
		return
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// assemble stuff

	db := &core.CoreDB{
		AdminDB:   sqldb.NewAdminDB(sqlDB),
		ArticleDB: sqldb.NewArticleDB(sqlDB),
		Blobs:     &filestore.Store{Dir: *uploadDir},
	}

	// init

	if initFlags.Parsed() {
		if *initUser != "" {
			insertAdmin(db, *initUser)
		}
		return
	}

	// serving requires the signing secret, init does not

	if cfg.SecretKey == "" {
		log.Println("PAPERSHELF_SECRET_KEY is not set")
		return
	}

	db.Sessions, err = session.NewCodec(cfg.SecretKey)
	if err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	listen(db, *listenAddr, cfg.CookieSecure)
}

func insertAdmin(db *core.CoreDB, mail string) {

	fmt.Printf("password for admin %s: ", mail)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return
	}

	if _, err := db.InsertAdmin(mail, string(pass1)); err != nil {
		log.Printf("error creating admin %s: %v", mail, err)
		return
	}
}

func listen(db *core.CoreDB, addr string, cookieSecure bool) {

	mux := http.NewServeMux()
	util.HandlePrefix(mux, "/admin", backend.NewRouter(db, "/admin/", cookieSecure))
	mux.Handle("/", web.NewRouter(db))

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
