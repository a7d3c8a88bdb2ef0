package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff"
	"github.com/sentriz/gormstore"

	"go.fyyur.app/fyyur"
	"go.fyyur.app/fyyur/db"
	"go.fyyur.app/fyyur/metrics"
	"go.fyyur.app/fyyur/server/ctrlbase"
	"go.fyyur.app/fyyur/server/ctrlweb"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
		os.Exit(1)
	}

	set := flag.NewFlagSet(fyyur.Name, flag.ExitOnError)
	confListenAddr := set.String("listen-addr", "0.0.0.0:5000", "listen address (optional)")
	confDBDriver := set.String("db-driver", db.DriverSQLite, "database driver, sqlite3 or postgres (optional)")
	confDBDSN := set.String("db-dsn", "fyyur.db", "database path for sqlite3, or connection string for postgres (optional)")
	confProxyPrefix := set.String("proxy-prefix", "", "url path prefix to use if behind proxy. eg '/fyyur' (optional)")
	confHTTPLog := set.Bool("http-log", true, "http request logging (optional)")
	confLogLevel := set.String("log-level", "info", "one of debug, info, warn, error (optional)")
	confMetricsEnabled := set.Bool("metrics-enabled", false, "whether to serve prometheus metrics at /metrics (optional)")
	confShowVersion := set.Bool("version", false, "show fyyur version")
	_ = set.String("config-path", "", "path to config (optional)")

	if err := ff.Parse(set, os.Args[1:],
		ff.WithConfigFileFlag("config-path"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix(fyyur.NameUpper),
	); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing args: %v\n", err)
		os.Exit(1)
	}

	if *confShowVersion {
		fmt.Printf("v%s\n", fyyur.Version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*confLogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", *confLogLevel, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC1123Z,
	})))

	if err := serve(serveOptions{
		listenAddr:     *confListenAddr,
		dbDriver:       *confDBDriver,
		dbDSN:          *confDBDSN,
		proxyPrefix:    *confProxyPrefix,
		httpLog:        *confHTTPLog,
		metricsEnabled: *confMetricsEnabled,
		flags:          set,
	}); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type serveOptions struct {
	listenAddr     string
	dbDriver       string
	dbDSN          string
	proxyPrefix    string
	httpLog        bool
	metricsEnabled bool
	flags          *flag.FlagSet
}

func serve(opts serveOptions) error {
	dbOpts := db.DefaultOptions()
	if opts.dbDriver != db.DriverSQLite {
		dbOpts = nil
	}
	dbc, err := db.New(opts.dbDriver, opts.dbDSN, dbOpts)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer dbc.Close()

	if err := dbc.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	proxyPrefixExpr := regexp.MustCompile(`^\/*(.*?)\/*$`)
	proxyPrefix := proxyPrefixExpr.ReplaceAllString(opts.proxyPrefix, `/$1`)

	slog.Info("starting fyyur", "version", fyyur.Version)
	opts.flags.VisitAll(func(f *flag.Flag) {
		slog.Info("provided config", "name", f.Name, "value", strings.ReplaceAll(f.Value.String(), "\n", ""))
	})

	sessKey, err := dbc.GetSecret(db.SessionKey)
	if err != nil {
		return fmt.Errorf("getting session key: %w", err)
	}
	if len(sessKey) == 0 {
		sessKey = securecookie.GenerateRandomKey(32)
		if err := dbc.SetSecret(db.SessionKey, sessKey); err != nil {
			return fmt.Errorf("setting session key: %w", err)
		}
	}
	sessDB := gormstore.New(dbc.DB, sessKey)
	sessDB.SessionOpts.HttpOnly = true
	sessDB.SessionOpts.SameSite = http.SameSiteLaxMode
	sessDB.SessionOpts.Path = proxyPrefix

	ctrlBase := &ctrlbase.Controller{
		DB:          dbc,
		ProxyPrefix: proxyPrefix,
	}
	if opts.metricsEnabled {
		ctrlBase.Metrics = metrics.New(dbc.Stats)
	}
	ctrlWeb, err := ctrlweb.New(ctrlBase, sessDB)
	if err != nil {
		return fmt.Errorf("creating web controller: %w", err)
	}

	mux := mux.NewRouter()
	ctrlbase.AddRoutes(ctrlBase, mux, opts.httpLog)
	ctrlweb.AddRoutes(ctrlWeb, mux)

	server := &http.Server{
		Addr:              opts.listenAddr,
		Handler:           handlers.HTTPMethodOverrideHandler(mux),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      80 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		slog.Info("starting job", "job", "http", "addr", opts.listenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(_ error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutting down http server", "err", err)
		}
	})

	cleanDone := make(chan struct{})
	g.Add(func() error {
		slog.Info("starting job", "job", "session clean")
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessDB.Cleanup()
			case <-cleanDone:
				return nil
			}
		}
	}, func(_ error) {
		close(cleanDone)
	})

	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var sigErr run.SignalError
		if errors.As(err, &sigErr) {
			slog.Info("stopping", "signal", sigErr.Signal)
			return nil
		}
		return fmt.Errorf("in job: %w", err)
	}
	return nil
}
