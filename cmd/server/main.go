package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/internal/config"
	"github.com/articulink/admin-dashboard/server"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 10 * time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	sessionRepo, closeRepo, err := openSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	// The parent client's store is never used for requests; every browser
	// session gets its own clone bound to its store.
	client, err := apiclient.New(c.GetAPIBaseURL(), sessions.NewMemoryStore(), apiclient.WithTimeout(c.GetHTTPTimeout()))
	if err != nil {
		return err
	}
	log.Info().Str("api", c.GetAPIBaseURL()).Msg("Using ArticuLink backend")

	handler, err := server.New(c, sessionRepo, client)
	if err != nil {
		return err
	}
	defer handler.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeExpiredSessions(ctx, handler, c.GetMaxSessionAge())

	server := &http.Server{Addr: c.GetPort(), Handler: handler}
	stop := stopSignal()
	defer signal.Stop(stop)
	return serve(server, stop)
}

// openSessionRepo picks the browser session storage from SESSION_DRIVER.
func openSessionRepo(c config.Config) (sessions.Repo, func(), error) {
	driver := c.GetSessionDriver()
	if driver == "memory" {
		log.Warn().Msg("Browser sessions are kept in memory and lost on restart")
		return sessions.NewInMemoryRepo(), func() {}, nil
	}
	if driver == sessions.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.GetSessionDSN()), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create session db directory: %w", err)
		}
	}
	db, err := sessions.OpenDB(driver, c.GetSessionDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("sessions.OpenDB: %w", err)
	}
	log.Info().Str("driver", driver).Msg("Browser sessions stored in database")
	return sessions.NewSQLRepo(db), func() { _ = db.Close() }, nil
}

func purgeExpiredSessions(ctx context.Context, handler *server.Server, maxAge time.Duration) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := handler.PurgeExpired(time.Now().Add(-maxAge)); err != nil {
				log.Err(err).Msg("Failed to purge expired sessions")
			}
		}
	}
}

// serve runs the server until a stop signal arrives or it fails to serve,
// for example because the port is taken.
func serve(server *http.Server, stop <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()
	select {
	case err := <-serveErr:
		return err
	case <-stop:
		return shutdown(server)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe: %w", err)
	}
	return nil
}

func stopSignal() chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
