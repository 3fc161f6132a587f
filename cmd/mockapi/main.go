package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/articulink/admin-dashboard/internal/config"
	"github.com/articulink/admin-dashboard/mockapi"
	"github.com/articulink/admin-dashboard/token"
	fakeuserrepo "github.com/articulink/admin-dashboard/users/repofake"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("mock api stopped")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.NewMockAPI()
	displayAppname(c.GetAppName() + " API")

	signer, err := newSigner(c.GetSecretKey())
	if err != nil {
		return err
	}
	issuer, err := token.NewIssuer(signer,
		token.WithAccessTokenExpiry(c.GetAccessTokenExpiry()),
		token.WithRefreshTokenExpiry(c.GetRefreshTokenExpiry()),
	)
	if err != nil {
		return err
	}

	repo := fakeuserrepo.NewFakeUserRepo()
	if err := mockapi.Seed(repo, c.GetAdminEmail(), c.GetAdminPassword(), c.GetDemoData()); err != nil {
		return fmt.Errorf("mockapi.Seed: %w", err)
	}
	log.Info().Str("email", c.GetAdminEmail()).Msg("Seeded admin account")

	api := mockapi.New(repo, issuer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go api.RunAutoReactivation(ctx, c.GetReactivationInterval())

	server := &http.Server{Addr: c.GetMockPort(), Handler: api}
	stop := stopSignal()
	defer signal.Stop(stop)
	return serve(server, stop)
}

func newSigner(secret string) (token.Signer, error) {
	if secret != "" {
		return token.NewHMACSigner(secret), nil
	}
	log.Warn().Msg("SECRET_KEY not set, tokens will not survive a restart")
	signer, err := token.NewRandomHMACSigner()
	if err != nil {
		return nil, fmt.Errorf("token.NewRandomHMACSigner: %w", err)
	}
	return signer, nil
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
	log.Info().Str("addr", server.Addr).Msg("Mock API listening")
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
