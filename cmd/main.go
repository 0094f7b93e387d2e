package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpctx "github.com/ivolkov/secrethold/internal/api/http/context"
	"github.com/ivolkov/secrethold/internal/api/http/router"
	httpServer "github.com/ivolkov/secrethold/internal/api/http/server"
	"github.com/ivolkov/secrethold/internal/config"
	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
	"github.com/ivolkov/secrethold/internal/oauth"
	"github.com/ivolkov/secrethold/internal/password"
	"github.com/ivolkov/secrethold/internal/repository/postgres"
	"github.com/ivolkov/secrethold/internal/server"
	"github.com/ivolkov/secrethold/internal/service"
	"github.com/ivolkov/secrethold/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	stateRepo := postgres.NewOAuthStateRepository(db)

	tokenManager := token.NewJWT(cfg.Session.Secret)
	hasher := password.NewHasher(cfg.Session.PasswordHashCost)

	authService := service.NewAuth(accountRepo, hasher, logger)
	sessionService := service.NewSession(tokenManager, sessionRepo, cfg.Session.TTL, logger)
	secretService := service.NewSecret(accountRepo, logger)

	oauthClient := oauth.NewClient(map[string]oauth.Provider{
		"google": {
			Name:         "google",
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			AuthURL:      cfg.Google.AuthURL,
			TokenURL:     cfg.Google.TokenURL,
			ProfileURL:   cfg.Google.ProfileURL,
			RedirectURL:  cfg.HTTP.BaseURL + "/auth/google/callback",
			Scopes:       cfg.Google.Scopes,
		},
	}, stateRepo, logger)

	ctxMgr := httpctx.NewManager()

	r := router.New(authService, sessionService, secretService, oauthClient, ctxMgr, cfg.Session.CookieSecure, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
