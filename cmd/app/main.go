// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snap-partner-gateway/internal/config"
	"snap-partner-gateway/internal/infra/adapters/router"
	"snap-partner-gateway/internal/infra/adapters/snap"
	"snap-partner-gateway/internal/infra/logging"
	"snap-partner-gateway/internal/infra/metrics"
	red "snap-partner-gateway/internal/infra/redis"
	"snap-partner-gateway/internal/infra/web"
	"snap-partner-gateway/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Signing core ----
	signer, err := snap.NewSigner(cfg.Partner.PrivateKey)
	if err != nil {
		log.Fatalf("private key: %v", err)
	}
	verifier, err := snap.NewVerifier(cfg.Partner.PartnerPublicKey)
	if err != nil {
		log.Fatalf("partner public key: %v", err)
	}
	composer := snap.NewHeaderComposer(cfg.Partner.ClientKey, cfg.Partner.PartnerID, cfg.Partner.ChannelID)

	// ---- Partner session + dispatcher ----
	sessionHTTP := &http.Client{Timeout: cfg.Partner.Timeout}
	sessions := snap.NewSessionManager(cfg.Partner.BaseURL, cfg.Partner.TokenPath, cfg.Partner.ClientKey, signer, composer, sessionHTTP, logger)
	client, err := snap.NewClient(cfg.Partner.BaseURL, cfg.Partner.Timeout, signer, composer, sessions, logger)
	if err != nil {
		log.Fatalf("partner client: %v", err)
	}
	_ = client // handed to the business layer; this binary only hosts the webhook surface

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	replay := red.NewReplayStore(redisClient)

	// ---- Webhook pipeline ----
	eventRouter := router.NewLogRouter(logger)
	webhookUC := usecase.NewWebhookUseCase(verifier, replay, eventRouter, cfg.Redis.TTL, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Ops.JWTSecret, cfg.Ops.TTL)
	srv := web.NewServer(cfg, webhookUC, sessions, auth, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
