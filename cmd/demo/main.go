// File: cmd/demo/main.go
// Fires one signed balance-inquiry call against the partner sandbox so
// key material and credentials can be smoke-tested from the command line.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"snap-partner-gateway/internal/config"
	"snap-partner-gateway/internal/domain/ports/adapter"
	"snap-partner-gateway/internal/infra/adapters/snap"
	"snap-partner-gateway/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	signer, err := snap.NewSigner(cfg.Partner.PrivateKey)
	if err != nil {
		log.Fatalf("private key: %v", err)
	}
	composer := snap.NewHeaderComposer(cfg.Partner.ClientKey, cfg.Partner.PartnerID, cfg.Partner.ChannelID)
	sessions := snap.NewSessionManager(cfg.Partner.BaseURL, cfg.Partner.TokenPath, cfg.Partner.ClientKey, signer, composer, &http.Client{Timeout: cfg.Partner.Timeout}, logger)
	client, err := snap.NewClient(cfg.Partner.BaseURL, cfg.Partner.Timeout, signer, composer, sessions, logger)
	if err != nil {
		log.Fatalf("partner client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resp, err := client.Do(ctx, adapter.PartnerCall{
		Method: http.MethodPost,
		Path:   "/v1.0/balance-inquiry.htm",
		Body:   []byte(`{"balanceTypes":["BALANCE"],"additionalInfo":{}}`),
		Bearer: true,
	})
	if err != nil {
		log.Fatalf("balance inquiry: %v", err)
	}
	log.Printf("balance inquiry ok: code=%s message=%s body=%s", resp.ResponseCode, resp.ResponseMessage, resp.Body)
}
