// Package server wires configuration, chain clients and services into the
// HTTP router and the background sweep.
package server

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"vaultflow/internal/chain"
	"vaultflow/internal/config"
	"vaultflow/internal/logger"
	"vaultflow/internal/pricing"
	"vaultflow/internal/services"
)

// Gateway bundles the outbound collaborators.
type Gateway struct {
	Builder chain.Builder
	Indexer chain.Indexer
	Prices  pricing.PriceService

	closers []func() error
}

// NewGateway builds the builder, indexer and price clients described by cfg.
// Prices are cached in redis when REDIS_ADDR is set and in memory otherwise.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	gw := &Gateway{
		Builder: chain.NewBuilderClient(cfg.BuilderURL, cfg.BuilderAPIKey, httpClient),
		Indexer: chain.NewIndexerClient(cfg.IndexerURL, cfg.IndexerProjectID, httpClient),
	}

	market := pricing.NewMarket(
		pricing.NewCoinGeckoClient(cfg.CoinGeckoURL, httpClient),
		pricing.NewTokenPriceClient(cfg.TokenPriceURL, cfg.TokenPriceAPIKey, httpClient),
	)
	var cache pricing.Cache = pricing.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc, err := pricing.NewRedisCache(cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connecting price cache: %w", err)
		}
		gw.closers = append(gw.closers, rc.Close)
		cache = rc
	}
	gw.Prices = pricing.NewCached(market, cache, cfg.PriceCacheTTL)
	return gw, nil
}

// Close releases connections held by the gateway.
func (g *Gateway) Close() error {
	var first error
	for _, c := range g.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// App holds every service the binaries need.
type App struct {
	Users        services.UserServicer
	Audit        services.AuditServicer
	Transactions services.TransactionServicer
	Valuation    services.ValuationServicer
	Composer     services.ComposerServicer
	Webhooks     services.WebhookServicer
	Claims       services.ClaimServicer
	Distribution services.DistributionServicer
}

// NewApp constructs the services on top of db and gw. The admin signing key
// is parsed once here.
func NewApp(db *gorm.DB, cfg *config.Config, gw *Gateway) (*App, error) {
	signer, err := chain.NewEd25519Signer(cfg.AdminSKeyHex)
	if err != nil {
		return nil, fmt.Errorf("loading admin key: %w", err)
	}
	logger.Named("chain").Infow("admin key loaded", "key_hash", signer.KeyHash())

	users := services.NewUserService(db)
	audit := services.NewAuditService(db)
	txSvc := services.NewTransactionService(db, gw.Indexer, gw.Prices, services.TransactionOptions{
		PollInterval: cfg.WaitPollInterval,
		StuckAfter:   cfg.StuckAfter,
	})

	return &App{
		Users:        users,
		Audit:        audit,
		Transactions: txSvc,
		Valuation:    services.NewValuationService(db, gw.Prices),
		Composer: services.NewComposerService(db, gw.Builder, gw.Indexer, signer, txSvc, users, audit, services.ComposerConfig{
			AdminAddress:        cfg.AdminAddress,
			ProtocolFeeLovelace: cfg.ProtocolFeeLovelace,
			MinReserveLovelace:  cfg.MinReserveLovelace,
			MaxContribUTXOs:     cfg.MaxContribUTXOs,
			MinUTXOLovelace:     cfg.MinUTXOLovelace,
			ValidityWindow:      cfg.TxValidityWindow,
			ReceiptAssetName:    cfg.ReceiptAssetName,
		}),
		Webhooks:     services.NewWebhookService(txSvc, cfg.WebhookSecret, cfg.WebhookTolerance, cfg.ReceiptAssetName),
		Claims:       services.NewClaimService(db),
		Distribution: services.NewDistributionService(db, gw.Prices, audit),
	}, nil
}
