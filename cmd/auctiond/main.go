package main

import (
	"fmt"
	"log"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/assets"
	"github.com/xueqianLu/auctionhouse/internal/config"
	"github.com/xueqianLu/auctionhouse/internal/engine"
	"github.com/xueqianLu/auctionhouse/internal/events"
	"github.com/xueqianLu/auctionhouse/internal/handler"
	"github.com/xueqianLu/auctionhouse/internal/ledger"
	"github.com/xueqianLu/auctionhouse/internal/metrics"
	"github.com/xueqianLu/auctionhouse/internal/middleware"
	"github.com/xueqianLu/auctionhouse/internal/server"
	"github.com/xueqianLu/auctionhouse/pkg/typeddata"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if !common.IsHexAddress(cfg.Domain.InstanceAddress) {
		log.Fatalf("Invalid domain.instance_address: %s", cfg.Domain.InstanceAddress)
	}

	// Initialize components
	values := ledger.NewLedger()
	registry := assets.NewRegistry()
	eventLog := events.NewLog()

	eng := engine.New(engine.Config{
		Domain: typeddata.Domain{
			Name:              cfg.Domain.Name,
			Version:           cfg.Domain.Version,
			ChainID:           new(big.Int).SetUint64(cfg.Domain.ChainID),
			VerifyingContract: common.HexToAddress(cfg.Domain.InstanceAddress),
		},
		MaxDuration: cfg.Auction.MaxDuration,
	}, values, registry, eventLog, logger)

	if err := applyGenesis(cfg.Genesis, eng); err != nil {
		log.Fatalf("Failed to apply genesis state: %v", err)
	}

	metrics.RegisterEngineGauges(
		func() float64 { return float64(eng.ActiveAuctionCount()) },
		bigGauge(eng.EscrowBalance),
		bigGauge(eng.PendingTotal),
		func() float64 { return float64(eventLog.Count()) },
	)

	// Setup routes
	mux := http.NewServeMux()
	route := func(method, path string, h http.Handler) {
		mux.Handle(method+" "+path, metrics.Instrument(path, h))
	}

	route("GET", "/health", handler.NewHealthHandler())
	route("GET", "/v1/domain", handler.NewDomainHandler(eng))

	route("POST", "/v1/value/transfer", handler.NewTransferValueHandler(eng))
	route("POST", "/v1/value/approve", handler.NewApproveValueHandler(eng))
	route("POST", "/v1/assets/mint", handler.NewMintAssetHandler(eng))
	route("POST", "/v1/assets/transfer", handler.NewTransferAssetHandler(eng))
	route("POST", "/v1/assets/approve", handler.NewApproveAssetHandler(eng))
	route("GET", "/v1/assets/{id}", handler.NewGetAssetHandler(eng))

	route("POST", "/v1/auctions", handler.NewCreateAuctionHandler(eng))
	route("GET", "/v1/auctions", handler.NewListAuctionsHandler(eng))
	route("GET", "/v1/auctions/{id}", handler.NewGetAuctionHandler(eng))
	route("POST", "/v1/auctions/{id}/bids", handler.NewPlaceBidHandler(eng))
	route("POST", "/v1/auctions/{id}/finalize", handler.NewFinalizeAuctionHandler(eng))
	route("POST", "/v1/withdrawals", handler.NewWithdrawHandler(eng))

	route("GET", "/v1/accounts/{address}", handler.NewAccountHandler(eng))
	route("GET", "/v1/events", handler.NewEventsHandler(eventLog))
	route("GET", "/v1/events/live", handler.NewEventsLiveHandler(eventLog, logger))

	mux.Handle("GET /metrics", metrics.Handler())

	if cfg.Admin.APIKey != "" && cfg.Admin.APISecret != "" {
		authMiddleware := middleware.NewAuthMiddleware(cfg.Admin.APIKey, cfg.Admin.APISecret)
		route("POST", "/admin/value/mint", authMiddleware.Wrap(handler.NewMintValueHandler(eng)))
	} else {
		logger.Warn("admin credentials not configured, admin endpoints disabled")
	}

	// Start server
	srv := server.NewServer(middleware.Logging(logger)(mux), cfg.Server.Address, cfg.Server.Port)
	fmt.Printf("Server listening on %s\n", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// applyGenesis seeds balances and assets through the engine so the event
// log accounts for every unit in existence.
func applyGenesis(genesis config.GenesisConfig, eng *engine.Engine) error {
	for address, amountStr := range genesis.Balances {
		if !common.IsHexAddress(address) {
			return fmt.Errorf("genesis balance for invalid address %q", address)
		}
		amount, ok := new(big.Int).SetString(amountStr, 10)
		if !ok {
			return fmt.Errorf("genesis balance for %s is not a decimal number: %q", address, amountStr)
		}
		if err := eng.MintValue(common.HexToAddress(address), amount); err != nil {
			return fmt.Errorf("genesis mint for %s: %w", address, err)
		}
	}
	for _, asset := range genesis.Assets {
		if !common.IsHexAddress(asset.Owner) {
			return fmt.Errorf("genesis asset %d has invalid owner %q", asset.ID, asset.Owner)
		}
		if err := eng.MintAssetDirect(common.HexToAddress(asset.Owner), asset.ID, asset.URI); err != nil {
			return fmt.Errorf("genesis asset %d: %w", asset.ID, err)
		}
	}
	return nil
}

// bigGauge adapts a big.Int reader to a float64 gauge.
func bigGauge(read func() *big.Int) func() float64 {
	return func() float64 {
		f, _ := new(big.Float).SetInt(read()).Float64()
		return f
	}
}
