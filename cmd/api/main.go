package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/config"
	"NFTAuctionHouse/internal/custody"
	"NFTAuctionHouse/internal/db"
	"NFTAuctionHouse/internal/events"
	internalhttp "NFTAuctionHouse/internal/http"
	"NFTAuctionHouse/internal/keeper"
	"NFTAuctionHouse/internal/listing"
	"NFTAuctionHouse/internal/services"
	"NFTAuctionHouse/internal/store"
	"NFTAuctionHouse/internal/stream"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vault, err := custody.Open(cfg.Vault.Path)
	if err != nil {
		log.Fatalf("vault open failed: %v", err)
	}
	defer vault.Close()

	var listings auction.Listings
	if cfg.Redis.Addr != "" {
		client, err := listing.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis connect failed: %v", err)
		}
		r := &listing.Redis{Client: client}
		defer r.Close()
		listings = r
	} else {
		listings = listing.NewMemory()
	}

	hub := stream.NewHub(logger)
	sinks := events.Fanout{events.Logger{Logger: logger}, hub}

	var journal *store.Journal
	if cfg.DB.DSN != "" {
		pool, err := db.Connect(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()
		journal = store.NewJournal(pool)
		sinks = append(sinks, journal)
	}

	core := auction.NewCore(auction.Deps{
		Assets:   vault,
		Funds:    vault,
		Fees:     cfg.FeeService(),
		Listings: listings,
		Events:   sinks,
		Logger:   logger,
	}, cfg.AuctionConfig())
	house := auction.NewHouse(core)

	market := &services.Marketplace{
		House:   house,
		Wallet:  vault,
		Escrow:  cfg.Vault.Escrow,
		Journal: journal,
		Logger:  logger,
	}

	custodySvc := &services.Custody{
		Vault:    vault,
		Operator: cfg.Vault.Operator,
		Escrow:   cfg.Vault.Escrow,
		Logger:   logger,
	}
	if cfg.Vault.Operator == "" {
		log.Printf("vault.operator not set; deposits and mints will be refused")
	}

	h := internalhttp.NewHandler(market, custodySvc)
	srv := internalhttp.NewServer(h, hub)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	k := &keeper.Keeper{
		House:    house,
		Sender:   cfg.Keeper.Sender,
		Interval: cfg.KeeperInterval(),
		Logger:   logger,
	}
	go k.Run(ctx)

	go func() {
		log.Printf("api listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}
