package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"NFTAuctionHouse/internal/auction"
	"NFTAuctionHouse/internal/fees"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Vault struct {
		Path     string `yaml:"path"`
		Escrow   string `yaml:"escrow"`
		Operator string `yaml:"operator"`
	} `yaml:"vault"`
	Auction struct {
		MinBidIncrementBps        int64  `yaml:"min_bid_increment_bps"`
		ExtensionThresholdSeconds int64  `yaml:"extension_threshold_seconds"`
		ExtensionWindowSeconds    int64  `yaml:"extension_window_seconds"`
		MinDropBps                int64  `yaml:"min_drop_bps"`
		MaxDropBps                int64  `yaml:"max_drop_bps"`
		DefaultDropBps            int64  `yaml:"default_drop_bps"`
		MaxDurationHours          int64  `yaml:"max_duration_hours"`
		Factory                   string `yaml:"factory"`
	} `yaml:"auction"`
	Fees struct {
		MarketplaceBps int64                   `yaml:"marketplace_bps"`
		Treasury       string                  `yaml:"treasury"`
		Royalties      map[string]fees.Royalty `yaml:"royalties"`
	} `yaml:"fees"`
	Keeper struct {
		IntervalSeconds int64  `yaml:"interval_seconds"`
		Sender          string `yaml:"sender"`
	} `yaml:"keeper"`
}

// Load reads the yaml file, then .env, then environment overrides. A missing .env is fine.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.Vault.Path == "" {
		return nil, errors.New("vault.path is required")
	}
	if cfg.Auction.MinDropBps > cfg.Auction.MaxDropBps {
		return nil, errors.New("auction.min_drop_bps exceeds auction.max_drop_bps")
	}
	if cfg.Vault.Operator != "" && cfg.Vault.Operator == cfg.Vault.Escrow {
		return nil, errors.New("vault.operator must differ from vault.escrow")
	}
	if cfg.Fees.MarketplaceBps > 0 && cfg.Fees.Treasury == "" {
		return nil, errors.New("fees.treasury is required when a marketplace fee is set")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Vault.Escrow == "" {
		cfg.Vault.Escrow = "escrow"
	}
	a := &cfg.Auction
	if a.MinBidIncrementBps == 0 {
		a.MinBidIncrementBps = 500
	}
	if a.ExtensionThresholdSeconds == 0 {
		a.ExtensionThresholdSeconds = 300
	}
	if a.ExtensionWindowSeconds == 0 {
		a.ExtensionWindowSeconds = 600
	}
	if a.MinDropBps == 0 {
		a.MinDropBps = 100
	}
	if a.MaxDropBps == 0 {
		a.MaxDropBps = 5000
	}
	if a.DefaultDropBps == 0 {
		a.DefaultDropBps = 1000
	}
	if a.MaxDurationHours == 0 {
		a.MaxDurationHours = 30 * 24
	}
	if cfg.Keeper.IntervalSeconds == 0 {
		cfg.Keeper.IntervalSeconds = 30
	}
	if cfg.Keeper.Sender == "" {
		cfg.Keeper.Sender = "keeper"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.Redis.DB = atoiOr(cfg.Redis.DB, v)
	}
	if v := os.Getenv("VAULT_PATH"); v != "" {
		cfg.Vault.Path = v
	}
	if v := os.Getenv("VAULT_OPERATOR"); v != "" {
		cfg.Vault.Operator = v
	}
	if v := os.Getenv("AUCTION_FACTORY"); v != "" {
		cfg.Auction.Factory = v
	}
	if v := os.Getenv("AUCTION_MIN_BID_INCREMENT_BPS"); v != "" {
		cfg.Auction.MinBidIncrementBps = atoi64Or(cfg.Auction.MinBidIncrementBps, v)
	}
	if v := os.Getenv("AUCTION_MAX_DURATION_HOURS"); v != "" {
		cfg.Auction.MaxDurationHours = atoi64Or(cfg.Auction.MaxDurationHours, v)
	}
	if v := os.Getenv("FEES_MARKETPLACE_BPS"); v != "" {
		cfg.Fees.MarketplaceBps = atoi64Or(cfg.Fees.MarketplaceBps, v)
	}
	if v := os.Getenv("FEES_TREASURY"); v != "" {
		cfg.Fees.Treasury = v
	}
	if v := os.Getenv("KEEPER_INTERVAL_SECONDS"); v != "" {
		cfg.Keeper.IntervalSeconds = atoi64Or(cfg.Keeper.IntervalSeconds, v)
	}
	if v := os.Getenv("ROYALTY_EXEMPT_COLLECTIONS"); v != "" {
		for _, c := range splitCommaList(v) {
			delete(cfg.Fees.Royalties, c)
		}
	}
}

func (c *Config) ExtensionThreshold() time.Duration {
	return time.Duration(c.Auction.ExtensionThresholdSeconds) * time.Second
}

func (c *Config) ExtensionWindow() time.Duration {
	return time.Duration(c.Auction.ExtensionWindowSeconds) * time.Second
}

func (c *Config) MaxDuration() time.Duration {
	return time.Duration(c.Auction.MaxDurationHours) * time.Hour
}

func (c *Config) KeeperInterval() time.Duration {
	return time.Duration(c.Keeper.IntervalSeconds) * time.Second
}

func (c *Config) AuctionConfig() auction.Config {
	return auction.Config{
		MinBidIncrementBps: c.Auction.MinBidIncrementBps,
		ExtensionThreshold: c.ExtensionThreshold(),
		ExtensionWindow:    c.ExtensionWindow(),
		MinDropBps:         c.Auction.MinDropBps,
		MaxDropBps:         c.Auction.MaxDropBps,
		DefaultDropBps:     c.Auction.DefaultDropBps,
		MaxDuration:        c.MaxDuration(),
		Factory:            c.Auction.Factory,
		Escrow:             c.Vault.Escrow,
	}
}

func (c *Config) FeeService() fees.Service {
	return fees.Service{
		MarketplaceBps: c.Fees.MarketplaceBps,
		Treasury:       c.Fees.Treasury,
		Royalties:      c.Fees.Royalties,
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func atoi64Or(fallback int64, v string) int64 {
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
