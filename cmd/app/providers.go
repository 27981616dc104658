package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
	"github.com/avallejos/visitauth/internal/infra/config"
	"github.com/avallejos/visitauth/internal/infra/denylist"
	"github.com/avallejos/visitauth/internal/infra/mailer"
	"github.com/avallejos/visitauth/internal/infra/oauthclient"
	"github.com/avallejos/visitauth/internal/infra/userstore"
)

// Built-in fallback keys, used when no secret is configured. Running with
// them is a documented risk suitable for development only.
var (
	defaultAccessSecret = []byte{
		67, 244, 60, 38, 250, 245, 166, 210, 23, 32, 189, 99, 84, 215, 248, 171,
		39, 248, 170, 104, 87, 33, 21, 59, 58, 199, 43, 138, 105, 46, 38, 22,
	}
	defaultRefreshSecret = []byte{
		204, 226, 162, 31, 67, 182, 253, 137, 221, 158, 67, 73, 91, 95, 223, 177,
		82, 185, 96, 159, 136, 117, 213, 17, 196, 109, 140, 255, 31, 83, 160, 166,
	}
)

func provideAuthConfig(cfg *config.Config, logger *slog.Logger) auth.Config {
	return auth.Config{
		AccessSecret:  decodeSecret(cfg.Auth.AccessSecret, defaultAccessSecret, "access", logger),
		RefreshSecret: decodeSecret(cfg.Auth.RefreshSecret, defaultRefreshSecret, "refresh", logger),
		AccessTTL:     auth.DefaultAccessTTL,
		RefreshTTL:    auth.DefaultRefreshTTL,
		Google: auth.ProviderConfig{
			ClientID:     cfg.Auth.Google.ClientID,
			ClientSecret: cfg.Auth.Google.ClientSecret,
			RedirectURL:  cfg.Auth.Google.RedirectURL,
		},
		GitHub: auth.ProviderConfig{
			ClientID:     cfg.Auth.GitHub.ClientID,
			ClientSecret: cfg.Auth.GitHub.ClientSecret,
			RedirectURL:  cfg.Auth.GitHub.RedirectURL,
		},
	}
}

// decodeSecret expects a base64-encoded 32-byte key and falls back to the
// built-in default on any problem.
func decodeSecret(encoded string, fallback []byte, kind string, logger *slog.Logger) []byte {
	if encoded == "" {
		logger.Warn("no secret key configured, using built-in default", "kind", kind)
		return fallback
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		logger.Warn("secret key is not valid base64, using built-in default", "kind", kind, "error", err)
		return fallback
	}
	if len(key) != 32 {
		logger.Warn("secret key is not 32 bytes, using built-in default", "kind", kind, "length", len(key))
		return fallback
	}
	return key
}

// provideUserStore constructs the configured persistence adapter once, at
// startup, and applies the schema.
func provideUserStore(cfg *config.Config, logger *slog.Logger) (userstore.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Store.Adapter {
	case config.AdapterLocal:
		store, err := userstore.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.CreateTables(ctx); err != nil {
			return nil, fmt.Errorf("create sqlite tables: %w", err)
		}
		logger.Info("local sqlite store ready", "path", cfg.Store.SQLitePath)
		return store, nil
	case config.AdapterRemote:
		poolConfig, err := pgxpool.ParseConfig(cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid postgres dsn: %w", err)
		}
		if cfg.Store.Postgres.MaxConns > 0 {
			poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
		}
		if cfg.Store.Postgres.MinConns > 0 {
			poolConfig.MinConns = cfg.Store.Postgres.MinConns
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		store := userstore.NewPostgres(pool)
		if err := store.CreateTables(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("create postgres tables: %w", err)
		}
		logger.Info("remote postgres store ready")
		return store, nil
	case config.AdapterMemory:
		logger.Info("memory store ready")
		return userstore.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store adapter %q", cfg.Store.Adapter)
	}
}

// provideAuthStore optionally layers the Valkey denylist cache over the
// SQL store.
func provideAuthStore(cfg *config.Config, store userstore.Store, logger *slog.Logger) (auth.Store, error) {
	if !cfg.Denylist.ValkeyEnabled {
		return store, nil
	}
	opt, err := buildValkeyOptions(cfg.Denylist.ValkeyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid valkey configuration: %w", err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	logger.Info("valkey denylist cache enabled", "addr", cfg.Denylist.ValkeyAddr)
	return denylist.New(store, client, "denylist", logger), nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideVisitsStore(store userstore.Store) visits.Store {
	return store
}

func provideProviderClient(authCfg auth.Config, logger *slog.Logger) auth.ProviderClient {
	return oauthclient.New(authCfg.Google, authCfg.GitHub, logger)
}

func provideNotifier(cfg *config.Config, logger *slog.Logger) auth.Notifier {
	return mailer.New(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, logger)
}
