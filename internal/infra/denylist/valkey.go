package denylist

import (
	"context"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/avallejos/visitauth/internal/domain/auth"
)

// Valkey layers a Valkey-backed cache over the SQL denylist. Writes go to
// the durable store first and are mirrored into Valkey with a TTL matching
// the token's own expiry; reads hit the cache and fall back to the store on
// a miss, so a cache outage can never un-deny a token.
type Valkey struct {
	auth.Store
	client valkey.Client
	prefix string
	logger *slog.Logger
}

// New wraps base with a Valkey cache for the two denylist operations.
func New(base auth.Store, client valkey.Client, prefix string, logger *slog.Logger) *Valkey {
	if prefix == "" {
		prefix = "denylist"
	}
	return &Valkey{
		Store:  base,
		client: client,
		prefix: prefix,
		logger: logger.With("component", "denylist.valkey"),
	}
}

func (v *Valkey) DenyToken(ctx context.Context, token string, expiresAt time.Time) error {
	if err := v.Store.DenyToken(ctx, token, expiresAt); err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its own expiry; the codec rejects it regardless.
		return nil
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	cmd := v.client.B().Set().Key(v.key(token)).Value("1").Ex(ttl).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		v.logger.Warn("failed to mirror denied token into valkey", "error", err)
	}
	return nil
}

func (v *Valkey) IsTokenDenied(ctx context.Context, token string) (bool, error) {
	cmd := v.client.B().Exists().Key(v.key(token)).Build()
	n, err := v.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			v.logger.Warn("valkey denylist lookup failed", "error", err)
		}
		return v.Store.IsTokenDenied(ctx, token)
	}
	if n > 0 {
		return true, nil
	}
	return v.Store.IsTokenDenied(ctx, token)
}

func (v *Valkey) key(token string) string {
	return v.prefix + ":" + token
}

var _ auth.Store = (*Valkey)(nil)
