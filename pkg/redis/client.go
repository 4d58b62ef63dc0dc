package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/internal/domain"
	"github.com/okanyedibela/waba-relay/pkg/logger"
)

// Client caches provider message ids of outbound sends so later status
// callbacks can be resolved even when the callback omits the recipient
// phone. Without it such callbacks are dropped.
type Client struct {
	client valkey.Client
}

const (
	providerRefKeyPrefix = "provider_ref:"
	providerRefTTL       = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client}, nil
}

func (c *Client) CacheProviderRef(ctx context.Context, providerID string, ref domain.ProviderRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("failed to marshal provider ref: %w", err)
	}

	key := providerRefKeyPrefix + providerID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(providerRefTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache provider ref: %w", err)
	}

	logger.Debugf("Cached provider id %s -> %s in Redis", providerID, ref.Phone)

	return nil
}

func (c *Client) LookupProviderRef(ctx context.Context, providerID string) (*domain.ProviderRef, error) {
	key := providerRefKeyPrefix + providerID

	result := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get provider ref: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read provider ref: %w", err)
	}

	var ref domain.ProviderRef
	if err := json.Unmarshal([]byte(data), &ref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider ref: %w", err)
	}

	return &ref, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
