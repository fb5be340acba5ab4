package session

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopadmin/pkg/config"
	redisclient "github.com/angelmondragon/shopadmin/pkg/redis"
)

// Open builds the Holder selected by cfg.Store. client is only consulted for the redis store.
func Open(ctx context.Context, cfg config.SessionConfig, client *redisclient.Client) (Holder, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return NewMemoryStore(""), nil
	case config.SessionStoreFile, "":
		return NewFileStore(cfg.Dir, cfg.Key)
	case config.SessionStoreRedis:
		return NewRedisStore(ctx, client, cfg.Key, cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}
