package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"weathernet"

	"github.com/redis/go-redis/v9"
)

const applicationKeyPrefix = "application:"

// ApplicationRedis stores node operator applications keyed by wallet address.
// A resubmission from the same wallet overwrites the previous application.
type ApplicationRedis struct {
	rdb *redis.Client
}

func NewApplicationRedis(rdb *redis.Client) *ApplicationRedis {
	return &ApplicationRedis{rdb: rdb}
}

func applicationKey(walletAddress string) string {
	return applicationKeyPrefix + walletAddress
}

func (r *ApplicationRedis) Save(ctx context.Context, app weathernet.NodeApplication) error {
	if r.rdb == nil {
		return fmt.Errorf("%w: redis not configured", weathernet.ErrStorageUnavailable)
	}

	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("%w: marshal application: %v", weathernet.ErrInvalidPayload, err)
	}
	if err := r.rdb.Set(ctx, applicationKey(app.AvaxWalletAddress), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: save application: %v", weathernet.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *ApplicationRedis) Get(ctx context.Context, walletAddress string) (*weathernet.NodeApplication, error) {
	if r.rdb == nil {
		return nil, nil
	}

	data, err := r.rdb.Get(ctx, applicationKey(walletAddress)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load application: %v", weathernet.ErrStorageUnavailable, err)
	}

	var app weathernet.NodeApplication
	if err := json.Unmarshal([]byte(data), &app); err != nil {
		return nil, fmt.Errorf("unmarshal application for %s: %w", walletAddress, err)
	}
	return &app, nil
}
