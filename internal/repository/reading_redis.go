package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"weathernet"

	"github.com/redis/go-redis/v9"
)

const (
	// readingKeyPrefix namespaces the per-device lists so a device id can
	// never collide with the device index key.
	readingKeyPrefix = "readings:"
	deviceIndexKey   = "devices"
)

// ReadingRedis stores one Redis list per device: RPUSH appends to the tail,
// LRANGE reads back in append order. Per-device append atomicity comes from
// RPUSH itself; no cross-device coordination is needed.
type ReadingRedis struct {
	rdb *redis.Client
}

// NewReadingRedis wraps a Redis client. A nil client is allowed and degrades
// reads to empty results, keeping an unconfigured deployment alive.
func NewReadingRedis(rdb *redis.Client) *ReadingRedis {
	return &ReadingRedis{rdb: rdb}
}

func readingKey(deviceID string) string {
	return readingKeyPrefix + deviceID
}

// Append tags the reading with deviceID, appends it to the device's list and
// registers the device in the index set within one transaction.
func (r *ReadingRedis) Append(ctx context.Context, deviceID string, reading weathernet.Reading) error {
	if r.rdb == nil {
		return fmt.Errorf("%w: redis not configured", weathernet.ErrStorageUnavailable)
	}
	if deviceID == "" {
		return fmt.Errorf("%w: empty device id", weathernet.ErrInvalidPayload)
	}

	reading.DeviceID = deviceID
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("%w: marshal reading: %v", weathernet.ErrInvalidPayload, err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, readingKey(deviceID), data)
	pipe.SAdd(ctx, deviceIndexKey, deviceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: append reading for %s: %v", weathernet.ErrStorageUnavailable, deviceID, err)
	}
	return nil
}

// ReadAll returns the full series, oldest first. A device with no stored
// readings yields an empty slice, not an error.
func (r *ReadingRedis) ReadAll(ctx context.Context, deviceID string) ([]weathernet.Reading, error) {
	return r.readRange(ctx, deviceID, 0, -1)
}

// ReadLast returns at most the last n readings, oldest-to-newest within that
// suffix.
func (r *ReadingRedis) ReadLast(ctx context.Context, deviceID string, n int) ([]weathernet.Reading, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: read last %d readings", weathernet.ErrInvalidArgument, n)
	}
	return r.readRange(ctx, deviceID, int64(-n), -1)
}

func (r *ReadingRedis) readRange(ctx context.Context, deviceID string, start, stop int64) ([]weathernet.Reading, error) {
	if r.rdb == nil {
		return []weathernet.Reading{}, nil
	}

	values, err := r.rdb.LRange(ctx, readingKey(deviceID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read readings for %s: %v", weathernet.ErrStorageUnavailable, deviceID, err)
	}

	out := make([]weathernet.Reading, 0, len(values))
	for _, v := range values {
		var reading weathernet.Reading
		if err := json.Unmarshal([]byte(v), &reading); err != nil {
			// A corrupt entry must not take down the whole series.
			continue
		}
		out = append(out, reading)
	}
	return out, nil
}

// Devices lists every device id present in the index set.
func (r *ReadingRedis) Devices(ctx context.Context) ([]string, error) {
	if r.rdb == nil {
		return []string{}, nil
	}

	ids, err := r.rdb.SMembers(ctx, deviceIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list devices: %v", weathernet.ErrStorageUnavailable, err)
	}
	return ids, nil
}
