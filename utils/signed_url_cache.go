package utils

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ObjectStore là các thao tác storage mà service cần
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, path string) error
}

const signedURLKeyPrefix = "notes:signed_url:"

// CachedStorage giữ signed URL trong Redis để list không phải ký lại mỗi lần.
// URL chỉ được cache một nửa thời hạn nên luôn còn hiệu lực khi trả ra.
type CachedStorage struct {
	ObjectStore
	rdb   *redis.Client
	group singleflight.Group
}

func NewCachedStorage(store ObjectStore, rdb *redis.Client) *CachedStorage {
	return &CachedStorage{ObjectStore: store, rdb: rdb}
}

func (c *CachedStorage) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	key := signedURLKeyPrefix + path

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		log.Printf("Redis get signed url lỗi (%s): %v", path, err)
	}

	// cùng một path chỉ ký một lần khi nhiều request trượt cache cùng lúc;
	// kết quả dùng chung nên không gắn với việc huỷ của request đầu
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		url, err := c.ObjectStore.SignedURL(shared, path, ttl)
		if err != nil {
			return "", err
		}
		if cacheTTL := ttl / 2; cacheTTL > 0 {
			if err := c.rdb.Set(shared, key, url, cacheTTL).Err(); err != nil {
				log.Printf("Redis set signed url lỗi (%s): %v", path, err)
			}
		}
		return url, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *CachedStorage) Remove(ctx context.Context, path string) error {
	if err := c.rdb.Del(ctx, signedURLKeyPrefix+path).Err(); err != nil {
		log.Printf("Redis del signed url lỗi (%s): %v", path, err)
	}
	return c.ObjectStore.Remove(ctx, path)
}
