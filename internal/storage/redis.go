package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyCarts = "carts:%s"

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Read(c context.Context, key string) ([]byte, error) {
	blob, err := r.client.Get(c, fmt.Sprintf(redisKeyCarts, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed reading cart blob from redis with error=%w", err)
	}
	return blob, nil
}

func (r *Redis) Write(c context.Context, key string, blob []byte) error {
	err := r.client.Set(c, fmt.Sprintf(redisKeyCarts, key), blob, 0).Err()
	if err != nil {
		return fmt.Errorf("failed writing cart blob to redis with error=%w", err)
	}
	return nil
}

func (r *Redis) Delete(c context.Context, key string) error {
	err := r.client.Del(c, fmt.Sprintf(redisKeyCarts, key)).Err()
	if err != nil {
		return fmt.Errorf("failed deleting cart blob from redis with error=%w", err)
	}
	return nil
}
