package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"post-manager/cmd/web/page"
)

const (
	keyPrefix  = "post-manager:session:"
	maxRetries = 8
)

// RedisStore 는 세션 상태를 Redis 에 JSON 으로 보관한다.
// 여러 웹 인스턴스가 같은 세션을 처리할 수 있도록 Update 는 WATCH/MULTI 로 낙관적 잠금을 사용한다.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// NewRedisClient 는 연결을 확인한 뒤 클라이언트를 반환한다.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func sessionKey(sid string) string {
	return keyPrefix + sid
}

func (r *RedisStore) Load(ctx context.Context, sid string) (page.State, error) {
	data, err := r.rdb.Get(ctx, sessionKey(sid)).Bytes()
	return decodeState(data, err)
}

func (r *RedisStore) Update(ctx context.Context, sid string, fn func(*page.State) error) (page.State, error) {
	key := sessionKey(sid)
	var out page.State

	txf := func(tx *redis.Tx) error {
		s, err := decodeState(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("session encode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			out = s
		}
		return err
	}

	for range maxRetries {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			// 다른 요청이 먼저 같은 세션을 갱신했다. 다시 읽어서 적용한다.
			continue
		}
		if err != nil {
			return page.State{}, err
		}
		return out, nil
	}
	return page.State{}, fmt.Errorf("session %s: too many concurrent updates", sid)
}

func decodeState(data []byte, err error) (page.State, error) {
	if errors.Is(err, redis.Nil) {
		return page.State{}, nil
	}
	if err != nil {
		return page.State{}, fmt.Errorf("session load: %w", err)
	}
	var s page.State
	if err := json.Unmarshal(data, &s); err != nil {
		return page.State{}, fmt.Errorf("session decode: %w", err)
	}
	return s, nil
}
