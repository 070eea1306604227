package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idemKeyPrefix = "budget:idempotency:"
	idemTTL       = 24 * time.Hour
)

var (
	_ IdempotencyCacher = NewIdemResMap()
	_ IdempotencyCacher = IdemResRedis{}
)

// An IdempotencyCacher can store responses paired to idempotency keys.
type IdempotencyCacher interface {
	Get(ctx context.Context, key string) (IdemRes, bool)
	Set(ctx context.Context, key string, idemRes IdemRes)
}

// An IdemResMap stores idempotency key, IdemRes value pairs in a map.
//
// Server restarts reset this map,
// so IdemResMap ought not be used for production environments.
type IdemResMap struct {
	mu  sync.Mutex
	val map[string]idemResMapVal
}

type idemResMapVal struct {
	IdemRes

	at time.Time
}

// NewIdemResMap constructs an *IdemResMap
// for use in an Idempotent middleware as a cache.
func NewIdemResMap() *IdemResMap { return &IdemResMap{val: make(map[string]idemResMapVal)} }

// Get retrieves the result of the request matching the idempotency key
// much like a regular map.
func (i *IdemResMap) Get(ctx context.Context, key string) (IdemRes, bool) {
	if key == "" {
		return IdemRes{}, false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	v, ok := i.val[key]
	if !ok || time.Since(v.at) > idemTTL {
		return IdemRes{}, false
	}

	return v.IdemRes, true
}

// Set overwrites the value paired to key in the map.
//
// For each call to Set, keys older than 24 hours are evicted.
func (i *IdemResMap) Set(ctx context.Context, key string, idemRes IdemRes) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for k, v := range i.val {
		if time.Since(v.at) > idemTTL {
			delete(i.val, k)
		}
	}

	i.val[key] = idemResMapVal{IdemRes: idemRes, at: time.Now()}
}

// An IdemResRedis connects to a Redis backend
// for the purposes of caching idempotent responses.
type IdemResRedis struct {
	client *redis.Client
}

// NewRedisCache constructs an IdemResRedis with the options passed in.
func NewRedisCache(opts *redis.Options) IdemResRedis {
	return IdemResRedis{client: redis.NewClient(opts)}
}

// NewRedisCacheFromURL constructs an IdemResRedis from a redis:// URL.
func NewRedisCacheFromURL(uri string) (IdemResRedis, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return IdemResRedis{}, err
	}

	return NewRedisCache(opts), nil
}

// Ping checks the connection to the Redis backend.
func (i IdemResRedis) Ping(ctx context.Context) error {
	return i.client.Ping(ctx).Err()
}

// Get retrieves the IdemRes paired to key from the connected Redis backend.
func (i IdemResRedis) Get(ctx context.Context, key string) (IdemRes, bool) {
	b, err := i.client.Get(ctx, idemKeyPrefix+key).Bytes()
	if err != nil {
		return IdemRes{}, false
	}

	ir := new(IdemRes)
	if err := ir.GobDecode(b); err != nil {
		return IdemRes{}, false
	}

	return *ir, true
}

// Set saves the IdemRes by pairing it to the key in the Redis backend.
func (i IdemResRedis) Set(ctx context.Context, key string, idemRes IdemRes) {
	b, err := idemRes.GobEncode()
	if err != nil {
		return
	}

	i.client.Set(ctx, idemKeyPrefix+key, b, idemTTL)
}
