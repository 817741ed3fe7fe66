package driver

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound key does not exist or has expired
var ErrKeyNotFound = errors.New("kv: key not found")

// KeyValueDB define a key-value storage interface
type KeyValueDB interface {
	SetEX(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
