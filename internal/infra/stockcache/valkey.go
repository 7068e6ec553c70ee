package stockcache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/yanqian/agrocalc/internal/domain/dose"
)

// ValkeyStore keeps msgpack-encoded stock levels in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a Store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "agrocalc"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

type cachedLevel struct {
	ProductID string  `msgpack:"p"`
	Available float64 `msgpack:"a"`
	Unit      string  `msgpack:"u"`
}

func (s *ValkeyStore) Get(ctx context.Context, productID string) (dose.StockLevel, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(productID)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return dose.StockLevel{}, false, nil
		}
		return dose.StockLevel{}, false, err
	}
	level, err := decodeLevel(payload)
	if err != nil {
		return dose.StockLevel{}, false, err
	}
	return level, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, level dose.StockLevel, ttl time.Duration) error {
	payload, err := encodeLevel(level)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(level.ProductID)).Value(valkey.BinaryString(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(productID string) string {
	return fmt.Sprintf("%s:stock:%s", s.prefix, productID)
}

func encodeLevel(level dose.StockLevel) ([]byte, error) {
	return msgpack.Marshal(cachedLevel{
		ProductID: level.ProductID,
		Available: level.Available,
		Unit:      level.Unit,
	})
}

func decodeLevel(payload []byte) (dose.StockLevel, error) {
	var cached cachedLevel
	if err := msgpack.Unmarshal(payload, &cached); err != nil {
		return dose.StockLevel{}, fmt.Errorf("decode cached stock: %w", err)
	}
	return dose.StockLevel{
		ProductID: cached.ProductID,
		Available: cached.Available,
		Unit:      cached.Unit,
	}, nil
}

var _ Store = (*ValkeyStore)(nil)
