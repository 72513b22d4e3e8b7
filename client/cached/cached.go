// Package cached decorates a client.Client with a read-through cache of
// single records.
//
// Rows read by GetRecord are cached until a successful bulk request
// updates or deletes the record. GetRecords is not cached.
//
// A read racing with such a bulk request never leaves its row cached: keys
// hash to epoch stripes, a bulk request bumps the stripes of the keys it
// touched, and a read that saw its stripe move drops the row it set.
package cached

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	ristretto "github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/record"
)

var _ client.Client = (*Client)(nil)

type Client struct {
	next   client.Client
	cache  *ristretto.Cache[string, record.FieldMap]
	ttl    time.Duration
	logger *zap.Logger

	epochs [epochStripes]atomic.Uint64
}

const epochStripes = 256

type options struct {
	numCounters int64
	maxCost     int64
	bufferItems int64
	ttl         time.Duration
	logger      *zap.Logger
}

type Option func(*options)

// WithCapacity bounds the cache to maxCost fields, tracking the
// frequency of numCounters keys.
func WithCapacity(numCounters, maxCost int64) Option {
	return func(o *options) {
		o.numCounters = numCounters
		o.maxCost = maxCost
	}
}

// WithTTL expires cached rows after ttl. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func New(next client.Client, opts ...Option) (*Client, error) {
	o := options{
		numCounters: 1e5,
		maxCost:     1 << 20,
		bufferItems: 64,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, record.FieldMap]{
		NumCounters: o.numCounters,
		MaxCost:     o.maxCost,
		BufferItems: o.bufferItems,
		KeyToHash:   keyToHash,
	})
	if err != nil {
		return nil, fmt.Errorf("creating record cache: %w", err)
	}
	return &Client{next: next, cache: cache, ttl: o.ttl, logger: o.logger}, nil
}

func keyToHash(key string) (uint64, uint64) {
	return xxhash.Sum64String(key), 0
}

func cacheKey(app record.AppID, id record.RecordID) string {
	return string(app) + "/" + string(id)
}

func (c *Client) epoch(key string) *atomic.Uint64 {
	h, _ := keyToHash(key)
	return &c.epochs[h%epochStripes]
}

func (c *Client) GetRecord(ctx context.Context, params client.GetRecordParams) client.Either[client.GetRecordResult] {
	key := cacheKey(params.App, params.ID)
	if row, ok := c.cache.Get(key); ok {
		c.logger.Debug("record cache hit", zap.String("key", key))
		return client.Ok(client.GetRecordResult{Record: row.Clone()})
	}

	epoch := c.epoch(key)
	seen := epoch.Load()
	res := c.next.GetRecord(ctx, params)
	if got, ok := res.GetRight(); ok {
		c.cache.SetWithTTL(key, got.Record.Clone(), int64(max(len(got.Record), 1)), c.ttl)
		if epoch.Load() != seen {
			c.cache.Del(key)
			c.logger.Debug("record cache fill dropped", zap.String("key", key))
		}
	}
	return res
}

func (c *Client) GetRecords(ctx context.Context, params client.GetRecordsParams) client.Either[client.GetRecordsResult] {
	return c.next.GetRecords(ctx, params)
}

// BulkRequest forwards params and, once it succeeded, forgets every record
// it updated or deleted.
func (c *Client) BulkRequest(ctx context.Context, params client.BulkRequestParams) client.Either[struct{}] {
	res := c.next.BulkRequest(ctx, params)
	if res.IsLeft() {
		return res
	}
	for _, req := range params.Requests {
		for _, id := range touched(req) {
			key := cacheKey(req.App(), id)
			c.epoch(key).Add(1)
			c.cache.Del(key)
			c.logger.Debug("record cache invalidated", zap.String("key", key))
		}
	}
	return res
}

func touched(req client.WriteRequest) []record.RecordID {
	return client.MatchWriteRequest(req,
		func(client.CreateRecord) []record.RecordID { return nil },
		func(client.CreateRecords) []record.RecordID { return nil },
		func(r client.UpdateRecord) []record.RecordID { return []record.RecordID{r.ID} },
		func(r client.UpdateRecords) []record.RecordID {
			ids := make([]record.RecordID, 0, len(r.Records))
			for _, e := range r.Records {
				ids = append(ids, e.ID)
			}
			return ids
		},
		func(r client.DeleteRecords) []record.RecordID { return r.IDs },
	)
}

// Wait blocks until pending cache writes are applied.
func (c *Client) Wait() {
	c.cache.Wait()
}

func (c *Client) Close() {
	c.cache.Close()
}
