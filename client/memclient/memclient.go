// Package memclient is an in-memory record backend implementing
// client.Client on top of go-memdb.
//
// A bulk request runs in a single write transaction, so it is applied
// completely or not at all. Revisions start at 1 and grow by one with every
// update.
package memclient

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/record"
	"github.com/on-the-ground/effect_ive_records/shared/helper"
)

// Error codes reported by the backend.
const (
	CodeNotFound         = "GAIA_RE01"
	CodeRevisionConflict = "GAIA_CO02"
	CodeInvalidQuery     = "GAIA_IQ11"
	CodeReadOnlyField    = "CB_IJ01"
	CodeInvalidRequest   = "CB_VA01"
	CodeInternal         = "CB_UN01"
)

var _ client.Client = (*Client)(nil)

type Client struct {
	db     *memdb.MemDB
	logger *zap.Logger
	now    func() time.Time

	getRecord   atomic.Int64
	getRecords  atomic.Int64
	bulkRequest atomic.Int64
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock sets the time source of the created and updated times.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(opts ...Option) (*Client, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("creating memdb: %w", err)
	}
	c := &Client{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Calls counts the calls of each client operation.
type Calls struct {
	GetRecord   int64
	GetRecords  int64
	BulkRequest int64
}

func (c *Client) Calls() Calls {
	return Calls{
		GetRecord:   c.getRecord.Load(),
		GetRecords:  c.getRecords.Load(),
		BulkRequest: c.bulkRequest.Load(),
	}
}

// Seed creates a record outside of any bulk request.
func (c *Client) Seed(app record.AppID, value record.FieldMap) (record.Record, error) {
	txn := c.db.Txn(true)
	defer txn.Abort()

	stored, err := c.create(txn, string(app), value.Payload())
	if err != nil {
		return record.Record{}, err
	}
	txn.Commit()
	return record.FromRow(app, stored.row())
}

func (c *Client) GetRecord(ctx context.Context, params client.GetRecordParams) client.Either[client.GetRecordResult] {
	c.getRecord.Add(1)
	txn := c.db.Txn(false)
	defer txn.Abort()

	stored, err := c.find(txn, string(params.App), string(params.ID))
	if err != nil {
		return client.Failed[client.GetRecordResult](c.remoteError(err))
	}
	c.logger.Debug("get record", zap.String("app", stored.App), zap.String("id", stored.ID))
	return client.Ok(client.GetRecordResult{Record: stored.row()})
}

func (c *Client) GetRecords(ctx context.Context, params client.GetRecordsParams) client.Either[client.GetRecordsResult] {
	c.getRecords.Add(1)
	q, err := parseQuery(params.Query)
	if err != nil {
		return client.Failed[client.GetRecordsResult](c.remoteError(err))
	}

	txn := c.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableRecord, indexApp, string(params.App))
	if err != nil {
		return client.Failed[client.GetRecordsResult](c.remoteError(err))
	}
	var matched []*storedRecord
	for obj := it.Next(); obj != nil; obj = it.Next() {
		r := helper.MustTypedValueOf[*storedRecord](obj)
		if matchesAll(r, q.conds) {
			matched = append(matched, r)
		}
	}
	slices.SortFunc(matched, func(a, b *storedRecord) int {
		if q.desc {
			return cmp.Compare(b.Number, a.Number)
		}
		return cmp.Compare(a.Number, b.Number)
	})
	matched = page(matched, q.offset, q.limit)

	rows := make([]record.FieldMap, 0, len(matched))
	for _, r := range matched {
		rows = append(rows, r.project(params.Fields))
	}
	c.logger.Debug("get records",
		zap.String("app", string(params.App)),
		zap.String("query", params.Query),
		zap.Int("count", len(rows)),
	)
	return client.Ok(client.GetRecordsResult{Records: rows})
}

// BulkRequest applies every request in order inside one transaction.
func (c *Client) BulkRequest(ctx context.Context, params client.BulkRequestParams) client.Either[struct{}] {
	c.bulkRequest.Add(1)
	txn := c.db.Txn(true)
	defer txn.Abort()

	for i, req := range params.Requests {
		if err := c.apply(txn, req); err != nil {
			remote := c.remoteError(err)
			c.logger.Debug("bulk request aborted",
				zap.Int("request", i),
				zap.String("method", req.Method()),
				zap.String("api", req.API()),
				zap.Error(remote),
			)
			return client.Failed[struct{}](remote)
		}
	}
	txn.Commit()
	c.logger.Debug("bulk request committed", zap.Int("requests", len(params.Requests)))
	return client.Ok(struct{}{})
}

func matchesAll(r *storedRecord, conds []condition) bool {
	for _, c := range conds {
		if !c.matches(r) {
			return false
		}
	}
	return true
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit != noLimit && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// codedError is a failure the backend reports with a specific code.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func coded(code string, format string, args ...any) error {
	return &codedError{code: code, err: fmt.Errorf(format, args...)}
}

func (c *Client) remoteError(err error) record.Error {
	code := CodeInternal
	var ce *codedError
	switch {
	case errors.As(err, &ce):
		code = ce.code
	case errors.Is(err, ErrInvalidQuery):
		code = CodeInvalidQuery
	}
	return record.Error{ID: uuid.NewString(), Code: code, Message: err.Error()}
}

func (c *Client) find(txn *memdb.Txn, app, id string) (*storedRecord, error) {
	stored, err := helper.GetTypedValueOf[*storedRecord](func() (any, error) {
		return txn.First(tableRecord, indexID, app, id)
	})
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, coded(CodeNotFound, "record %s of app %s not found", id, app)
	}
	return stored, nil
}

func checkRevision(stored *storedRecord, revision record.Revision) error {
	if revision.Checked() && int64(revision) != stored.Revision {
		return coded(CodeRevisionConflict,
			"record %s of app %s is at revision %d, not %d", stored.ID, stored.App, stored.Revision, revision)
	}
	return nil
}

func checkWritable(value record.FieldMap) error {
	for code := range value {
		if isSystemField(code) {
			return coded(CodeReadOnlyField, "field %s cannot be written", code)
		}
	}
	return nil
}

func (c *Client) nextID(txn *memdb.Txn, app string) (int64, error) {
	seq, err := helper.GetTypedValueOf[*storedApp](func() (any, error) {
		return txn.First(tableApp, indexID, app)
	})
	if err != nil {
		return 0, err
	}
	next := &storedApp{ID: app, Last: 1}
	if seq != nil {
		next.Last = seq.Last + 1
	}
	if err := txn.Insert(tableApp, next); err != nil {
		return 0, err
	}
	return next.Last, nil
}

func (c *Client) create(txn *memdb.Txn, app string, value record.FieldMap) (*storedRecord, error) {
	if err := checkWritable(value); err != nil {
		return nil, err
	}
	n, err := c.nextID(txn, app)
	if err != nil {
		return nil, err
	}
	now := c.now()
	stored := &storedRecord{
		App:      app,
		ID:       strconv.FormatInt(n, 10),
		Number:   n,
		Revision: 1,
		Value:    value.Clone(),
		Created:  now,
		Updated:  now,
	}
	if err := txn.Insert(tableRecord, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (c *Client) update(txn *memdb.Txn, app string, id record.RecordID, value record.FieldMap, revision record.Revision) error {
	if err := checkWritable(value); err != nil {
		return err
	}
	stored, err := c.find(txn, app, string(id))
	if err != nil {
		return err
	}
	if err := checkRevision(stored, revision); err != nil {
		return err
	}
	next := *stored
	next.Value = stored.Value.Clone()
	for code, f := range value {
		next.Value[code] = f
	}
	next.Revision++
	next.Updated = c.now()
	return txn.Insert(tableRecord, &next)
}

func (c *Client) delete(txn *memdb.Txn, req client.DeleteRecords) error {
	if len(req.Revisions) != 0 && len(req.Revisions) != len(req.IDs) {
		return coded(CodeInvalidRequest, "%d revisions for %d ids", len(req.Revisions), len(req.IDs))
	}
	for i, id := range req.IDs {
		stored, err := c.find(txn, string(req.AppID), string(id))
		if err != nil {
			return err
		}
		if len(req.Revisions) != 0 {
			if err := checkRevision(stored, req.Revisions[i]); err != nil {
				return err
			}
		}
		if err := txn.Delete(tableRecord, stored); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) apply(txn *memdb.Txn, req client.WriteRequest) error {
	return client.MatchWriteRequest(req,
		func(r client.CreateRecord) error {
			_, err := c.create(txn, string(r.AppID), r.Record)
			return err
		},
		func(r client.CreateRecords) error {
			for _, value := range r.Records {
				if _, err := c.create(txn, string(r.AppID), value); err != nil {
					return err
				}
			}
			return nil
		},
		func(r client.UpdateRecord) error {
			return c.update(txn, string(r.AppID), r.ID, r.Record, r.Revision)
		},
		func(r client.UpdateRecords) error {
			for _, e := range r.Records {
				if err := c.update(txn, string(r.AppID), e.ID, e.Record, e.Revision); err != nil {
					return err
				}
			}
			return nil
		},
		func(r client.DeleteRecords) error {
			return c.delete(txn, r)
		},
	)
}
