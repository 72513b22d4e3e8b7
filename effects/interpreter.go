package effects

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"code.hybscloud.com/kont"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/record"
	"github.com/on-the-ground/effect_ive_records/shared/helper"
)

// ErrMalformedRow wraps the failure of a read whose rows cannot be turned
// into records.
var ErrMalformedRow = errors.New("effects: malformed backend row")

// Interpreter evaluates effects against a client. It holds no state
// between evaluations and is safe for concurrent use.
type Interpreter struct {
	client  client.Client
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics
	now     func() time.Time
}

// NewInterpreter returns an interpreter calling c, configured by opts.
func NewInterpreter(c client.Client, opts ...Option) *Interpreter {
	it := defaultInterpreter()
	it.client = c
	for _, opt := range opts {
		opt(&it)
	}
	return &it
}

// Interpret evaluates e with the writes of buf already enqueued. On success
// the step holds the writes still enqueued and the value of e.
func Interpret[A any](ctx context.Context, it *Interpreter, e Effect[A], buf Buffer) kont.Either[error, Step[A]] {
	return interpret(ctx, it.newRun(), e, buf)
}

func interpret[A any](ctx context.Context, r *run, e Effect[A], buf Buffer) kont.Either[error, Step[A]] {
	out, v, err := r.eval(ctx, e.node, buf)
	if err != nil {
		r.log.Debug("effect failed", zap.Error(err))
		return kont.Left[error, Step[A]](err)
	}
	return kont.Right[error, Step[A]](Step[A]{Buffer: out, Value: helper.MustTypedValueOf[A](v)})
}

// run is one evaluation of a root effect.
type run struct {
	*Interpreter
	log *zap.Logger
}

func (it *Interpreter) newRun() *run {
	return &run{Interpreter: it, log: it.logger.With(zap.String("run", uuid.NewString()))}
}

// eval returns the buffer and value n ends with, or the failure of n.
// Continuations in tail position are evaluated by the loop, so retries and
// generator steps do not deepen the stack.
func (r *run) eval(ctx context.Context, n node, buf Buffer) (Buffer, any, error) {
	for {
		k := kindOf(n)
		r.metrics.node(k)

		switch t := n.(type) {
		case succeedNode:
			return buf, t.value, nil
		case failNode:
			return nil, nil, t.err
		case asyncNode:
			v, err := t.thunk(ctx)
			if err != nil {
				return nil, nil, err
			}
			return buf, v, nil
		case andThenNode:
			out, v, err := r.eval(ctx, t.self, buf)
			if err != nil {
				return nil, nil, err
			}
			n, buf = t.next(v), out
		case foldNode:
			out, v, err := r.eval(ctx, t.self, buf)
			if err != nil {
				n = t.onFailure(err)
				continue
			}
			n, buf = t.onSuccess(v), out
		case genNode:
			return r.evalGen(ctx, t, buf)
		case getRecordNode:
			rec, err := r.getRecord(ctx, t.params)
			if err != nil {
				return nil, nil, err
			}
			return buf, rec, nil
		case getRecordsNode:
			recs, err := r.getRecords(ctx, t.params)
			if err != nil {
				return nil, nil, err
			}
			return buf, recs, nil
		case addRecordNode:
			return r.enqueue(k, buf, createRequest(t.record)), struct{}{}, nil
		case addRecordsNode:
			mustHaveRecords(k, len(t.records))
			return r.enqueue(k, buf, createRequests(t.records)...), struct{}{}, nil
		case updateRecordNode:
			return r.enqueue(k, buf, updateRequest(t.record)),
				t.record.WithRevision(t.record.Revision().Next()), nil
		case updateRecordsNode:
			mustHaveRecords(k, len(t.records))
			return r.enqueue(k, buf, updateRequests(t.records)...), committed(t.records), nil
		case deleteRecordNode:
			return r.enqueue(k, buf, deleteRequests([]record.Record{t.record})...), struct{}{}, nil
		case deleteRecordsNode:
			mustHaveRecords(k, len(t.records))
			return r.enqueue(k, buf, deleteRequests(t.records)...), struct{}{}, nil
		case commitNode:
			if err := r.commit(ctx, buf); err != nil {
				return nil, nil, err
			}
			return nil, struct{}{}, nil
		default:
			panic(fmt.Sprintf("exhaustive match fallback, node type: %T", n))
		}
	}
}

// evalGen stops the coroutine of g however its evaluation ends, panics
// included.
func (r *run) evalGen(ctx context.Context, g genNode, buf Buffer) (Buffer, any, error) {
	first, stop := g.start()
	defer stop()
	return r.eval(ctx, first, buf)
}

func (r *run) enqueue(k Kind, buf Buffer, reqs ...client.WriteRequest) Buffer {
	out := buf.Append(reqs...)
	r.log.Debug("enqueued writes",
		zap.String("kind", string(k)),
		zap.Int("requests", len(reqs)),
		zap.Int("buffered", out.Len()),
	)
	return out
}

func (r *run) getRecord(ctx context.Context, p GetRecordParams) (record.Record, error) {
	ctx, span := r.tracer.Start(ctx, "effects.GetRecord", trace.WithAttributes(
		attribute.String("app", string(p.App)),
		attribute.String("id", string(p.ID)),
	))
	defer span.End()

	res := r.client.GetRecord(ctx, client.GetRecordParams{App: p.App, ID: p.ID})
	if remoteErr, failed := res.GetLeft(); failed {
		r.remoteFailed(span, KindGetRecord, remoteErr)
		return record.Record{}, remoteErr
	}
	r.metrics.remoteCall(KindGetRecord, false)

	got, _ := res.GetRight()
	rec, err := record.FromRow(p.App, got.Record)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedRow, err)
		setSpanError(span, err)
		return record.Record{}, err
	}
	r.log.Debug("got record", zap.Object("record", rec))
	return rec, nil
}

func (r *run) getRecords(ctx context.Context, p GetRecordsParams) ([]record.Record, error) {
	ctx, span := r.tracer.Start(ctx, "effects.GetRecords", trace.WithAttributes(
		attribute.String("app", string(p.App)),
		attribute.String("query", p.Query),
	))
	defer span.End()

	res := r.client.GetRecords(ctx, client.GetRecordsParams{
		App:    p.App,
		Fields: withIdentityFields(p.Fields),
		Query:  p.Query,
	})
	if remoteErr, failed := res.GetLeft(); failed {
		r.remoteFailed(span, KindGetRecords, remoteErr)
		return nil, remoteErr
	}
	r.metrics.remoteCall(KindGetRecords, false)

	got, _ := res.GetRight()
	recs := make([]record.Record, 0, len(got.Records))
	for i, row := range got.Records {
		rec, err := record.FromRow(p.App, row)
		if err != nil {
			err = fmt.Errorf("%w: row %d: %w", ErrMalformedRow, i, err)
			setSpanError(span, err)
			return nil, err
		}
		recs = append(recs, rec)
	}
	r.log.Debug("got records", zap.String("app", string(p.App)), zap.Int("count", len(recs)))
	return recs, nil
}

// commit sends buf as one bulk request. An empty buffer is not sent.
func (r *run) commit(ctx context.Context, buf Buffer) error {
	if buf.Len() == 0 {
		r.metrics.commit(outcomeEmpty)
		r.log.Debug("nothing to commit")
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "effects.Commit", trace.WithAttributes(
		attribute.Int("requests", buf.Len()),
	))
	defer span.End()

	var res client.Either[struct{}]
	took := timed(r.now, func() {
		res = r.client.BulkRequest(ctx, client.BulkRequestParams{Requests: slices.Clone(buf)})
	})
	fields := []zap.Field{
		zap.Int("requests", buf.Len()),
		zap.Time("started", took.Start()),
		zap.Duration("took", took.Duration()),
	}
	if remoteErr, failed := res.GetLeft(); failed {
		r.metrics.commit(outcomeFailure)
		r.remoteFailed(span, KindCommit, remoteErr)
		r.log.Debug("commit failed", append(fields, zap.Error(remoteErr))...)
		return remoteErr
	}
	r.metrics.commit(outcomeSuccess)
	r.metrics.remoteCall(KindCommit, false)
	r.log.Debug("committed", fields...)
	return nil
}

func (r *run) remoteFailed(span trace.Span, k Kind, err record.Error) {
	r.metrics.remoteCall(k, true)
	span.SetAttributes(attribute.String("error.code", err.Code))
	setSpanError(span, err)
}

func setSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// withIdentityFields adds the identity fields records are built from.
// A nil selection already includes them.
func withIdentityFields(fields []string) []string {
	if fields == nil {
		return nil
	}
	out := slices.Clone(fields)
	for _, code := range []string{record.FieldID, record.FieldRevision} {
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}
