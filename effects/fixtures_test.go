package effects_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/client/mockclient"
	"github.com/on-the-ground/effect_ive_records/effects"
	"github.com/on-the-ground/effect_ive_records/record"
)

var errBoom = errors.New("boom")

// newMockClient fails the test on any call that was not expected.
func newMockClient(t *testing.T) *mockclient.MockClient {
	t.Helper()
	return mockclient.NewMockClient(gomock.NewController(t))
}

func rowOf(id string, revision string, value record.FieldMap) record.FieldMap {
	row := value.Clone()
	row[record.FieldID] = record.Field{Type: record.TypeID, Value: id}
	row[record.FieldRevision] = record.Field{Type: record.TypeRevision, Value: revision}
	return row
}

func text(v string) record.FieldMap {
	return record.FieldMap{"text": {Type: "SINGLE_LINE_TEXT", Value: v}}
}

func setText(v string) func(record.FieldMap) record.FieldMap {
	return func(m record.FieldMap) record.FieldMap {
		return m.WithValue("text", v)
	}
}

// captureBulk records the requests of every bulk request and accepts them.
func captureBulk(mc *mockclient.MockClient, times int) *[][]client.WriteRequest {
	var got [][]client.WriteRequest
	mc.EXPECT().
		BulkRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p client.BulkRequestParams) client.Either[struct{}] {
			got = append(got, p.Requests)
			return client.Ok(struct{}{})
		}).
		Times(times)
	return &got
}

// failingThunk fails every call and counts them.
func failingThunk(calls *int, err error) effects.Effect[int] {
	return effects.Async(func(context.Context) (int, error) {
		*calls++
		return 0, err
	})
}

// panicValue returns the value f panics with, or nil.
func panicValue(f func()) (v any) {
	defer func() {
		v = recover()
	}()
	f()
	return nil
}
