// Package client defines the boundary between the effect interpreter and
// the record backend.
//
// Expected remote failures travel in the Left side of Either as a
// record.Error. Anything else (programming errors, validation failures)
// is not converted and propagates as a panic.
package client

import (
	"context"

	"code.hybscloud.com/kont"

	"github.com/on-the-ground/effect_ive_records/record"
)

//go:generate mockgen -source client.go -destination ./mockclient/mock_client.go -package mockclient Client

// Either is the result of a backend operation.
type Either[A any] = kont.Either[record.Error, A]

// Ok lifts a successful backend result.
func Ok[A any](a A) Either[A] {
	return kont.Right[record.Error, A](a)
}

// Failed lifts a remote failure.
func Failed[A any](err record.Error) Either[A] {
	return kont.Left[record.Error, A](err)
}

type GetRecordParams struct {
	App record.AppID
	ID  record.RecordID
}

// GetRecordResult carries the row including the $id and $revision fields.
type GetRecordResult struct {
	Record record.FieldMap
}

// GetRecordsParams selects rows of one app. A nil Fields requests every field.
type GetRecordsParams struct {
	App    record.AppID
	Fields []string
	Query  string
}

type GetRecordsResult struct {
	Records []record.FieldMap
}

// BulkRequestParams is executed by the backend in order and atomically.
type BulkRequestParams struct {
	Requests []WriteRequest
}

type Client interface {
	GetRecord(ctx context.Context, params GetRecordParams) Either[GetRecordResult]
	GetRecords(ctx context.Context, params GetRecordsParams) Either[GetRecordsResult]
	BulkRequest(ctx context.Context, params BulkRequestParams) Either[struct{}]
}
