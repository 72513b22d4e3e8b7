package effects

import (
	"errors"
	"fmt"
	"slices"

	"github.com/on-the-ground/effect_ive_records/record"
	"github.com/on-the-ground/effect_ive_records/validation"
)

// ErrNoRecords is wrapped by the panic value of a plural write given no records.
var ErrNoRecords = errors.New("effects: plural write without records")

// GetRecordParams identifies the record GetRecord reads.
type GetRecordParams struct {
	App record.AppID
	ID  record.RecordID
}

// GetRecordsParams selects records of one app. A nil Fields selects every
// field; otherwise the identity fields are requested as well.
type GetRecordsParams struct {
	App    record.AppID
	Fields []string
	Query  string
}

// AddRecordParams holds the record AddRecord creates.
type AddRecordParams struct {
	Record record.NewRecord
}

// AddRecordsParams holds the records AddRecords creates, in order.
type AddRecordsParams struct {
	Records []record.NewRecord
}

// UpdateRecordParams holds the record UpdateRecord writes back.
type UpdateRecordParams struct {
	Record record.Record
}

// UpdateRecordsParams holds the records UpdateRecords writes back.
type UpdateRecordsParams struct {
	Records []record.Record
}

// DeleteRecordParams holds the record DeleteRecord removes.
type DeleteRecordParams struct {
	Record record.Record
}

// DeleteRecordsParams holds the records DeleteRecords removes.
type DeleteRecordsParams struct {
	Records []record.Record
}

// GetRecord reads one record.
//
// The constructors of this file validate their arguments immediately and
// panic with a *validation.Error when they are malformed.
func GetRecord(params GetRecordParams) Effect[record.Record] {
	validation.Must(validation.DefID, string(params.App))
	validation.Must(validation.DefID, string(params.ID))
	return Effect[record.Record]{node: getRecordNode{params: params}}
}

// GetRecords reads the records of params.App matching params.Query.
func GetRecords(params GetRecordsParams) Effect[[]record.Record] {
	validation.Must(validation.DefID, string(params.App))
	if params.Fields != nil {
		validation.Must(validation.DefFields, params.Fields)
	}
	return Effect[[]record.Record]{node: getRecordsNode{params: GetRecordsParams{
		App:    params.App,
		Fields: slices.Clone(params.Fields),
		Query:  params.Query,
	}}}
}

// AddRecord enqueues the creation of a record. Nothing is sent before Commit.
func AddRecord(params AddRecordParams) Effect[struct{}] {
	validateNewRecord(params.Record)
	return Effect[struct{}]{node: addRecordNode{record: params.Record}}
}

// AddRecords enqueues the creation of records. It panics given no records.
func AddRecords(params AddRecordsParams) Effect[struct{}] {
	mustHaveRecords(KindAddRecords, len(params.Records))
	for _, r := range params.Records {
		validateNewRecord(r)
	}
	return Effect[struct{}]{node: addRecordsNode{records: slices.Clone(params.Records)}}
}

// UpdateRecord enqueues an update and yields the record as it will be
// once committed: same identity, the new value and the next revision.
func UpdateRecord(params UpdateRecordParams) Effect[record.Record] {
	validateRecord(params.Record, true)
	return Effect[record.Record]{node: updateRecordNode{record: params.Record}}
}

// UpdateRecords is UpdateRecord for several records. It panics given no records.
func UpdateRecords(params UpdateRecordsParams) Effect[[]record.Record] {
	mustHaveRecords(KindUpdateRecords, len(params.Records))
	for _, r := range params.Records {
		validateRecord(r, true)
	}
	return Effect[[]record.Record]{node: updateRecordsNode{records: slices.Clone(params.Records)}}
}

// DeleteRecord enqueues a deletion checked against the record revision.
func DeleteRecord(params DeleteRecordParams) Effect[struct{}] {
	validateRecord(params.Record, false)
	return Effect[struct{}]{node: deleteRecordNode{record: params.Record}}
}

// DeleteRecords is DeleteRecord for several records. It panics given no records.
func DeleteRecords(params DeleteRecordsParams) Effect[struct{}] {
	mustHaveRecords(KindDeleteRecords, len(params.Records))
	for _, r := range params.Records {
		validateRecord(r, false)
	}
	return Effect[struct{}]{node: deleteRecordsNode{records: slices.Clone(params.Records)}}
}

// Commit sends every enqueued write as one atomic bulk request.
func Commit() Effect[struct{}] {
	return Effect[struct{}]{node: commitNode{}}
}

func validateNewRecord(r record.NewRecord) {
	validation.Must(validation.DefID, string(r.App()))
	validation.Must(validation.DefFieldMap, r.Value())
}

func validateRecord(r record.Record, withValue bool) {
	validation.Must(validation.DefID, string(r.App()))
	validation.Must(validation.DefID, string(r.ID()))
	validation.Must(validation.DefRevision, int64(r.Revision()))
	if withValue {
		validation.Must(validation.DefFieldMap, r.Value())
	}
}

func mustHaveRecords(k Kind, n int) {
	if n == 0 {
		panic(fmt.Errorf("%w: %s", ErrNoRecords, k))
	}
}
