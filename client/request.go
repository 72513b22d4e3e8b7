package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/on-the-ground/effect_ive_records/record"
)

const (
	APIRecord  = "/k/v1/record.json"
	APIRecords = "/k/v1/records.json"
)

var (
	_ WriteRequest = CreateRecord{}
	_ WriteRequest = CreateRecords{}
	_ WriteRequest = UpdateRecord{}
	_ WriteRequest = UpdateRecords{}
	_ WriteRequest = DeleteRecords{}
)

// WriteRequest is a sealed interface for the entries of a bulk request.
// Only the variants of this package implement it.
type WriteRequest interface {
	Method() string
	API() string
	App() record.AppID
	json.Marshaler
	writeRequest()
}

// CreateRecord creates one record.
type CreateRecord struct {
	AppID  record.AppID
	Record record.FieldMap
}

func (CreateRecord) Method() string      { return http.MethodPost }
func (CreateRecord) API() string         { return APIRecord }
func (r CreateRecord) App() record.AppID { return r.AppID }
func (CreateRecord) writeRequest()       {}
func (r CreateRecord) MarshalJSON() ([]byte, error) {
	return marshalRequest(r, struct {
		App    record.AppID    `json:"app"`
		Record record.FieldMap `json:"record"`
	}{r.AppID, r.Record})
}

// CreateRecords creates several records of the same app.
type CreateRecords struct {
	AppID   record.AppID
	Records []record.FieldMap
}

func (CreateRecords) Method() string      { return http.MethodPost }
func (CreateRecords) API() string         { return APIRecords }
func (r CreateRecords) App() record.AppID { return r.AppID }
func (CreateRecords) writeRequest()       {}
func (r CreateRecords) MarshalJSON() ([]byte, error) {
	return marshalRequest(r, struct {
		App     record.AppID      `json:"app"`
		Records []record.FieldMap `json:"records"`
	}{r.AppID, r.Records})
}

// UpdateRecord updates one record, asserting Revision unless it is record.NoRevision.
type UpdateRecord struct {
	AppID    record.AppID
	ID       record.RecordID
	Record   record.FieldMap
	Revision record.Revision
}

func (UpdateRecord) Method() string      { return http.MethodPut }
func (UpdateRecord) API() string         { return APIRecord }
func (r UpdateRecord) App() record.AppID { return r.AppID }
func (UpdateRecord) writeRequest()       {}
func (r UpdateRecord) MarshalJSON() ([]byte, error) {
	return marshalRequest(r, struct {
		App      record.AppID    `json:"app"`
		ID       record.RecordID `json:"id"`
		Record   record.FieldMap `json:"record"`
		Revision record.Revision `json:"revision"`
	}{r.AppID, r.ID, r.Record, r.Revision})
}

// UpdateEntry is one record of an UpdateRecords request.
type UpdateEntry struct {
	ID       record.RecordID `json:"id"`
	Record   record.FieldMap `json:"record"`
	Revision record.Revision `json:"revision"`
}

// UpdateRecords updates several records of the same app.
type UpdateRecords struct {
	AppID   record.AppID
	Records []UpdateEntry
}

func (UpdateRecords) Method() string      { return http.MethodPut }
func (UpdateRecords) API() string         { return APIRecords }
func (r UpdateRecords) App() record.AppID { return r.AppID }
func (UpdateRecords) writeRequest()       {}
func (r UpdateRecords) MarshalJSON() ([]byte, error) {
	return marshalRequest(r, struct {
		App     record.AppID  `json:"app"`
		Records []UpdateEntry `json:"records"`
	}{r.AppID, r.Records})
}

// DeleteRecords deletes records of the same app. Revisions is parallel to IDs.
type DeleteRecords struct {
	AppID     record.AppID
	IDs       []record.RecordID
	Revisions []record.Revision
}

func (DeleteRecords) Method() string      { return http.MethodDelete }
func (DeleteRecords) API() string         { return APIRecords }
func (r DeleteRecords) App() record.AppID { return r.AppID }
func (DeleteRecords) writeRequest()       {}
func (r DeleteRecords) MarshalJSON() ([]byte, error) {
	return marshalRequest(r, struct {
		App       record.AppID      `json:"app"`
		IDs       []record.RecordID `json:"ids"`
		Revisions []record.Revision `json:"revisions"`
	}{r.AppID, r.IDs, r.Revisions})
}

func marshalRequest(r WriteRequest, payload any) ([]byte, error) {
	return json.Marshal(struct {
		Method  string `json:"method"`
		API     string `json:"api"`
		Payload any    `json:"payload"`
	}{r.Method(), r.API(), payload})
}

// MatchWriteRequest dispatches r to the callback of its variant.
func MatchWriteRequest[T any](
	r WriteRequest,
	onCreate func(CreateRecord) T,
	onCreateMany func(CreateRecords) T,
	onUpdate func(UpdateRecord) T,
	onUpdateMany func(UpdateRecords) T,
	onDelete func(DeleteRecords) T,
) T {
	switch r := r.(type) {
	case CreateRecord:
		return onCreate(r)
	case CreateRecords:
		return onCreateMany(r)
	case UpdateRecord:
		return onUpdate(r)
	case UpdateRecords:
		return onUpdateMany(r)
	case DeleteRecords:
		return onDelete(r)
	default:
		panic(fmt.Sprintf("exhaustive match fallback, request type: %T", r))
	}
}
