// Package record holds the value types exchanged with the record backend.
//
// NewRecord is a record that has not been persisted yet. Record is a
// snapshot of a persisted record; its identity never changes and Update is
// the only way to derive a record with different field values.
package record

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// NewRecord is a record without identity, waiting to be created.
type NewRecord struct {
	app   ID
	value FieldMap
}

func NewRecordOf(app ID, value FieldMap) NewRecord {
	return NewRecord{app: app, value: value.Clone()}
}

func (r NewRecord) App() ID { return r.app }

func (r NewRecord) Value() FieldMap { return r.value.Clone() }

// Record is a persisted record at some revision.
type Record struct {
	app      ID
	id       ID
	value    FieldMap
	revision Revision
}

func RecordOf(app, id ID, value FieldMap, revision Revision) Record {
	return Record{app: app, id: id, value: value.Clone(), revision: revision}
}

func (r Record) App() ID { return r.app }

func (r Record) ID() ID { return r.id }

func (r Record) Value() FieldMap { return r.value.Clone() }

// Revision is NoRevision when the record was built without one.
func (r Record) Revision() Revision { return r.revision }

// Update returns a new record whose value is f applied to a copy of the
// current value. Identity and revision are preserved.
func (r Record) Update(f func(FieldMap) FieldMap) Record {
	return Record{app: r.app, id: r.id, value: f(r.value.Clone()).Clone(), revision: r.revision}
}

func (r Record) WithRevision(revision Revision) Record {
	r.value = r.value.Clone()
	r.revision = revision
	return r
}

func (r Record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("app", string(r.app))
	enc.AddString("id", string(r.id))
	enc.AddInt64("revision", int64(r.revision))
	enc.AddInt("fields", len(r.value))
	return nil
}

// FromRow builds a Record out of a backend row. The identity fields are
// read from the row and removed from the record value.
func FromRow(app ID, row FieldMap) (Record, error) {
	idField, ok := row[FieldID]
	if !ok {
		return Record{}, fmt.Errorf("row of app %s has no %s field", app, FieldID)
	}
	id, err := idFromAny(idField.Value)
	if err != nil {
		return Record{}, fmt.Errorf("row of app %s: %w", app, err)
	}

	revision := NoRevision
	if revField, ok := row[FieldRevision]; ok {
		if revision, err = revisionFromAny(revField.Value); err != nil {
			return Record{}, fmt.Errorf("record %s of app %s: %w", id, app, err)
		}
	}

	value := row.Clone()
	delete(value, FieldID)
	delete(value, FieldRevision)
	return Record{app: app, id: id, value: value, revision: revision}, nil
}
