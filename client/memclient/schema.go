package memclient

import (
	"strconv"
	"time"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/on-the-ground/effect_ive_records/record"
)

const (
	tableRecord = "record"
	tableApp    = "app"

	indexID  = "id"
	indexApp = "app"
)

// Codes of the system fields every stored record carries.
const (
	FieldRecordNumber = "Record_number"
	FieldCreatedTime  = "Created_datetime"
	FieldUpdatedTime  = "Updated_datetime"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableRecord: {
				Name: tableRecord,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:   indexID,
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "App"},
							&memdb.StringFieldIndex{Field: "ID"},
						}},
					},
					indexApp: {
						Name:    indexApp,
						Indexer: &memdb.StringFieldIndex{Field: "App"},
					},
				},
			},
			tableApp: {
				Name: tableApp,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// storedRecord is never modified once inserted; writes insert a new one.
type storedRecord struct {
	App      string
	ID       string
	Number   int64
	Revision int64
	Value    record.FieldMap
	Created  time.Time
	Updated  time.Time
}

// storedApp holds the id sequence of an app.
type storedApp struct {
	ID   string
	Last int64
}

func isSystemField(code string) bool {
	switch code {
	case record.FieldID, record.FieldRevision, FieldRecordNumber, FieldCreatedTime, FieldUpdatedTime:
		return true
	default:
		return false
	}
}

// row renders r the way the backend returns records.
func (r *storedRecord) row() record.FieldMap {
	out := r.Value.Clone()
	out[record.FieldID] = record.Field{Type: record.TypeID, Value: r.ID}
	out[record.FieldRevision] = record.Field{Type: record.TypeRevision, Value: strconv.FormatInt(r.Revision, 10)}
	out[FieldRecordNumber] = record.Field{Type: record.TypeRecordNumber, Value: r.ID}
	out[FieldCreatedTime] = record.Field{Type: record.TypeCreatedTime, Value: r.Created.UTC().Format(time.RFC3339)}
	out[FieldUpdatedTime] = record.Field{Type: record.TypeUpdatedTime, Value: r.Updated.UTC().Format(time.RFC3339)}
	return out
}

func (r *storedRecord) project(fields []string) record.FieldMap {
	row := r.row()
	if fields == nil {
		return row
	}
	out := make(record.FieldMap, len(fields))
	for _, code := range fields {
		if f, ok := row[code]; ok {
			out[code] = f
		}
	}
	return out
}
