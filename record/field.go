package record

import "maps"

// Field is one value of a record together with its declared backend type.
type Field struct {
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

// Field types maintained by the backend itself.
const (
	TypeRecordNumber = "RECORD_NUMBER"
	TypeModifier     = "MODIFIER"
	TypeCreator      = "CREATOR"
	TypeUpdatedTime  = "UPDATED_TIME"
	TypeCreatedTime  = "CREATED_TIME"

	TypeID       = "__ID__"
	TypeRevision = "__REVISION__"
)

// Identity fields every backend row carries.
const (
	FieldID       = "$id"
	FieldRevision = "$revision"
)

// IsReadOnlyType reports whether the backend rejects writes to fields of type t.
func IsReadOnlyType(t string) bool {
	switch t {
	case TypeRecordNumber, TypeModifier, TypeCreator, TypeUpdatedTime, TypeCreatedTime:
		return true
	default:
		return false
	}
}

// FieldMap maps field codes to fields.
type FieldMap map[string]Field

// Clone is shallow: field values themselves are shared.
func (m FieldMap) Clone() FieldMap {
	if m == nil {
		return FieldMap{}
	}
	return maps.Clone(m)
}

// WithValue returns a copy of m where code holds v. A declared type is kept.
func (m FieldMap) WithValue(code string, v any) FieldMap {
	out := m.Clone()
	f := out[code]
	f.Value = v
	out[code] = f
	return out
}

// Writable returns a copy of m without the fields of read-only types.
func (m FieldMap) Writable() FieldMap {
	out := make(FieldMap, len(m))
	for code, f := range m {
		if IsReadOnlyType(f.Type) {
			continue
		}
		out[code] = f
	}
	return out
}

// Payload returns a copy of m holding values only, the shape write requests carry.
func (m FieldMap) Payload() FieldMap {
	out := make(FieldMap, len(m))
	for code, f := range m {
		out[code] = Field{Value: f.Value}
	}
	return out
}
