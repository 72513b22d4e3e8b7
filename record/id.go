package record

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/on-the-ground/effect_ive_records/validation"
)

// ID identifies an app or a record. It is kept in its decimal string form
// and is never used as an arithmetic operand.
type ID string

// AppID identifies the app (the remote table) a record belongs to.
type AppID = ID

// RecordID identifies a record inside its app.
type RecordID = ID

// IntID returns the ID of a non-negative integer.
func IntID(n int64) ID {
	if n < 0 {
		panic(fmt.Sprintf("record: negative id %d", n))
	}
	return ID(strconv.FormatInt(n, 10))
}

// ParseID accepts a digit-only string.
func ParseID(s string) (ID, error) {
	if err := validation.Validate(validation.DefID, s); err != nil {
		return "", err
	}
	return ID(s), nil
}

// MustParseID is the panic-on-failure variant of ParseID.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string { return string(id) }

func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both a JSON string and a JSON number.
func (id *ID) UnmarshalJSON(b []byte) error {
	parsed, err := idFromAny(json.RawMessage(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// idFromAny converts the loosely typed identifiers found in backend rows.
func idFromAny(v any) (ID, error) {
	switch v := v.(type) {
	case ID:
		return ParseID(string(v))
	case string:
		return ParseID(v)
	case int:
		return intOrErr(int64(v))
	case int64:
		return intOrErr(v)
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("%w: non-integral id %v", validation.ErrInvalid, v)
		}
		return intOrErr(int64(v))
	case json.Number:
		return ParseID(v.String())
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return ParseID(s)
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", fmt.Errorf("%w: id %s", validation.ErrInvalid, string(v))
		}
		return ParseID(n.String())
	default:
		return "", fmt.Errorf("%w: id of type %T", validation.ErrInvalid, v)
	}
}

func intOrErr(n int64) (ID, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: negative id %d", validation.ErrInvalid, n)
	}
	return IntID(n), nil
}

// Revision is the optimistic-concurrency counter of a record.
// NoRevision disables the revision check on writes.
type Revision int64

const NoRevision Revision = -1

// ParseRevision accepts a digit-only string.
func ParseRevision(s string) (Revision, error) {
	if err := validation.Validate(validation.DefRevision, s); err != nil {
		return NoRevision, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NoRevision, fmt.Errorf("%w: revision %q: %w", validation.ErrInvalid, s, err)
	}
	return Revision(n), nil
}

// Checked reports whether writes with this revision assert it.
func (r Revision) Checked() bool { return r != NoRevision }

// Next is the revision a successful write at r produces.
func (r Revision) Next() Revision {
	if !r.Checked() {
		return NoRevision
	}
	return r + 1
}

func revisionFromAny(v any) (Revision, error) {
	switch v := v.(type) {
	case Revision:
		return v, nil
	case string:
		return ParseRevision(v)
	case int:
		return checkedRevision(int64(v))
	case int64:
		return checkedRevision(v)
	case float64:
		if v != float64(int64(v)) {
			return NoRevision, fmt.Errorf("%w: non-integral revision %v", validation.ErrInvalid, v)
		}
		return checkedRevision(int64(v))
	case json.Number:
		return ParseRevision(v.String())
	default:
		return NoRevision, fmt.Errorf("%w: revision of type %T", validation.ErrInvalid, v)
	}
}

func checkedRevision(n int64) (Revision, error) {
	if err := validation.Validate(validation.DefRevision, n); err != nil {
		return NoRevision, err
	}
	return Revision(n), nil
}
