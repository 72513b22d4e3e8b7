// Package validation checks the arguments of record effect constructors
// against a CUE schema.
//
// The schema is embedded in the binary and compiled once. Every check is a
// unification of the encoded Go value with one definition of the schema,
// followed by a concrete validation.
package validation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/on-the-ground/effect_ive_records/pure"
)

// Definition names a definition of the embedded schema.
type Definition string

const (
	DefID       Definition = "#ID"
	DefRevision Definition = "#Revision"
	DefField    Definition = "#Field"
	DefFieldMap Definition = "#FieldMap"
	DefFields   Definition = "#Fields"
)

//go:embed schema.cue
var schemaSource string

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("invalid argument")

// Error reports which definition rejected which value.
type Error struct {
	Definition Definition
	Value      any
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrInvalid, e.Definition, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// cue.Context is not safe for concurrent use.
var (
	mu     sync.Mutex
	once   sync.Once
	cctx   *cue.Context
	schema cue.Value
)

func load() {
	cctx = cuecontext.New()
	schema = cctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		panic(fmt.Errorf("validation: compiling embedded schema: %w", err))
	}
}

// Results for string and int64 values, the shapes of ids and revisions,
// are memoized.
const scalarTableSize = 4096

var (
	validateString = pure.TableizeI2O1(func(def Definition, s string) error {
		return validate(def, s)
	}, scalarTableSize)
	validateInt64 = pure.TableizeI2O1(func(def Definition, n int64) error {
		return validate(def, n)
	}, scalarTableSize)
)

// Validate checks v against the definition def.
func Validate(def Definition, v any) error {
	switch v := v.(type) {
	case string:
		return validateString(def, v)
	case int64:
		return validateInt64(def, v)
	default:
		return validate(def, v)
	}
}

func validate(def Definition, v any) error {
	once.Do(load)

	mu.Lock()
	defer mu.Unlock()

	d := schema.LookupPath(cue.ParsePath(string(def)))
	if !d.Exists() {
		panic(fmt.Sprintf("validation: unknown definition %s", def))
	}
	encoded, err := encode(v)
	if err != nil {
		return &Error{Definition: def, Value: v, Err: err}
	}
	if err := d.Unify(encoded).Validate(cue.Concrete(true)); err != nil {
		return &Error{Definition: def, Value: v, Err: err}
	}
	return nil
}

// encode goes through JSON so that nil values become the concrete null
// instead of top. Callers hold mu.
func encode(v any) (cue.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return cue.Value{}, err
	}
	expr, err := cuejson.Extract("value.json", b)
	if err != nil {
		return cue.Value{}, err
	}
	encoded := cctx.BuildExpr(expr)
	return encoded, encoded.Err()
}

// Must is the panic-on-failure variant of Validate.
// The panic value is the *Error itself.
func Must(def Definition, v any) {
	if err := Validate(def, v); err != nil {
		panic(err)
	}
}
