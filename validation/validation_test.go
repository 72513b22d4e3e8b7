package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/effect_ive_records/validation"
)

type field struct {
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

func TestValidate_ID(t *testing.T) {
	for _, ok := range []any{0, 42, "0", "12345"} {
		assert.NoErrorf(t, validation.Validate(validation.DefID, ok), "value %v", ok)
	}
	for _, bad := range []any{-1, "", "12a", "-3", 1.5, true} {
		err := validation.Validate(validation.DefID, bad)
		require.Errorf(t, err, "value %v", bad)
		assert.ErrorIs(t, err, validation.ErrInvalid)

		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, validation.DefID, verr.Definition)
	}
}

func TestValidate_Revision(t *testing.T) {
	assert.NoError(t, validation.Validate(validation.DefRevision, -1))
	assert.NoError(t, validation.Validate(validation.DefRevision, 7))
	assert.NoError(t, validation.Validate(validation.DefRevision, "7"))
	assert.Error(t, validation.Validate(validation.DefRevision, -2))
	assert.Error(t, validation.Validate(validation.DefRevision, "-1"))
}

func TestValidate_FieldMap(t *testing.T) {
	ok := map[string]field{
		"text":   {Value: "a"},
		"number": {Type: "NUMBER", Value: "3"},
		"empty":  {Value: nil},
	}
	assert.NoError(t, validation.Validate(validation.DefFieldMap, ok))

	assert.Error(t, validation.Validate(validation.DefFieldMap, map[string]field{"": {Value: 1}}))
	assert.Error(t, validation.Validate(validation.DefFieldMap, map[string]any{"text": "bare"}))
}

func TestValidate_NullValues(t *testing.T) {
	assert.NoError(t, validation.Validate(validation.DefField, field{Type: "DATE"}))
	assert.NoError(t, validation.Validate(validation.DefFieldMap, map[string]field{
		"date":   {Type: "DATE", Value: nil},
		"number": {Type: "NUMBER"},
	}))
	assert.Error(t, validation.Validate(validation.DefID, nil))
}

func TestValidate_Fields(t *testing.T) {
	assert.NoError(t, validation.Validate(validation.DefFields, []string{"text", "$id"}))
	assert.NoError(t, validation.Validate(validation.DefFields, []string{}))
	assert.Error(t, validation.Validate(validation.DefFields, []string{"text", ""}))
}

func TestMust_PanicsWithError(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, validation.ErrInvalid)
	}()
	validation.Must(validation.DefID, "nope")
}
