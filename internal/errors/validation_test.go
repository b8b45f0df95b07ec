package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/equipset/internal/errors"
)

func TestValidationBuilder_NoErrors(t *testing.T) {
	vb := errors.NewValidationBuilder()
	assert.NoError(t, vb.Build())
}

func TestValidationBuilder_RequiredFields(t *testing.T) {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("Store")
	vb.RequiredField("Coordinator")

	err := vb.Build()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	meta := errors.GetMeta(err)
	require.NotNil(t, meta)
	fields, ok := meta["validation_errors"].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, fields, "Store")
	assert.Contains(t, fields, "Coordinator")
}

func TestValidationBuilder_InvalidField(t *testing.T) {
	vb := errors.NewValidationBuilder()
	vb.InvalidField("SlotCount", "must be positive")

	err := vb.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SlotCount")
	assert.Contains(t, err.Error(), "must be positive")
}

func TestValidationBuilder_Fieldf(t *testing.T) {
	vb := errors.NewValidationBuilder()
	vb.Fieldf("Slot", "index %d exceeds slot count %d", 5, 2)

	err := vb.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 5 exceeds slot count 2")
}
