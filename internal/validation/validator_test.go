package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/kouichiii/paper-manager/internal/errors"
)

type sampleInput struct {
	Title string `json:"title" validate:"required,notblank,max=10"`
	Year  *int   `json:"year" validate:"omitempty,gte=1900,lte=2100"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	year := 2024
	err := v.Validate(sampleInput{Title: "hello", Year: &year})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(sampleInput{Title: ""})
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
	require.Len(t, derr.Details, 1)
	assert.Equal(t, "title", derr.Details[0].Field)
	assert.Equal(t, "is required", derr.Details[0].Error)
}

func TestValidate_NotBlank(t *testing.T) {
	v := New()
	err := v.Validate(sampleInput{Title: "   "})
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Details, 1)
	assert.Equal(t, "must not be blank", derr.Details[0].Error)
}

func TestValidate_RangeMessages(t *testing.T) {
	v := New()
	year := 1800
	err := v.Validate(sampleInput{Title: "ok", Year: &year})
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Details, 1)
	assert.Equal(t, "year", derr.Details[0].Field)
	assert.Equal(t, "must be greater than or equal to 1900", derr.Details[0].Error)
}
