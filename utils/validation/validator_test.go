package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Name          string `json:"name" validate:"required"`
	InstituteCode string `json:"instituteCode" validate:"required,institutecode"`
}

func TestInstituteCode(t *testing.T) {
	v := NewValidator()

	for _, code := range []string{"AKTU", "IIT-DEL-01", "x1"} {
		assert.NoError(t, v.ValidateStruct(registration{Name: "n", InstituteCode: code}), code)
	}
	for _, code := range []string{"A", "-IIT", "IIT DEL", "IIT_DEL"} {
		assert.Error(t, v.ValidateStruct(registration{Name: "n", InstituteCode: code}), code)
	}
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(registration{InstituteCode: "bad code"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Equal(t, "name is required", msgs["name"])
	assert.Contains(t, msgs["instituteCode"], "letters, digits and hyphens")
}

func TestValidatePassword(t *testing.T) {
	ok, problems := ValidatePassword("12345678")
	assert.False(t, ok)
	assert.Len(t, problems, 1)

	ok, _ = ValidatePassword("abcd1234")
	assert.True(t, ok)
}
