package serrors

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestProcessValidatorErrors(t *testing.T) {
	type dto struct {
		Name string `validate:"required"`
		Code string `validate:"required,alphanum"`
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(&dto{Code: "not alnum!"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	out := ProcessValidatorErrors(verrs, func(field string) string {
		return "Test.Fields." + field
	})

	require.Len(t, out, 2)
	require.Equal(t, "FIELD_REQUIRED", out["Name"].Code)
	require.Equal(t, "FIELD_INVALID", out["Code"].Code)
	require.Equal(t, "Test.Fields.Name", out["Name"].LocaleKey)

	messages := out.Messages()
	require.Contains(t, messages["Name"], "required")
}

func TestNewFieldRequiredError(t *testing.T) {
	err := NewFieldRequiredError("Name", "Test.Fields.Name")
	require.Equal(t, "FIELD_REQUIRED", err.Code)
	require.Equal(t, "Name is required", err.Error())
}
