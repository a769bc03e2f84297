package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name      string `json:"name" validate:"required,person_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,pwd"`
	BirthDate string `json:"birth_date" validate:"required,date_only"`
	Phone     string `json:"phone" validate:"omitempty,phone_br"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestRegister_Valid(t *testing.T) {
	v := newValidator()

	err := v.Struct(signup{Name: "Ana", Email: "ana@mail.com", Password: "secret", BirthDate: "2000-01-31", Phone: "(11) 98765-4321"})
	assert.NoError(t, err)

	err = v.Struct(signup{Name: "Ana", Email: "ana@mail.com", Password: "secret", BirthDate: "2000-01-31"})
	assert.NoError(t, err, "phone is optional")
}

func TestToDetails_FieldMessages(t *testing.T) {
	v := newValidator()

	err := v.Struct(signup{Name: "An", Email: "nope", Password: "123", BirthDate: "31/01/2000", Phone: "11987654321"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, map[string]string{
		"name":       "must be between 3 and 100 characters long",
		"email":      "must be a valid email",
		"password":   "must be between 6 and 72 characters long",
		"birth_date": "must be a date in YYYY-MM-DD format",
		"phone":      "must match (99) 99999-9999",
	}, details)
}

func TestRegister_PasswordByteLimit(t *testing.T) {
	v := newValidator()
	base := signup{Name: "Ana", Email: "ana@mail.com", BirthDate: "2000-01-31"}

	base.Password = strings.Repeat("a", 72)
	assert.NoError(t, v.Struct(base))

	base.Password = strings.Repeat("a", 73)
	err := v.Struct(base)
	require.Error(t, err)
	assert.Equal(t, "must be between 6 and 72 characters long", ToDetails(err)["password"])
}

func TestToDetails_Required(t *testing.T) {
	err := newValidator().Struct(signup{})

	details := ToDetails(err)
	assert.Equal(t, "is required", details["email"])
	assert.NotContains(t, details, "phone")
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var s signup
	err := json.Unmarshal([]byte(`{"name":`), &s)

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
