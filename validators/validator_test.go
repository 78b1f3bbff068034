package validators

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
}

func TestValidate_OK(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&signup{Username: "jane_doe", Email: "jane@example.com"}))
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&signup{Username: "j!", Email: "nope"})
	require.Error(t, err)

	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	msg := he.Message.(string)
	assert.Contains(t, msg, "Username must be at least 3 characters")
	assert.Contains(t, msg, "Email must be a valid email address")
}

func TestValidate_UsernameCharset(t *testing.T) {
	v := NewValidator()
	err := v.Validate(&signup{Username: "jane doe", Email: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.(*echo.HTTPError).Message, "letters, digits and underscores")
}

type note struct {
	Body  string  `json:"body" validate:"required,notblank,max=20"`
	Title *string `json:"title" validate:"omitempty,notblank"`
}

func TestValidate_NotBlank(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&note{Body: " hi "}))

	err := v.Validate(&note{Body: " \t\n "})
	require.Error(t, err)
	assert.Contains(t, err.(*echo.HTTPError).Message, "Body must not be blank")

	blank := "   "
	err = v.Validate(&note{Body: "ok", Title: &blank})
	require.Error(t, err)
	assert.Contains(t, err.(*echo.HTTPError).Message, "Title must not be blank")
}
