package ierrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("/x/:module", "bad configuration")
	assert.Equal(t, "CONFIG_ERROR", err.Code())
	assert.Equal(t, "bad configuration", err.Error())
	assert.Equal(t, "/x/:module", err.Schema)
}

func TestFetchError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewFetchError("https://deno.land/doc", "failed to fetch", cause)
	assert.Equal(t, "FETCH_ERROR", err.Code())
	assert.Equal(t, "failed to fetch: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDecodeError(t *testing.T) {
	err := NewDecodeError("https://deno.land/doc", "unexpected body", nil)
	assert.Equal(t, "DECODE_ERROR", err.Code())
	assert.Equal(t, "https://deno.land/doc", err.URL)
}

func TestTemplateError(t *testing.T) {
	err := NewTemplateError("https://api/${module}", "does not expand", nil)
	assert.Equal(t, "TEMPLATE_ERROR", err.Code())
	assert.Equal(t, "https://api/${module}", err.Template)
}

func TestErrorsAs(t *testing.T) {
	var err error = NewFetchError("https://deno.land", "failed", nil)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "https://deno.land", fetchErr.URL)
}
