package redact

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSensitiveHeaderData(t *testing.T) {
	tests := []struct {
		name              string
		hideSensitiveData bool
		key               string
		value             string
		expected          string
	}{
		{
			name:              "Authorization redacted when hiding enabled",
			hideSensitiveData: true,
			key:               "Authorization",
			value:             "Bearer secret",
			expected:          Marker,
		},
		{
			name:              "BoxApi redacted when hiding enabled",
			hideSensitiveData: true,
			key:               "BoxApi",
			value:             "shared_link=https://app.box.com/s/abc",
			expected:          Marker,
		},
		{
			name:              "Authorization passed through when hiding disabled",
			hideSensitiveData: false,
			key:               "Authorization",
			value:             "Bearer secret",
			expected:          "Bearer secret",
		},
		{
			name:              "Non-sensitive header passed through",
			hideSensitiveData: true,
			key:               "Content-Type",
			value:             "application/json",
			expected:          "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactSensitiveHeaderData(tt.hideSensitiveData, tt.key, tt.value))
		})
	}
}

func TestHeadersRedactsCopyWithoutMutatingInput(t *testing.T) {
	in := http.Header{}
	in.Set("Authorization", "Bearer secret")
	in.Set("BoxApi", "shared_link=https://app.box.com/s/abc")
	in.Set("Content-Type", "application/json")

	out := Headers(in)

	assert.Equal(t, Marker, out.Get("Authorization"))
	assert.Equal(t, Marker, out.Get("BoxApi"))
	assert.Equal(t, "application/json", out.Get("Content-Type"))

	// originals untouched
	assert.Equal(t, "Bearer secret", in.Get("Authorization"))
	assert.Equal(t, "shared_link=https://app.box.com/s/abc", in.Get("BoxApi"))
}

func TestHeadersNil(t *testing.T) {
	assert.Nil(t, Headers(nil))
}
