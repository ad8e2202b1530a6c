package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTemporaryStatusCode(t *testing.T) {
	// every 5xx is temporary except 507
	for code := 500; code <= 599; code++ {
		if code == http.StatusInsufficientStorage {
			assert.False(t, IsTemporaryStatusCode(code), "507 must be permanent")
			continue
		}
		assert.True(t, IsTemporaryStatusCode(code), "status %d should be temporary", code)
	}

	assert.True(t, IsTemporaryStatusCode(http.StatusRequestTimeout))
	assert.True(t, IsTemporaryStatusCode(http.StatusTooManyRequests))

	assert.False(t, IsTemporaryStatusCode(http.StatusBadRequest))
	assert.False(t, IsTemporaryStatusCode(http.StatusUnauthorized))
	assert.False(t, IsTemporaryStatusCode(http.StatusNotFound))
	assert.False(t, IsTemporaryStatusCode(http.StatusOK))
}

func TestIsPermanentFailureStatusCode(t *testing.T) {
	tests := []struct {
		code      int
		permanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusUnauthorized, true},
		{http.StatusInsufficientStorage, true},
		{http.StatusInternalServerError, false},
		{http.StatusTooManyRequests, false},
		{http.StatusRequestTimeout, false},
		{http.StatusOK, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.permanent, IsPermanentFailureStatusCode(tt.code), "status %d", tt.code)
	}
}

func TestIsSuccessStatusCode(t *testing.T) {
	assert.True(t, IsSuccessStatusCode(http.StatusOK))
	assert.True(t, IsSuccessStatusCode(http.StatusNoContent))
	assert.False(t, IsSuccessStatusCode(http.StatusMovedPermanently))
	assert.False(t, IsSuccessStatusCode(http.StatusBadRequest))
}

func TestIsRedirectStatusCode(t *testing.T) {
	assert.True(t, IsRedirectStatusCode(http.StatusMovedPermanently))
	assert.True(t, IsRedirectStatusCode(http.StatusSeeOther))
	assert.False(t, IsRedirectStatusCode(http.StatusOK))
	assert.False(t, IsRedirectStatusCode(http.StatusNotModified))

	assert.True(t, IsPermanentRedirect(http.StatusPermanentRedirect))
	assert.False(t, IsPermanentRedirect(http.StatusFound))
}
