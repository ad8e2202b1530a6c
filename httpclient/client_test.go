// httpclient/client_test.go
package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSession struct {
	token          string
	tokenErr       error
	expiredHandled int
	handlerErr     error
}

func (s *staticSession) GetAccessToken(ctx context.Context) (string, error) {
	return s.token, s.tokenErr
}

func (s *staticSession) HandleExpiredTokensError(cause error) error {
	s.expiredHandled++
	return s.handlerErr
}

func newTestClient(t *testing.T, apiRootURL string, session TokenProvider) *Client {
	t.Helper()
	config := ClientConfig{APIRootURL: apiRootURL}
	SetDefaultValuesClientConfig(&config)
	config.APIRootURL = apiRootURL

	client, err := BuildClient(config, session, false)
	require.NoError(t, err)
	return client
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer t0", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"me-id","name":"Test User"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &staticSession{token: "t0"})

	var user struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	resp, err := client.Get(context.Background(), "/users/me", nil, &user)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "me-id", user.ID)
	assert.Equal(t, "Test User", user.Name)
}

func TestClientPostEncodesJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"folder-1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &staticSession{token: "t0"})

	var folder struct {
		ID string `json:"id"`
	}
	resp, err := client.Post(context.Background(), "/folders", map[string]string{"name": "reports"}, &folder)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "folder-1", folder.ID)
}

func TestClientSharedLinkAndIPHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shared_link=https://app.box.com/s/abc&shared_link_password=pw", r.Header.Get("BoxApi"))
		assert.Equal(t, "10.0.0.7", r.Header.Get("X-Forwarded-For"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &staticSession{token: "t0"}).
		WithSharedLink("https://app.box.com/s/abc", "pw").
		WithIPAddress("10.0.0.7")

	_, err := client.Get(context.Background(), "/files/1", nil, nil)
	require.NoError(t, err)
}

func TestClientUnauthorizedTriggersExpiredTokensHandler(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := &staticSession{token: "t0"}
	client := newTestClient(t, server.URL, session)

	_, err := client.Get(context.Background(), "/users/me", nil, nil)

	require.Error(t, err)
	assert.Equal(t, 1, session.expiredHandled)
}

func TestClientExpiredTokensHandlerFailureWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	storeErr := errors.New("store unavailable")
	session := &staticSession{token: "t0", handlerErr: storeErr}
	client := newTestClient(t, server.URL, session)

	_, err := client.Get(context.Background(), "/users/me", nil, nil)

	require.ErrorIs(t, err, storeErr)
}

func TestClientSessionErrorShortCircuits(t *testing.T) {
	sessionErr := errors.New("credentials revoked")
	client := newTestClient(t, "https://api.box.test/2.0", &staticSession{tokenErr: sessionErr})

	_, err := client.Get(context.Background(), "/users/me", nil, nil)

	require.ErrorIs(t, err, sessionErr)
}

func TestBuildClientRequiresSession(t *testing.T) {
	_, err := BuildClient(ClientConfig{}, nil, true)
	require.Error(t, err)
}

func TestBuildClientDoesNotMutateCallerConfig(t *testing.T) {
	callerConfig := ClientConfig{
		AppAuth: &AppAuthConfig{PrivateKey: "pem"},
	}

	_, err := BuildClient(callerConfig, &staticSession{token: "t0"}, true)
	require.NoError(t, err)

	// Defaulting happens on an internal copy; the caller's AppAuth keeps its
	// zero values.
	assert.Empty(t, callerConfig.AppAuth.Algorithm)
	assert.Zero(t, callerConfig.AppAuth.ExpirationTime)
	assert.Zero(t, callerConfig.MaxRetryAttempts)
}
