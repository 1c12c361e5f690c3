package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/gcalctl/internal/tokenstore"
)

var testScopes = []string{"https://www.googleapis.com/auth/calendar"}

// tokenEndpoint is a fake OAuth token endpoint that counts refresh and
// exchange requests separately.
type tokenEndpoint struct {
	srv *httptest.Server

	refreshCalls  int
	exchangeCalls int

	// refreshError, when set, is returned as an OAuth error for
	// grant_type=refresh_token requests (HTTP 400).
	refreshError string

	// rotatedRefreshToken, when set, is included in refresh responses.
	rotatedRefreshToken string
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{}
	te.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			te.refreshCalls++
			if te.refreshError != "" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": te.refreshError})
				return
			}
			resp := map[string]any{
				"access_token": fmt.Sprintf("refreshed-access-%d", te.refreshCalls),
				"token_type":   "Bearer",
				"expires_in":   3600,
			}
			if te.rotatedRefreshToken != "" {
				resp["refresh_token"] = te.rotatedRefreshToken
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "authorization_code":
			te.exchangeCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "exchanged-access",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"refresh_token": "exchanged-refresh",
			})
		default:
			t.Errorf("unexpected grant_type %q", r.Form.Get("grant_type"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(te.srv.Close)
	return te
}

func (te *tokenEndpoint) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  te.srv.URL + "/auth",
			TokenURL: te.srv.URL + "/token",
			// A fixed style keeps the client from probing with a second
			// request on failure, which would skew the call counters.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// consentStub satisfies Consent without a browser.
type consentStub struct {
	calls int
	err   error
}

func (c *consentStub) Authorize(ctx context.Context, conf *oauth2.Config, state string) (Grant, error) {
	c.calls++
	if c.err != nil {
		return Grant{}, c.err
	}
	return Grant{Code: "stub-code", RedirectURL: "http://127.0.0.1:1/callback"}, nil
}

func newFileBackend(t *testing.T) *tokenstore.FileStore {
	t.Helper()
	backend, err := tokenstore.NewFileStore(t.TempDir() + "/token.json")
	require.NoError(t, err)
	return backend
}

func seedCredential(t *testing.T, backend tokenstore.Store, cred *Credential) {
	t.Helper()
	data, err := cred.marshal()
	require.NoError(t, err)
	require.NoError(t, backend.Write(context.Background(), data))
}

func TestAcquireFreshCredentialNoNetworkCall(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{}

	stored := &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       testScopes,
	}
	seedCredential(t, backend, stored)
	before, err := backend.Read(context.Background())
	require.NoError(t, err)

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, "stored-access", cred.AccessToken)
	assert.Equal(t, 0, te.refreshCalls, "fresh credential must not hit the network")
	assert.Equal(t, 0, te.exchangeCalls)
	assert.Equal(t, 0, consent.calls)

	// Idempotence: no spurious rewrite of the persisted state.
	_, err = store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)
	after, err := backend.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAcquireExpiredWithinMarginRefreshes(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)

	// Expires in 30s: inside the safety margin, treated as expired.
	seedCredential(t, backend, &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       time.Now().Add(30 * time.Second),
		Scopes:       testScopes,
	})

	store := NewStore(te.config(), backend, &consentStub{}, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, 1, te.refreshCalls)
	assert.Equal(t, "refreshed-access-1", cred.AccessToken)
}

func TestAcquireExpiredRefreshesOnceAndPersists(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{}

	oldExpiry := time.Now().Add(-time.Hour)
	seedCredential(t, backend, &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       oldExpiry,
		Scopes:       testScopes,
	})

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, 1, te.refreshCalls, "exactly one refresh call")
	assert.Equal(t, 0, consent.calls)
	assert.Equal(t, "refreshed-access-1", cred.AccessToken)
	assert.True(t, cred.Expiry.After(oldExpiry), "expiry must move forward on refresh")
	assert.Equal(t, "stored-refresh", cred.RefreshToken, "refresh token preserved when not rotated")

	// The refreshed credential must be persisted before return.
	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	persisted, err := unmarshalCredential(data)
	require.NoError(t, err)
	assert.Equal(t, "refreshed-access-1", persisted.AccessToken)
}

func TestAcquireRefreshTokenRotation(t *testing.T) {
	te := newTokenEndpoint(t)
	te.rotatedRefreshToken = "rotated-refresh"
	backend := newFileBackend(t)

	seedCredential(t, backend, &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       time.Now().Add(-time.Hour),
		Scopes:       testScopes,
	})

	store := NewStore(te.config(), backend, &consentStub{}, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, "rotated-refresh", cred.RefreshToken)

	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	persisted, err := unmarshalCredential(data)
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", persisted.RefreshToken)
}

func TestAcquireInvalidGrantFallsThroughToConsent(t *testing.T) {
	te := newTokenEndpoint(t)
	te.refreshError = "invalid_grant"
	backend := newFileBackend(t)
	consent := &consentStub{}

	seedCredential(t, backend, &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "revoked-refresh",
		Expiry:       time.Now().Add(-time.Hour),
		Scopes:       testScopes,
	})

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err, "a revoked refresh token must not strand the user")

	assert.Equal(t, 1, te.refreshCalls)
	assert.Equal(t, 1, consent.calls)
	assert.Equal(t, 1, te.exchangeCalls)
	assert.Equal(t, "exchanged-access", cred.AccessToken)
}

func TestAcquireScopeMismatchForcesReauthWithoutRefresh(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{}

	seedCredential(t, backend, &Credential{
		Version:      credentialVersion,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		Expiry:       time.Now().Add(time.Hour),
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
	})

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, 0, te.refreshCalls, "never refresh with insufficient scope")
	assert.Equal(t, 1, consent.calls)
	assert.Equal(t, testScopes, cred.Scopes)

	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	persisted, err := unmarshalCredential(data)
	require.NoError(t, err)
	assert.Equal(t, testScopes, persisted.Scopes)
}

func TestAcquireEmptyStorageRunsConsentAndPersists(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{}

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err)

	assert.Equal(t, 1, consent.calls)
	assert.Equal(t, "exchanged-access", cred.AccessToken)
	assert.Equal(t, "exchanged-refresh", cred.RefreshToken)

	data, err := backend.Read(context.Background())
	require.NoError(t, err)
	persisted, err := unmarshalCredential(data)
	require.NoError(t, err)
	assert.Equal(t, testScopes, persisted.Scopes)
}

func TestAcquireCorruptedStorageTreatedAsAbsent(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{}
	require.NoError(t, backend.Write(context.Background(), []byte("{not json")))

	store := NewStore(te.config(), backend, consent, nil)
	cred, err := store.Acquire(context.Background(), testScopes)
	require.NoError(t, err, "corruption is treated as absence, not StorageError")

	assert.Equal(t, 1, consent.calls)
	assert.Equal(t, "exchanged-access", cred.AccessToken)
}

func TestAcquireUserDeclined(t *testing.T) {
	te := newTokenEndpoint(t)
	backend := newFileBackend(t)
	consent := &consentStub{err: failuref(UserDeclined, "user declined authorization")}

	store := NewStore(te.config(), backend, consent, nil)
	_, err := store.Acquire(context.Background(), testScopes)

	require.Error(t, err)
	assert.True(t, IsKind(err, UserDeclined))
	assert.Equal(t, 0, te.exchangeCalls)

	// Nothing must be persisted on the failure path.
	_, err = backend.Read(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}

// failingBackend rejects writes, simulating unwritable storage.
type failingBackend struct{}

func (failingBackend) Read(ctx context.Context) ([]byte, error)     { return nil, tokenstore.ErrNotFound }
func (failingBackend) Write(ctx context.Context, data []byte) error { return fmt.Errorf("disk full") }
func (failingBackend) Delete(ctx context.Context) error             { return nil }

func TestAcquirePersistFailureIsStorageError(t *testing.T) {
	te := newTokenEndpoint(t)
	store := NewStore(te.config(), failingBackend{}, &consentStub{}, nil)

	_, err := store.Acquire(context.Background(), testScopes)
	require.Error(t, err)
	assert.True(t, IsKind(err, StorageError), "persist failures are surfaced, not swallowed")
}

func TestForget(t *testing.T) {
	backend := newFileBackend(t)
	seedCredential(t, backend, &Credential{
		Version:     credentialVersion,
		AccessToken: "stored-access",
		Expiry:      time.Now().Add(time.Hour),
		Scopes:      testScopes,
	})

	store := NewStore(&oauth2.Config{}, backend, &consentStub{}, nil)
	require.NoError(t, store.Forget(context.Background()))

	cred, err := store.Stored(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestClassifyTokenError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "rejected by server",
			err:  &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadRequest}, ErrorCode: "invalid_grant"},
			want: InvalidGrant,
		},
		{
			name: "server error",
			err:  &oauth2.RetrieveError{Response: &http.Response{StatusCode: http.StatusBadGateway}},
			want: NetworkError,
		},
		{
			name: "transport error",
			err:  fmt.Errorf("dial tcp: connection refused"),
			want: NetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyTokenError(tt.err).Kind)
		})
	}
}
