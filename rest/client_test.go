package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/awqef/sessiongate"
)

type recordedRequest struct {
	method string
	path   string
	header http.Header
	body   []byte
}

// newRecordingServer answers every request with status and responseBody and
// captures what the client sent.
func newRecordingServer(t *testing.T, status int, responseBody string) (*Client, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(sessiongate.BackendConfig{BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return c, rec
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(sessiongate.BackendConfig{}, nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{
		"access_token": "acc-1",
		"refresh_token": "ref-1",
		"user": {"id": "u-1", "email": "amal@awqef.example", "name": "Amal", "role": "user"}
	}`)

	payload, err := c.Login(context.Background(), "amal@awqef.example", "secret")
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/auth/login", rec.path)
	require.Equal(t, "application/json", rec.header.Get("Content-Type"))
	require.JSONEq(t, `{"email":"amal@awqef.example","password":"secret"}`, string(rec.body))

	require.Equal(t, "acc-1", payload.AccessToken)
	require.Equal(t, "ref-1", payload.RefreshToken)
	require.Equal(t, "u-1", payload.User.ID)
	require.Equal(t, sessiongate.RoleUser, payload.User.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	c, _ := newRecordingServer(t, http.StatusUnauthorized, `{"error":"invalid email or password"}`)

	_, err := c.Login(context.Background(), "amal@awqef.example", "wrong")
	require.ErrorIs(t, err, sessiongate.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "invalid email or password")
}

func TestRegister(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusCreated, `{
		"access_token": "acc-1",
		"user": {"id": "u-2", "email": "noor@awqef.example", "name": "Noor", "role": "user"}
	}`)

	payload, err := c.Register(context.Background(), "noor@awqef.example", "secret", "Noor")
	require.NoError(t, err)

	require.Equal(t, "/auth/register", rec.path)
	require.JSONEq(t, `{"email":"noor@awqef.example","password":"secret","name":"Noor"}`, string(rec.body))
	require.Equal(t, "u-2", payload.User.ID)
	require.Empty(t, payload.RefreshToken)
}

func TestRefreshToken(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{
		"access_token": "acc-2",
		"refresh_token": "ref-2",
		"user": {"id": "u-1", "email": "amal@awqef.example", "name": "Amal", "role": "user"}
	}`)

	payload, err := c.RefreshToken(context.Background(), "ref-1")
	require.NoError(t, err)

	require.Equal(t, "/auth/refresh-token", rec.path)
	require.JSONEq(t, `{"refresh_token":"ref-1"}`, string(rec.body))
	require.Equal(t, "acc-2", payload.AccessToken)
}

func TestValidateTokenSendsBearer(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{"id":"u-1","email":"amal@awqef.example","name":"Amal","role":"admin"}`)

	snap, err := c.ValidateToken(context.Background(), "acc-1")
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, rec.method)
	require.Equal(t, "/auth/validate-token", rec.path)
	require.Equal(t, "Bearer acc-1", rec.header.Get("Authorization"))
	require.Equal(t, sessiongate.RoleAdmin, snap.Role)
}

func TestValidateTokenRejected(t *testing.T) {
	c, _ := newRecordingServer(t, http.StatusUnauthorized, `{"error":"token expired"}`)

	_, err := c.ValidateToken(context.Background(), "stale")
	require.ErrorIs(t, err, sessiongate.ErrInvalidCredentials)
}

func TestPasswordFlows(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, c.ForgotPassword(context.Background(), "amal@awqef.example"))
	require.Equal(t, "/auth/forgot-password", rec.path)
	require.JSONEq(t, `{"email":"amal@awqef.example"}`, string(rec.body))

	require.NoError(t, c.ResetPassword(context.Background(), "reset-token-1", "new-secret"))
	require.Equal(t, "/auth/reset-password", rec.path)
	require.JSONEq(t, `{"token":"reset-token-1","new_password":"new-secret"}`, string(rec.body))
}

func TestUpdateProfileSendsOnlyChangedFields(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{"id":"u-1","email":"amal@awqef.example","name":"Amal K","role":"user"}`)

	name := "Amal K"
	snap, err := c.UpdateProfile(context.Background(), "acc-1", sessiongate.ProfileUpdate{Name: &name})
	require.NoError(t, err)

	require.Equal(t, http.MethodPut, rec.method)
	require.Equal(t, "/users/profile", rec.path)
	require.Equal(t, "Bearer acc-1", rec.header.Get("Authorization"))
	require.Equal(t, "Amal K", snap.Name)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	require.Equal(t, map[string]any{"name": "Amal K"}, sent)
}

func TestLocaleAndRequestIDPropagation(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{"success":true}`)

	ctx := sessiongate.WithLocale(context.Background(), "ar")
	ctx = sessiongate.WithRequestID(ctx, "req-42")
	require.NoError(t, c.ForgotPassword(ctx, "amal@awqef.example"))

	require.Equal(t, "ar", rec.header.Get("Accept-Language"))
	require.Equal(t, "req-42", rec.header.Get("X-Request-ID"))
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	c, rec := newRecordingServer(t, http.StatusOK, `{"success":true}`)

	require.NoError(t, c.ForgotPassword(context.Background(), "amal@awqef.example"))
	require.NotEmpty(t, rec.header.Get("X-Request-ID"))
	require.Empty(t, rec.header.Get("Accept-Language"))
}

func TestServerErrorCarriesMessageAndStatus(t *testing.T) {
	c, _ := newRecordingServer(t, http.StatusInternalServerError, `{"error":"database down"}`)

	err := c.ForgotPassword(context.Background(), "amal@awqef.example")
	require.Error(t, err)
	require.NotErrorIs(t, err, sessiongate.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "database down")
	require.Contains(t, err.Error(), "500")
}
