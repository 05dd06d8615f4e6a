package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/authkeeper/internal/clock"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router http.Handler
	clock  *clock.FakeClock
	svc    *services.AccountService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	issuer, err := auth.NewIssuer([]byte("http-test-secret"), clk)
	require.NoError(t, err)

	svc := services.NewAccountService(users.NewMemoryRepository(),
		password.NewBcryptHasher(password.WithCost(bcrypt.MinCost)), issuer, time.Hour, nil)

	return &testServer{router: NewRouter(svc, nil), clock: clk, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, Prefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	out := map[string]string{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func bearer(token string) map[string]string {
	return map[string]string{common.AuthorizationHeaderName: "Bearer " + token}
}

var aliceReq = common.RegisterRequest{Username: "alice", Email: "a@x.io", Password: "Passw0rd!"}

func TestAPI_AliceFlow(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	regToken := body["token"]
	require.NotEmpty(t, regToken)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec, body = s.do(t, http.MethodGet, common.PathUser, nil, bearer(regToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "a@x.io", body["email"])

	rec, body = s.do(t, http.MethodPost, common.PathLogin, common.LoginRequest{Username: "alice", Password: "Passw0rd!"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, body["token"])

	s.clock.Advance(time.Hour)
	rec, body = s.do(t, http.MethodGet, common.PathUser, nil, bearer(regToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "session has expired", body["error"])
}

func TestAPI_RegisterErrors(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name string
		body any
		code int
		msg  string
	}{
		{"missing email", map[string]string{"username": "bob", "password": "Passw0rd!"}, http.StatusBadRequest, "username, email and password are required"},
		{"malformed json", "{", http.StatusBadRequest, "username, email and password are required"},
		{"invalid email", common.RegisterRequest{Username: "bob", Email: "bob", Password: "Passw0rd!"}, http.StatusBadRequest, "invalid email address"},
		{"weak password", common.RegisterRequest{Username: "bob", Email: "b@x.io", Password: "password"}, http.StatusBadRequest, common.Message(common.ErrWeakPassword)},
		{"password longer than 72 bytes", common.RegisterRequest{Username: "bob", Email: "b@x.io", Password: strings.Repeat("Aa1!", 20)}, http.StatusBadRequest, common.Message(common.ErrWeakPassword)},
		{"username taken", aliceReq, http.StatusBadRequest, "username is already taken"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPost, common.PathRegister, tc.body, nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestAPI_LoginErrors(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)

	rec, body := s.do(t, http.MethodPost, common.PathLogin, common.LoginRequest{Username: "alice", Password: "Wr0ngPass!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", body["error"])

	rec, body2 := s.do(t, http.MethodPost, common.PathLogin, common.LoginRequest{Username: "nobody", Password: "Passw0rd!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, body["error"], body2["error"])

	rec, _ = s.do(t, http.MethodPost, common.PathLogin, map[string]string{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_UserAuthorization(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)
	token := body["token"]

	tests := []struct {
		name   string
		header map[string]string
		code   int
	}{
		{"no header", nil, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{common.AuthorizationHeaderName: "Basic " + token}, http.StatusUnauthorized},
		{"empty token", map[string]string{common.AuthorizationHeaderName: "Bearer "}, http.StatusUnauthorized},
		{"garbage token", bearer("garbage"), http.StatusForbidden},
		{"tampered token", bearer(token + "x"), http.StatusForbidden},
		{"lowercase scheme", map[string]string{common.AuthorizationHeaderName: "bearer " + token}, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := s.do(t, http.MethodGet, common.PathUser, nil, tc.header)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestAPI_UserDeleted(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)

	require.NoError(t, s.svc.DeleteAccount(context.Background(), "alice"))

	rec, _ := s.do(t, http.MethodGet, common.PathUser, nil, bearer(body["token"]))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Ping(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, http.MethodGet, common.PathPing, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

type stubAccounts struct {
	err   error
	panic bool
}

func (s *stubAccounts) Register(ctx context.Context, username, email, password string) (string, error) {
	if s.panic {
		panic("boom")
	}
	return "", s.err
}

func (s *stubAccounts) Login(ctx context.Context, username, password string) (string, error) {
	return "", s.err
}

func (s *stubAccounts) Profile(ctx context.Context, token string) (*models.Profile, error) {
	return nil, s.err
}

func TestAPI_StorageAndUnknownErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"storage", errors.Join(common.ErrStorageUnavailable, errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "service is temporarily unavailable"},
		{"unknown", errors.New("something odd"), http.StatusInternalServerError, "an unknown error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &testServer{router: NewRouter(&stubAccounts{err: tc.err}, nil)}
			rec, body := s.do(t, http.MethodPost, common.PathLogin, common.LoginRequest{Username: "a", Password: "b"}, nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, body["error"])
			assert.NotContains(t, rec.Body.String(), "refused")
		})
	}
}

func TestAPI_PanicIsRecovered(t *testing.T) {
	s := &testServer{router: NewRouter(&stubAccounts{panic: true}, nil)}

	rec, body := s.do(t, http.MethodPost, common.PathRegister, aliceReq, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "an unknown error occurred", body["error"])
}

func TestStatusFor(t *testing.T) {
	tests := map[error]int{
		nil:                          http.StatusOK,
		common.ErrMissingFields:      http.StatusBadRequest,
		common.ErrInvalidEmail:       http.StatusBadRequest,
		common.ErrWeakPassword:       http.StatusBadRequest,
		common.ErrUsernameTaken:      http.StatusBadRequest,
		common.ErrInvalidCredentials: http.StatusUnauthorized,
		common.ErrTokenExpired:       http.StatusForbidden,
		common.ErrInvalidToken:       http.StatusForbidden,
		common.ErrorNotFound:         http.StatusNotFound,
		common.ErrStorageUnavailable: http.StatusServiceUnavailable,
		errors.New("x"):              http.StatusInternalServerError,
	}
	for err, want := range tests {
		assert.Equal(t, want, StatusFor(err), "err=%v", err)
	}
}
