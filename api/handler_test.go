package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/userservice/auth/password"
	"github.com/kbukum/userservice/auth/token"
	"github.com/kbukum/userservice/clock"
	"github.com/kbukum/userservice/credential"
	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/ratelimit"
	"github.com/kbukum/userservice/server/middleware"
	"github.com/kbukum/userservice/user"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var tokenConfig = token.Config{
	Secret:           "0123456789abcdef0123456789abcdef",
	Issuer:           "user-service",
	Audience:         "user-service-clients",
	ExpiresInMinutes: 30,
}

type harness struct {
	router *gin.Engine
	clock  *clock.Mock
}

func newHarness(t *testing.T, svc CredentialService, limit gin.HandlerFunc) *harness {
	t.Helper()
	mock := clock.NewMock(testNow)

	if svc == nil {
		issuer, err := token.NewIssuer(tokenConfig)
		if err != nil {
			t.Fatalf("NewIssuer: %v", err)
		}
		svc, err = credential.NewService(
			user.NewMemoryRepository(),
			password.NewBcryptHasher(password.WithCost(4)),
			issuer,
			credential.WithClock(mock),
		)
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
	}
	validator, err := token.NewValidator(tokenConfig, token.WithClock(mock))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	r := gin.New()
	RegisterRoutes(r, Routes{
		Handler:    NewUserHandler(svc),
		Validator:  validator,
		LoginLimit: limit,
	})
	return &harness{router: r, clock: mock}
}

func (h *harness) send(method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorBody {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestRegisterLoginMe(t *testing.T) {
	h := newHarness(t, nil, nil)

	rec := h.send(http.MethodPost, "/user/register", `{"username":"alice","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "{}" {
		t.Errorf("register body = %s, want {}", rec.Body.String())
	}

	rec = h.send(http.MethodPost, "/user/login", `{"username":"alice","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var login LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if strings.Count(login.Token, ".") != 2 {
		t.Fatalf("token %q is not three dot-separated parts", login.Token)
	}

	rec = h.send(http.MethodGet, "/user/me", "", "Authorization", "Bearer "+login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d: %s", rec.Code, rec.Body.String())
	}
	var me MeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != 1 || me.Username != "alice" {
		t.Errorf("me = %+v", me)
	}
	if want := testNow.Add(30 * time.Minute); !me.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", me.ExpiresAt, want)
	}

	h.clock.Advance(30 * time.Minute)
	rec = h.send(http.MethodGet, "/user/me", "", "Authorization", "Bearer "+login.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d", rec.Code)
	}
	if got := errorBody(t, rec).Code; got != apperrors.ErrCodeTokenExpired {
		t.Errorf("code = %s, want TOKEN_EXPIRED", got)
	}
}

func TestRegisterErrors(t *testing.T) {
	h := newHarness(t, nil, nil)
	if rec := h.send(http.MethodPost, "/user/register", `{"username":"bob","password":"pw"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed register = %d", rec.Code)
	}

	tests := []struct {
		name    string
		body    string
		status  int
		code    apperrors.ErrorCode
		message string
	}{
		{"duplicate", `{"username":"bob","password":"other"}`, http.StatusBadRequest, apperrors.ErrCodeDuplicateUser, "Username already exists."},
		{"blank username", `{"username":"","password":"pw"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Username and password required."},
		{"whitespace password", `{"username":"carol","password":"   "}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Username and password required."},
		{"missing fields", `{}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Username and password required."},
		{"malformed json", `{"username":`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Malformed request body."},
		{"wrong type", `{"username":42,"password":"pw"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "Malformed request body."},
		{"control character", `{"username":"dave\u0000","password":"pw"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, ""},
		{"too long", `{"username":"` + strings.Repeat("x", 151) + `","password":"pw"}`, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.send(http.MethodPost, "/user/register", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			body := errorBody(t, rec)
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
			if tt.message != "" && body.Message != tt.message {
				t.Errorf("message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.send(http.MethodPost, "/user/register", `{"username":"erin","password":"right"}`)

	unknown := h.send(http.MethodPost, "/user/login", `{"username":"nobody","password":"right"}`)
	wrong := h.send(http.MethodPost, "/user/login", `{"username":"erin","password":"wrong"}`)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("bodies differ:\n%s\n%s", unknown.Body.String(), wrong.Body.String())
	}
	if got := errorBody(t, wrong).Message; got != "Invalid username or password." {
		t.Errorf("message = %q", got)
	}
}

func TestLoginBlankInput(t *testing.T) {
	h := newHarness(t, nil, nil)
	rec := h.send(http.MethodPost, "/user/login", `{"username":"  ","password":"pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := errorBody(t, rec).Message; got != "Username and password required." {
		t.Errorf("message = %q", got)
	}
}

func TestMeRequiresBearer(t *testing.T) {
	h := newHarness(t, nil, nil)

	rec := h.send(http.MethodGet, "/user/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = h.send(http.MethodGet, "/user/me", "", "Authorization", "Bearer not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errorBody(t, rec).Code; got != apperrors.ErrCodeMalformedToken && got != apperrors.ErrCodeSignatureInvalid {
		t.Errorf("code = %s", got)
	}
}

type failingService struct{}

func (failingService) Register(context.Context, string, string) error {
	return apperrors.Storage(errors.New("pq: connection refused"))
}

func (failingService) Login(context.Context, string, string) (credential.LoginResult, error) {
	return credential.LoginResult{}, apperrors.Storage(errors.New("pq: connection refused"))
}

func TestStorageFailure(t *testing.T) {
	h := newHarness(t, failingService{}, nil)
	for _, path := range []string{"/user/register", "/user/login"} {
		rec := h.send(http.MethodPost, path, `{"username":"frank","password":"pw"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "pq:") {
			t.Errorf("%s leaked cause: %s", path, rec.Body.String())
		}
	}
}

func TestLoginThrottled(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Enabled: true, Attempts: 3, Window: time.Minute})
	h := newHarness(t, nil, middleware.RateLimit(limiter, middleware.IPBasedKey, logger.NewNop()))

	body := `{"username":"gina","password":"guess"}`
	for i := 0; i < 3; i++ {
		if rec := h.send(http.MethodPost, "/user/login", body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, rec.Code)
		}
	}
	rec := h.send(http.MethodPost, "/user/login", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	if rec := h.send(http.MethodPost, "/user/register", `{"username":"gina","password":"pw"}`); rec.Code != http.StatusOK {
		t.Errorf("register is not throttled, got %d", rec.Code)
	}
}
