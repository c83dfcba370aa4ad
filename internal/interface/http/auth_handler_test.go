package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaamsetu/kaamsetu-api/internal/application"
	"github.com/kaamsetu/kaamsetu-api/internal/domain/entity"
	repo "github.com/kaamsetu/kaamsetu-api/internal/domain/repository"
	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
	"github.com/kaamsetu/kaamsetu-api/pkg/validation"
)

// Map-backed stand-ins for the Postgres repositories, enough to drive
// the handlers through real request/response cycles.

type memIdentityRepo struct {
	mu       sync.Mutex
	byMobile map[string]*entity.Identity
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byMobile: map[string]*entity.Identity{}}
}

func (m *memIdentityRepo) Create(_ context.Context, u *entity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMobile[u.Mobile]; ok {
		return repo.ErrDuplicate
	}
	u.ID = uuid.NewString()
	cp := *u
	m.byMobile[u.Mobile] = &cp
	return nil
}

func (m *memIdentityRepo) GetByID(_ context.Context, id string) (*entity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMobile {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memIdentityRepo) GetByMobile(_ context.Context, mobile string) (*entity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMobile[mobile]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memIdentityRepo) GetByMobileAndCode(_ context.Context, mobile, code string) (*entity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byMobile[mobile]
	if !ok || u.OTPCode == nil || *u.OTPCode != code {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memIdentityRepo) SetOTP(_ context.Context, id string, code string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMobile {
		if u.ID == id {
			c, e := code, expiry
			u.OTPCode = &c
			u.OTPExpiry = &e
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memIdentityRepo) ConsumeOTP(_ context.Context, id string, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byMobile {
		if u.ID == id {
			if u.OTPCode == nil || *u.OTPCode != code {
				return false, nil
			}
			u.OTPCode = nil
			u.OTPExpiry = nil
			u.IsVerified = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memIdentityRepo) ExistsByMobile(_ context.Context, mobile string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byMobile[mobile]
	return ok, nil
}

type memProfileRepo struct{}

func (memProfileRepo) CandidateProfileExists(context.Context, string) (bool, error) { return false, nil }
func (memProfileRepo) EmployerProfileExists(context.Context, string) (bool, error) { return false, nil }

type memAuditRepo struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
}

func (m *memAuditRepo) Insert(_ context.Context, e *entity.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.NewString()
	m.entries = append(m.entries, *e)
	return nil
}

type envelope struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newTestRouter(t *testing.T, echoOTP bool) (*gin.Engine, *memIdentityRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tokens, err := helpers.NewTokenIssuer("handler-test-secret", 30*24*time.Hour)
	require.NoError(t, err)

	identities := newMemIdentityRepo()
	svc := application.NewAuthService(identities, memProfileRepo{},
		application.NewRecorder(&memAuditRepo{}, logger, nil, ""),
		tokens, nil, nil, logger, 10*time.Minute, echoOTP)

	h := NewAuthHandler(svc, nil, logger)

	r := gin.New()
	auth := r.Group("/api/auth")
	{
		auth.POST("/send-otp", h.SendOTP)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/register", h.Register)
		auth.GET("/me", middleware.Auth(tokens), h.Me)
	}
	return r, identities
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestSendOTPEchoesCodeOutsideProduction(t *testing.T) {
	r, identities := newTestRouter(t, true)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/send-otp",
		gin.H{"mobile": "9999999999"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	otp, ok := env.Data["otp"].(string)
	require.True(t, ok, "otp must be echoed when enabled")
	assert.Len(t, otp, 6)

	u, err := identities.GetByMobile(context.Background(), "9999999999")
	require.NoError(t, err)
	assert.Equal(t, otp, *u.OTPCode)
}

func TestSendOTPSuppressesCodeInProduction(t *testing.T) {
	r, _ := newTestRouter(t, false)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/send-otp",
		gin.H{"mobile": "9999999999"}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	_, present := env.Data["otp"]
	assert.False(t, present)
}

func TestSendOTPSameShapeForNewAndKnownMobile(t *testing.T) {
	r, _ := newTestRouter(t, false)

	_, first := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "9999999999"}, nil)
	_, second := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "9999999999"}, nil)

	// Account existence must not be inferable from the response.
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.Status, second.Status)
}

func TestSendOTPRejectsBadMobile(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "12345"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPFullFlow(t *testing.T) {
	r, _ := newTestRouter(t, true)

	_, sent := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "9999999999"}, nil)
	otp := sent.Data["otp"].(string)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"mobile": "9999999999", "otp": otp}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	assert.NotEmpty(t, env.Data["token"])
	assert.Equal(t, "/candidate/profile-setup", env.Data["redirectTo"])
	assert.Equal(t, false, env.Data["profileCompleted"])

	user := env.Data["user"].(map[string]any)
	assert.Equal(t, "9999999999", user["mobile"])
	assert.Equal(t, true, user["isVerified"])
}

func TestVerifyOTPWrongCode(t *testing.T) {
	r, _ := newTestRouter(t, true)

	_, sent := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "9999999999"}, nil)
	otp := sent.Data["otp"].(string)
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"mobile": "9999999999", "otp": wrong}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid OTP", env.Message)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	r, identities := newTestRouter(t, true)

	_, sent := doJSON(t, r, http.MethodPost, "/api/auth/send-otp", gin.H{"mobile": "9999999999"}, nil)
	otp := sent.Data["otp"].(string)

	u, err := identities.GetByMobile(context.Background(), "9999999999")
	require.NoError(t, err)
	require.NoError(t, identities.SetOTP(context.Background(), u.ID, otp, time.Now().Add(-time.Minute)))

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/verify-otp",
		gin.H{"mobile": "9999999999", "otp": otp}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OTP expired, please request a new one", env.Message)
}

func TestRegisterAndMe(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"mobile":   "8888888888",
		"email":    "boss@example.in",
		"password": "long-enough-password",
		"role":     "employer",
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)
	token := env.Data["token"].(string)
	require.NotEmpty(t, token)
	user := env.Data["user"].(map[string]any)
	assert.Equal(t, false, user["isVerified"])

	w, env = doJSON(t, r, http.MethodGet, "/api/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8888888888", env.Data["mobile"])
	assert.Equal(t, "employer", env.Data["role"])
}

func TestRegisterDuplicateMobileConflicts(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{"mobile": "8888888888"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{"mobile": "8888888888"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "mobile number already registered", env.Message)
}

func TestRegisterValidatesPayload(t *testing.T) {
	r, _ := newTestRouter(t, true)

	tests := []struct {
		name string
		body gin.H
	}{
		{"short password", gin.H{"mobile": "8888888888", "password": "short"}},
		{"bad email", gin.H{"mobile": "8888888888", "email": "not-an-email"}},
		{"bad role", gin.H{"mobile": "8888888888", "role": "superuser"}},
		{"missing mobile", gin.H{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, r, http.MethodPost, "/api/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestMeRequiresBearerToken(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w, _ := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/auth/me", nil,
		map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
