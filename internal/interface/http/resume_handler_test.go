package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaamsetu/kaamsetu-api/internal/interface/middleware"
	"github.com/kaamsetu/kaamsetu-api/pkg/helpers"
	"github.com/kaamsetu/kaamsetu-api/pkg/resume"
)

func newResumeRouter(t *testing.T, upstream string) (*gin.Engine, *helpers.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tokens, err := helpers.NewTokenIssuer("resume-test-secret", time.Hour)
	require.NoError(t, err)

	h := NewResumeHandler(resume.NewClient(upstream), logger)

	r := gin.New()
	r.GET("/api/resume/health", h.Health)
	r.POST("/api/resume/generate", middleware.Auth(tokens), h.Generate)
	return r, tokens
}

func stubRenderer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/generate-resume", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Profile resume.Profile `json:"profile"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "9999999999", payload.Profile.Mobile)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resume.Result{
			Success:   true,
			ResumeURL: "https://files.example.in/resumes/r1.pdf",
			Filename:  "r1.pdf",
			Message:   "ok",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResumeGenerateForwardsSessionMobile(t *testing.T) {
	srv := stubRenderer(t)
	r, tokens := newResumeRouter(t, srv.URL)

	token, _, err := tokens.Issue("id-1", "9999999999", "candidate")
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodPost, "/api/resume/generate",
		gin.H{"full_name": "Ravi Kumar", "mobile": "1111111111"},
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	assert.Equal(t, "https://files.example.in/resumes/r1.pdf", env.Data["resume_url"])
}

func TestResumeGenerateCandidatesOnly(t *testing.T) {
	srv := stubRenderer(t)
	r, tokens := newResumeRouter(t, srv.URL)

	token, _, err := tokens.Issue("id-2", "8888888888", "employer")
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodPost, "/api/resume/generate",
		gin.H{"full_name": "Boss"},
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResumeGenerateRequiresFullName(t *testing.T) {
	srv := stubRenderer(t)
	r, tokens := newResumeRouter(t, srv.URL)

	token, _, err := tokens.Issue("id-1", "9999999999", "candidate")
	require.NoError(t, err)

	w, _ := doJSON(t, r, http.MethodPost, "/api/resume/generate",
		gin.H{"full_name": "  "},
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResumeHealthReflectsUpstream(t *testing.T) {
	srv := stubRenderer(t)
	r, _ := newResumeRouter(t, srv.URL)

	w, _ := doJSON(t, r, http.MethodGet, "/api/resume/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	srv.Close()
	w, _ = doJSON(t, r, http.MethodGet, "/api/resume/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
