package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CalumRakk/resume-project/config"
	"github.com/CalumRakk/resume-project/internal/delivery/http/middleware"
	v1 "github.com/CalumRakk/resume-project/internal/delivery/http/v1"
	"github.com/CalumRakk/resume-project/internal/domain"
	"github.com/CalumRakk/resume-project/internal/usecase"
	"github.com/CalumRakk/resume-project/pkg/apperror"
	"github.com/CalumRakk/resume-project/pkg/auth"
	"github.com/CalumRakk/resume-project/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubResumeUC implements only what these tests call.
type stubResumeUC struct {
	domain.ResumeUsecase
	seen []string
}

func (s *stubResumeUC) ListResumes(_ context.Context, userID string, page, pageSize int) ([]domain.Resume, int64, error) {
	s.seen = append(s.seen, userID)
	return []domain.Resume{{ID: 1, UserID: userID, FullName: "Ada"}}, 1, nil
}

func (s *stubResumeUC) CreateResume(_ context.Context, userID string, in domain.ResumeInput) (*domain.Resume, error) {
	if err := in.Validate(); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	return in.ToResume(userID), nil
}

func (s *stubResumeUC) GetResume(_ context.Context, userID string, id int64) (*domain.Resume, error) {
	return nil, apperror.NotFound("Resume not found")
}

type stubTemplateUC struct {
	domain.TemplateUsecase
}

func (stubTemplateUC) ListTemplates(context.Context) ([]domain.Template, error) {
	return []domain.Template{{ID: 1, Name: "Modern", ComponentName: "modern-resume"}}, nil
}

const (
	homeIP   = "198.51.100.7"
	otherIP  = "203.0.113.9"
	agent    = "Mozilla/5.0 (X11; Linux x86_64)"
	password = "correct-horse"
)

type apiFixture struct {
	router  *gin.Engine
	resumes *stubResumeUC
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		FrontendURL:              "http://localhost:3000",
		RateLimitWindowSeconds:   60,
		RateLimitLoginThreshold:  100,
		RateLimitGlobalThreshold: 1000,
		BindingExcludedPaths:     []string{"/v1/login", "/v1/register", "/v1/refresh-token", "/v1/health", "/v1/swagger"},
	}

	secLog := security.NewSecurityLogger(zap.NewNop(), "resume-api", "test")
	tokens := auth.NewTokenManager(auth.TokenConfig{SigningKey: []byte("router-test-key")}, auth.NewMemoryBlacklist())
	validator := auth.NewValidator(tokens, auth.ValidatorConfig{ExcludedPathPrefixes: cfg.BindingExcludedPaths})
	tracker := security.NewLoginTracker(security.DefaultLoginTrackerConfig(), nil, secLog)

	user, err := usecase.NewUser("ada@example.com", password, domain.RoleUser)
	require.NoError(t, err)
	users := new(MockUserRepo)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	resumes := &stubResumeUC{}
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:      usecase.NewAuthUsecase(users, tokens, validator, tracker, secLog),
		ResumeUC:    resumes,
		TemplateUC:  stubTemplateUC{},
		Validator:   validator,
		RateLimiter: middleware.NewRateLimiter(nil, secLog),
		SecurityLog: secLog,
		Config:      cfg,
	})
	return &apiFixture{router: router, resumes: resumes}
}

func (f *apiFixture) call(method, path, ip, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", agent)
	req.Header.Set("X-Forwarded-For", ip)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type tokenBody struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Error   string `json:"error"`
}

func TestLoginReplayRefreshScenario(t *testing.T) {
	f := newAPI(t)

	w := f.call(http.MethodPost, "/v1/login", homeIP, "", gin.H{"email": "ada@example.com", "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pair := decode[tokenBody](t, w)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	// the legitimate client can use its access token
	w = f.call(http.MethodGet, "/v1/resumes", homeIP, pair.Access, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, f.resumes.seen)

	// a stolen access token is useless elsewhere
	w = f.call(http.MethodGet, "/v1/resumes", otherIP, pair.Access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, decode[tokenBody](t, w).Error)

	// refreshing from home works and the new token is still bound to home
	w = f.call(http.MethodPost, "/v1/refresh-token", homeIP, "", gin.H{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refreshed := decode[tokenBody](t, w)
	require.NotEmpty(t, refreshed.Access)
	assert.Empty(t, refreshed.Refresh)

	assert.Equal(t, http.StatusOK, f.call(http.MethodGet, "/v1/resumes", homeIP, refreshed.Access, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.call(http.MethodGet, "/v1/resumes", otherIP, refreshed.Access, nil).Code)

	// a replayed refresh token is revoked on first misuse
	w = f.call(http.MethodPost, "/v1/refresh-token", otherIP, "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is not valid for this client", decode[tokenBody](t, w).Error)

	w = f.call(http.MethodPost, "/v1/refresh-token", homeIP, "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired refresh token", decode[tokenBody](t, w).Error)
}

func TestRefreshTokenErrors(t *testing.T) {
	f := newAPI(t)

	t.Run("stale access bearer does not block refresh", func(t *testing.T) {
		w := f.call(http.MethodPost, "/v1/login", homeIP, "", gin.H{"email": "ada@example.com", "password": password})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		pair := decode[tokenBody](t, w)

		w = f.call(http.MethodPost, "/v1/refresh-token", homeIP, "expired.access.token", gin.H{"refresh": pair.Refresh})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotEmpty(t, decode[tokenBody](t, w).Access)
	})

	t.Run("missing token", func(t *testing.T) {
		w := f.call(http.MethodPost, "/v1/refresh-token", homeIP, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Refresh token is required", decode[tokenBody](t, w).Error)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := f.call(http.MethodPost, "/v1/refresh-token", homeIP, "", gin.H{"refresh": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/refresh-token", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginFailures(t *testing.T) {
	f := newAPI(t)

	w := f.call(http.MethodPost, "/v1/login", homeIP, "", gin.H{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.call(http.MethodPost, "/v1/login", homeIP, "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
}

func TestResumeRoutes(t *testing.T) {
	f := newAPI(t)
	w := f.call(http.MethodPost, "/v1/login", homeIP, "", gin.H{"email": "ada@example.com", "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	access := decode[tokenBody](t, w).Access

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.call(http.MethodGet, "/v1/resumes", homeIP, "", nil).Code)
	})

	t.Run("templates are public", func(t *testing.T) {
		w := f.call(http.MethodGet, "/v1/templates", otherIP, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "modern-resume")
	})

	t.Run("bad id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.call(http.MethodGet, "/v1/resumes/abc", homeIP, access, nil).Code)
	})

	t.Run("not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, f.call(http.MethodGet, "/v1/resumes/7", homeIP, access, nil).Code)
	})

	t.Run("create validates input", func(t *testing.T) {
		w := f.call(http.MethodPost, "/v1/resumes", homeIP, access, gin.H{"email": "ada@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Full name")

		w = f.call(http.MethodPost, "/v1/resumes", homeIP, access, gin.H{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
			"experiences": []gin.H{{
				"start_date": "2020-03-01",
				"end_date":   "2019-01-01",
			}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrInvalidDateRange.Error())
	})

	t.Run("create applies defaults", func(t *testing.T) {
		w := f.call(http.MethodPost, "/v1/resumes", homeIP, access, gin.H{
			"full_name": "Ada Lovelace",
			"email":     "ada@example.com",
			"skills":    []gin.H{{}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode[struct {
			Data domain.Resume `json:"data"`
		}](t, w)
		require.Len(t, body.Data.Skills, 1)
		assert.Equal(t, domain.DefaultSkillName, body.Data.Skills[0].Name)
	})
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	f := newAPI(t)
	w := f.call(http.MethodGet, "/v1/templates", homeIP, "", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
