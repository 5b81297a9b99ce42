package security_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CalumRakk/resume-project/internal/delivery/http/middleware"
	securityhttp "github.com/CalumRakk/resume-project/internal/delivery/http/security"
	"github.com/CalumRakk/resume-project/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventReader struct {
	mock.Mock
}

func (m *MockEventReader) ListEvents(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEventView, int64, error) {
	args := m.Called(ctx, filter)
	events, _ := args.Get(0).([]domain.SecurityEventView)
	return events, args.Get(1).(int64), args.Error(2)
}

func (m *MockEventReader) GetStats(ctx context.Context) (*domain.SecurityStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*domain.SecurityStats)
	return stats, args.Error(1)
}

func setup(reader domain.SecurityEventReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	securityhttp.NewEventsHandler(reader).RegisterRoutes(r.Group("/v1"))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetStats(t *testing.T) {
	reader := new(MockEventReader)
	reader.On("GetStats", mock.Anything).Return(&domain.SecurityStats{
		TotalEvents:          3,
		BindingMismatches24h: 2,
		EventsByType:         map[string]int64{"TOKEN_BINDING_MISMATCH": 2, "LOGIN_FAILED": 1},
		TopIPs:               []domain.IPSummary{{IP: "203.0.113.9", EventCount: 2, Mismatches: 2}},
	}, nil)

	w := get(setup(reader), "/v1/admin/security/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data domain.SecurityStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body.Data.BindingMismatches24h)
	assert.Equal(t, "203.0.113.9", body.Data.TopIPs[0].IP)
}

func TestListEvents(t *testing.T) {
	t.Run("filters from query", func(t *testing.T) {
		since := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
		reader := new(MockEventReader)
		reader.On("ListEvents", mock.Anything, mock.MatchedBy(func(f domain.SecurityEventFilter) bool {
			return f.SearchIP == "203.0.113.9" &&
				assert.ObjectsAreEqual([]string{"TOKEN_BINDING_MISMATCH", "TOKEN_REVOKED"}, f.EventTypes) &&
				f.StartTime != nil && f.StartTime.Equal(since) &&
				f.Limit == 20 && f.Offset == 40
		})).Return([]domain.SecurityEventView{{ID: 1, EventType: "TOKEN_REVOKED"}}, int64(41), nil)

		w := get(setup(reader), "/v1/admin/security/events?types=TOKEN_BINDING_MISMATCH,%20TOKEN_REVOKED,&ip=203.0.113.9&since=2026-01-02T15:04:05Z&limit=20&offset=40")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Total int64 `json:"total"`
				Page  int   `json:"page"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 41, body.Data.Total)
		assert.Equal(t, 3, body.Data.Page)
		reader.AssertExpectations(t)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		cases := map[string]int{"500": 200, "0": 50, "-3": 50, "abc": 50}
		for raw, want := range cases {
			reader := new(MockEventReader)
			reader.On("ListEvents", mock.Anything, mock.MatchedBy(func(f domain.SecurityEventFilter) bool {
				return f.Limit == want
			})).Return([]domain.SecurityEventView{}, int64(0), nil)

			w := get(setup(reader), "/v1/admin/security/events?limit="+raw)
			require.Equal(t, http.StatusOK, w.Code, raw)

			var body struct {
				Data struct {
					PageSize int `json:"page_size"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, want, body.Data.PageSize, raw)
			reader.AssertExpectations(t)
		}
	})

	t.Run("bad since", func(t *testing.T) {
		reader := new(MockEventReader)
		w := get(setup(reader), "/v1/admin/security/events?since=yesterday")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		reader.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		reader := new(MockEventReader)
		reader.On("ListEvents", mock.Anything, mock.Anything).Return(nil, int64(0), assert.AnError)
		w := get(setup(reader), "/v1/admin/security/events")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
