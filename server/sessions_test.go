package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weather-dashboard/models"
	"weather-dashboard/viewmodel"
)

func TestSessionsPruneIdle(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(time.Minute, func() *viewmodel.ViewModel {
		return viewmodel.New(nil, models.Metric)
	})
	s.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	first := s.Get(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, sessionCookie, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	require.Same(t, first, s.Get(httptest.NewRecorder(), req), "same cookie returned a different view-model")

	// неизвестный или испорченный id дает новую сессию
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	require.NotSame(t, first, s.Get(httptest.NewRecorder(), bad), "invalid cookie reused an existing session")

	require.Equal(t, 0, s.Prune())
	require.Equal(t, 2, s.Len())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 2, s.Prune())
	require.Equal(t, 0, s.Len())
}
