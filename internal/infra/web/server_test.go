//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

type mockStatsUC struct {
	snap  *model.AggregateSnapshot
	err   error
	calls int
}

func (m *mockStatsUC) Snapshot(ctx context.Context) (*model.AggregateSnapshot, error) {
	m.calls++
	return m.snap, m.err
}

type mockUserUC struct {
	users map[int64]*model.User
	err   error
}

func (m *mockUserUC) Register(ctx context.Context, userID int64) (bool, error) { return false, nil }

func (m *mockUserUC) RecordClick(ctx context.Context, userID int64, c model.Counter) (bool, error) {
	return false, nil
}

func (m *mockUserUC) Get(ctx context.Context, userID int64) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

const testAPIKey = "test-admin-key"

func newTestServer(stats *mockStatsUC, users *mockUserUC) (*Server, *AuthManager) {
	auth := NewAuthManager("test-admin-jwt-secret-please-change", false, "", time.Minute)
	return NewServer(stats, users, testAPIKey, auth, newTestLogger()), auth
}

func login(t *testing.T, h http.Handler) (string, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rr.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil || body.Token == "" {
		t.Fatalf("login: bad body (%v)", err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "admin_session" || !cookies[0].HttpOnly {
		t.Fatalf("login: expected an HttpOnly admin_session cookie, got %+v", cookies)
	}
	return body.Token, cookies[0]
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(&mockStatsUC{}, &mockUserUC{})
	h := s.Routes()

	t.Run("wrong key -> 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-API-Key", "nope")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("right key mints a token", func(t *testing.T) {
		login(t, h)
	})
}

func TestAuthMiddleware(t *testing.T) {
	stats := &mockStatsUC{snap: &model.AggregateSnapshot{}}
	s, auth := newTestServer(stats, &mockUserUC{})
	h := s.Routes()
	token, cookie := login(t, h)

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials -> 401", func(r *http.Request) {}, http.StatusUnauthorized},
		{"api key is not a session -> 401", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+testAPIKey) }, http.StatusUnauthorized},
		{"wrong scheme -> 401", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"bearer token -> 200", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"session cookie -> 200", func(r *http.Request) { r.AddCookie(cookie) }, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}

	t.Run("expired token -> 401", func(t *testing.T) {
		auth.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
		old, _, err := auth.Mint(httptest.NewRecorder())
		auth.now = time.Now
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.Header.Set("Authorization", "Bearer "+old)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("token signed with another secret -> 401", func(t *testing.T) {
		other := NewAuthManager("some-other-secret", false, "", time.Minute)
		forged, _, _ := other.Mint(httptest.NewRecorder())
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestParseFromRequestErrors(t *testing.T) {
	auth := NewAuthManager("secret", false, "", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	if _, err := auth.ParseFromRequest(req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("missing token: expected ErrUnauthorized, got %v", err)
	}

	req.Header.Set("Authorization", "Bearer not-a-jwt")
	if _, err := auth.ParseFromRequest(req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("garbage token: expected ErrUnauthorized, got %v", err)
	}
}
