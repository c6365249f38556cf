package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminMiddleware(t *testing.T) {
	handler := newTestAuthHandler(t)

	protected := handler.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("NoCookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/schedule.csv", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/export/schedule.csv", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "garbage"})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("ServiceToken", func(t *testing.T) {
		token, _ := handler.GenerateToken(RoleService, "Foyer A")
		req := httptest.NewRequest(http.MethodGet, "/api/export/schedule.csv", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("AdminToken", func(t *testing.T) {
		token, _ := handler.GenerateToken(RoleAdmin, "")
		req := httptest.NewRequest(http.MethodGet, "/api/export/schedule.csv", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}
