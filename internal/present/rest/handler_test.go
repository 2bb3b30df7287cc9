package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/shiftdesk/internal/domain"
)

func testContext(t *testing.T, method, target string, a *domain.Actor) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if a != nil {
		req = req.WithContext(context.WithValue(req.Context(), domain.ActorCtxKey, *a))
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	h := &Handler{}

	c, rec := testContext(t, http.MethodGet, "/user/profile", nil)
	if err := h.handleOwnProfile(c); err != nil {
		t.Fatalf("handler returned %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}
}

func TestPathIDValidation(t *testing.T) {
	h := &Handler{}
	member := domain.Actor{ID: 5, RoleID: domain.RoleMember}

	c, rec := testContext(t, http.MethodGet, "/tasks/abc", &member)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.handleGetTask(c); err != nil {
		t.Fatalf("handler returned %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}
