package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dinesync/backend/pkg/enums"
)

type stubPermissionChecker struct {
	allowed map[string]bool
	err     error
}

func (s stubPermissionChecker) HasPermission(_ context.Context, role string, _ enums.Permission) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[role], nil
}

func TestRequirePermissionAllowsGrantedRole(t *testing.T) {
	checker := stubPermissionChecker{allowed: map[string]bool{"manager": true}}
	handler := RequirePermission(enums.PermissionInventory, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), "manager"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequirePermissionBlocksDeniedRole(t *testing.T) {
	checker := stubPermissionChecker{allowed: map[string]bool{}}
	handler := RequirePermission(enums.PermissionSettings, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(req.Context(), "server"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequirePermissionRejectsMissingRole(t *testing.T) {
	checker := stubPermissionChecker{allowed: map[string]bool{"manager": true}}
	handler := RequirePermission(enums.PermissionOrders, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
