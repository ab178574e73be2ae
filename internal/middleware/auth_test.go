package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/model"
	"github.com/moviehub/movie-api/internal/repository"
	"github.com/moviehub/movie-api/internal/utils"
)

const testSecret = "guard-secret"

type fakeUsers struct{ users map[uint64]model.User }

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeSessions struct{ live map[uint64]bool }

func (f *fakeSessions) HasLive(_ context.Context, userID uint64) (bool, error) {
	return f.live[userID], nil
}

func guardedEcho(users UserSource, sessions SessionSource) *echo.Echo {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		u, ok := CurrentUser(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no identity")
		}
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "role": u.Role})
	}, Protect(testSecret, users, sessions))
	return e
}

func do(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestProtect_MissingToken(t *testing.T) {
	e := guardedEcho(&fakeUsers{}, &fakeSessions{})
	if w := do(e, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestProtect_TamperedToken(t *testing.T) {
	e := guardedEcho(&fakeUsers{}, &fakeSessions{})
	tok, _ := utils.NewAccessToken(testSecret, 1, 1)
	if w := do(e, "Bearer "+tok.Token+"xx"); w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestProtect_UnknownUser(t *testing.T) {
	e := guardedEcho(&fakeUsers{users: map[uint64]model.User{}}, &fakeSessions{})
	tok, _ := utils.NewAccessToken(testSecret, 9, 1)
	if w := do(e, "Bearer "+tok.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", w.Code)
	}
}

func TestProtect_DeadSession(t *testing.T) {
	users := &fakeUsers{users: map[uint64]model.User{1: {ID: 1, Role: model.RoleUser}}}
	e := guardedEcho(users, &fakeSessions{live: map[uint64]bool{1: false}})
	tok, _ := utils.NewAccessToken(testSecret, 1, 1)
	if w := do(e, "Bearer "+tok.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401: a valid token without a live session must be rejected", w.Code)
	}
}

func TestProtect_ValidTokenAndSession(t *testing.T) {
	users := &fakeUsers{users: map[uint64]model.User{1: {ID: 1, Role: model.RoleAdmin}}}
	e := guardedEcho(users, &fakeSessions{live: map[uint64]bool{1: true}})
	tok, _ := utils.NewAccessToken(testSecret, 1, 1)
	w := do(e, "Bearer "+tok.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var body struct {
		ID   uint64 `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != 1 || body.Role != model.RoleAdmin {
		t.Errorf("identity = %+v, want id=1 role=admin", body)
	}
}

func TestProtect_CookieFallback(t *testing.T) {
	users := &fakeUsers{users: map[uint64]model.User{1: {ID: 1, Role: model.RoleUser}}}
	e := guardedEcho(users, &fakeSessions{live: map[uint64]bool{1: true}})
	tok, _ := utils.NewAccessToken(testSecret, 1, 1)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: tok.Token})
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("code = %d, want 200 via cookie", w.Code)
	}
}
