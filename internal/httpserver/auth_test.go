package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

func TestLogin_MeLogout(t *testing.T) {
	s := newTestServer(t)

	res := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "owner@example.com", "password": "password",
	})
	require.Equal(t, http.StatusOK, res.Code)
	data := res.data(t)
	require.Equal(t, "Bearer", data["token_type"])
	user := data["user"].(map[string]any)
	require.Equal(t, "owner@example.com", user["email"])
	require.Equal(t, "user", user["role"])
	require.NotContains(t, user, "password_hash")
	token := data["token"].(string)

	me := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	require.EqualValues(t, s.owner.ID, me.data(t)["id"])

	other := s.login(t, "owner@example.com")

	out := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, out.Code)
	require.Equal(t, "Successfully logged out", out.json(t)["message"])

	again := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, again.Code)
	require.Equal(t, KindUnauthenticated, again.json(t)["kind"])

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/auth/me", other, nil).Code)
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"wrong password", map[string]string{"email": "owner@example.com", "password": "nope"}, "email"},
		{"unknown email", map[string]string{"email": "ghost@example.com", "password": "password"}, "email"},
		{"missing password", map[string]string{"email": "owner@example.com"}, "password"},
		{"not an email", map[string]string{"email": "owner", "password": "password"}, "email"},
		{"malformed json", `{"email":`, "body"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res := s.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, res.Code, res.Body.String())
			require.Contains(t, res.fieldErrors(t), tt.field)
		})
	}

	res := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "owner@example.com", "password": "nope"})
	require.Equal(t, "The provided credentials are incorrect.", res.fieldErrors(t)["email"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)
	p := s.product(t, s.owner, models.Product{Title: "Lamp", Category: "misc", Price: 5})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/products"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodGet, productPath(p.ID)},
		{http.MethodGet, "/api/v1/products/999999"},
		{http.MethodPut, productPath(p.ID)},
		{http.MethodPatch, productPath(p.ID)},
		{http.MethodDelete, productPath(p.ID)},
		{http.MethodPost, productPath(p.ID) + "/thumbnail"},
		{http.MethodPost, productPath(p.ID) + "/restore"},
		{http.MethodDelete, productPath(p.ID) + "/force"},
	}
	for _, rt := range routes {
		for _, token := range []string{"", "garbage.token.value"} {
			res := s.do(t, rt.method, rt.path, token, `{"title":""}`)
			require.Equal(t, http.StatusUnauthorized, res.Code, "%s %s", rt.method, rt.path)
			require.Equal(t, KindUnauthenticated, res.json(t)["kind"])
		}
	}

	var count int64
	require.NoError(t, s.db.Table("products").Where("deleted_at IS NULL").Count(&count).Error)
	require.EqualValues(t, 1, count)
}
