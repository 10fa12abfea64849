package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"sweetshop/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("alice", "alice@example.com", "password", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.NotZero(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, models.RoleCustomer, user.Role, "role defaults to customer")
	require.True(t, user.IsActive)
	require.NotContains(t, rec.Body.String(), "password", "response must not leak the password")
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("alice", "alice@example.com", "password", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.register("alice", "other@example.com", "password", "")
	require.Equal(t, http.StatusBadRequest, rec.Code, "duplicate username")

	rec = env.register("bob", "alice@example.com", "password", "")
	require.Equal(t, http.StatusBadRequest, rec.Code, "duplicate email")

	rec = env.register("bob", "bob@example.com", "password", "")
	require.Equal(t, http.StatusCreated, rec.Code, "distinct identity succeeds")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("", "alice@example.com", "password", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.register("alice", "alice@example.com", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.register("alice", "alice@example.com", "password", "wizard")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "unknown role is rejected")
}

func TestRegisterWithRole(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("sam", "sam@example.com", "password", models.RoleSeller)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, models.RoleSeller, user.Role)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("alice", "alice@example.com", "password", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	token := env.login("alice", "password")

	subject, err := env.Tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.register("alice", "alice@example.com", "password", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doForm("/token", url.Values{
		"username": []string{"alice"},
		"password": []string{"wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doForm("/token", url.Values{
		"username": []string{"nobody"},
		"password": []string{"password"},
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Welcome to the Sweet Shop API!", resp["message"])
}
