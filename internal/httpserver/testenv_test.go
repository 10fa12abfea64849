package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authmw "sweetshop/internal/middleware/auth"
	"sweetshop/internal/models"
	"sweetshop/internal/repo"
	"sweetshop/internal/service"
	"sweetshop/internal/tokens"
	"sweetshop/internal/transport"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Store  *repo.GormRepo
	Tokens *tokens.Service
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))

	store := &repo.GormRepo{DB: db}
	tokenSvc := tokens.New([]byte("test_secret"))

	authSvc := &service.AuthService{
		Repo:      store,
		Tokens:    tokenSvc,
		AccessTTL: 15 * time.Minute,
	}
	catalogSvc := &service.CatalogService{Repo: store}

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CatalogHandler: &CatalogHTTP{Svc: catalogSvc},
		Gate:           &authmw.Gate{Tokens: tokenSvc, Repo: store},
	})

	return &testEnv{T: t, E: e, DB: db, Store: store, Tokens: tokenSvc}
}

func (env *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(username, email, password string, role models.Role) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, "/register", transport.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	}, "")
}

func (env *testEnv) login(username, password string) string {
	rec := env.doForm("/token", url.Values{
		"username": []string{username},
		"password": []string{password},
	})
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp transport.TokenResponse
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(env.T, "bearer", resp.TokenType)
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}

func (env *testEnv) sellerToken() string {
	rec := env.register("test_seller", "seller@example.com", "password", models.RoleSeller)
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return env.login("test_seller", "password")
}

func (env *testEnv) customerToken() string {
	rec := env.register("test_customer", "customer@example.com", "password", "")
	require.Equal(env.T, http.StatusCreated, rec.Code)
	return env.login("test_customer", "password")
}

func (env *testEnv) createProduct(token, name string, qty int) models.Product {
	rec := env.do(http.MethodPost, "/products", transport.ProductRequest{
		Name:        name,
		Description: "a sweet",
		Price:       2.5,
		Quantity:    qty,
	}, token)
	require.Equal(env.T, http.StatusCreated, rec.Code)

	var prod models.Product
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &prod))
	return prod
}
