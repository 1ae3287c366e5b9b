package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/blogapi/internal/controller"
	"github.com/rryowa/blogapi/internal/models"
	"github.com/rryowa/blogapi/internal/service"
	"github.com/rryowa/blogapi/internal/storage/memory"
	"github.com/rryowa/blogapi/internal/util"
)

type fakePhotoStore struct{}

func (fakePhotoStore) SavePhoto(encoded, ownerID string) (string, error) {
	return "http://localhost/storage/" + ownerID + ".png", nil
}

func (fakePhotoStore) DeleteByURL(string) error { return nil }

type testServer struct {
	echo   *echo.Echo
	auth   *service.AuthService
	tokens *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, &util.TokenConfig{
		AccessSecretKey:  []byte("test-access-secret"),
		RefreshSecretKey: []byte("test-refresh-secret"),
		AccessTTL:        30 * time.Minute,
		RefreshTTL:       time.Hour,
		CookieMaxAge:     24 * time.Hour,
	})
}

func newTestServerWithConfig(t *testing.T, cfg *util.TokenConfig) *testServer {
	t.Helper()

	log := zap.NewNop().Sugar()
	store := memory.NewStorage()
	tokens := service.NewTokenService(cfg, store, memory.NewTokenDenylist())
	auth := service.NewAuthService(tokens, store, service.NewWebhookService(log, ""), log)
	blogs := service.NewBlogService(store, fakePhotoStore{}, log)
	comments := service.NewCommentService(store)

	c := controller.NewController(log, auth, blogs, comments, cfg)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(log)
	authRequired := AuthMiddleware(auth)

	e.POST("/register", c.Register)
	e.POST("/login", c.Login)
	e.POST("/logout", c.Logout, authRequired)
	e.GET("/refresh", c.Refresh)

	e.POST("/blog", c.CreateBlog, authRequired)
	e.GET("/blog/all", c.GetAllBlogs, authRequired)
	e.GET("/blog/:id", c.GetBlogByID, authRequired)
	e.PUT("/blog", c.UpdateBlog, authRequired)
	e.DELETE("/blog/:id", c.DeleteBlog, authRequired)

	e.POST("/comment", c.CreateComment, authRequired)
	e.GET("/comment/:id", c.GetComments, authRequired)

	return &testServer{echo: e, auth: auth, tokens: tokens}
}

func (s *testServer) do(method, path, body string, cookies ...*http.Cookie) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec.Result()
}

func (s *testServer) register(t *testing.T, username, email string) (*http.Cookie, *http.Cookie) {
	t.Helper()
	resp := s.do(http.MethodPost, "/register", fmt.Sprintf(
		`{"username":%q,"email":%q,"password":"Passw0rd1","confirmPassword":"Passw0rd1"}`,
		username, email))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	access, refresh := authCookies(t, resp)
	return access, refresh
}

func authCookies(t *testing.T, resp *http.Response) (access, refresh *http.Cookie) {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case models.AccessTokenCookie:
			access = cookie
		case models.RefreshTokenCookie:
			refresh = cookie
		}
	}
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterSetsSessionCookies(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/register",
		`{"username":"alice01","email":"alice@example.com","password":"Passw0rd1","confirmPassword":"Passw0rd1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	access, refresh := authCookies(t, resp)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, int((24 * time.Hour).Seconds()), access.MaxAge)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["auth"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice01", user["username"])
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/register", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request body", decodeBody(t, resp)["reason"])
}

func TestRegisterConflictStatus(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodPost, "/register",
		`{"username":"alice02","email":"alice@example.com","password":"Passw0rd1","confirmPassword":"Passw0rd1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email is already registered", decodeBody(t, resp)["reason"])
}

func TestLoginIssuesFreshSession(t *testing.T) {
	s := newTestServer(t)
	_, registerRefresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodPost, "/login", `{"username":"alice01","password":"Passw0rd1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, loginRefresh := authCookies(t, resp)
	assert.NotEqual(t, registerRefresh.Value, loginRefresh.Value)

	// The pre-login refresh token is no longer accepted.
	resp = s.do(http.MethodGet, "/refresh", "", registerRefresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/refresh", "", loginRefresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFailureStatus(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodPost, "/login", `{"username":"alice01","password":"Wrongpass1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid password", decodeBody(t, resp)["reason"])
}

func TestRefreshRotatesCookies(t *testing.T) {
	s := newTestServer(t)
	_, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodGet, "/refresh", "", refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, rotated := authCookies(t, resp)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["auth"])

	// Replaying the superseded cookie fails.
	resp = s.do(http.MethodGet, "/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeBody(t, resp)["reason"])
}

func TestRefreshWithoutCookie(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutClearsCookiesAndRevokesSession(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodPost, "/logout", "", access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["auth"])
	assert.Nil(t, body["user"])

	resp = s.do(http.MethodGet, "/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The denylisted access token no longer passes the middleware.
	resp = s.do(http.MethodGet, "/blog/all", "", access, refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRequiresBothCookies(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodGet, "/blog/all", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeBody(t, resp)["reason"])

	// The refresh cookie is required even though it is not verified here.
	resp = s.do(http.MethodGet, "/blog/all", "", access)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/blog/all", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/blog/all", "", access, refresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsExpiredAccessToken(t *testing.T) {
	s := newTestServerWithConfig(t, &util.TokenConfig{
		AccessSecretKey:  []byte("test-access-secret"),
		RefreshSecretKey: []byte("test-refresh-secret"),
		AccessTTL:        -time.Minute,
		RefreshTTL:       time.Hour,
		CookieMaxAge:     24 * time.Hour,
	})
	access, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodGet, "/blog/all", "", access, refresh)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid access token", decodeBody(t, resp)["reason"])

	// The refresh token is still good; an expired access token is not a
	// revoked session.
	resp = s.do(http.MethodGet, "/refresh", "", refresh)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBlogAndCommentFlow(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodPost, "/blog",
		`{"title":"first post","content":"hello","photo":"data:image/png;base64,aGVsbG8="}`,
		access, refresh)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	blog := decodeBody(t, resp)["blog"].(map[string]interface{})
	blogID := blog["id"].(string)
	require.NotEmpty(t, blogID)

	resp = s.do(http.MethodGet, "/blog/all", "", access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	blogs := decodeBody(t, resp)["blogs"].([]interface{})
	assert.Len(t, blogs, 1)

	resp = s.do(http.MethodGet, "/blog/"+blogID, "", access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details := decodeBody(t, resp)["blog"].(map[string]interface{})
	assert.Equal(t, "alice01", details["author_username"])

	resp = s.do(http.MethodPost, "/comment",
		fmt.Sprintf(`{"content":"nice","blog":%q}`, blogID), access, refresh)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodGet, "/comment/"+blogID, "", access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := decodeBody(t, resp)["data"].([]interface{})
	require.Len(t, comments, 1)

	resp = s.do(http.MethodPut, "/blog",
		fmt.Sprintf(`{"blogId":%q,"title":"edited","content":"hello"}`, blogID), access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/blog/"+blogID, "", access, refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/blog/"+blogID, "", access, refresh)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMissingBlogStatus(t *testing.T) {
	s := newTestServer(t)
	access, refresh := s.register(t, "alice01", "alice@example.com")

	resp := s.do(http.MethodGet, "/blog/2b1f8f19-9f9a-4f46-93a1-7f2d2f2a6a11", "", access, refresh)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "blog not found", decodeBody(t, resp)["reason"])
}
