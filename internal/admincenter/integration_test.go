package admincenter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/admincenter/handler"
	"github.com/kart-io/admin-guard/internal/admincenter/router"
	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/permission"
	"github.com/kart-io/admin-guard/pkg/security/authz/casbin"
)

const integrationSecret = "integration-secret"

type testServer struct {
	engine  *gin.Engine
	users   *biz.UserService
	perms   *biz.PermissionService
	pages   *Pages
	factory store.Factory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())

	enforcer, err := casbin.NewServiceWithGorm(db)
	require.NoError(t, err)

	userSvc := biz.NewUserService(factory)
	roleSvc := biz.NewRoleService(factory)
	authSvc := biz.NewAuthService(factory, integrationSecret, time.Hour)

	pages, err := BuildPages(enforcer, factory, userSvc)
	require.NoError(t, err)
	permSvc := biz.NewPermissionService(enforcer, pages.Site)
	require.NoError(t, permSvc.RefreshGrouping())

	engine := router.New(integrationSecret, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		User:       handler.NewUserHandler(userSvc, pages.UserAdmin),
		Role:       handler.NewRoleHandler(roleSvc, pages.RoleAdmin),
		Permission: handler.NewPermissionHandler(permSvc, pages),
		UserRead:   pages.UserAdmin.ReadRoute(),
		RoleRead:   pages.RoleAdmin.ReadRoute(),
	})

	return &testServer{engine: engine, users: userSvc, perms: permSvc, pages: pages, factory: factory}
}

func (s *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(integrationSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, subject))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Zero(t, envelope.Code, "unexpected error envelope: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func seedUsers(t *testing.T, s *testServer) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.users.Create(ctx, map[string]interface{}{
		"username": "ann", "password": "pass-ann", "email": "ann@example.com",
		"salary": 1200, "status": 1,
	}))
	require.NoError(t, s.users.Create(ctx, map[string]interface{}{
		"username": "bob", "password": "pass-bob", "email": "bob@example.com",
		"salary": 900, "status": 1,
	}))
}

// grantHR gives the hr role page access to the user admin, full list
// access except the salary field, and assigns alice to it. All through the
// management endpoints, as root.
func grantHR(t *testing.T, s *testServer) {
	t.Helper()
	grants := []string{
		permission.Encode("user-admin", "admin:page"),
		permission.Encode("user-admin", "page:list:username"),
		permission.Encode("user-admin", "page:list:email"),
		permission.Encode("user-admin", "page:list:status"),
		permission.Encode("user-admin", "page:list:avatar"),
		permission.Encode("user-admin", "page:filter"),
		permission.Encode("user-admin", "page:read:username"),
		permission.Encode("user-admin", "page:read:email"),
	}
	w := s.do(t, http.MethodPut, "/auth/roles/hr/permissions", admin.UserRoot,
		handler.UpdatePermissionsRequest{Permissions: grants})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/auth/subjects/alice/roles", admin.UserRoot,
		handler.UpdateRolesRequest{Roles: "hr"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestListStripsUngrantedFields(t *testing.T) {
	s := newTestServer(t)
	seedUsers(t, s)
	grantHR(t, s)

	w := s.do(t, http.MethodGet, "/v1/users", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list struct {
		TotalCount int64                    `json:"totalCount"`
		Items      []map[string]interface{} `json:"items"`
	}
	decodeData(t, w, &list)
	assert.EqualValues(t, 2, list.TotalCount)
	require.Len(t, list.Items, 2)
	for _, item := range list.Items {
		assert.Contains(t, item, "username")
		assert.Contains(t, item, "email")
		assert.NotContains(t, item, "salary")
		// The stored hash is not part of any schema and must never
		// surface, whatever the subject holds.
		assert.NotContains(t, item, "password")
	}
}

func TestReadRouteStripsUngrantedFields(t *testing.T) {
	s := newTestServer(t)
	seedUsers(t, s)
	grantHR(t, s)

	w := s.do(t, http.MethodGet, "/v1/users/item/1", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var item map[string]interface{}
	decodeData(t, w, &item)
	assert.Equal(t, "ann", item["username"])
	assert.NotContains(t, item, "salary")
	assert.NotContains(t, item, "password")
}

func TestGuestIsDenied(t *testing.T) {
	s := newTestServer(t)
	seedUsers(t, s)

	w := s.do(t, http.MethodGet, "/v1/users", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Permission mutations require the root identity.
	w = s.do(t, http.MethodPut, "/auth/subjects/alice/roles", "alice",
		handler.UpdateRolesRequest{Roles: "hr"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSiteOptionsFiltering(t *testing.T) {
	s := newTestServer(t)
	grantHR(t, s)

	// Root sees the whole tree.
	w := s.do(t, http.MethodGet, "/auth/site/options", admin.UserRoot, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rootOptions []*admin.PermissionOption
	decodeData(t, w, &rootOptions)
	require.Len(t, rootOptions, 1)
	assert.Len(t, rootOptions[0].Children, 2)

	// Alice sees only the user admin, with its unselected ancestors kept.
	w = s.do(t, http.MethodGet, "/auth/site/options", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var aliceOptions []*admin.PermissionOption
	decodeData(t, w, &aliceOptions)
	require.Len(t, aliceOptions, 1)
	assert.Equal(t, "System", aliceOptions[0].Label)
	require.Len(t, aliceOptions[0].Children, 1)
	assert.Equal(t, "Users", aliceOptions[0].Children[0].Label)
}

func TestLoginRoundTrip(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/register", "", handler.RegisterRequest{
		Username: "dave", Password: "dave-pass-1", Email: "dave@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/login", "", handler.LoginRequest{
		Username: "dave", Password: "dave-pass-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	assert.NotEmpty(t, data.Token)

	w = s.do(t, http.MethodPost, "/auth/login", "", handler.LoginRequest{
		Username: "dave", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateStripsUngrantedFields(t *testing.T) {
	s := newTestServer(t)
	seedUsers(t, s)

	// Grant manager update access to email only, plus the coarse gates.
	grants := []string{
		permission.Encode("user-admin", "admin:page"),
		permission.Encode("user-admin", "page:update:email"),
	}
	w := s.do(t, http.MethodPut, "/auth/roles/manager/permissions", admin.UserRoot,
		handler.UpdatePermissionsRequest{Permissions: grants})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodPut, "/auth/subjects/frank/roles", admin.UserRoot,
		handler.UpdateRolesRequest{Roles: "manager"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/v1/users/item/1", "frank", map[string]interface{}{
		"email":  "new@example.com",
		"salary": 99999,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var accepted map[string]interface{}
	decodeData(t, w, &accepted)
	assert.Contains(t, accepted, "email")
	assert.NotContains(t, accepted, "salary")

	// The denied field never reached storage.
	user, err := s.factory.Users().GetByUsername(context.Background(), "ann")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.EqualValues(t, 1200, user.Salary)
}
