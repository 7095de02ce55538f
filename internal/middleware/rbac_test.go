package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-records-api/internal/models"
)

func performRBAC(t *testing.T, claims *models.JWTClaims, path string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/students/:id/marks", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	}, RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	w := performRBAC(t, claims, "/students/stu-1/marks", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACAllowsSelf(t *testing.T) {
	claims := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}
	w := performRBAC(t, claims, "/students/stu-1/marks", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACForbidsOtherStudent(t *testing.T) {
	claims := &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent}
	w := performRBAC(t, claims, "/students/stu-1/marks", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	w := performRBAC(t, nil, "/students/stu-1/marks", string(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesForbidsStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/attendance", func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent})
	}, RequireRoles(models.RoleFaculty, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req, _ := http.NewRequest(http.MethodGet, "/attendance", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
