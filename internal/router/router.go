package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/pkg/config"
	"github.com/noah-isme/campus-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-records-api/pkg/middleware/requestid"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Term       *handler.TermHandler
	Attendance *handler.AttendanceHandler
	Grade      *handler.GradeHandler
	Note       *handler.NoteHandler
}

// New assembles the gin engine with middleware and all route groups.
func New(cfg *config.Config, logr *zap.Logger, authService *service.AuthService, metricsService *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", middleware.JWT(authService), h.Auth.Me)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.GET("/terms", h.Term.List)
		authed.GET("/terms/active", h.Term.Active)
		authed.GET("/students/:id/marks", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Grade.StudentMarks)
	}

	faculty := api.Group("")
	faculty.Use(middleware.JWT(authService), middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin))
	{
		faculty.GET("/courses/mine", h.Course.Mine)

		faculty.GET("/attendance", h.Attendance.Session)
		faculty.POST("/attendance", h.Attendance.Save)
		faculty.GET("/attendance/low", h.Attendance.LowAttendance)
		faculty.GET("/attendance/low/export", h.Attendance.ExportLowAttendance)

		faculty.GET("/grades", h.Grade.Gradebook)
		faculty.POST("/grades", h.Grade.Save)

		faculty.POST("/notes", h.Note.Create)
		faculty.GET("/notes", h.Note.List)
		faculty.DELETE("/notes/:id", h.Note.Delete)
	}

	return r
}
