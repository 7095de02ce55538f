package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/campus-records-api/api/swagger"
	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/repository"
	"github.com/noah-isme/campus-records-api/internal/router"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/pkg/cache"
	"github.com/noah-isme/campus-records-api/pkg/config"
	"github.com/noah-isme/campus-records-api/pkg/database"
	"github.com/noah-isme/campus-records-api/pkg/logger"
)

// @title Campus Records API
// @version 0.1.0
// @description Section-scoped attendance and grade records for the campus portal
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()
	validate := validator.New()

	cacheService := service.NewCacheService(nil, metricsService, cfg.Cache.TTL, logr, false)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	termRepo := repository.NewTermRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		RefreshExpiry:     cfg.JWT.RefreshExpiration,
		Issuer:            cfg.JWT.Issuer,
	})
	rosterService := service.NewRosterService(courseRepo, enrollmentRepo, logr)
	attendanceService := service.NewAttendanceService(rosterService, attendanceRepo, cacheService, validate, logr)
	gradeService := service.NewGradeService(rosterService, transcriptRepo, enrollmentRepo, cacheService, validate, logr)
	courseService := service.NewCourseService(courseRepo, logr)
	termService := service.NewTermService(termRepo, logr)
	noteService := service.NewNoteService(noteRepo, validate, logr)

	engine := router.New(cfg, logr, authService, metricsService, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Course:     handler.NewCourseHandler(courseService),
		Term:       handler.NewTermHandler(termService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Grade:      handler.NewGradeHandler(gradeService),
		Note:       handler.NewNoteHandler(noteService),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
