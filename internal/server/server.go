package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patel-jhanvi/amrap-gym/internal/auth"
	"github.com/patel-jhanvi/amrap-gym/internal/config"
	"github.com/patel-jhanvi/amrap-gym/internal/email"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

// Repositories are the persistence ports the Record Store serves from.
type Repositories struct {
	Gyms        gym.Repository
	Users       user.Repository
	Memberships membership.Repository
}

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds the Record Store router. mailer may be nil, in which case no
// membership notifications are sent.
func New(cfg *config.Config, repos Repositories, mailer *email.Service) *Server {
	stop := make(chan struct{})
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimitMiddleware(stop, cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	var notifier membership.Notifier
	if mailer != nil {
		notifier = mailer
	}

	gymHandler := gym.NewHandler(gym.NewService(repos.Gyms))
	userHandler := user.NewHandler(user.NewService(repos.Users))
	membershipHandler := membership.NewHandler(
		membership.NewService(repos.Memberships, repos.Gyms, repos.Users, notifier),
	)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	router.GET("/gyms", gymHandler.ListGyms)
	router.GET("/gyms/:id", gymHandler.GetGym)
	router.GET("/gyms/:id/users", membershipHandler.MembersOfGym)
	router.GET("/users", userHandler.ListUsers)
	router.GET("/users/:id", userHandler.GetUser)
	router.GET("/users/:id/gyms", membershipHandler.GymsOfUser)

	writes := router.Group("/")
	if cfg.AuthEnabled() {
		loginHandler := auth.NewHandler(cfg.OperatorEmail, cfg.OperatorPasswordHash, cfg.JWTSecret, auth.DefaultTokenTTL)
		router.POST("/auth/login", loginHandler.Login)
		writes.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleOperator))
	}
	{
		writes.POST("/gyms", gymHandler.CreateGym)
		writes.PUT("/gyms/:id", gymHandler.UpdateGym)
		writes.DELETE("/gyms/:id", gymHandler.DeleteGym)
		writes.POST("/users", userHandler.CreateUser)
		writes.PUT("/users/:id", userHandler.UpdateUser)
		writes.DELETE("/users/:id", userHandler.DeleteUser)
		writes.POST("/memberships", membershipHandler.AddMembership)
		writes.DELETE("/memberships", membershipHandler.RemoveMembership)
		if mailer != nil {
			writes.POST("/notifications/test", TestEmail(mailer))
		}
	}

	return &Server{
		router: router,
		config: cfg,
		stop:   stop,
	}
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the background work started by New. Safe to call more than
// once.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
