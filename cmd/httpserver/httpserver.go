// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-divvy/divvy/internal/expensedelivery"
	"github.com/go-divvy/divvy/internal/expenserepo"
	"github.com/go-divvy/divvy/internal/expenseservice"
	"github.com/go-divvy/divvy/internal/groupdelivery"
	"github.com/go-divvy/divvy/internal/grouprepo"
	"github.com/go-divvy/divvy/internal/groupservice"
	"github.com/go-divvy/divvy/internal/middleware"
	"github.com/go-divvy/divvy/internal/paymentdelivery"
	"github.com/go-divvy/divvy/internal/paymentrepo"
	"github.com/go-divvy/divvy/internal/paymentservice"
	"github.com/go-divvy/divvy/internal/sessiondelivery"
	"github.com/go-divvy/divvy/internal/sessionrepo"
	"github.com/go-divvy/divvy/internal/sessionservice"
	"github.com/go-divvy/divvy/internal/settlementdelivery"
	"github.com/go-divvy/divvy/internal/settlementservice"
	"github.com/go-divvy/divvy/internal/userdelivery"
	"github.com/go-divvy/divvy/internal/userrepo"
	"github.com/go-divvy/divvy/internal/userservice"
	"github.com/go-divvy/divvy/pkg/configpkg"
	"github.com/go-divvy/divvy/pkg/currencypkg"
	"github.com/go-divvy/divvy/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	groupRepo := grouprepo.NewRepoPGS(conn)
	expenseRepo := expenserepo.NewRepoPGS(conn)
	paymentRepo := paymentrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	groupService := groupservice.New(groupRepo, userRepo)
	paymentService := paymentservice.New(paymentRepo, groupService)
	settlementService := settlementservice.New(expenseRepo, paymentRepo, groupService)

	expenseService, err := expenseservice.New(expenseRepo, groupService, config)
	if err != nil {
		return nil, errors.New("cannot initialize expense service")
	}

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	userHandler := userdelivery.NewHandler(userService, sessionService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	groupHandler := groupdelivery.NewHandler(groupService)
	expenseHandler := expensedelivery.NewHandler(expenseService)
	paymentHandler := paymentdelivery.NewHandler(paymentService)
	settlementHandler := settlementdelivery.NewHandler(settlementService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/groups", groupHandler.Create)
	authRoutes.GET("/groups", groupHandler.List)
	authRoutes.GET("/groups/:id", groupHandler.Get)
	authRoutes.PATCH("/groups/:id", groupHandler.Rename)
	authRoutes.DELETE("/groups/:id", groupHandler.Delete)
	authRoutes.POST("/groups/:id/members", groupHandler.AddMember)
	authRoutes.DELETE("/groups/:id/members/:memberID", groupHandler.RemoveMember)

	authRoutes.POST("/expenses", expenseHandler.Create)
	authRoutes.GET("/expenses", expenseHandler.List)
	authRoutes.GET("/expenses/:id", expenseHandler.Get)
	authRoutes.PATCH("/expenses/:id", expenseHandler.Update)
	authRoutes.DELETE("/expenses/:id", expenseHandler.Delete)
	authRoutes.GET("/groups/:id/expenses/export", expenseHandler.ExportCSV)

	authRoutes.POST("/payments", paymentHandler.Create)
	authRoutes.GET("/groups/:id/payments", paymentHandler.List)

	authRoutes.GET("/groups/:id/settlement", settlementHandler.Settle)
	authRoutes.GET("/groups/:id/dashboard", settlementHandler.Dashboard)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
			return nil, errors.New("cannot register currency validator")
		}

		if err := v.RegisterValidation("category", expensedelivery.ValidCategory); err != nil {
			return nil, errors.New("cannot register category validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
