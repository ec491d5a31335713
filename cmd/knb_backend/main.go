package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/knbsoft/knb_backend/cmd/docs"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/core/services"
	"github.com/knbsoft/knb_backend/internal/handlers"
	"github.com/knbsoft/knb_backend/internal/middleware"
	"github.com/knbsoft/knb_backend/internal/platform/config"
	"github.com/knbsoft/knb_backend/internal/repositories/database/pgsql"
	"github.com/knbsoft/knb_backend/pkg/database"
)

// @title KNB Backend API
// @version 1.0
// @description Branch banking ledger and account management API.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)

	auditSvc := services.NewAuditService(repos.AuditRepo)
	userSvc := services.NewUserService(repos.UserRepo, auditSvc)
	accountSvc := services.NewAccountService(repos.AccountRepo, auditSvc)
	ledgerSvc := services.NewLedgerService(repos.LedgerRepo, auditSvc)

	setupAuthRoutes(r, cfg, userSvc)
	setupAPIV1Routes(r, cfg, userSvc, accountSvc, ledgerSvc, auditSvc)
	setupSwaggerRoutes(r, cfg)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func setupAuthRoutes(r *gin.Engine, cfg *config.Config, userSvc portssvc.UserSvcFacade) {
	authHandler := handlers.NewAuthHandler(userSvc, cfg)

	// Login is rate limited per IP to slow down credential stuffing.
	rate, _ := limiter.NewRateFromFormatted(cfg.RateLimit)
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", middleware.RateLimit(ipLimiter), authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}
}

func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	userSvc portssvc.UserSvcFacade,
	accountSvc portssvc.AccountSvcFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	staffOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	accountHandler := handlers.NewAccountHandler(accountSvc, ledgerSvc)
	accounts := v1.Group("/accounts")
	{
		accounts.POST("", staffOnly, accountHandler.CreateAccount)
		accounts.GET("", staffOnly, accountHandler.ListAccounts)
		accounts.GET("/me", accountHandler.GetMyAccount)
		accounts.GET("/:accountNumber", staffOnly, accountHandler.GetAccount)
		accounts.PATCH("/:accountNumber/status", staffOnly, accountHandler.UpdateAccountStatus)
		accounts.PATCH("/:accountNumber/contact", staffOnly, accountHandler.UpdateContact)
	}

	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc, accountSvc)
	transactions := v1.Group("/transactions")
	{
		// Cash movements happen at the counter; clients use transfers and
		// bill payments on their own account.
		transactions.POST("/deposit", staffOnly, ledgerHandler.Deposit)
		transactions.POST("/withdraw", staffOnly, ledgerHandler.Withdraw)
		transactions.POST("/transfer", ledgerHandler.Transfer)
		transactions.POST("/paybill", ledgerHandler.PayBill)
	}
	v1.GET("/accounts/:accountNumber/transactions", ledgerHandler.ListEntries)

	userHandler := handlers.NewUserHandler(userSvc)
	users := v1.Group("/users")
	{
		users.GET("/pending", staffOnly, userHandler.ListPendingUsers)
		users.POST("/:userID/approve", staffOnly, userHandler.ApproveUser)
		users.POST("/:userID/disable", staffOnly, userHandler.DisableUser)
		users.GET("/:userID", userHandler.GetUser)
		users.PUT("/:userID", userHandler.UpdateUser)
	}

	auditHandler := handlers.NewAuditHandler(auditSvc)
	v1.GET("/audit", adminOnly, auditHandler.ListRecent)
}

func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		// no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
