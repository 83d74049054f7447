package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/learnpay/learnpay/internal/auth"
	"github.com/learnpay/learnpay/internal/config"
	"github.com/learnpay/learnpay/internal/course"
	"github.com/learnpay/learnpay/internal/enrollment"
	"github.com/learnpay/learnpay/internal/events"
	"github.com/learnpay/learnpay/internal/identity"
	"github.com/learnpay/learnpay/internal/middleware"
	"github.com/learnpay/learnpay/internal/notification"
	"github.com/learnpay/learnpay/internal/placement"
	"github.com/learnpay/learnpay/internal/purchase"
	"github.com/learnpay/learnpay/internal/storage"
	"github.com/learnpay/learnpay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The returned
// cleanup stops the enrollment event worker; call it during shutdown.
func Setup(app *fiber.App, d Deps) (func(), error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores: Postgres in normal operation, in-memory in dev mode.
	var (
		runner      storage.TxRunner
		walletStore wallet.Store
		enrollStore enrollment.Store
		courseRepo  course.Repository
		idRepo      identity.Repository
	)
	if d.DB != nil {
		runner = storage.NewPostgresRunner(d.DB)
		walletStore = wallet.NewPostgresStore(d.DB)
		enrollStore = enrollment.NewPostgresStore(d.DB)
		courseRepo = course.NewPostgresRepository(d.DB)
		idRepo = identity.NewPostgresRepository(d.DB)
	} else {
		mem := storage.NewMemoryRunner()
		runner = mem
		walletStore = wallet.NewMemoryStore(mem)
		enrollStore = enrollment.NewMemoryStore(mem)
		courseRepo = course.NewMemoryRepository()
		idRepo = identity.NewMemoryRepository()
	}

	// Services and handlers
	idSvc := identity.NewService(idRepo)
	authSvc := auth.NewService(d.Cfg, idRepo)
	walletSvc := wallet.NewService(walletStore)
	authHandler := auth.NewHandler(idSvc, authSvc, walletSvc, d.Cfg.SignupBonus)
	courseSvc := course.NewService(courseRepo, enrollStore, idRepo, d.Cfg.GroupCapacity)
	courseHandler := course.NewHandler(courseSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	notifier := notification.NewLoggerNotifier(d.Logger)

	placer := placement.NewService(courseRepo, d.Logger)
	dispatcher := events.NewDispatcher(64, func(ctx context.Context, ev events.EnrollmentCommitted) {
		if _, err := placer.Place(ctx, ev.CourseID, ev.UserID); err != nil {
			if errors.Is(err, placement.ErrNoGroups) {
				d.Logger.Info("placement skipped", "course_id", ev.CourseID, "user_id", ev.UserID)
				return
			}
			d.Logger.Error("placement failed", "course_id", ev.CourseID, "user_id", ev.UserID, "error", err)
		}
	}, d.Logger)

	purchaseSvc := purchase.NewService(courseRepo, walletStore, enrollStore, runner, dispatcher, notifier, d.Logger)
	purchaseHandler := purchase.NewHandler(purchaseSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, authHandler)

	// Protected routes
	jwtmw := middleware.JWTAuth(d.Cfg, idRepo)
	protected := api.Group("", jwtmw)
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		user, err := idRepo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"staff":      user.Staff,
			"created_at": user.CreatedAt,
		})
	})

	RegisterCourseRoutes(protected, courseHandler, purchaseHandler, d)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterEnrollmentRoutes(protected, enrollStore)

	return dispatcher.Close, nil
}
