package main

import (
	"context"
	"fmt"
	"log"

	"go-syncbridge/internal/api"
	"go-syncbridge/internal/config"
	"go-syncbridge/internal/database"
	"go-syncbridge/internal/features/auth"
	"go-syncbridge/internal/features/connection"
	"go-syncbridge/internal/features/mapping"
	"go-syncbridge/internal/features/schema"
	sync_feature "go-syncbridge/internal/features/sync"
	"go-syncbridge/internal/features/system"
	"go-syncbridge/internal/features/transform"
	"go-syncbridge/internal/gateways"
	"go-syncbridge/internal/logger"
	"go-syncbridge/internal/middleware"
	pkg_utils "go-syncbridge/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pkg_utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func NewAttioGateway(cfg *config.Config) gateways.AttioGateway {
	return gateways.NewAttioGateway(cfg.AttioBaseURL)
}

func NewAirtableGateway(cfg *config.Config) gateways.AirtableGateway {
	return gateways.NewAirtableGateway(cfg.AirtableBaseURL)
}

func NewBackupWriter(cfg *config.Config) sync_feature.BackupWriter {
	return sync_feature.NewPostgresBackupWriter(cfg.BackupDSN)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Remote gateways
			NewAttioGateway,
			NewAirtableGateway,

			// Repositories
			connection.NewConnectionRepository,
			mapping.NewMappingRepository,
			sync_feature.NewSyncRunRepository,

			// Services
			connection.NewConnectionService,
			schema.NewSchemaService,
			mapping.NewMappingService,
			transform.NewRegistry,
			sync_feature.NewRecordMatcher,
			NewBackupWriter,
			sync_feature.NewBroadcaster,
			sync_feature.NewSyncService,

			// Controllers
			auth.NewAuthController,
			connection.NewConnectionController,
			schema.NewSchemaController,
			mapping.NewMappingController,
			transform.NewTransformController,
			sync_feature.NewSyncController,
			system.NewWebSocketController,

			// API Routes
			AsRoute(api.NewHealthApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(connection.NewConnectionApi),
			AsRoute(schema.NewSchemaApi),
			AsRoute(mapping.NewMappingApi),
			AsRoute(transform.NewTransformApi),
			AsRoute(sync_feature.NewSyncApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
