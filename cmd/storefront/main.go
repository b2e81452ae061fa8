package main

import (
	"context"
	"log/slog"
	"os"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/delivery/api"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/delivery/middleware"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/guard"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/cache"
	logs "storefront/internal/infra/log"
	"storefront/internal/infra/persistence/memory"
	"storefront/internal/infra/persistence/postgres"
	"storefront/internal/infra/qrcode"
	"storefront/internal/storefront"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const defaultTrackingURL = "http://localhost:3000/orders/"

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectClients(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		cache.NewSharedStore,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newVisitorRepository,
		),
	)
}

// newVisitorRepository keeps visitor credentials in PostgreSQL when a database
// is configured and in process memory otherwise.
func newVisitorRepository(db *gorm.DB, logger *slog.Logger) repository.VisitorRepository {
	if db == nil {
		logger.Warn("Visitor sessions are not persisted across restarts")

		return memory.NewVisitorRepository()
	}

	return postgres.NewVisitorRepository(db)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewJWTInspector,
			newCredentialSealer,
			newQRCodeService,
		),
	)
}

// newCredentialSealer uses the configured storage key. Without one, sealed
// credentials cannot be opened after a restart.
func newCredentialSealer(cfg *config.Config, logger *slog.Logger) (service.CredentialSealer, error) {
	if cfg.SecretKey.Storage == "" {
		logger.Warn("secretKey.storage not set, using an ephemeral sealing key")

		return auth.NewEphemeralSealer()
	}

	sealer, err := auth.NewSecretboxSealer(cfg.SecretKey.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "secretKey.storage")
	}

	return sealer, nil
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) (service.QRCodeService, error) {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M", defaultTrackingURL)
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.TrackingURL)
}

func injectClients() fx.Option {
	return fx.Options(
		fx.Provide(
			storefront.NewRegistry,
			guard.DefaultPolicy,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewVisitorMiddleware,
			middleware.NewGuardMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewHealthHandler,
			handler.NewAuthHandler,
			handler.NewCatalogHandler,
			handler.NewCartHandler,
			handler.NewOrderHandler,
			handler.NewSellerHandler,
			handler.NewAdminHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
