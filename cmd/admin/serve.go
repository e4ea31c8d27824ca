package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adminpro/storefront-admin/app/access"
	"github.com/adminpro/storefront-admin/app/analytics"
	"github.com/adminpro/storefront-admin/app/categories"
	"github.com/adminpro/storefront-admin/app/products"
	"github.com/adminpro/storefront-admin/assets"
	"github.com/adminpro/storefront-admin/cache"
	"github.com/adminpro/storefront-admin/config"
	"github.com/adminpro/storefront-admin/database"
	"github.com/adminpro/storefront-admin/events"
	"github.com/adminpro/storefront-admin/logging"
	"github.com/adminpro/storefront-admin/models"
	"github.com/adminpro/storefront-admin/server"
)

func openDB(c config.DatabaseConfig) (*gorm.DB, error) {
	return database.Open(database.Options{
		URL:             c.URL,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		SlowThreshold:   c.SlowThreshold,
		Log:             logging.Std(logger, "gorm"),
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Info("schema migrated")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	uploader, err := assets.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		kafka, err := events.Dial(brokers, cfg.Kafka.ClientID, cfg.Kafka.TopicPrefix)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = kafka
		logger.Info("publishing mutation events", zap.Strings("brokers", brokers))
	}

	var store cache.Store = cache.Nop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		store = cache.NewRedis(client, cfg.Redis.Prefix, cfg.Redis.TTL)
		logger.Info("caching lists in redis", zap.String("addr", cfg.Redis.Addr))
	}

	categoryRepo := models.NewCategoriesRepository(db)
	productRepo := models.NewProductsRepository(db)

	categorySvc := categories.NewService(categoryRepo, uploader,
		categories.WithEvents(publisher),
		categories.WithCache(store),
		categories.WithLogger(logger.Named("categories")))
	productSvc := products.NewService(productRepo, uploader,
		products.WithEvents(publisher),
		products.WithCache(store),
		products.WithLogger(logger.Named("products")))

	auth := access.NewAuthenticator(cfg.Auth.JWTSecret,
		access.WithIssuer(cfg.Auth.Issuer),
		access.WithAdminRole(cfg.Auth.AdminRole))

	handler := server.NewRouter(server.Handlers{
		Auth:       auth,
		Session:    access.NewSessionHandler(auth),
		Categories: categories.NewCategoryHandler(categorySvc, logger, cfg.Server.MaxUploadBytes),
		Products:   products.NewProductHandler(productSvc, logger, cfg.Server.MaxUploadBytes),
		Analytics:  analytics.NewAnalyticsHandler(productRepo, logger),
		DB:         sqlDB,
	}, logger)

	srv := server.New(cfg.Server.Addr, handler, logger)
	return server.Run(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}
