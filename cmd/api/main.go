package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/doctorcare-api/internal/config"
	"github.com/harentsoaR/doctorcare-api/internal/handlers"
	"github.com/harentsoaR/doctorcare-api/internal/logger"
	"github.com/harentsoaR/doctorcare-api/internal/media"
	"github.com/harentsoaR/doctorcare-api/internal/metrics"
	"github.com/harentsoaR/doctorcare-api/internal/services"
	"github.com/harentsoaR/doctorcare-api/internal/store"
	"github.com/harentsoaR/doctorcare-api/internal/store/memstore"
	"github.com/harentsoaR/doctorcare-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if !cfg.EnvFileLoaded {
		log.Info("No .env file found, relying on environment variables.")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("Using in-memory store, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := store.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB!")

	st := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := st.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}
	return st, closeFn, nil
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.UserTokenTTL, log)

	images := media.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder, log)
	if !cfg.Cloudinary.Enabled() {
		log.Warn("CLOUDINARY_* not set, doctor image uploads are disabled")
	}

	// --- Initialize Services ---
	notifier := services.NewNotificationService(cfg.TextbeltKey, log)
	h := handlers.NewHandler(
		services.NewAuthService(st, st, tokens, log),
		services.NewAppointmentService(st, st, st, notifier, log),
		services.NewDoctorService(st, images, log),
		services.NewContactService(st, log),
		metrics.New(),
		log,
	)

	if log.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		Tokens:         tokens,
		Admins:         st,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
