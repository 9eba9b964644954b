package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sahilchouksey/admission-bridge/api"
	"github.com/sahilchouksey/admission-bridge/config"
	"github.com/sahilchouksey/admission-bridge/database"
	"github.com/sahilchouksey/admission-bridge/router"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/services/cron"
	"github.com/sahilchouksey/admission-bridge/services/media"
	"github.com/sahilchouksey/admission-bridge/services/messaging"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/cache"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	if getEnv.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	log, err := utils.NewLogger(getEnv.GO_ENV)
	if err != nil {
		return err
	}
	defer log.Sync()

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Error("database connection failed, check that the database is running", "driver", getEnv.DB_DRIVER, "error", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()
	log.Info("database connected", "driver", store.Dialect())

	if err := store.Init(); err != nil {
		log.Error("failed to run migrations", "error", err)
		return err
	}
	log.Info("migrations applied")

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return errors.New("failed to get GORM DB instance")
	}

	// Redis is optional: without it the directory is read from the database
	// on every request and login attempts are not rate limited.
	var redisCache *cache.RedisCache
	var directoryCache services.JSONCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn("failed to connect to redis", "error", err)
			redisCache = nil
		} else {
			directoryCache = redisCache
			defer redisCache.Close()
		}
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if getEnv.NATS_URL != "" {
		natsPublisher, err := messaging.NewNATSPublisher(getEnv.NATS_URL, getEnv.NATS_SUBJECT_PREFIX, log)
		if err != nil {
			log.Warn("events will not be published", "error", err)
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	mediaStore, mediaDir, err := newMediaStore(getEnv)
	if err != nil {
		return err
	}

	// Services
	directoryService := services.NewDirectoryService(db, directoryCache, log)
	shortlistService := services.NewShortlistService(db, log)
	notificationService := services.NewNotificationService(db, log)
	profileService := services.NewCollegeProfileService(db, directoryService, log)
	svc := router.Services{
		Shortlists:    shortlistService,
		Directory:     directoryService,
		Profiles:      profileService,
		ProfileMedia:  services.NewProfileMediaService(mediaStore, profileService, getEnv.MEDIA_MAX_FILE_SIZE, log),
		Admissions:    services.NewAdmissionService(db, shortlistService, notificationService, publisher, log),
		Notifications: notificationService,
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	if getEnv.CRON_ENABLED {
		cronManager := cron.NewCronManager(db, cron.Dependencies{
			Blacklist:      auth.NewBlacklistService(db),
			Notifications:  notificationService,
			Directory:      directoryService,
			DirectoryCache: directoryCache != nil,
		}, log)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", "error", err)
		} else {
			defer cronManager.Stop()
		}
	}

	// Init API; uploads may use the whole media limit plus multipart overhead
	bodyLimit := int(getEnv.MEDIA_MAX_FILE_SIZE) + 1024*1024
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), bodyLimit, log)
	app := server.GetEngine()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        getEnv.JWT_ACCESS_TTL,
		RefreshExpiry: getEnv.JWT_REFRESH_TTL,
		Issuer:        getEnv.JWT_ISSUER,
	})

	router.SetupRoutes(app, router.Config{
		Store:    store,
		DB:       db,
		JWT:      jwtManager,
		Cache:    redisCache,
		Services: svc,
		Security: middleware.SecurityConfig{
			AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		MediaDir: mediaDir,
		MediaURL: getEnv.MEDIA_PUBLIC_URL,
		Log:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.Shutdown(10 * time.Second); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	return server.Run()
}

// newMediaStore selects the upload backend. The returned directory is non-empty
// only for the local store, which the API serves itself.
func newMediaStore(env *config.EnvironmentVariable) (media.Store, string, error) {
	switch strings.ToLower(env.MEDIA_DRIVER) {
	case "spaces":
		store, err := media.NewSpacesStore(media.SpacesConfig{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
			CDNURL:    env.DO_SPACES_CDN_URL,
		})
		return store, "", err
	case "cloudinary":
		store, err := media.NewCloudinaryStore(env.CLOUDINARY_URL, env.CLOUDINARY_FOLDER)
		return store, "", err
	case "local", "":
		store, err := media.NewLocalStore(env.MEDIA_LOCAL_DIR, env.MEDIA_PUBLIC_URL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	default:
		return nil, "", fmt.Errorf("unsupported MEDIA_DRIVER %q", env.MEDIA_DRIVER)
	}
}
