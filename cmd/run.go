package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"socialmap/api"
	"socialmap/api/middleware"
	"socialmap/bot"
	"socialmap/config"
	"socialmap/database"
	"socialmap/events"
	"socialmap/geocoding"
	"socialmap/infrastructure"
	"socialmap/repository"
	"socialmap/service"
	"socialmap/triggers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	pollTimeoutSeconds = 60
	shutdownTimeout    = 10 * time.Second
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting socialmap backend...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := newRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	eventBus := events.NewBus()
	if cfg.NATSServers != "" {
		natsClient, err := startEventForwarding(ctx, cfg.NATSServers, eventBus)
		if err != nil {
			return err
		}
		defer natsClient.Close()
	} else {
		log.Info("NATS_SERVERS not set, domain events stay in process")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	phrases, err := triggers.LoadConfig(cfg.TriggersFile)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Info("Connecting to Telegram...")
	tg, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	log.WithField("username", tg.Self.UserName).Info("Authorized on Telegram")
	chat := bot.NewTelegramChat(tg)

	// Services
	geocoder := geocoding.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderUserAgent)
	resolver := geocoding.NewCachedResolver(geocoding.NewResolver(geocoder, nil), rdb, geocoding.DefaultCacheTTL)

	userService := service.NewUserService(uowFactory, cfg.StartingCredits)
	locationService := service.NewLocationService(uowFactory, resolver)
	linkService := service.NewLinkService(uowFactory)
	avatarService := service.NewAvatarService(uowFactory, newUploader(cfg.CloudinaryURL))
	settingsService := service.NewChatSettingsService(uowFactory)
	statsService := service.NewStatsService(uowFactory)
	duelService := service.NewDuelService(uowFactory, repository.NewRedisDuelOfferStore(rdb), service.DuelSettings{
		MinBet:     cfg.DuelMinBet,
		MaxBet:     cfg.DuelMaxBet,
		TaxPercent: cfg.DuelTaxPercent,
	}, rng)
	moderationService := service.NewModerationService(uowFactory, chat, chat, chat, chat, service.ModerationSettings{
		MaxWarns:  cfg.MaxWarns,
		AdminIDs:  cfg.AdminIDs,
		ImmuneIDs: cfg.ImmuneIDs,
		BotID:     tg.Self.ID,
	})

	telegramBot := bot.New(bot.Config{
		Username: tg.Self.UserName,
		ChatID:   cfg.TelegramChatID,
		Version:  cfg.BotVersion,
		IsAdmin:  cfg.IsAdmin,
	}, chat, bot.Services{
		Users:      userService,
		Moderation: moderationService,
		Duels:      duelService,
		Links:      linkService,
		Settings:   settingsService,
		Stats:      statsService,
	}, bot.Triggers{
		Evasion: triggers.NewEvasionMatcher(phrases.Evasion),
		Fun:     triggers.NewFunMatcher(phrases.Fun, rng),
	})
	if err := telegramBot.RegisterCommands(ctx, chat); err != nil {
		log.WithError(err).Warn("Failed to register bot commands")
	}

	deps := api.Deps{
		Users:       userService,
		Locations:   locationService,
		Avatars:     avatarService,
		Links:       linkService,
		Auth:        newTokenVerifier(ctx, cfg),
		Limiter:     middleware.NewRateLimiter(rdb, "location", middleware.LocationRateLimit, middleware.LocationRateWindow),
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.TelegramMode == "webhook" {
		deps.Webhook = api.NewWebhookHandler(cfg.TelegramWebhookSecret, telegramBot)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	pollingDone := make(chan struct{})
	if cfg.TelegramMode == "polling" {
		update := tgbotapi.NewUpdate(0)
		update.Timeout = pollTimeoutSeconds
		updates := tg.GetUpdatesChan(update)
		go func() {
			defer close(pollingDone)
			telegramBot.Run(ctx, updates)
		}()
		log.Info("Receiving updates by long polling")
	} else {
		close(pollingDone)
		log.Info("Receiving updates by webhook")
	}

	log.WithField("environment", cfg.Environment).Info("Backend is running")
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.WithError(err).Error("HTTP server failed")
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if cfg.TelegramMode == "polling" {
		tg.StopReceivingUpdates()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	select {
	case <-pollingDone:
		telegramBot.Wait()
		log.Info("Shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	}
	return nil
}

func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return rdb, nil
}

func startEventForwarding(ctx context.Context, servers string, bus *events.Bus) (*infrastructure.NATSClient, error) {
	client := infrastructure.NewNATSClient(servers, "socialmap")
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := client.EnsureStream(infrastructure.EventStreamName, infrastructure.AllSubjects()); err != nil {
		client.Close()
		return nil, err
	}
	infrastructure.NewNATSEventForwarder(client).Attach(bus)
	return client, nil
}

// newTokenVerifier returns nil when sign-in is not configured; protected routes
// then answer 503
func newTokenVerifier(ctx context.Context, cfg *config.Config) middleware.TokenVerifier {
	if cfg.FirebaseProjectID == "" {
		log.Warn("FIREBASE_PROJECT_ID not set, authenticated routes are disabled")
		return nil
	}

	client, err := middleware.NewFirebaseAuthClient(ctx, middleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		log.WithError(err).Error("Failed to initialize Firebase auth, authenticated routes are disabled")
		return nil
	}
	return client
}

var errUploadsDisabled = errors.New("media uploads are not configured")

type disabledUploader struct{}

func (disabledUploader) UploadDataURL(ctx context.Context, dataURL, folder, publicID string) (string, error) {
	return "", errUploadsDisabled
}

func newUploader(cloudinaryURL string) service.MediaUploader {
	if cloudinaryURL == "" {
		log.Warn("CLOUDINARY_URL not set, avatar uploads are disabled")
		return disabledUploader{}
	}
	uploader, err := infrastructure.NewCloudinaryUploader(cloudinaryURL)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Cloudinary, avatar uploads are disabled")
		return disabledUploader{}
	}
	return uploader
}
