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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventora/eventora-backend/config"
	"github.com/eventora/eventora-backend/controllers"
	"github.com/eventora/eventora-backend/middleware"
	"github.com/eventora/eventora-backend/storage"
	"github.com/eventora/eventora-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg.LogLevel)

	client, db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("database", cfg.MongoDB).Msg("connected to MongoDB")

	profileStore, err := storage.NewImageStore(cfg.ProfileImageDir, "/usersprofilepics")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare profile image store")
	}
	eventStore, err := storage.NewImageStore(cfg.EventImageDir, "/eventimages")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare event image store")
	}

	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	router := setupRouter(cfg, db, profileStore, eventStore, mailer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("error disconnecting MongoDB")
	}

	log.Info().Msg("server exited")
}

func setupRouter(cfg *config.Config, db *mongo.Database, profileStore, eventStore *storage.ImageStore, mailer *utils.Mailer) *gin.Engine {
	router := gin.Default()

	// stored images are served straight from disk by filename
	router.Static("/usersprofilepics", cfg.ProfileImageDir)
	router.Static("/eventimages", cfg.EventImageDir)

	authController := controllers.NewAuthController(db, cfg, mailer)
	userController := controllers.NewUserController(db, profileStore)
	eventController := controllers.NewEventController(db, eventStore)

	authRequired := middleware.Auth(cfg.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/password/reset", authController.SendResetOTP)
			auth.POST("/password/verify", authController.VerifyOTP)
			auth.POST("/password/change", authController.ResetPassword)
		}

		user := api.Group("/user")
		{
			user.PUT("/profile", authRequired,
				middleware.ProfileImageUpload(profileStore, cfg.MaxImageBytes),
				userController.UpdateProfile)
			user.GET("/:id", authRequired, userController.GetUserByID)
		}

		events := api.Group("/events")
		{
			events.POST("/add", authRequired, eventController.AddEvent)
			events.GET("", authRequired, eventController.GetEvents)
			events.PUT("/update", authRequired, eventController.UpdateEvent)
			events.DELETE("/delete", authRequired, eventController.DeleteEvent)
			events.GET("/:eventId", authRequired, eventController.GetEventByID)
			events.GET("/location/:location", authRequired, eventController.GetEventsByLocation)
			events.GET("/status/:status", eventController.Get3EventsByStatus)
			events.GET("/upcoming-3-by-location/:location", authRequired, eventController.Get3UpcomingEventsByLocation)
			events.GET("/upcoming-all-by-location/:location", authRequired, eventController.GetAllUpcomingEventsByLocation)
			events.GET("/allEvents/:status", eventController.GetAllEvents)
			events.POST("/upload-images",
				middleware.EventImagesUpload(eventStore, cfg.MaxImageBytes, maxUploadFiles),
				eventController.UploadEventImages)
			events.POST("/add-comment/:eventId", authRequired, eventController.AddComment)
			events.POST("/:eventId/attend", authRequired, eventController.Attend)
			events.DELETE("/:eventId/attend", authRequired, eventController.Unattend)
		}
	}

	return router
}

// maxUploadFiles caps a single upload-images request.
const maxUploadFiles = 10

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
