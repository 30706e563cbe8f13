package main

import (
	"context"
	"fmt"
	"innovation-portal/auth"
	"innovation-portal/internal/challenge"
	"innovation-portal/internal/collaboration"
	"innovation-portal/internal/config"
	"innovation-portal/internal/db"
	"innovation-portal/internal/health"
	"innovation-portal/internal/idea"
	"innovation-portal/internal/logger"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/review"
	"innovation-portal/internal/user"
	"innovation-portal/internal/validation"
	"innovation-portal/internal/worker"
	"innovation-portal/internal/workflow"
	"innovation-portal/redis"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Setup(cfg.LogLevel, cfg.IsProduction())
	auth.SetSecret(cfg.JWTSecret)

	if err := validation.Register(); err != nil {
		log.Fatal().Err(err).Msg("registering validators")
	}

	// Connect to database
	if err := db.ConnectDb(); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.CloseDb()

	// Migrate database schema
	if err := db.Migrate(db.AppDb); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Seed from SEED_FILE, or with the demo accounts in development
	if err := seed(cfg); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	// Initialize Redis
	redisClient := redis.InitRedis(cfg.RedisAddress)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := redis.NewCache(redisClient, cfg.CacheTTL)

	pool := worker.NewWorkerPool(cfg.WorkerPoolSize)

	// Initialize repository
	userRepo := user.NewRepository(db.AppDb)
	ideaRepo := idea.NewRepository(db.AppDb)
	challengeRepo := challenge.NewRepository(db.AppDb)
	reviewRepo := review.NewRepository(db.AppDb)
	collabRepo := collaboration.NewRepository(db.AppDb)
	notificationRepo := notification.NewRepository(db.AppDb)

	// Initialize service
	publisher := notification.NewPublisher(redisClient)
	dispatcher := notification.NewDispatcher(pool, notificationRepo, publisher,
		notification.NewWebhookClient(cfg.WebhookURL, cfg.WebhookSecret))

	userService := user.NewService(userRepo)
	ideaService := idea.NewService(ideaRepo, cache, dispatcher, cfg.MaxAttachmentBytes)
	challengeService := challenge.NewService(challengeRepo, dispatcher)
	reviewService := review.NewService(reviewRepo, cache, dispatcher, cfg.MinReviewsForDecision)
	collabService := collaboration.NewService(collabRepo, ideaRepo, cache, dispatcher)
	notificationService := notification.NewService(notificationRepo)

	// Initialize handler
	userHandler := user.NewHandler(userService)
	ideaHandler := idea.NewHandler(ideaService, cfg.MaxAttachmentBytes)
	challengeHandler := challenge.NewHandler(challengeService)
	reviewHandler := review.NewHandler(reviewService)
	collabHandler := collaboration.NewHandler(collabService)
	notificationHandler := notification.NewHandler(notificationService, publisher)

	checker := health.NewChecker(health.Database(db.AppDb), health.Redis(redisClient))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(), middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}
	if cfg.IsProduction() {
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	authMiddleware := &middleware.Auth{UserService: userService}
	authed := authMiddleware.AuthMiddleWare()

	router.GET("/healthz", checker.Handler)

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.POST("/refresh", userHandler.RefreshToken)
	router.DELETE("/logout", authed, userHandler.Logout)
	router.GET("/profile", authed, userHandler.GetProfile)
	router.GET("/users", authed, userHandler.SearchUsers)
	router.GET("/roles", authed, userHandler.ListRoles)
	router.POST("/users/:id/roles", authed, middleware.RequirePermission(workflow.PermAssignRole), userHandler.AssignRole)
	router.DELETE("/users/:id/roles/:role", authed, middleware.RequirePermission(workflow.PermAssignRole), userHandler.RevokeRole)

	router.GET("/workflow", authed, reviewHandler.Workflow)

	// Idea routes
	router.GET("/ideas", authed, ideaHandler.ListMine)
	router.POST("/ideas", authed, middleware.RequirePermission(workflow.PermCreateIdea), ideaHandler.Create)
	router.GET("/ideas/public", authed, ideaHandler.ListPublic)
	router.GET("/ideas/:id", authed, ideaHandler.Show)
	router.PUT("/ideas/:id", authed, ideaHandler.Update)
	router.DELETE("/ideas/:id", authed, ideaHandler.Delete)
	router.POST("/ideas/:id/submit", authed, ideaHandler.Submit)
	router.PUT("/ideas/:id/attachment", authed, ideaHandler.UploadAttachment)
	router.GET("/ideas/:id/attachment", authed, ideaHandler.DownloadAttachment)
	router.GET("/ideas/:id/versions", authed, ideaHandler.ListVersions)
	router.GET("/ideas/:id/comments", authed, ideaHandler.ListComments)
	router.POST("/ideas/:id/comments", authed, ideaHandler.AddComment)
	router.DELETE("/ideas/:id/comments/:commentId", authed, ideaHandler.DeleteComment)
	router.POST("/ideas/:id/like", authed, ideaHandler.ToggleLike)
	router.GET("/ideas/:id/reviews", authed, reviewHandler.ListReviews(review.KindIdea))
	router.POST("/ideas/:id/reviews", authed, reviewHandler.SubmitReview(review.KindIdea))
	router.GET("/ideas/:id/decisions", authed, reviewHandler.ListDecisions(review.KindIdea))
	router.POST("/ideas/:id/decisions", authed, middleware.RequirePermission(workflow.PermRecordDecision), reviewHandler.Decide(review.KindIdea))

	// Collaboration routes
	router.GET("/ideas/:id/collaboration-requests", authed, collabHandler.ListRequests)
	router.POST("/ideas/:id/collaboration-requests", authed, collabHandler.RequestToJoin)
	router.PUT("/collaboration-requests/:id", authed, collabHandler.RespondToRequest)
	router.GET("/ideas/:id/proposals", authed, collabHandler.ListProposals)
	router.POST("/ideas/:id/proposals", authed, collabHandler.Propose)
	router.PUT("/proposals/:id", authed, collabHandler.RespondToProposal)

	// Challenge routes
	router.GET("/challenges", authed, challengeHandler.ListChallenges)
	router.POST("/challenges", authed, middleware.RequirePermission(workflow.PermManageChallenge), challengeHandler.CreateChallenge)
	router.GET("/challenges/:id", authed, challengeHandler.ShowChallenge)
	router.PUT("/challenges/:id", authed, middleware.RequirePermission(workflow.PermManageChallenge), challengeHandler.UpdateChallenge)
	router.POST("/challenges/:id/close", authed, middleware.RequirePermission(workflow.PermManageChallenge), challengeHandler.CloseChallenge)
	router.GET("/challenges/:id/submissions", authed, challengeHandler.ListSubmissions)
	router.POST("/challenges/:id/submissions", authed, challengeHandler.CreateSubmission)
	router.GET("/submissions/mine", authed, challengeHandler.ListMySubmissions)
	router.GET("/submissions/:id", authed, challengeHandler.ShowSubmission)
	router.PUT("/submissions/:id", authed, challengeHandler.UpdateSubmission)
	router.POST("/submissions/:id/submit", authed, challengeHandler.Submit)
	router.GET("/submissions/:id/reviews", authed, reviewHandler.ListReviews(review.KindChallenge))
	router.POST("/submissions/:id/reviews", authed, reviewHandler.SubmitReview(review.KindChallenge))
	router.GET("/submissions/:id/decisions", authed, reviewHandler.ListDecisions(review.KindChallenge))
	router.POST("/submissions/:id/decisions", authed, middleware.RequirePermission(workflow.PermRecordDecision), reviewHandler.Decide(review.KindChallenge))

	router.GET("/reviews/queue", authed, reviewHandler.Queue)

	// Notification routes
	router.GET("/notifications", authed, notificationHandler.List)
	router.PUT("/notifications/read-all", authed, notificationHandler.MarkAllRead)
	router.PUT("/notifications/:id/read", authed, notificationHandler.MarkRead)
	router.GET("/notifications/stream", authMiddleware.StreamAuthMiddleWare(), notificationHandler.Stream)

	// Server configuration
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router.Handler(),
	}

	grpcServer := grpc.NewServer()
	checker.Register(grpcServer)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("grpc listen failed")
	}

	// Start servers
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("grpc health listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Error().Err(err).Msg("grpc server stopped")
		}
	}()
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	if err := checker.MarkServing(context.Background()); err != nil {
		log.Error().Err(err).Msg("database not ready, health stays NOT_SERVING")
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	checker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	grpcServer.GracefulStop()
	pool.Shutdown()

	log.Info().Msg("server shutdown complete")
}

func seed(cfg config.Config) error {
	ctx := context.Background()
	if cfg.SeedFile != "" {
		file, err := db.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		return db.SeedData(ctx, db.AppDb, file)
	}
	if cfg.IsProduction() {
		return nil
	}
	return db.SeedData(ctx, db.AppDb, db.DefaultSeed())
}
