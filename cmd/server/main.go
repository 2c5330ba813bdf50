package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/api"
	"coursehub/internal/api/handler"
	"coursehub/internal/app/service"
	"coursehub/internal/app/worker"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/database"
	"coursehub/internal/platform/idgen"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/queue"
)

func main() {
	// 1. Configuration and logging
	config.Load()
	cfg := config.AppConfig

	zl, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	if err := idgen.Init(cfg.SnowflakeNode); err != nil {
		sugar.Fatalw("could not initialize id generator", "error", err)
	}

	// 2. JWT
	security.InitJWT()

	// 3. Database
	database.Connect()
	defer database.Close()
	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(schemaCtx, database.DB); err != nil {
		schemaCancel()
		sugar.Fatalw("could not apply schema", "error", err)
	}
	schemaCancel()
	sugar.Info("database ready")

	// 4. Redis
	if err := queue.ConnectRedis(); err != nil {
		sugar.Fatalw("could not connect to redis", "addr", cfg.RedisAddr, "error", err)
	}
	defer func() {
		if err := queue.CloseRedis(); err != nil {
			sugar.Warnw("closing redis", "error", err)
		}
	}()
	sugar.Infow("redis connected", "addr", cfg.RedisAddr, "timeout", cfg.RedisTimeout)

	// 5. Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	verificationRepo := repository.NewPgVerificationRepository(database.DB)
	courseRepo := repository.NewPgCourseRepository(database.DB)
	reviewRepo := repository.NewPgReviewRepository(database.DB)
	replyRepo := repository.NewPgReplyRepository(database.DB)
	postRepo := repository.NewPgForumPostRepository(database.DB)
	commentRepo := repository.NewPgForumCommentRepository(database.DB)
	likeRepo := repository.NewPgForumLikeRepository(database.DB)
	txm := database.NewTxManager(database.DB)

	// 6. Services
	mailQueue := queue.NewMailQueue(queue.RDB, cfg.MailQueueName)
	identityService := service.NewIdentityService(userRepo, security.BcryptHasher{Cost: cfg.BcryptCost}, sugar.Named("identity"))
	verificationService := service.NewVerificationService(verificationRepo, txm, mailQueue,
		service.VerificationPolicy{TTL: cfg.VerificationTTL, Throttle: cfg.VerificationDelay}, sugar.Named("verification"))
	authService := service.NewAuthService(identityService, verificationService, txm, sugar.Named("auth"))
	courseService := service.NewCourseService(courseRepo)
	reviewService := service.NewReviewService(reviewRepo, courseRepo, txm)
	replyService := service.NewReplyService(replyRepo, reviewRepo, userRepo, txm)
	postService := service.NewPostService(postRepo, sugar.Named("forum"))
	commentService := service.NewCommentService(commentRepo, postRepo, txm, sugar.Named("forum"))
	likeService := service.NewLikeService(likeRepo, postRepo, txm)

	// 7. Mail worker
	mailWorker := worker.NewMailWorker(mailQueue, worker.LogDeliverer{Log: sugar.Named("mail")}, cfg.MailMaxAttempts, sugar.Named("mail_worker"))
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go mailWorker.Start(workerCtx)

	// 8. Router & HTTP server
	httpLog := sugar.Named("http")
	router := api.NewRouter(api.Handlers{
		Auth:    handler.NewAuthHandler(authService, identityService, httpLog),
		Course:  handler.NewCourseHandler(courseService, httpLog),
		Review:  handler.NewReviewHandler(reviewService, httpLog),
		Reply:   handler.NewReplyHandler(replyService, httpLog),
		Post:    handler.NewPostHandler(postService, likeService, httpLog),
		Comment: handler.NewCommentHandler(commentService, httpLog),
	}, httpLog)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		sugar.Infow("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("could not listen", "port", cfg.APIPort, "error", err)
		}
	}()

	<-stop

	sugar.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server shutdown failed", "error", err)
		return
	}
	sugar.Info("server and worker stopped")
}
