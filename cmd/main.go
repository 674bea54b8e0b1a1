package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/config"
	"github.com/Leye5555/Insta-ulster-posts/internal/api/post"
	"github.com/Leye5555/Insta-ulster-posts/internal/api/sas"
	"github.com/Leye5555/Insta-ulster-posts/internal/client"
	"github.com/Leye5555/Insta-ulster-posts/internal/common"
	"github.com/Leye5555/Insta-ulster-posts/internal/credential"
	"github.com/Leye5555/Insta-ulster-posts/internal/middleware"
	"github.com/Leye5555/Insta-ulster-posts/internal/repository/interfaces"
	"github.com/Leye5555/Insta-ulster-posts/internal/repository/mysql"
	"github.com/Leye5555/Insta-ulster-posts/internal/repository/postgres"
	"github.com/Leye5555/Insta-ulster-posts/internal/service"
	"github.com/Leye5555/Insta-ulster-posts/internal/storage"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type schemaRepository interface {
	interfaces.PostRepository
	EnsureSchema(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	if err := util.InitLogger(cfg.LogLevel); err != nil {
		zap.NewExample().Fatal("failed to initialise logger", zap.Error(err))
	}
	defer util.Logger.Sync()

	util.Logger.Info("starting posts service", zap.String("port", cfg.Port))

	issuer, err := credential.NewIssuer(cfg.SASSecret, cfg.SASScope, cfg.SASTTL)
	if err != nil {
		util.Logger.Fatal("failed to create credential issuer", zap.Error(err))
	}

	ctx := context.Background()

	repo, closeDB := openRepository(ctx, cfg)
	defer closeDB()

	if err := repo.EnsureSchema(ctx); err != nil {
		util.Logger.Fatal("failed to prepare schema", zap.Error(err))
	}

	if err := util.RegisterValidators(); err != nil {
		util.Logger.Fatal("failed to register validators", zap.Error(err))
	}

	blobs, closeBlobs := openBlobStore(ctx, cfg)
	defer closeBlobs()

	clientOpts := func(baseURL string) client.Options {
		return client.Options{BaseURL: baseURL, Timeout: cfg.UpstreamTimeout}
	}
	users := client.NewUserClient(clientOpts(cfg.UserAPIURL))
	comments := client.NewCommentClient(clientOpts(cfg.CommentsAPIURL))
	likes := client.NewLikeClient(clientOpts(cfg.LikesAPIURL))

	aggregator := service.NewAggregator(users, comments, likes, issuer, cfg.AggregateMaxConcurrency)
	likeFilter := service.NewLikeFilter(likes, cfg.AggregateMaxConcurrency)
	postService := service.NewPostService(repo, aggregator, likeFilter, issuer)

	postHandler := post.NewPostHandler(postService, blobs, cfg.SASScope)
	sasHandler := sas.NewSASHandler(postService)

	errorMonitor := middleware.NewErrorMonitor()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
	}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Local blobs are served by us, so the credential is checked here.
	// Remote backends enforce access themselves.
	if cfg.StorageBackend == "local" {
		uploads := r.Group("/uploads", middleware.BlobAccessMiddleware(issuer, "/uploads"))
		uploads.Static("/", cfg.LocalStoragePath)
	}

	api := r.Group("/api/v1")
	api.POST("/sas/verify", sasHandler.Verify)

	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/posts", postHandler.ListPosts)
		authorized.GET("/posts/liked", postHandler.ListLikedPosts)
		authorized.GET("/posts/:id", postHandler.GetPost)
		authorized.POST("/posts", postHandler.CreatePost)
		authorized.PUT("/posts/:id", postHandler.UpdatePost)
		authorized.DELETE("/posts/:id", postHandler.DeletePost)

		authorized.GET("/sas", sasHandler.Issue)
	}

	if cfg.Debug {
		r.GET("/debug/errors", errorMonitor.CountsHandler)
		for _, route := range r.Routes() {
			util.Logger.Debug("route",
				zap.String("method", route.Method),
				zap.String("path", route.Path),
				zap.String("handler", route.Handler))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		util.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		util.Logger.Error("forced shutdown", zap.Error(err))
	}

	util.Logger.Info("server stopped")
}

func openRepository(ctx context.Context, cfg *config.Config) (schemaRepository, func()) {
	if cfg.DBDriver == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			util.Logger.Fatal("failed to open database", zap.Error(err))
		}
		err = common.WithRetry(ctx, func(ctx context.Context) error {
			return pool.Ping(ctx)
		}, 5, time.Second)
		if err != nil {
			util.Logger.Fatal("database ping failed", zap.Error(err))
		}
		util.Logger.Info("connected to postgres")
		return postgres.NewPostRepository(pool), pool.Close
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		util.Logger.Fatal("failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = common.WithRetry(ctx, db.PingContext, 5, time.Second)
	if err != nil {
		util.Logger.Fatal("database ping failed", zap.Error(err))
	}
	util.Logger.Info("connected to mysql")
	return mysql.NewPostRepository(db), func() { db.Close() }
}

func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, func()) {
	switch cfg.StorageBackend {
	case "s3":
		var s3Configs []*aws.Config
		if cfg.S3Endpoint != "" {
			s3Configs = append(s3Configs, storage.EndpointConfig(cfg.S3Endpoint))
		}
		s3Client, err := storage.NewS3Client(cfg.S3Region, cfg.S3Bucket, s3Configs...)
		if err != nil {
			util.Logger.Fatal("failed to create S3 client", zap.Error(err))
		}
		return s3Client, func() {}
	case "gcs":
		gcsClient, err := storage.NewGCSClient(ctx, cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
		if err != nil {
			util.Logger.Fatal("failed to create GCS client", zap.Error(err))
		}
		return gcsClient, func() {
			if err := gcsClient.Close(); err != nil {
				util.Logger.Warn("failed to close GCS client", zap.Error(err))
			}
		}
	default:
		local, err := storage.NewLocalStorage(cfg.LocalStoragePath, cfg.BackendURL)
		if err != nil {
			util.Logger.Fatal("failed to create local storage", zap.Error(err))
		}
		return local, func() {}
	}
}
