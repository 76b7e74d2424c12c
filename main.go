package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"househunt/server/internal/api"
	"househunt/server/internal/cache"
	"househunt/server/internal/config"
	"househunt/server/internal/db"
	"househunt/server/internal/models"
	"househunt/server/internal/services"
	"househunt/server/internal/storage"
	"househunt/server/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'img' (image processing worker), 'seed' (create admin account), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	ctxIdx, cancelIdx := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.EnsureIndexes(ctxIdx, mongoDb); err != nil {
		cancelIdx()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancelIdx()

	// Seed mode creates the bootstrap admin and exits.
	if cfg.RunMode == "seed" {
		if err := seedAdmin(mongoDb, cfg); err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
		return
	}

	// Initialize image storage (local disk or S3)
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Initialize Redis (asynq broker)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	taskProcessor := tasks.NewTaskProcessor(cfg, store)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	var apiSrv *http.Server
	var imageTaskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		router := api.SetupRouter(cfg, mongoDb, store, taskClient)
		apiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: router,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("API listening on :%s\n", cfg.ApiPort)
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("API ListenAndServe error: %v", err)
			}
			fmt.Println("API server stopped.")
		}()
	}

	imgMode := func() {
		imageTaskSrv = tasks.SetupServer(redisClient)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Image processing worker starting...")
			mux := asynq.NewServeMux()
			mux.HandleFunc(tasks.TypeImageThumbnail, taskProcessor.HandleImageThumbnailTask)
			if err := imageTaskSrv.Run(mux); err != nil {
				log.Fatalf("Image processing server error: %v", err)
			}
			fmt.Println("Image processing worker stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "img":
		imgMode()
	case "all":
		apiMode()
		imgMode()
	default:
		log.Fatalf("Invalid run mode specified: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if apiSrv != nil {
		fmt.Println("Shutting down API server...")
		if err := apiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}
	if imageTaskSrv != nil {
		fmt.Println("Shutting down image processing worker...")
		imageTaskSrv.Shutdown()
	}

	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}

// seedAdmin creates the bootstrap Admin account. Registration through the
// API is meant for renters and owners; the first admin comes from here.
func seedAdmin(mongoDb *mongo.Database, cfg *config.Config) error {
	userService := services.NewUserService(mongoDb)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := userService.Register(ctx, services.RegisterInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			fmt.Printf("Admin account %s already exists, nothing to do.\n", cfg.AdminEmail)
			return nil
		}
		return err
	}
	fmt.Printf("Created admin account %s\n", cfg.AdminEmail)
	return nil
}
