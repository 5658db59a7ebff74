package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/handler"
	"quill/internal/middleware"
	"quill/internal/repository/postgres"
	"quill/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	limits, err := config.LoadLimits()
	if err != nil {
		log.Fatalf("Failed to load limits: %v", err)
	}

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	collectionRepo := postgres.NewCollectionRepository(repoConfig)
	viewRepo := postgres.NewViewRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	docService := service.NewDocumentService(docRepo, versionRepo, folderRepo, txManager, limits, logger)
	forkService := service.NewForkService(docRepo, versionRepo, txManager, logger)
	folderService := service.NewFolderService(folderRepo, docRepo, txManager, limits, logger)
	collectionService := service.NewCollectionService(collectionRepo, docRepo, limits, logger)
	viewService := service.NewViewService(viewRepo, docRepo, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, forkService, viewService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	collectionHandler := handler.NewCollectionHandler(collectionService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/public", docHandler.ListPublicDocuments) // Must come before {id} route
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PUT /api/documents/{id}", docHandler.SaveDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)
	mux.HandleFunc("POST /api/documents/{id}/fork", docHandler.ForkDocument)
	mux.HandleFunc("POST /api/documents/{id}/like", docHandler.LikeDocument)
	mux.HandleFunc("PUT /api/documents/{id}/collections", collectionHandler.ReplaceDocumentCollections)

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	mux.HandleFunc("PUT /api/folders/reorder", folderHandler.ReorderFolders)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Collection routes
	mux.HandleFunc("POST /api/collections", collectionHandler.CreateCollection)
	mux.HandleFunc("GET /api/collections", collectionHandler.ListCollections)
	mux.HandleFunc("PUT /api/collections/reorder", collectionHandler.ReorderCollections)
	mux.HandleFunc("PATCH /api/collections/{id}", collectionHandler.RenameCollection)
	mux.HandleFunc("DELETE /api/collections/{id}", collectionHandler.DeleteCollection)
	mux.HandleFunc("GET /api/collections/{id}/documents", collectionHandler.ListCollectionDocuments)
	mux.HandleFunc("POST /api/collections/{id}/documents", collectionHandler.AddDocument)
	mux.HandleFunc("DELETE /api/collections/{id}/documents/{documentID}", collectionHandler.RemoveDocument)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
