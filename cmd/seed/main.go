package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"quill/internal/config"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
	"quill/internal/repository/postgres"
	"quill/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	seedUserID := os.Getenv("SEED_USER_ID")
	if seedUserID == "" {
		log.Fatal("SEED_USER_ID environment variable is required for seeding")
	}

	limits, err := config.LoadLimits()
	if err != nil {
		log.Fatalf("Failed to load limits: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	docService := service.NewDocumentService(docRepo, versionRepo, folderRepo, txManager, limits, logger)
	folderService := service.NewFolderService(folderRepo, docRepo, txManager, limits, logger)

	log.Println("Seeding sample documents...")
	if err := seedSamples(ctx, docService, folderService, seedUserID); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Println("Seeding complete")
}

// runSchema creates tables if they don't exist. Positional uniqueness is
// deferred to commit so bulk reorders and position-shifting upserts can pass
// through transient duplicates inside a transaction.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (owner_id, position) DEFERRABLE INITIALLY DEFERRED
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			folder_id UUID REFERENCES ` + tables.Folders + `(id) ON DELETE SET NULL,
			name TEXT NOT NULL,
			current_code TEXT NOT NULL DEFAULT '',
			current_index INTEGER NOT NULL DEFAULT 0,
			forked_from_id UUID,
			fork_depth INTEGER NOT NULL DEFAULT 0,
			visibility TEXT NOT NULL DEFAULT 'private',
			like_count INTEGER NOT NULL DEFAULT 0,
			fork_count INTEGER NOT NULL DEFAULT 0,
			view_count INTEGER NOT NULL DEFAULT 0,
			comment_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Versions + ` (
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			entry_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			code TEXT NOT NULL,
			timestamp BIGINT NOT NULL,
			label TEXT NOT NULL,
			kind TEXT NOT NULL,
			prompt TEXT,
			PRIMARY KEY (document_id, entry_id),
			UNIQUE (document_id, position) DEFERRABLE INITIALLY DEFERRED
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	createCollections := `
		CREATE TABLE IF NOT EXISTS ` + tables.Collections + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (owner_id, position) DEFERRABLE INITIALLY DEFERRED
		)
	`
	if _, err := pool.Exec(ctx, createCollections); err != nil {
		return err
	}

	createMemberships := `
		CREATE TABLE IF NOT EXISTS ` + tables.CollectionDocuments + ` (
			collection_id UUID NOT NULL REFERENCES ` + tables.Collections + `(id) ON DELETE CASCADE,
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (collection_id, document_id)
		)
	`
	if _, err := pool.Exec(ctx, createMemberships); err != nil {
		return err
	}

	createViewEvents := `
		CREATE TABLE IF NOT EXISTS ` + tables.ViewEvents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			viewer_id UUID,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createViewEvents); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_owner ON ` + tables.Documents + `(owner_id, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_visibility ON ` + tables.Documents + `(visibility, updated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `documents_folder ON ` + tables.Documents + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `versions_position ON ` + tables.Versions + `(document_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `memberships_document ON ` + tables.CollectionDocuments + `(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `view_events_document ON ` + tables.ViewEvents + `(document_id)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.ViewEvents,
		tables.CollectionDocuments,
		tables.Collections,
		tables.Versions,
		tables.Documents,
		tables.Folders,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}

func seedSamples(ctx context.Context, docService services.DocumentService, folderService services.FolderService, userID string) error {
	folder, err := folderService.Create(ctx, userID, "Sketches")
	if err != nil {
		return err
	}

	prompt := "draw a spinning cube"
	samples := []services.CreateDocumentRequest{
		{
			OwnerID:    userID,
			FolderID:   &folder.ID,
			Visibility: models.VisibilityPublic,
			History: models.DocumentHistory{
				Name: "Spinning Cube",
				Entries: []models.VersionEntry{
					{
						EntryID:   "seed-cube-1",
						Code:      "function setup() {\n  createCanvas(400, 400, WEBGL);\n}\n",
						Timestamp: 1700000000000,
						Label:     "Initial version",
						Kind:      models.EntryKindUserEdit,
					},
					{
						EntryID:   "seed-cube-2",
						Code:      "function setup() {\n  createCanvas(400, 400, WEBGL);\n}\n\nfunction draw() {\n  background(220);\n  rotateY(frameCount * 0.01);\n  box(100);\n}\n",
						Timestamp: 1700000100000,
						Label:     "Add rotation",
						Kind:      models.EntryKindAIGenerated,
						Prompt:    &prompt,
					},
				},
				CurrentIndex: 1,
			},
		},
		{
			OwnerID: userID,
			History: models.DocumentHistory{
				Name: "Scratchpad",
				Entries: []models.VersionEntry{
					{
						EntryID:   "seed-scratch-1",
						Code:      "function setup() {\n  createCanvas(400, 400);\n}\n",
						Timestamp: 1700000200000,
						Label:     "Initial version",
						Kind:      models.EntryKindUserEdit,
					},
				},
				CurrentIndex: 0,
			},
		},
	}

	for _, req := range samples {
		doc, err := docService.Create(ctx, &req)
		if err != nil {
			return err
		}
		log.Printf("  created document %q (ID: %s)", doc.Name, doc.ID)
	}

	return nil
}
