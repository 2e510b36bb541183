package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"lorekeeper/internal/config"
	models "lorekeeper/internal/domain/models/notes"
	svcNotes "lorekeeper/internal/domain/services/notes"
	"lorekeeper/internal/repository/postgres"
	postgresNotes "lorekeeper/internal/repository/postgres/notes"
	serviceNotes "lorekeeper/internal/service/notes"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed notes (for use with shell scripts)")
	clearData := flag.Bool("clear-data", false, "Clear all notes, links and revisions (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger; in debug mode also keep a log file around
	logOut := io.Writer(os.Stdout)
	if cfg.Debug {
		logFile, err := config.SetupLogFile("logs", 5)
		if err != nil {
			log.Printf("Warning: could not set up log file: %v", err)
		} else {
			defer logFile.Close()
			logOut = io.MultiWriter(os.Stdout, logFile)
		}
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	fixtures, err := loadFixtures()
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	if *clearData {
		log.Println("🧹 Clearing existing notes, links and revisions...")
		if err := clearCampaignData(ctx, pool, tables, fixtures.Campaign.ID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	noteRepo := postgresNotes.NewNoteRepository(repoConfig)
	revRepo := postgresNotes.NewRevisionRepository(repoConfig)
	linkRepo := postgresNotes.NewLinkRepository(repoConfig)
	campaignRepo := postgresNotes.NewCampaignRepository(repoConfig)
	entities := postgresNotes.NewEntityDirectory(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create the service; seeding goes through the same save path as
	// the application so links and revisions come out right
	noteService := serviceNotes.NewNoteService(
		noteRepo,
		revRepo,
		linkRepo,
		txManager,
		serviceNotes.NewResolver(noteRepo, entities),
		serviceNotes.NewCampaignValidator(campaignRepo),
		cfg,
		logger,
	)

	log.Println("⚠️  Clearing existing notes, links and revisions...")
	if err := clearCampaignData(ctx, pool, tables, fixtures.Campaign.ID); err != nil {
		log.Printf("Warning: Could not clear data: %v", err)
	}

	if err := campaignRepo.Create(ctx, &models.Campaign{
		ID:        fixtures.Campaign.ID,
		Name:      fixtures.Campaign.Name,
		OwnerID:   fixtures.Campaign.OwnerID,
		CreatedAt: time.Now(),
	}); err != nil {
		log.Fatalf("Failed to ensure campaign: %v", err)
	}

	log.Println("🧝 Seeding characters and locations...")
	if err := seedEntities(ctx, pool, tables, fixtures); err != nil {
		log.Fatalf("Failed to seed entities: %v", err)
	}

	log.Println("📝 Seeding notes...")
	saved := make([]*svcNotes.SaveResult, 0, len(fixtures.Notes))
	for i, note := range fixtures.Notes {
		result, err := noteService.Save(ctx, seedRequest(fixtures, note, nil, 0))
		if err != nil {
			log.Printf("❌ Failed to create note '%s': %v", note.Title, err)
			saved = append(saved, nil)
			continue
		}
		if result.LinkWarning != nil {
			log.Printf("⚠️  Link indexing incomplete for '%s': %v", note.Title, result.LinkWarning)
		}
		saved = append(saved, result)
		log.Printf("✅ Created note %d/%d: %s (ID: %s, v%d)",
			i+1, len(fixtures.Notes), note.Title, result.NoteID, result.Version)
	}

	// Notes reference notes seeded after them, so those links came out
	// dangling on the first pass. One re-save per note recomputes the
	// full link set against the complete corpus.
	log.Println("🔗 Re-indexing links against the full corpus...")
	for i, note := range fixtures.Notes {
		result := saved[i]
		if result == nil {
			continue
		}
		if _, err := noteService.Save(ctx, seedRequest(fixtures, note, &result.NoteID, result.Version)); err != nil {
			log.Printf("❌ Failed to re-index note '%s': %v", note.Title, err)
		}
	}

	log.Println("🎉 Seeding complete!")
}

// seedRequest maps a fixture note onto a save request. noteID nil means
// the initial create pass; otherwise it's the link re-index pass.
func seedRequest(fixtures *seedFixtures, note seedNote, noteID *string, version int) *svcNotes.SaveNoteRequest {
	visibility := models.Visibility(note.Visibility)
	if !visibility.Valid() {
		visibility = models.VisibilityShared
	}

	var folder *string
	if note.Folder != "" {
		f := note.Folder
		folder = &f
	}

	return &svcNotes.SaveNoteRequest{
		NoteID:          noteID,
		CampaignID:      fixtures.Campaign.ID,
		AuthorID:        fixtures.Campaign.OwnerID,
		ExpectedVersion: version,
		Draft: svcNotes.Draft{
			Title:      note.Title,
			Body:       note.Body,
			Tags:       note.Tags,
			Visibility: visibility,
			Folder:     folder,
		},
	}
}

// seedEntities upserts the fixture characters and locations. These
// tables are owned by the campaign tooling; the note system only reads
// them through the entity directory.
func seedEntities(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, fixtures *seedFixtures) error {
	for _, character := range fixtures.Characters {
		query := `
			INSERT INTO ` + tables.Characters + ` (id, campaign_id, name, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := pool.Exec(ctx, query, character.ID, fixtures.Campaign.ID, character.Name, time.Now()); err != nil {
			return err
		}
	}

	for _, location := range fixtures.Locations {
		query := `
			INSERT INTO ` + tables.Locations + ` (id, campaign_id, name, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := pool.Exec(ctx, query, location.ID, fixtures.Campaign.ID, location.Name, time.Now()); err != nil {
			return err
		}
	}

	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create campaigns table
	createCampaigns := `
		CREATE TABLE IF NOT EXISTS ` + tables.Campaigns + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			owner_id UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createCampaigns); err != nil {
		return err
	}

	// Create characters table
	createCharacters := `
		CREATE TABLE IF NOT EXISTS ` + tables.Characters + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			campaign_id UUID NOT NULL REFERENCES ` + tables.Campaigns + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createCharacters); err != nil {
		return err
	}

	// Create locations table
	createLocations := `
		CREATE TABLE IF NOT EXISTS ` + tables.Locations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			campaign_id UUID NOT NULL REFERENCES ` + tables.Campaigns + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createLocations); err != nil {
		return err
	}

	// Create notes table
	createNotes := `
		CREATE TABLE IF NOT EXISTS ` + tables.Notes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			campaign_id UUID NOT NULL REFERENCES ` + tables.Campaigns + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			visibility TEXT NOT NULL DEFAULT 'shared',
			folder TEXT,
			session_id UUID,
			version INTEGER NOT NULL DEFAULT 1,
			author_id UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createNotes); err != nil {
		return err
	}

	// Create note revisions table
	createRevisions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Revisions + ` (
			note_id UUID NOT NULL REFERENCES ` + tables.Notes + `(id) ON DELETE CASCADE,
			version INTEGER NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			visibility TEXT NOT NULL DEFAULT 'shared',
			folder TEXT,
			saved_by UUID NOT NULL,
			saved_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (note_id, version)
		)
	`
	if _, err := pool.Exec(ctx, createRevisions); err != nil {
		return err
	}

	// Create note links table
	createLinks := `
		CREATE TABLE IF NOT EXISTS ` + tables.Links + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			source_note_id UUID NOT NULL REFERENCES ` + tables.Notes + `(id) ON DELETE CASCADE,
			campaign_id UUID NOT NULL REFERENCES ` + tables.Campaigns + `(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			target_id UUID,
			label TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createLinks); err != nil {
		return err
	}

	// Create indexes. The unique title index is partial: tombstoned
	// notes release their title for reuse.
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_campaign_title ON ` + tables.Notes + `(campaign_id, title) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `notes_campaign_id ON ` + tables.Notes + `(campaign_id) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `links_source ON ` + tables.Links + `(source_note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `links_target ON ` + tables.Links + `(kind, target_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `links_campaign ON ` + tables.Links + `(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `characters_campaign_name ON ` + tables.Characters + `(campaign_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `locations_campaign_name ON ` + tables.Locations + `(campaign_id, name)`,
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
		tables.Links,
		tables.Revisions,
		tables.Notes,
		tables.Characters,
		tables.Locations,
		tables.Campaigns,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearCampaignData clears all notes, links and revisions for a campaign
func clearCampaignData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, campaignID string) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Links+" WHERE campaign_id = $1", campaignID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		DELETE FROM `+tables.Revisions+`
		WHERE note_id IN (SELECT id FROM `+tables.Notes+` WHERE campaign_id = $1)
	`, campaignID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "DELETE FROM "+tables.Notes+" WHERE campaign_id = $1", campaignID)
	if err != nil {
		return err
	}

	return nil
}
