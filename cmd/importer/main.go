package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mapcal-api/internal/config"
	"mapcal-api/internal/mapfile"
	"mapcal-api/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type MapRecord struct {
	ID      uuid.UUID
	Name    string
	Content string
}

func main() {
	file := flag.String("file", "", "Path to a single .map file to import")
	dir := flag.String("dir", "", "Directory searched recursively for .map files")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *file == "" && *dir == "" {
		fmt.Println("Error: --file or --dir flag is required")
		os.Exit(1)
	}

	paths, err := collectPaths(*file, *dir)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot collect .map files")
	}
	log.Info().Int("files", len(paths)).Msg("Starting import")

	records := loadMaps(paths)
	if len(records) == 0 {
		log.Fatal().Msg("no valid .map files to import")
	}
	log.Info().Int("records", len(records)).Msg("Parsed .map files")

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	// Connect to DB
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close(ctx)

	// Ensure table exists
	if _, err := conn.Exec(ctx, repository.Schema); err != nil {
		log.Fatal().Err(err).Msg("cannot create table")
	}

	before, err := countMaps(ctx, conn)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count existing maps")
	}

	// Insert records
	if err := insertRecords(ctx, conn, records); err != nil {
		log.Fatal().Err(err).Msg("cannot insert maps")
	}

	// Verify data
	if err := verifyImport(ctx, conn, before+len(records)); err != nil {
		log.Fatal().Err(err).Msg("import verification failed")
	}

	log.Info().Int("records", len(records)).Msg("Successfully imported maps")
}

func collectPaths(file, dir string) ([]string, error) {
	var paths []string
	if file != "" {
		paths = append(paths, file)
	}
	if dir == "" {
		return paths, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".map") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return paths, nil
}

// loadMaps reads and parses every path; files that fail are logged and skipped
func loadMaps(paths []string) []MapRecord {
	var records []MapRecord
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable file")
			continue
		}

		text := mapfile.Decode(data)
		rec, err := mapfile.Parse(text)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping invalid .map file")
			continue
		}
		if !rec.IsValid() {
			log.Warn().Str("file", path).Msg("Importing uncalibrated .map file")
		}

		records = append(records, MapRecord{
			ID:      uuid.New(),
			Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Content: text,
		})
	}
	return records
}

func insertRecords(ctx context.Context, conn *pgx.Conn, records []MapRecord) error {
	// Use CopyFrom for bulk insert
	_, err := conn.CopyFrom(
		ctx,
		pgx.Identifier{"map_calibrations"},
		[]string{"id", "name", "content"},
		pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
			r := records[i]
			return []interface{}{r.ID, r.Name, r.Content}, nil
		}),
	)
	return err
}

func countMaps(ctx context.Context, conn *pgx.Conn) (int, error) {
	var count int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM map_calibrations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func verifyImport(ctx context.Context, conn *pgx.Conn, expectedCount int) error {
	count, err := countMaps(ctx, conn)
	if err != nil {
		return err
	}

	if count != expectedCount {
		return fmt.Errorf("record count mismatch: expected %d, got %d", expectedCount, count)
	}
	return nil
}
