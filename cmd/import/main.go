// Command import loads curated daily wisdom from JSON into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -json data/wisdom.json -db data/inzalo.db
//
// The file has the shape:
//
//	{
//	  "metadata": {"source": "...", "generated_at": "..."},
//	  "wisdom": [
//	    {"title": "...", "content": "...", "author": "...", "type": "quote", "date": "2025-09-23"}
//	  ]
//	}
//
// Entries without a date join the daily rotation; dated entries are pinned
// to that civil date. The whole file is imported in one transaction, so a
// clashing pinned date aborts the import without partial writes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/validate"
)

type importFile struct {
	Metadata struct {
		Source      string `json:"source"`
		GeneratedAt string `json:"generated_at"`
	} `json:"metadata"`
	Wisdom []importEntry `json:"wisdom"`
}

type importEntry struct {
	Date    *string `json:"date"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  string  `json:"author"`
	Type    string  `json:"type"`
}

func main() {
	jsonPath := flag.String("json", "data/wisdom.json", "Path to wisdom JSON file")
	dbPath := flag.String("db", "data/inzalo.db", "Path to SQLite database")
	dryRun := flag.Bool("dry-run", false, "Validate the file without writing")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	if err := run(*jsonPath, *dbPath, *dryRun, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(jsonPath, dbPath string, dryRun bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	logger.Info("reading JSON file", slog.String("path", jsonPath))
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}

	var file importFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	logger.Info("parsed JSON",
		slog.Int("entries", len(file.Wisdom)),
		slog.String("source", file.Metadata.Source),
		slog.String("generated_at", file.Metadata.GeneratedAt),
	)

	entries, pinned, err := toWisdom(file.Wisdom, logger)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Printf("Dry run: %d entries valid (%d pinned)\n", len(entries), pinned)
		return nil
	}

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	n, err := db.ImportWisdom(ctx, entries)
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("a pinned date already has wisdom; nothing imported: %w", err)
	}
	if err != nil {
		return fmt.Errorf("import wisdom: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Entries imported:  %d\n", n)
	fmt.Printf("Pinned to a date:  %d\n", pinned)
	fmt.Printf("In rotation:       %d\n", n-pinned)
	fmt.Printf("Time elapsed:      %v\n", elapsed.Round(time.Millisecond))
	return nil
}

// toWisdom validates every entry, reporting all problems at once.
func toWisdom(in []importEntry, logger *slog.Logger) ([]database.Wisdom, int, error) {
	var (
		out     = make([]database.Wisdom, 0, len(in))
		pinned  int
		invalid int
	)

	for i, e := range in {
		var v validate.Validator
		v.Required("title", e.Title).
			MaxLen("title", e.Title, database.MaxTitleLength).
			Required("content", e.Content).
			MaxLen("content", e.Content, database.MaxWisdomContentLength).
			Required("author", e.Author).
			Custom("type", e.Type != "" && !database.WisdomType(e.Type).IsValid(), "unknown wisdom type")
		if e.Date != nil {
			v.Date("date", *e.Date)
		}
		if err := v.Err(); err != nil {
			invalid++
			logger.Error("invalid entry", slog.Int("index", i+1), slog.String("title", e.Title), slog.String("error", err.Error()))
			continue
		}

		if e.Date != nil {
			pinned++
			if d, err := calendar.ParseDateString(*e.Date); err == nil {
				logger.Debug("pinned entry",
					slog.String("date", *e.Date),
					slog.String("cultural_date", calendar.FormatCulturalDate(calendar.ToCulturalDate(d))),
				)
			}
		}

		out = append(out, database.Wisdom{
			Date:    e.Date,
			Title:   e.Title,
			Content: e.Content,
			Author:  e.Author,
			Type:    database.WisdomType(e.Type),
		})
	}

	if invalid > 0 {
		return nil, 0, fmt.Errorf("%d of %d entries are invalid", invalid, len(in))
	}
	return out, pinned, nil
}
