// clean_csv прогоняет экспорт заказов (CSV или XLSX) через конвейер
// нормализации адресов и пишет очищенный CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"addresscleaner/ai"
	"addresscleaner/csvcodec"
	"addresscleaner/database"
	"addresscleaner/gazetteer"
	"addresscleaner/geocoding"
	"addresscleaner/importer"
	"addresscleaner/internal/config"
	"addresscleaner/normalization"
	"addresscleaner/pipeline"
)

func main() {
	inPath := flag.String("in", "", "input file (.csv or .xlsx)")
	outPath := flag.String("out", "cleaned.csv", "output CSV file")
	noLLM := flag.Bool("no-llm", false, "disable the LLM fallback stage")
	geocode := flag.Bool("geocode", false, "append Google Maps geocoding columns")
	sessionDB := flag.String("session-db", "", "path to the session database (empty disables persistence)")
	workers := flag.Int("workers", 0, "parallel row workers (0 uses PIPELINE_WORKERS)")
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	useLLM := !*noLLM
	if err := cfg.Validate(useLLM, *geocode); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *inPath, *outPath, useLLM, *geocode, *sessionDB); err != nil {
		log.Fatalf("Cleaning failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, inPath, outPath string, useLLM, geocode bool, sessionDBPath string) error {
	headers, records, err := readInput(inPath)
	if err != nil {
		return err
	}
	csvText := recordsToCSV(headers, records)

	var store *database.SessionDB
	if sessionDBPath != "" {
		store, err = database.NewSessionDB(sessionDBPath, cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer store.Close()
	}

	var oracle ai.Client
	if useLLM {
		oracle = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, cfg.AIRateLimit)
		if store != nil {
			oracle = ai.NewCachedClient(oracle, store)
		}
	}

	g := gazetteer.New()
	cleaner := normalization.NewAddressCleaner(normalization.CleanerTables{
		Abbreviations: g.Abbreviations,
		AccentFixes:   g.AccentFixes,
		NoisePatterns: g.NoisePatterns,
		EmailPattern:  gazetteer.EmailPattern,
		PhonePattern:  gazetteer.PhonePattern,
		RoutePattern:  gazetteer.RoutePattern,
		KmPattern:     gazetteer.KmPattern,
	})

	p := pipeline.New(g, cleaner, oracle, pipeline.Config{Workers: cfg.Workers, UseLLM: useLLM},
		pipeline.WithRowLogger(func(rowIndex int, stage, message string, payload map[string]string) {
			slog.Debug("row diagnostic", "row", rowIndex, "stage", stage, "message", message, "payload", payload)
		}))

	var sessionID string
	if store != nil {
		sessionID, err = store.CreateSession(inPath)
		if err != nil {
			return err
		}
	}

	outCSV, result, err := p.Run(ctx, csvText)
	if err != nil {
		return err
	}

	if geocode {
		outCSV, err = appendGeocoding(ctx, cfg, result)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(outPath, []byte(outCSV), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if store != nil {
		persistSession(store, sessionID, result)
	}

	fmt.Printf("Processed %d rows: kept %d, dropped %d by keep rule, %d duplicates, %d used LLM\n",
		result.TotalRows, result.KeptRows, result.DroppedKeepRule, result.DroppedDuplicates, result.LLMRows)
	fmt.Printf("Output written to %s\n", outPath)
	return nil
}

func readInput(inPath string) ([]string, []map[string]string, error) {
	headers, records, err := importer.ReadTable(inPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", inPath, err)
	}
	return headers, records, nil
}

func recordsToCSV(headers []string, records []map[string]string) string {
	return csvcodec.Serialize(records, headers)
}

// appendGeocoding добавляет к выходному CSV координаты и ссылку на карту.
// Ошибки геокодирования отдельных строк не фатальны: колонки остаются
// пустыми.
func appendGeocoding(ctx context.Context, cfg *config.Config, result *pipeline.Result) (string, error) {
	client := geocoding.NewClient(cfg.GoogleMapsAPIKey, cfg.AITimeout, cfg.AIRateLimit, cfg.CacheTTL)

	headers := append(append([]string{}, pipeline.OutputHeaders...),
		"Latitude", "Longitude", "Location_Type", "Geo_Confidence", "Maps_Link")
	rows := make([]map[string]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		out := map[string]string{
			"Original_Address": row.Original.Address,
			"Original_City":    row.Original.City,
			"Original_State":   row.Original.State,
			"Original_Phone":   row.Original.Phone,
			"Address":          row.Cleaned.Address,
			"City":             row.Cleaned.City,
			"State":            row.Cleaned.State,
			"Phone":            row.Cleaned.Phone,
			"Email":            row.Cleaned.Email,
		}
		geo, err := client.GeocodeRow(ctx, row.Cleaned.Address, row.Cleaned.City, row.Cleaned.State)
		if err != nil {
			slog.Warn("geocoding failed", "row", row.Index, "error", err)
		} else {
			out["Latitude"] = fmt.Sprintf("%f", geo.Latitude)
			out["Longitude"] = fmt.Sprintf("%f", geo.Longitude)
			out["Location_Type"] = geo.LocationType
			out["Geo_Confidence"] = fmt.Sprintf("%.1f", geo.Confidence)
			out["Maps_Link"] = geo.MapsLink
		}
		rows = append(rows, out)
	}
	return csvcodec.Serialize(rows, headers), nil
}

func persistSession(store *database.SessionDB, sessionID string, result *pipeline.Result) {
	for _, row := range result.Rows {
		rec := database.RowRecord{
			SessionID:       sessionID,
			RowIndex:        row.Index,
			OriginalAddress: row.Original.Address,
			OriginalCity:    row.Original.City,
			OriginalState:   row.Original.State,
			OriginalPhone:   row.Original.Phone,
			Address:         row.Cleaned.Address,
			City:            row.Cleaned.City,
			State:           row.Cleaned.State,
			Phone:           row.Cleaned.Phone,
			Email:           row.Cleaned.Email,
			LLMUsed:         row.LLMUsed,
			Evidence:        strings.Join(row.Evidence, ","),
		}
		if err := store.SaveRow(rec); err != nil {
			slog.Warn("failed to persist row", "row", row.Index, "error", err)
		}
	}
	err := store.FinishSession(sessionID, database.SessionCounters{
		TotalRows:         result.TotalRows,
		KeptRows:          result.KeptRows,
		DroppedKeepRule:   result.DroppedKeepRule,
		DroppedDuplicates: result.DroppedDuplicates,
		LLMRows:           result.LLMRows,
	})
	if err != nil {
		slog.Warn("failed to finish session", "error", err)
	}
}

func setupLogging(level string) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
}
