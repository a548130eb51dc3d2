package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"addresscleaner/ai"
	"addresscleaner/csvcodec"
	"addresscleaner/gazetteer"
	"addresscleaner/normalization"
)

// OutputHeaders — фиксированный порядок колонок выходного CSV: четыре
// исходных поля и пять очищенных.
var OutputHeaders = []string{
	"Original_Address", "Original_City", "Original_State", "Original_Phone",
	"Address", "City", "State", "Phone", "Email",
}

// Config — настройки конвейера.
type Config struct {
	// Workers — число параллельных обработчиков строк. По умолчанию 1:
	// последовательная обработка упрощает чтение диагностики.
	Workers int
	// UseLLM включает запасную стадию и точечные починки через оракула.
	UseLLM bool
}

// Result — итог прогона батча.
type Result struct {
	TotalRows         int
	KeptRows          int
	DroppedKeepRule   int
	DroppedDuplicates int
	LLMRows           int
	Rows              []*RowContext
}

// Pipeline связывает стадии A→B→C→D над одним батчем CSV.
type Pipeline struct {
	gaz     *gazetteer.Gazetteer
	cleaner *normalization.AddressCleaner
	oracle  ai.Client
	cfg     Config
	logger  *slog.Logger
	rowLog  RowLogger
}

// Option настраивает конвейер при создании.
type Option func(*Pipeline)

// WithRowLogger задает колбэк построчной диагностики.
func WithRowLogger(log RowLogger) Option {
	return func(p *Pipeline) { p.rowLog = log }
}

// WithLogger задает структурированный логгер конвейера.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger.With("component", "pipeline") }
}

// New создает конвейер. При выключенной запасной стадии клиент оракула
// не используется, даже если передан.
func New(gaz *gazetteer.Gazetteer, cleaner *normalization.AddressCleaner, oracle ai.Client, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		gaz:     gaz,
		cleaner: cleaner,
		oracle:  oracle,
		cfg:     cfg,
		logger:  slog.Default().With("component", "pipeline"),
		rowLog:  func(int, string, string, map[string]string) {},
	}
	if !cfg.UseLLM {
		p.oracle = nil
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// logEntry — отложенная запись построчной диагностики. Записи копятся в
// обработчике строки и сбрасываются в порядке индексов, чтобы параллельная
// обработка не перемешивала журнал.
type logEntry struct {
	stage   string
	message string
	payload map[string]string
}

// Run прогоняет CSV через все стадии и возвращает итоговый CSV. Выход
// формируется только после завершения всех строк; частичной записи нет.
func (p *Pipeline) Run(ctx context.Context, csvText string) (string, *Result, error) {
	headers, records, err := csvcodec.Parse(csvText)
	if err != nil {
		return "", nil, fmt.Errorf("Input CSV must include a header row: %w", err)
	}
	if p.cfg.UseLLM && p.oracle == nil {
		return "", nil, fmt.Errorf("LLM fallback enabled but no oracle client configured")
	}

	classes := classifyHeaders(headers)
	p.logger.Info("batch started",
		"rows", len(records),
		"address_columns", len(classes.address),
		"phone_columns", len(classes.phone),
		"llm", p.cfg.UseLLM)

	rows := make([]*RowContext, len(records))
	logs := make([][]logEntry, len(records))

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, record := range records {
		// Кооперативная отмена проверяется между строками, не внутри:
		// полусмерженная строка не должна быть наблюдаемой
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(index int, raw map[string]string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("row processing panic", "row", index, "panic", r)
				}
			}()

			// Строка публикуется до стадий: паника внутри обработчика
			// оставляет частичное состояние, а не nil в батче
			row := &RowContext{Index: index, Raw: raw}
			rows[index] = row
			bufLog := func(_ int, stage, message string, payload map[string]string) {
				logs[index] = append(logs[index], logEntry{stage: stage, message: message, payload: payload})
			}

			p.runDeterministic(row, headers, classes)
			if p.oracle != nil {
				p.runOracleFallback(ctx, row, headers, bufLog)
			}
			p.runRepair(ctx, row, bufLog)
		}(i, record)
	}
	wg.Wait()

	// Сброс отложенной диагностики строго в порядке индексов
	for i, entries := range logs {
		for _, e := range entries {
			p.rowLog(i, e.stage, e.message, e.payload)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	result := &Result{TotalRows: len(records)}
	for _, row := range rows {
		if row.LLMUsed {
			result.LLMRows++
		}
	}

	survivors := p.runFilter(rows, result, p.rowLog)
	result.KeptRows = len(survivors)
	result.Rows = survivors

	out := make([]map[string]string, len(survivors))
	for i, row := range survivors {
		out[i] = map[string]string{
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
	}

	p.logger.Info("batch finished",
		"total", result.TotalRows,
		"kept", result.KeptRows,
		"dropped_keep_rule", result.DroppedKeepRule,
		"dropped_duplicates", result.DroppedDuplicates,
		"llm_rows", result.LLMRows)

	return csvcodec.Serialize(out, OutputHeaders), result, nil
}
