// Package database хранит сессии очистки и кэш ответов оракула в SQLite.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SessionDB — обертка над сервисной базой: сессии очистки, сохраненные
// строки и кэш ответов оракула с ограниченным сроком жизни.
type SessionDB struct {
	conn     *sql.DB
	cacheTTL time.Duration
}

// NewSessionDB открывает (и при необходимости создает) базу по пути path
// и применяет миграции. cacheTTL задает срок жизни записей кэша ответов.
func NewSessionDB(path string, cacheTTL time.Duration) (*SessionDB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &SessionDB{conn: conn, cacheTTL: cacheTTL}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close закрывает соединение с базой.
func (d *SessionDB) Close() error {
	return d.conn.Close()
}

func (d *SessionDB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cleaning_sessions (
			id TEXT PRIMARY KEY,
			input_file TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			total_rows INTEGER NOT NULL DEFAULT 0,
			kept_rows INTEGER NOT NULL DEFAULT 0,
			dropped_keep_rule INTEGER NOT NULL DEFAULT 0,
			dropped_duplicates INTEGER NOT NULL DEFAULT 0,
			llm_rows INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running'
		)`,
		`CREATE TABLE IF NOT EXISTS cleaned_rows (
			session_id TEXT NOT NULL REFERENCES cleaning_sessions(id),
			row_index INTEGER NOT NULL,
			original_address TEXT NOT NULL DEFAULT '',
			original_city TEXT NOT NULL DEFAULT '',
			original_state TEXT NOT NULL DEFAULT '',
			original_phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			llm_used INTEGER NOT NULL DEFAULT 0,
			evidence TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, row_index)
		)`,
		`CREATE TABLE IF NOT EXISTS response_cache (
			prompt_hash TEXT PRIMARY KEY,
			response TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := d.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Session — одна сессия очистки.
type Session struct {
	ID                string
	InputFile         string
	StartedAt         time.Time
	FinishedAt        time.Time
	TotalRows         int
	KeptRows          int
	DroppedKeepRule   int
	DroppedDuplicates int
	LLMRows           int
	Status            string
}

// SessionCounters — итоговые счетчики завершенной сессии.
type SessionCounters struct {
	TotalRows         int
	KeptRows          int
	DroppedKeepRule   int
	DroppedDuplicates int
	LLMRows           int
}

// CreateSession регистрирует новую сессию и возвращает её идентификатор.
func (d *SessionDB) CreateSession(inputFile string) (string, error) {
	id := uuid.NewString()
	_, err := d.conn.Exec(
		`INSERT INTO cleaning_sessions (id, input_file, started_at) VALUES (?, ?, ?)`,
		id, inputFile, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// FinishSession записывает счетчики и помечает сессию завершенной.
func (d *SessionDB) FinishSession(id string, counters SessionCounters) error {
	_, err := d.conn.Exec(
		`UPDATE cleaning_sessions
		 SET finished_at = ?, total_rows = ?, kept_rows = ?,
		     dropped_keep_rule = ?, dropped_duplicates = ?, llm_rows = ?,
		     status = 'finished'
		 WHERE id = ?`,
		time.Now().UTC(), counters.TotalRows, counters.KeptRows,
		counters.DroppedKeepRule, counters.DroppedDuplicates, counters.LLMRows, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	return nil
}

// GetSession возвращает сессию по идентификатору.
func (d *SessionDB) GetSession(id string) (Session, error) {
	var s Session
	var finished sql.NullTime
	err := d.conn.QueryRow(
		`SELECT id, input_file, started_at, finished_at, total_rows, kept_rows,
		        dropped_keep_rule, dropped_duplicates, llm_rows, status
		 FROM cleaning_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.InputFile, &s.StartedAt, &finished, &s.TotalRows, &s.KeptRows,
		&s.DroppedKeepRule, &s.DroppedDuplicates, &s.LLMRows, &s.Status)
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	if finished.Valid {
		s.FinishedAt = finished.Time
	}
	return s, nil
}

// RowRecord — сохраненная строка результата.
type RowRecord struct {
	SessionID       string
	RowIndex        int
	OriginalAddress string
	OriginalCity    string
	OriginalState   string
	OriginalPhone   string
	Address         string
	City            string
	State           string
	Phone           string
	Email           string
	LLMUsed         bool
	Evidence        string
}

// SaveRow сохраняет строку результата; повторное сохранение той же пары
// (сессия, индекс) замещает запись.
func (d *SessionDB) SaveRow(rec RowRecord) error {
	_, err := d.conn.Exec(
		`INSERT OR REPLACE INTO cleaned_rows
		 (session_id, row_index, original_address, original_city, original_state,
		  original_phone, address, city, state, phone, email, llm_used, evidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.RowIndex, rec.OriginalAddress, rec.OriginalCity,
		rec.OriginalState, rec.OriginalPhone, rec.Address, rec.City, rec.State,
		rec.Phone, rec.Email, rec.LLMUsed, rec.Evidence,
	)
	if err != nil {
		return fmt.Errorf("failed to save row: %w", err)
	}
	return nil
}

// SessionRows возвращает строки сессии в порядке индексов.
func (d *SessionDB) SessionRows(sessionID string) ([]RowRecord, error) {
	rows, err := d.conn.Query(
		`SELECT session_id, row_index, original_address, original_city, original_state,
		        original_phone, address, city, state, phone, email, llm_used, evidence
		 FROM cleaned_rows WHERE session_id = ? ORDER BY row_index`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var records []RowRecord
	for rows.Next() {
		var rec RowRecord
		if err := rows.Scan(&rec.SessionID, &rec.RowIndex, &rec.OriginalAddress,
			&rec.OriginalCity, &rec.OriginalState, &rec.OriginalPhone, &rec.Address,
			&rec.City, &rec.State, &rec.Phone, &rec.Email, &rec.LLMUsed, &rec.Evidence); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get возвращает закэшированный ответ оракула, если он еще не истек.
// Просроченные записи удаляются при обращении.
func (d *SessionDB) Get(promptHash string) (string, bool) {
	var response string
	var createdAt time.Time
	err := d.conn.QueryRow(
		`SELECT response, created_at FROM response_cache WHERE prompt_hash = ?`,
		promptHash,
	).Scan(&response, &createdAt)
	if err != nil {
		return "", false
	}
	if d.cacheTTL > 0 && time.Since(createdAt) > d.cacheTTL {
		if _, err := d.conn.Exec(`DELETE FROM response_cache WHERE prompt_hash = ?`, promptHash); err != nil {
			log.Printf("[SessionDB] Failed to evict expired cache entry: %v", err)
		}
		return "", false
	}
	return response, true
}

// Put сохраняет ответ оракула в кэш.
func (d *SessionDB) Put(promptHash, response string) {
	_, err := d.conn.Exec(
		`INSERT OR REPLACE INTO response_cache (prompt_hash, response, created_at) VALUES (?, ?, ?)`,
		promptHash, response, time.Now().UTC(),
	)
	if err != nil {
		log.Printf("[SessionDB] Failed to store cache entry: %v", err)
	}
}
