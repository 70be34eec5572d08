// Package cache предоставляет локальный sqlite-кэш значений фичей.
//
// Кэш — write-through поверх RetrieveFeatures: каждая прочитанная строка
// сохраняется под ключом (dataset_id, значение key-поля). Демо утилиты
// используют его чтобы перерендерить промпты offline, без повторного похода
// в online store.
//
// Это НЕ замена online store: тут лежат последние наблюдённые значения,
// без какой-либо гарантии свежести.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/featmill/pkg/featmill"
)

// ErrRowNotFound возвращается когда строки нет в кэше.
//
// Пример использования:
//   row, err := store.GetRow(ctx, "tx_data", "42")
//   if errors.Is(err, cache.ErrRowNotFound) { ... }
var ErrRowNotFound = fmt.Errorf("row not found in cache")

// Store — sqlite-хранилище закэшированных строк с фичами.
//
// Thread-safe: database/sql сам сериализует доступ к соединениям.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS feature_rows (
    dataset_id TEXT NOT NULL,
    row_key    TEXT NOT NULL,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (dataset_id, row_key)
);
`

// Open открывает (или создаёт) sqlite файл кэша и применяет схему.
//
// path — путь к файлу, например ".featmill-cache.db".
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает файл кэша.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRows сохраняет строки в кэш (upsert по ключу датасета).
//
// Параметры:
//   - datasetID: идентификатор датасета
//   - keyField: имя key-поля (из handle датасета)
//   - rows: строки как их вернул RetrieveFeatures
//
// Строка без key-поля — ошибка: без ключа запись нельзя адресовать.
// Вся партия пишется в одной транзакции.
func (s *Store) PutRows(ctx context.Context, datasetID string, keyField string, rows []featmill.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO feature_rows (dataset_id, row_key, payload, updated_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT (dataset_id, row_key)
        DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		keyVal, ok := row[keyField]
		if !ok {
			return fmt.Errorf("row %d has no key field %q", i, keyField)
		}

		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", i, err)
		}

		rowKey := fmt.Sprintf("%v", keyVal)
		if _, err := stmt.ExecContext(ctx, datasetID, rowKey, string(payload)); err != nil {
			return fmt.Errorf("upsert row %q: %w", rowKey, err)
		}
	}

	return tx.Commit()
}

// GetRow возвращает закэшированную строку по значению ключа.
//
// Возвращает ErrRowNotFound если строки нет.
func (s *Store) GetRow(ctx context.Context, datasetID string, rowKey string) (featmill.Row, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM feature_rows WHERE dataset_id = ? AND row_key = ?`,
		datasetID, rowKey).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s/%s", ErrRowNotFound, datasetID, rowKey)
	}
	if err != nil {
		return nil, fmt.Errorf("query row %s/%s: %w", datasetID, rowKey, err)
	}

	var row featmill.Row
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return nil, fmt.Errorf("unmarshal cached row %s/%s: %w", datasetID, rowKey, err)
	}

	return row, nil
}

// ListRows возвращает все закэшированные строки датасета.
//
// Порядок — по ключу строки (детерминированный, но не порядок вставки).
func (s *Store) ListRows(ctx context.Context, datasetID string) ([]featmill.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM feature_rows WHERE dataset_id = ? ORDER BY row_key`,
		datasetID)
	if err != nil {
		return nil, fmt.Errorf("query rows for %s: %w", datasetID, err)
	}
	defer rows.Close()

	var out []featmill.Row
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}

		var row featmill.Row
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			return nil, fmt.Errorf("unmarshal cached row: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
