// Операции с датасетами - регистрация, загрузка строк, load-or-create.

package featmill

import (
	"context"
	"fmt"
)

// createDatasetRequest — тело запроса регистрации датасета.
type createDatasetRequest struct {
	ID       string `json:"id"`
	KeyField string `json:"key_field"`
	ExistsOK bool   `json:"exists_ok"`
}

// uploadRowsRequest — тело запроса загрузки строк.
type uploadRowsRequest struct {
	Rows []Row `json:"rows"`
}

// uploadRowsResponse — ответ платформы на загрузку строк.
type uploadRowsResponse struct {
	Accepted int `json:"accepted"`
}

// CreateDataset регистрирует датасет на платформе и загружает начальные строки.
//
// Параметры:
//   - ctx: контекст для отмены
//   - id: уникальный идентификатор датасета
//   - keyField: имя поля уникального ключа записи
//   - rows: начальные данные (может быть nil — пустой датасет)
//   - existsOK: если true и датасет с таким id уже зарегистрирован —
//     возвращается существующий handle вместо ошибки
//
// Загрузка чанкуется по featmill.upload_chunk строк на запрос.
// Возвращает handle датасета или ошибку.
func (c *Client) CreateDataset(ctx context.Context, id string, keyField string, rows []Row, existsOK bool) (*Dataset, error) {
	if id == "" {
		return nil, fmt.Errorf("dataset id is required")
	}
	if keyField == "" {
		return nil, fmt.Errorf("key field is required")
	}

	// 1. Регистрируем датасет
	var ds Dataset
	err := c.post(ctx, "create_dataset", "/api/v1/datasets", createDatasetRequest{
		ID:       id,
		KeyField: keyField,
		ExistsOK: existsOK,
	}, &ds)
	if err != nil {
		return nil, fmt.Errorf("create dataset %q: %w", id, err)
	}

	// 2. Загружаем начальные строки (если есть)
	if len(rows) > 0 {
		accepted, err := c.UploadRows(ctx, ds.ID, rows)
		if err != nil {
			return nil, fmt.Errorf("upload initial rows to %q: %w", id, err)
		}
		ds.RowCount += int64(accepted)
	}

	return &ds, nil
}

// GetDataset загружает handle существующего датасета.
//
// Возвращает ошибку если датасет не зарегистрирован (HTTP 404).
func (c *Client) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	if id == "" {
		return nil, fmt.Errorf("dataset id is required")
	}

	var ds Dataset
	err := c.get(ctx, "get_dataset", "/api/v1/datasets/"+id, nil, &ds)
	if err != nil {
		return nil, fmt.Errorf("get dataset %q: %w", id, err)
	}

	return &ds, nil
}

// LoadOrCreate пытается загрузить датасет, а при ЛЮБОЙ ошибке создаёт пустой.
//
// Грубый неселективный fallback из туториалов: сетевые ошибки и "датасет не
// найден" обрабатываются одинаково. Для production кода используйте
// GetDataset + ClassifyError и создавайте датасет только на ErrNotFound.
func (c *Client) LoadOrCreate(ctx context.Context, id string, keyField string) (*Dataset, error) {
	ds, err := c.GetDataset(ctx, id)
	if err == nil {
		return ds, nil
	}

	// Любая ошибка → создаём пустой датасет с existsOK
	return c.CreateDataset(ctx, id, keyField, nil, true)
}

// UploadRows загружает строки в зарегистрированный датасет.
//
// Это и первичная загрузка исторических данных, и подача новых записей:
// платформа прогоняет оба потока через одни и те же объявленные фичи.
//
// Загрузка чанкуется: не больше upload_chunk строк на один запрос.
// Возвращает количество принятых платформой строк.
func (c *Client) UploadRows(ctx context.Context, datasetID string, rows []Row) (int, error) {
	if datasetID == "" {
		return 0, fmt.Errorf("dataset id is required")
	}
	if len(rows) == 0 {
		return 0, nil // Нечего загружать — не ходим в сеть
	}

	path := "/api/v1/datasets/" + datasetID + "/rows"
	accepted := 0

	// Чанкование
	for start := 0; start < len(rows); start += c.uploadChunk {
		end := start + c.uploadChunk
		if end > len(rows) {
			end = len(rows)
		}

		var resp uploadRowsResponse
		err := c.post(ctx, "upload_rows", path, uploadRowsRequest{Rows: rows[start:end]}, &resp)
		if err != nil {
			return accepted, fmt.Errorf("upload rows [%d:%d] to %q: %w", start, end, datasetID, err)
		}

		accepted += resp.Accepted
	}

	return accepted, nil
}
