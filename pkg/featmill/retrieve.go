// Чтение фичей из online store - чанкование и выравнивание порядка.

package featmill

import (
	"context"
	"fmt"
)

// retrieveRequest — тело запроса чтения фичей.
type retrieveRequest struct {
	Rows []Row `json:"rows"`
}

// retrieveResponse — ответ платформы: входные строки, дополненные значениями фичей.
type retrieveResponse struct {
	Rows []Row `json:"rows"`
}

// RetrieveFeatures возвращает значения фичей для набора входных строк.
//
// Платформа выравнивает входные строки против online store (вызов неявно
// до-загружает их) и возвращает те же строки, дополненные вычисленными
// значениями фичей.
//
// Гарантии SDK:
//   - длина результата равна длине входа
//   - порядок результата совпадает с порядком входа (чанки склеиваются
//     последовательно, платформа обязана сохранять порядок внутри чанка)
//   - пустой вход → пустой результат без похода в сеть
//
// Параметры:
//   - ctx: контекст для отмены
//   - datasetID: идентификатор датасета
//   - rows: входные строки
func (c *Client) RetrieveFeatures(ctx context.Context, datasetID string, rows []Row) ([]Row, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset id is required")
	}
	if len(rows) == 0 {
		return []Row{}, nil // Пустой вход — пустой выход
	}

	path := "/api/v1/datasets/" + datasetID + "/retrieve"
	result := make([]Row, 0, len(rows))

	// Чанкование: не больше retrieve_chunk строк на один запрос.
	// Чанки идут строго последовательно, поэтому порядок входа сохраняется.
	for start := 0; start < len(rows); start += c.retrieveChunk {
		end := start + c.retrieveChunk
		if end > len(rows) {
			end = len(rows)
		}

		chunk := rows[start:end]

		var resp retrieveResponse
		err := c.post(ctx, "retrieve_features", path, retrieveRequest{Rows: chunk}, &resp)
		if err != nil {
			return nil, fmt.Errorf("retrieve features [%d:%d] from %q: %w", start, end, datasetID, err)
		}

		// Платформа обязана вернуть строку на каждую входную строку.
		// Рассинхрон — это ошибка контракта, не продолжаем.
		if len(resp.Rows) != len(chunk) {
			return nil, fmt.Errorf("retrieve features from %q: row count mismatch: sent %d, got %d",
				datasetID, len(chunk), len(resp.Rows))
		}

		result = append(result, resp.Rows...)
	}

	return result, nil
}
