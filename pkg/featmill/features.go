// Объявление фичей - timestamp регистрация, агрегаты, материализация.

package featmill

import (
	"context"
	"fmt"
)

// registerTimestampRequest — тело запроса регистрации timestamp колонки.
type registerTimestampRequest struct {
	Column string `json:"column"`
	Format string `json:"format"`
}

// materializeRequest — тело запроса запуска материализации.
type materializeRequest struct {
	Features []string `json:"features"`
}

// RegisterTimestamp регистрирует timestamp колонку датасета.
//
// Параметры:
//   - ctx: контекст для отмены
//   - datasetID: идентификатор датасета
//   - column: имя колонки с временной меткой
//   - format: дескриптор формата (TimestampEpochSeconds и т.д.)
//
// Мутирует конфигурацию датасета на стороне платформы. Обязательный шаг
// перед объявлением time-windowed фичей.
func (c *Client) RegisterTimestamp(ctx context.Context, datasetID string, column string, format string) error {
	if datasetID == "" {
		return fmt.Errorf("dataset id is required")
	}
	if column == "" {
		return fmt.Errorf("timestamp column is required")
	}

	switch format {
	case TimestampEpochSeconds, TimestampEpochMillis, TimestampRFC3339:
		// поддерживаемый формат
	default:
		return fmt.Errorf("unsupported timestamp format %q", format)
	}

	path := "/api/v1/datasets/" + datasetID + "/timestamp"
	err := c.post(ctx, "register_timestamp", path, registerTimestampRequest{
		Column: column,
		Format: format,
	}, nil)
	if err != nil {
		return fmt.Errorf("register timestamp %q on %q: %w", column, datasetID, err)
	}

	return nil
}

// CreateAggregateFeature объявляет time-windowed агрегатную фичу.
//
// Платформа начинает считать фичу только после MaterializeFeatures —
// объявление лишь регистрирует определение.
//
// Спека валидируется на клиенте (операция, окно, обязательные имена),
// соответствие схеме датасета проверяет платформа.
func (c *Client) CreateAggregateFeature(ctx context.Context, datasetID string, spec FeatureSpec) error {
	if datasetID == "" {
		return fmt.Errorf("dataset id is required")
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid feature spec: %w", err)
	}

	path := "/api/v1/datasets/" + datasetID + "/features"
	if err := c.post(ctx, "create_feature", path, spec, nil); err != nil {
		return fmt.Errorf("create feature %q on %q: %w", spec.Name, datasetID, err)
	}

	return nil
}

// MaterializeFeatures запускает непрерывную материализацию объявленных фичей.
//
// После вызова платформа считает фичи и для исторических, и для входящих
// записей, а значения становятся доступны через RetrieveFeatures.
//
// Параметры:
//   - ctx: контекст для отмены
//   - datasetID: идентификатор датасета
//   - names: имена фичей для материализации (обязателен хотя бы один)
func (c *Client) MaterializeFeatures(ctx context.Context, datasetID string, names []string) error {
	if datasetID == "" {
		return fmt.Errorf("dataset id is required")
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one feature name is required")
	}
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("empty feature name in materialize list")
		}
	}

	path := "/api/v1/datasets/" + datasetID + "/materialize"
	if err := c.post(ctx, "materialize", path, materializeRequest{Features: names}, nil); err != nil {
		return fmt.Errorf("materialize features on %q: %w", datasetID, err)
	}

	return nil
}
