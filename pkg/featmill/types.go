// Базовые типы SDK - датасеты, фичи, окна агрегации.
package featmill

import "fmt"

// Row — одна запись датасета: отображение имени поля в значение.
//
// Схема и актуальность значений полностью на стороне платформы. SDK не
// навязывает никаких инвариантов на содержимое — это непрозрачные key/value
// записи (transactionID, accountID, timestamp, my_sum_feat_24h и т.д.).
type Row map[string]any

// Dataset — handle зарегистрированного на платформе датасета.
//
// Возвращается CreateDataset/GetDataset. Содержит то, что платформа знает
// о датасете на момент вызова; не является живым объектом.
type Dataset struct {
	ID              string       `json:"id"`               // Уникальный идентификатор датасета
	KeyField        string       `json:"key_field"`        // Поле уникального ключа записи
	RowCount        int64        `json:"row_count"`        // Количество принятых записей
	TimestampColumn string       `json:"timestamp_column"` // Зарегистрированная колонка времени (пусто если нет)
	TimestampFormat string       `json:"timestamp_format"` // Формат колонки времени
	Features        []FeatureDef `json:"features"`         // Объявленные фичи
}

// AggregateOp — операция агрегации для time-windowed фичи.
type AggregateOp string

const (
	OpSum   AggregateOp = "SUM"
	OpAvg   AggregateOp = "AVG"
	OpCount AggregateOp = "COUNT"
	OpMax   AggregateOp = "MAX"
	OpMin   AggregateOp = "MIN"
)

// Valid проверяет что операция поддерживается платформой.
func (op AggregateOp) Valid() bool {
	switch op {
	case OpSum, OpAvg, OpCount, OpMax, OpMin:
		return true
	}
	return false
}

// WindowUnit — единица измерения окна агрегации.
type WindowUnit string

const (
	WindowSeconds WindowUnit = "seconds"
	WindowMinutes WindowUnit = "minutes"
	WindowHours   WindowUnit = "hours"
	WindowDays    WindowUnit = "days"
)

// Valid проверяет что единица окна поддерживается платформой.
func (u WindowUnit) Valid() bool {
	switch u {
	case WindowSeconds, WindowMinutes, WindowHours, WindowDays:
		return true
	}
	return false
}

// Форматы timestamp колонки. Передаются в RegisterTimestamp как дескриптор
// формата — платформа сама парсит значения при ingestion.
const (
	TimestampEpochSeconds = "epoch_seconds"
	TimestampEpochMillis  = "epoch_millis"
	TimestampRFC3339      = "rfc3339"
)

// FeatureSpec — объявление time-windowed агрегатной фичи.
//
// Пример: сумма transactionAmount по accountID за последние 24 часа:
//
//	featmill.FeatureSpec{
//	    Name:            "my_sum_feat_24h",
//	    Column:          "transactionAmount",
//	    GroupBy:         "accountID",
//	    Operation:       featmill.OpSum,
//	    TimestampColumn: "timestamp",
//	    WindowSize:      24,
//	    WindowUnit:      featmill.WindowHours,
//	}
type FeatureSpec struct {
	Name            string      `json:"name"`             // Имя выходной фичи
	Column          string      `json:"column"`           // Исходная колонка
	GroupBy         string      `json:"group_by"`         // Колонка группировки
	Operation       AggregateOp `json:"operation"`        // SUM/AVG/COUNT/MAX/MIN
	TimestampColumn string      `json:"timestamp_column"` // Зарегистрированная timestamp колонка
	WindowSize      int         `json:"window_size"`      // Размер окна
	WindowUnit      WindowUnit  `json:"window_unit"`      // Единица окна
}

// Validate проверяет клиентскую корректность объявления фичи.
//
// Проверяем только то, что видно без схемы: операцию, окно и обязательные
// имена. Соответствие колонок реальной схеме датасета проверяет платформа.
func (s FeatureSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("feature name is required")
	}
	if s.GroupBy == "" {
		return fmt.Errorf("feature %q: group_by is required", s.Name)
	}
	if !s.Operation.Valid() {
		return fmt.Errorf("feature %q: unsupported operation %q", s.Name, s.Operation)
	}
	// COUNT не требует исходной колонки, остальные операции — требуют
	if s.Operation != OpCount && s.Column == "" {
		return fmt.Errorf("feature %q: column is required for %s", s.Name, s.Operation)
	}
	if s.TimestampColumn == "" {
		return fmt.Errorf("feature %q: timestamp_column is required", s.Name)
	}
	if s.WindowSize <= 0 {
		return fmt.Errorf("feature %q: window_size must be positive", s.Name)
	}
	if !s.WindowUnit.Valid() {
		return fmt.Errorf("feature %q: unsupported window unit %q", s.Name, s.WindowUnit)
	}
	return nil
}

// FeatureDef — объявленная на платформе фича (как её вернул backend).
type FeatureDef struct {
	FeatureSpec
	Materialized bool `json:"materialized"` // Запущена ли непрерывная материализация
}
