package valueobject

import (
	"errors"
	"strings"
)

// ErrUnsupportedFormat неизвестный формат экспорта
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportFormat формат выгрузки состояния дашборда
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ParseExportFormat разбирает формат без учета регистра
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ContentType MIME-тип формата
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Extension расширение файла для архива
func (f ExportFormat) Extension() string {
	return string(f)
}

// String возвращает строковое представление
func (f ExportFormat) String() string {
	return string(f)
}
