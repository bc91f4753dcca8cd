package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/megalith-dashboard/internal/application/dto"
	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

const csvHeader = "timestamp,metric,value"

// ExportSnapshotUseCase сериализует текущее состояние дашборда
type ExportSnapshotUseCase struct {
	clock func() time.Time
}

// NewExportSnapshotUseCase создает новый use case. clock == nil означает time.Now.
func NewExportSnapshotUseCase(clock func() time.Time) *ExportSnapshotUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &ExportSnapshotUseCase{clock: clock}
}

// Execute возвращает документ в формате json или csv.
// Для остальных форматов возвращает valueobject.ErrUnsupportedFormat.
func (uc *ExportSnapshotUseCase) Execute(state *entity.DashboardState, format string) ([]byte, error) {
	parsed, err := valueobject.ParseExportFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, format)
	}

	doc := dto.NewExportDocumentDTO(state, uc.clock())

	switch parsed {
	case valueobject.FormatCSV:
		return []byte(toCSV(doc)), nil
	default:
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal export: %w", err)
		}
		return body, nil
	}
}

// toCSV фиксированный набор колонок, не общий сериализатор
func toCSV(doc *dto.ExportDocumentDTO) string {
	rows := []string{
		csvHeader,
		doc.Timestamp + ",totalLeads," + strconv.Itoa(doc.Metrics.TotalLeads),
		doc.Timestamp + ",conversionRate," + strconv.FormatFloat(doc.Metrics.ConversionRate, 'f', -1, 64),
		doc.Timestamp + ",messagesPerSecond," + strconv.FormatInt(doc.StreamingMetrics.MessagesPerSecond, 10),
	}
	return strings.Join(rows, "\n")
}
