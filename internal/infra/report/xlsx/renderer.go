package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yanqian/agrocalc/internal/domain/history"
)

const (
	sheetName   = "Calculations"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"ID", "Kind", "Created At", "Input", "Output"}

// Renderer writes calculation records to a single-sheet workbook.
type Renderer struct{}

// NewRenderer constructs the renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) ContentType() string { return contentType }

func (r *Renderer) Extension() string { return "xlsx" }

// Render produces the workbook bytes. Records keep the order they were given in.
func (r *Renderer) Render(records []history.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "E1", bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			rec.ID.String(),
			rec.Kind,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			string(rec.Input),
			string(rec.Output),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "C", "C", 22)
	_ = f.SetColWidth(sheetName, "D", "E", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var _ history.ReportRenderer = (*Renderer)(nil)
