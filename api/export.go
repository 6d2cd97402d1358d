/*
export.go - Monthly attendance workbook export

PURPOSE:
  Streams the reporting period as an xlsx workbook: one sheet per month,
  one row per day, a totals row per sheet. Gives the ledger a portable
  form for expense reports and HR archives.

FORMAT:
  Sheet name:  "Jun 2024"
  Columns:     Date, Weekday, Type, Recorded, Required, Balance, Description
  Last row:    Total, -, -, recorded, required, balance, -

  Future months get an empty sheet (header + zero totals), mirroring the
  dashboard's placeholder cards.

SEE ALSO:
  - attendance/summary.go: MonthlySummaries feeding the sheets
*/
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportWorkbook handles GET /api/export.xlsx.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "Settings not found", nil)
		return
	}

	summaries, err := h.Aggregator.MonthlySummaries(ctx, settings.Period(), *settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summaries", err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, m := range summaries {
		sheet := m.Month.Format("Jan 2006")
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
				return
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
			return
		}

		headers := []string{"Date", "Weekday", "Type", "Recorded", "Required", "Balance", "Description"}
		for col, name := range headers {
			setCell(f, sheet, col+1, 1, name)
		}

		row := 2
		for _, d := range m.Days {
			values := []any{
				d.Date.String(),
				d.Date.Weekday().String(),
				categoryLabel(d.Category),
				d.Recorded,
				d.Required,
				d.Balance,
				d.Description,
			}
			for col, v := range values {
				setCell(f, sheet, col+1, row, v)
			}
			row++
		}

		totals := []any{"Total", "", "", m.Recorded, m.Required, m.Balance, ""}
		for col, v := range totals {
			setCell(f, sheet, col+1, row, v)
		}
	}

	filename := fmt.Sprintf("attendance-%s-%s.xlsx", settings.StartDate, settings.EndDate)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("[API] Failed to stream workbook: %v", err)
	}
}

func setCell(f *excelize.File, sheet string, col, row int, value any) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return
	}
	f.SetCellValue(sheet, cell, value)
}
