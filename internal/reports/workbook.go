package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/novavoice/nova-voice/internal/assessment"
)

// SheetName is the single sheet of an assessment export.
const SheetName = "Assessments"

// ContentTypeXLSX is the media type of exported workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var workbookHeader = []any{
	"ID", "Created At", "Clinic", "Daily Calls", "Reception", "Missed Call Strategy",
	"Lead Follow-Up", "Runs Ads", "Avg Case Value", "Risk Score", "Potential Revenue", "Risk Level",
}

// AssessmentWorkbook builds an XLSX workbook with one row per record, in the
// order given. Callers own the returned file and must Close it.
func AssessmentWorkbook(records []assessment.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("reports: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &workbookHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("reports: write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reports: header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(workbookHeader))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("reports: apply header style: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			rec.ID,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.ClinicName,
			rec.DailyCalls,
			string(rec.ReceptionConfig),
			string(rec.MissedCallStrategy),
			string(rec.LeadFollowUpTime),
			rec.RunAds,
			rec.AvgCaseValue,
			rec.RiskScore,
			rec.PotentialRevenue,
			string(rec.RiskLevel),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("reports: write row %d: %w", i+1, err)
		}
	}
	return f, nil
}

// RenderWorkbook returns the XLSX bytes for records.
func RenderWorkbook(records []assessment.Record) ([]byte, error) {
	f, err := AssessmentWorkbook(records)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("reports: encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
