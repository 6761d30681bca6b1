package complaints

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garnizeh/citizenhub/internal/models"
)

const exportSheet = "Complaints"

var exportHeaders = []string{
	"ID", "Full Name", "Contact Number", "Email Address", "Category", "Address",
	"Complaint Title", "Incident Location", "Detailed Description", "Status", "Location", "Submitted",
}

var exportWidths = []float64{8, 22, 16, 26, 16, 30, 30, 24, 50, 12, 16, 20}

// ExportXLSX writes the calling admin's pending queue as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context, adminEmail string, w io.Writer) error {
	list, err := s.ListForAdmin(ctx, adminEmail)
	if err != nil {
		return err
	}
	return WriteXLSX(w, list)
}

// WriteXLSX renders complaints into a single-sheet workbook with a frozen header row.
func WriteXLSX(w io.Writer, list []models.Complaint) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(exportSheet, col, col, exportWidths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, c := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.ID, c.FullName, c.ContactNumber, c.EmailAddress, c.Category, c.Address,
			c.ComplaintTitle, c.IncidentLocation, c.DetailedDescription, string(c.Status), c.Location,
			time.Unix(c.Created, 0).UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
