package user

import (
	"context"
	"fmt"
	"io"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/xuri/excelize/v2"
)

const (
	ColumnTitle    = "Firma Ünvanı"
	ColumnTaxNo    = "Vergi No"
	ColumnPassword = "Şifre"
	ColumnRole     = "Yetki"

	ExportSheet    = "Müşteriler"
	ExportFileName = "müşteriler.xlsx"

	maskedPassword = "******"
)

// Import creates one user per spreadsheet row, all with roleID. Rows whose
// tax number already exists are skipped; rows that fail do not stop the
// import.
func (s *Service) Import(ctx context.Context, r io.Reader, roleID string) (*ImportReport, error) {
	if strings.TrimSpace(roleID) == "" {
		return nil, errors.NewValidationFieldError("roleId", "roleId is required", errors.ErrCodeValidationFailed)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to parse Excel file: %v", err), errors.ErrCodeInvalidImport)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.NewValidationError("Excel file has no sheets", errors.ErrCodeInvalidImport)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("failed to read rows: %v", err), errors.ErrCodeInvalidImport)
	}

	report := &ImportReport{}
	if len(rows) < 2 {
		return report, nil
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		columns[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{ColumnTitle, ColumnTaxNo, ColumnPassword} {
		if _, ok := columns[required]; !ok {
			return nil, errors.NewValidationError(fmt.Sprintf("missing column %q", required), errors.ErrCodeInvalidImport)
		}
	}

	existing, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, u := range existing {
		taken[strings.TrimSpace(u.Name)] = true
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}

		dto := CreateUserDTO{
			Name:     cell(row, columns[ColumnTaxNo]),
			Password: cell(row, columns[ColumnPassword]),
			Detail:   cell(row, columns[ColumnTitle]),
			RoleID:   roleID,
		}

		if dto.Name != "" && taken[dto.Name] {
			report.Skipped++
			continue
		}

		if _, err := s.Create(ctx, dto); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{Row: i + 1, Name: dto.Name, Message: err.Error()})
			continue
		}
		taken[dto.Name] = true
		report.Created++
	}

	s.logger.Info("user import finished",
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}

// Export writes every user to a workbook. Passwords are never readable,
// so the column is masked.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	users, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []interface{}{ColumnTaxNo, ColumnTitle, ColumnPassword, ColumnRole}
	if err := f.SetSheetRow(ExportSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(ExportSheet, "A1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, u := range users {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{u.Name, u.Detail, maskedPassword, u.RoleName}
		if err := f.SetSheetRow(ExportSheet, cellName, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ExportSheet, "A", "D", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("users exported", "count", len(users))
	return nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
