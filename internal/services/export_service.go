package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var resultsHeader = []interface{}{
	"Test ID",
	"Test",
	"Student ID",
	"Student",
	"Email",
	"Score",
	"Max Score",
	"Completed At",
}

type exportService struct {
	projection ProjectionService
	logger     *slog.Logger
}

func NewExportService(projection ProjectionService, logger *slog.Logger) ExportService {
	return &exportService{
		projection: projection,
		logger:     logger,
	}
}

// ExportTeacherResults writes the TeacherResults listing as one sheet with a
// header row. Times are RFC 3339 in UTC.
func (s *exportService) ExportTeacherResults(ctx context.Context, teacherUserID string, w io.Writer) error {
	results, err := s.projection.TeacherResults(ctx, teacherUserID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}

		row := []interface{}{
			r.TestID,
			r.TestTitle,
			r.StudentID,
			r.StudentName,
			r.StudentEmail,
			r.Score,
			r.MaxScore,
			r.CompletedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Results exported", "teacher_user_id", teacherUserID, "rows", len(results))
	return nil
}
