package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/domain"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Schedule"

// Excel writes a period's appointments into an xlsx day grid: one
// column per date, one row per barber.
type Excel struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewExcel(repo domain.Repository, path string, logger *zerolog.Logger) *Excel {
	return &Excel{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

// ExportSchedule builds the grid for [startDate, endDate] and returns
// the saved file path.
func (e *Excel) ExportSchedule(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if endDate.Before(startDate) {
		return "", fmt.Errorf("export range ends before it starts")
	}
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	daily, err := e.repo.GetDailyAppointments(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting appointments: %w", err)
	}
	barbers, err := e.repo.GetActiveBarbers(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting barbers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateCols := e.writeDateHeaders(f, startDate, endDate)
	e.writeBarberHeaders(f, barbers)
	e.writeAppointmentCells(f, daily, barbers, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 28)
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(dateCols)+1, 1)
	_ = f.MergeCell(sheetName, "A1", lastCell)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *Excel) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	col := 2
	current := startDate
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !current.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02.01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[current.Format("2006-01-02")] = col

		col++
		current = current.AddDate(0, 0, 1)
	}
	return dateCols
}

func (e *Excel) writeBarberHeaders(f *excelize.File, barbers []models.Barber) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, barber := range barbers {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, barber.Name)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (e *Excel) writeAppointmentCells(
	f *excelize.File,
	daily map[string][]models.Appointment,
	barbers []models.Barber,
	dateCols map[string]int,
) {
	for dateKey, appointments := range daily {
		col, ok := dateCols[dateKey]
		if !ok {
			continue
		}

		byBarber := make(map[int64][]models.Appointment)
		for _, appt := range appointments {
			byBarber[appt.BarberID] = append(byBarber[appt.BarberID], appt)
		}

		row := 3
		for _, barber := range barbers {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			dayAppointments := byBarber[barber.ID]

			var cellValue string
			for _, appt := range dayAppointments {
				if appt.Status == models.StatusCancelled {
					continue
				}
				cellValue += fmt.Sprintf("%s %s %s", statusIcon(appt.Status), appt.StartTime, appt.ClientName)
				if len(appt.Services) > 0 {
					cellValue += fmt.Sprintf(" (%d min)", appt.Services.TotalDurationMinutes())
				}
				cellValue += "\n"
			}
			if cellValue == "" {
				cellValue = "Free"
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)
			if styleID, err := e.cellStyle(f, dayAppointments); err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusCancelled:
		return "❌"
	default:
		return "❓"
	}
}

func (e *Excel) cellStyle(f *excelize.File, appointments []models.Appointment) (int, error) {
	base := excelize.Alignment{
		Horizontal: "left",
		Vertical:   "top",
		WrapText:   true,
	}

	var active, pending int
	for _, appt := range appointments {
		if appt.Status == models.StatusCancelled {
			continue
		}
		active++
		if appt.Status == models.StatusPending {
			pending++
		}
	}

	fill := "#FFFFFF"
	switch {
	case active == 0:
		// empty day, no fill
	case pending > 0:
		fill = "#FFEB9C"
	default:
		fill = "#C6EFCE"
	}

	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &base,
	})
}
