package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	appointmentsSheetName = "Appointments"
	scheduleSheetName     = "Schedule"
)

// ErrRowNotFound reports that an appointment has no row in the log sheet.
var ErrRowNotFound = errors.New("appointment row not found")

// SheetsService mirrors appointments into a Google spreadsheet. The
// "Appointments" sheet is an append-only log with per-row status updates,
// the "Schedule" sheet is a regenerated day grid.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	// Periodic cache refresh every 1 hour
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			service.WarmUpCache(ctx)
			cancel()
		}
	}()

	return service, nil
}

// TestConnection reads the first log cell to verify access to the spreadsheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, appointmentsSheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail returns the service account email from the
// credentials file, useful for sharing instructions.
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, appointmentsSheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		var id int64
		switch v := row[0].(type) {
		case float64:
			id = int64(v)
		case string:
			fmt.Sscanf(v, "%d", &id)
		}
		if id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// AppendAppointment appends a new appointment row to the log sheet.
func (s *SheetsService) AppendAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt == nil {
		return fmt.Errorf("appointment is nil")
	}

	rangeData := appointmentsSheetName + "!A:A"
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{appointmentRowValues(appt)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}

// UpsertAppointment updates an existing appointment row or appends a new one.
func (s *SheetsService) UpsertAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt == nil {
		return fmt.Errorf("appointment is nil")
	}

	rowIdx, err := s.FindAppointmentRow(ctx, appt.ID)
	if err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return s.AppendAppointment(ctx, appt)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:L%d", appointmentsSheetName, rowIdx, rowIdx)
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{appointmentRowValues(appt)},
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// UpdateAppointmentStatus updates status (and UpdatedAt) for an appointment row.
func (s *SheetsService) UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error {
	rowIdx, err := s.FindAppointmentRow(ctx, appointmentID)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	statusRange := fmt.Sprintf("%s!F%d:F%d", appointmentsSheetName, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!L%d:L%d", appointmentsSheetName, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// DeleteAppointmentRow removes the row that corresponds to appointmentID.
func (s *SheetsService) DeleteAppointmentRow(ctx context.Context, appointmentID int64) error {
	rowIdx, err := s.FindAppointmentRow(ctx, appointmentID)
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:L%d", appointmentsSheetName, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err == nil {
		s.deleteCacheRow(appointmentID)
	}
	return err
}

// FindAppointmentRow locates the 1-based row index for appointment_id in
// column A, consulting the cache first.
func (s *SheetsService) FindAppointmentRow(ctx context.Context, appointmentID int64) (int, error) {
	if appointmentID == 0 {
		return 0, fmt.Errorf("appointment id is required")
	}

	if row, ok := s.getCachedRow(appointmentID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, appointmentsSheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		switch v := row[0].(type) {
		case float64:
			if int64(v) == appointmentID {
				rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
				s.setCachedRow(appointmentID, rowIdx)
				return rowIdx, nil
			}
		case string:
			// if ID stored as string
			if v == fmt.Sprintf("%d", appointmentID) {
				rowIdx := i + 1
				s.setCachedRow(appointmentID, rowIdx)
				return rowIdx, nil
			}
		}
	}

	return 0, ErrRowNotFound
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache clears the row index cache.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func appointmentRowValues(appt *models.Appointment) []interface{} {
	return []interface{}{
		appt.ID,
		appt.Reference,
		appt.BarberID,
		appt.Date.Format("2006-01-02"),
		appt.StartTime,
		appt.Status,
		appt.ClientName,
		appt.ClientPhone,
		servicesSummary(appt),
		appt.Services.TotalDurationMinutes(),
		appt.CreatedAt.Format("2006-01-02 15:04:05"),
		appt.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func servicesSummary(appt *models.Appointment) string {
	if len(appt.Services) == 0 {
		if appt.ServiceID > 0 {
			return fmt.Sprintf("#%d", appt.ServiceID)
		}
		return ""
	}
	parts := make([]string, 0, len(appt.Services))
	for _, line := range appt.Services {
		if line.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", line.Name, line.Quantity))
		} else {
			parts = append(parts, line.Name)
		}
	}
	return strings.Join(parts, ", ")
}

// UpdateScheduleSheet rewrites the day-grid sheet for the given period:
// dates across, barbers down, one cell per barber-day.
func (s *SheetsService) UpdateScheduleSheet(ctx context.Context, startDate, endDate time.Time, dailyAppointments map[string][]models.Appointment, barbers []models.Barber) error {
	sheetId, err := s.GetSheetIdByName(ctx, s.spreadsheetID, scheduleSheetName)
	if err != nil {
		return fmt.Errorf("unable to get sheet ID: %v", err)
	}

	clearRange := scheduleSheetName + "!A:Z"
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to clear sheet: %v", err)
	}

	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if days <= 0 {
		return fmt.Errorf("invalid date range: startDate %s, endDate %s", startDate, endDate)
	}

	var data [][]interface{}
	var formatRequests []*sheets.Request

	// Period title (row 1)
	data = append(data, []interface{}{
		fmt.Sprintf("Period: %s - %s",
			startDate.Format("02.01.2006"),
			endDate.Format("02.01.2006")),
	})

	formatRequests = append(formatRequests, &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetId,
				StartRowIndex:    0,
				EndRowIndex:      1,
				StartColumnIndex: 0,
				EndColumnIndex:   1,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					HorizontalAlignment: "CENTER",
					TextFormat: &sheets.TextFormat{
						Bold:     true,
						FontSize: 14,
					},
				},
			},
			Fields: "userEnteredFormat(textFormat,horizontalAlignment)",
		},
	})

	// Spacer row between the title and the grid
	data = append(data, []interface{}{})

	// Date headers (row 3)
	headerRow, dateCols := prepareDateHeaders(startDate, endDate)
	data = append(data, headerRow)

	if len(headerRow) > 1 {
		formatRequests = append(formatRequests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetId,
					StartRowIndex:    2,
					EndRowIndex:      3,
					StartColumnIndex: 1,
					EndColumnIndex:   int64(len(headerRow)),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						HorizontalAlignment: "CENTER",
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
						BackgroundColor: &sheets.Color{
							Red:   0.86,
							Green: 0.92,
							Blue:  0.97,
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
			},
		})
	}

	// One row per barber, from row 4
	for rowIndex, barber := range barbers {
		rowData := []interface{}{barber.Name}

		currentDate := startDate
		for colIndex := 0; colIndex < dateCols; colIndex++ {
			dateKey := currentDate.Format("2006-01-02")

			var barberAppointments []models.Appointment
			for _, appt := range dailyAppointments[dateKey] {
				if appt.BarberID == barber.ID {
					barberAppointments = append(barberAppointments, appt)
				}
			}

			cellValue, backgroundColor := formatScheduleCell(barberAppointments)
			rowData = append(rowData, cellValue)

			cellFormat := &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					VerticalAlignment: "TOP",
					WrapStrategy:      "WRAP",
				},
			}
			if backgroundColor != nil {
				cellFormat.UserEnteredFormat.BackgroundColor = backgroundColor
			} else {
				// White fill so stale coloring never survives a rewrite
				cellFormat.UserEnteredFormat.BackgroundColor = &sheets.Color{
					Red:   1.0,
					Green: 1.0,
					Blue:  1.0,
				}
			}

			formatRequests = append(formatRequests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          sheetId,
						StartRowIndex:    int64(rowIndex + 3),
						EndRowIndex:      int64(rowIndex + 4),
						StartColumnIndex: int64(colIndex + 1),
						EndColumnIndex:   int64(colIndex + 2),
					},
					Cell:   cellFormat,
					Fields: "userEnteredFormat(backgroundColor,verticalAlignment,wrapStrategy)",
				},
			})

			currentDate = currentDate.AddDate(0, 0, 1)
		}
		data = append(data, rowData)
	}

	if len(barbers) == 0 {
		rowData := []interface{}{"No active barbers"}
		for i := 0; i < dateCols; i++ {
			rowData = append(rowData, "")
		}
		data = append(data, rowData)
	}

	if len(barbers) > 0 {
		formatRequests = append(formatRequests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetId,
					StartRowIndex:    3,
					EndRowIndex:      int64(3 + len(barbers)),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
						BackgroundColor: &sheets.Color{
							Red:   0.89,
							Green: 0.94,
							Blue:  0.85,
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		})
	}

	valueRange := &sheets.ValueRange{Values: data}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, scheduleSheetName+"!A1", valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to update schedule sheet: %v", err)
	}

	if len(formatRequests) > 0 {
		batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: formatRequests,
		}

		_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("unable to apply formatting: %v", err)
		}
	}

	return s.adjustColumnWidths(ctx, sheetId, dateCols)
}

// prepareDateHeaders builds the "dd.mm" header row. The first cell stays
// empty above the barber name column.
func prepareDateHeaders(startDate, endDate time.Time) ([]interface{}, int) {
	headerRow := []interface{}{""}

	currentDate := startDate
	dateCols := 0
	for !currentDate.After(endDate) && dateCols < 100 {
		headerRow = append(headerRow, currentDate.Format("02.01"))
		dateCols++
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	if len(headerRow) <= 1 {
		headerRow = append(headerRow, "No data")
		dateCols = 1
	}

	return headerRow, dateCols
}

// formatScheduleCell renders one barber-day cell. Cancelled appointments
// are excluded; the fill color reflects whether anything is still pending.
func formatScheduleCell(appointments []models.Appointment) (string, *sheets.Color) {
	active := filterActiveAppointments(appointments)
	if len(active) == 0 {
		return "Free", nil
	}

	var b strings.Builder
	hasPending := false
	for _, appt := range active {
		fmt.Fprintf(&b, "[№%d] %s %s %s\n", appt.ID, statusIcon(appt.Status), appt.StartTime, appt.ClientName)
		if appt.Comment != "" {
			fmt.Fprintf(&b, "   💬 %s\n", appt.Comment)
		}
		if appt.Status == models.StatusPending {
			hasPending = true
		}
	}
	fmt.Fprintf(&b, "\nBooked: %d", len(active))

	if hasPending {
		return b.String(), &sheets.Color{Red: 1.0, Green: 0.92, Blue: 0.61}
	}
	return b.String(), &sheets.Color{Red: 0.78, Green: 0.94, Blue: 0.81}
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

func filterActiveAppointments(appointments []models.Appointment) []models.Appointment {
	var active []models.Appointment
	for _, appt := range appointments {
		if models.OccupiesTime(appt.Status) {
			active = append(active, appt)
		}
	}
	return active
}

func (s *SheetsService) adjustColumnWidths(ctx context.Context, sheetId int64, dateCols int) error {
	if dateCols <= 0 {
		dateCols = 1
	}

	var requests []*sheets.Request

	// Barber name column
	requests = append(requests, &sheets.Request{
		UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range: &sheets.DimensionRange{
				SheetId:    sheetId,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   1,
			},
			Properties: &sheets.DimensionProperties{
				PixelSize: 200,
			},
			Fields: "pixelSize",
		},
	})

	// Date columns
	for i := 1; i <= dateCols && i < 100; i++ {
		requests = append(requests, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetId,
					Dimension:  "COLUMNS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
				Properties: &sheets.DimensionProperties{
					PixelSize: 150,
				},
				Fields: "pixelSize",
			},
		})
	}

	if len(requests) > 0 {
		batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}

		_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("unable to adjust column widths: %v", err)
		}
	}

	return nil
}

// GetSheetIdByName resolves a sheet tab's numeric ID by its title.
func (s *SheetsService) GetSheetIdByName(ctx context.Context, spreadID, sheetName string) (int64, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(spreadID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to get spreadsheet: %v", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, nil
		}
	}

	return 0, fmt.Errorf("sheet '%s' not found", sheetName)
}
