package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/database"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/metrics"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

const dateLayout = "2006-01-02"

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Ping(r.Context()); err != nil {
			resp["cache"] = "down"
		} else {
			resp["cache"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleBarbers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("barbers")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	barbers, err := s.deps.Repo.GetActiveBarbers(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	services, err := s.deps.Repo.GetActiveServices(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// handleBarberSubresource routes /api/v1/barbers/{id}/... paths:
// slots, schedule, schedule/copy and breaks.
func (s *HTTPServer) handleBarberSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/barbers/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	barberID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || barberID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid barber id")
		return
	}

	switch {
	case parts[1] == "slots" && len(parts) == 2:
		s.handleSlots(w, r, barberID)
	case parts[1] == "schedule" && len(parts) == 2:
		s.handleSchedule(w, r, barberID)
	case parts[1] == "schedule" && len(parts) == 3 && parts[2] == "copy":
		s.handleScheduleCopy(w, r, barberID)
	case parts[1] == "breaks" && len(parts) == 2:
		s.handleBreaks(w, r, barberID)
	case parts[1] == "breaks" && len(parts) == 3:
		breakID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || breakID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid break id")
			return
		}
		s.handleBreakByID(w, r, barberID, breakID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request, barberID int64) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	if err := s.deps.Booking.ValidateAppointmentDate(date); err != nil {
		s.writeFailure(w, err)
		return
	}

	duration := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("duration_minutes")); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			writeError(w, http.StatusBadRequest, "invalid duration_minutes")
			return
		}
	}
	if duration == 0 {
		// Resolve from service_id when the caller did not fix a duration.
		probe := &models.Appointment{}
		if raw := strings.TrimSpace(r.URL.Query().Get("service_id")); raw != "" {
			serviceID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || serviceID <= 0 {
				writeError(w, http.StatusBadRequest, "invalid service_id")
				return
			}
			probe.ServiceID = serviceID
		}
		duration = s.deps.Availability.ResolveDuration(r.Context(), probe)
	}

	slots, err := s.deps.Availability.GetSlots(r.Context(), barberID, date, duration)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if slots == nil {
		// A closed or fully booked day is "no availability", which the
		// contract renders as an empty list, never null.
		slots = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"barber_id":        barberID,
		"date":             dateStr,
		"duration_minutes": duration,
		"slots":            slots,
	})
}

func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request, barberID int64) {
	metrics.IncHTTP("schedule")
	switch r.Method {
	case http.MethodGet:
		hours, breaks, err := s.deps.Schedule.WeekSchedule(r.Context(), barberID)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"working_hours": hours,
			"breaks":        breaks,
		})

	case http.MethodPut:
		var body struct {
			Weekday   int    `json:"weekday"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
			IsActive  *bool  `json:"is_active"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.Weekday < 0 || body.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "weekday must be 0..6")
			return
		}

		wh := &models.WorkingHour{
			BarberID:  barberID,
			Weekday:   body.Weekday,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
			IsActive:  true,
		}
		if body.IsActive != nil {
			wh.IsActive = *body.IsActive
		}
		if err := s.deps.Schedule.SetWorkingHours(r.Context(), wh); err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wh)

	case http.MethodPatch:
		var body struct {
			Weekday  int  `json:"weekday"`
			IsActive bool `json:"is_active"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.deps.Schedule.SetDayActive(r.Context(), barberID, body.Weekday, body.IsActive); err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"weekday": body.Weekday, "is_active": body.IsActive})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleScheduleCopy(w http.ResponseWriter, r *http.Request, barberID int64) {
	metrics.IncHTTP("schedule")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		FromWeekday int   `json:"from_weekday"`
		ToWeekdays  []int `json:"to_weekdays"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.ToWeekdays) == 0 {
		writeError(w, http.StatusBadRequest, "to_weekdays is required")
		return
	}

	if err := s.deps.Schedule.CopyDay(r.Context(), barberID, body.FromWeekday, body.ToWeekdays); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from_weekday": body.FromWeekday,
		"to_weekdays":  body.ToWeekdays,
	})
}

func (s *HTTPServer) handleBreaks(w http.ResponseWriter, r *http.Request, barberID int64) {
	metrics.IncHTTP("breaks")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Weekday   int    `json:"weekday"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Label     string `json:"label"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Weekday < 0 || body.Weekday > 6 {
		writeError(w, http.StatusBadRequest, "weekday must be 0..6")
		return
	}

	br := &models.Break{
		BarberID:  barberID,
		Weekday:   body.Weekday,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Label:     body.Label,
	}
	if err := s.deps.Schedule.AddBreak(r.Context(), br); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, br)
}

func (s *HTTPServer) handleBreakByID(w http.ResponseWriter, r *http.Request, barberID, breakID int64) {
	metrics.IncHTTP("breaks")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.deps.Schedule.RemoveBreak(r.Context(), barberID, breakID); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": breakID})
}

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")
	switch r.Method {
	case http.MethodGet:
		reference := strings.TrimSpace(r.URL.Query().Get("reference"))
		if reference == "" {
			writeError(w, http.StatusBadRequest, "reference is required")
			return
		}
		appt, err := s.deps.Repo.GetAppointmentByReference(r.Context(), reference)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)

	case http.MethodPost:
		var body struct {
			BarberID    int64               `json:"barber_id"`
			ClientName  string              `json:"client_name"`
			ClientPhone string              `json:"client_phone"`
			Date        string              `json:"date"`
			StartTime   string              `json:"start_time"`
			ServiceID   int64               `json:"service_id"`
			Services    models.ServiceLines `json:"services"`
			Comment     string              `json:"comment"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.BarberID <= 0 {
			writeError(w, http.StatusBadRequest, "barber_id is required")
			return
		}
		if strings.TrimSpace(body.ClientName) == "" {
			writeError(w, http.StatusBadRequest, "client_name is required")
			return
		}
		date, err := time.ParseInLocation(dateLayout, body.Date, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}

		appt := &models.Appointment{
			BarberID:    body.BarberID,
			ClientName:  strings.TrimSpace(body.ClientName),
			ClientPhone: strings.TrimSpace(body.ClientPhone),
			Date:        date,
			StartTime:   strings.TrimSpace(body.StartTime),
			ServiceID:   body.ServiceID,
			Services:    body.Services,
			Comment:     body.Comment,
		}
		if err := s.deps.Booking.CreateAppointment(r.Context(), appt); err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, appt)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleAppointmentByID serves /api/v1/appointments/{id} and
// /api/v1/appointments/{id}/status.
func (s *HTTPServer) handleAppointmentByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("appointments")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/appointments/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		appt, err := s.deps.Booking.GetAppointment(r.Context(), id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPatch:
		var body struct {
			Status  string `json:"status"`
			Version int64  `json:"version"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		switch body.Status {
		case models.StatusConfirmed:
			err = s.deps.Booking.ConfirmAppointment(r.Context(), id, body.Version)
		case models.StatusCancelled:
			err = s.deps.Booking.CancelAppointment(r.Context(), id, body.Version)
		case models.StatusCompleted:
			err = s.deps.Booking.CompleteAppointment(r.Context(), id, body.Version)
		default:
			writeError(w, http.StatusBadRequest, "status must be confirmed, cancelled or completed")
			return
		}
		if err != nil {
			s.writeFailure(w, err)
			return
		}

		appt, err := s.deps.Booking.GetAppointment(r.Context(), id)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.deps.Exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).
		AddDate(0, -models.DefaultExportRangeMonthsBefore, 0)
	endDate := startDate.AddDate(0, models.DefaultExportRangeMonthsBefore+models.DefaultExportRangeMonthsAfter, 0)

	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		startDate, err = time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
		endDate, err = time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
	}
	if endDate.Before(startDate) {
		writeError(w, http.StatusBadRequest, "end precedes start")
		return
	}

	path, err := s.deps.Exporter.ExportSchedule(r.Context(), startDate, endDate)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// writeFailure maps domain errors onto HTTP status codes.
func (s *HTTPServer) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrSlotTaken),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
