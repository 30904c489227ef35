package worker

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/database"
	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"

	"github.com/rs/zerolog"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)

	appt := &models.Appointment{
		ID:         1,
		Reference:  "ref-1",
		BarberID:   1,
		ClientName: "Ana",
		Date:       time.Now(),
		StartTime:  "10:00",
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskAppend, appt.ID, appt, ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sheets.upsertCalls != 1 {
		t.Fatalf("expected upsert call, got %d", sheets.upsertCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	appt := &models.Appointment{ID: 2, Reference: "ref-2", BarberID: 1, ClientName: "Bia", Date: time.Now(), StartTime: "11:00", Status: models.StatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskAppend, appt.ID, appt, ""); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("fatal")}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 1}, nil)

	appt := &models.Appointment{ID: 3, Reference: "ref-3", BarberID: 1, ClientName: "Caio", Date: time.Now(), StartTime: "12:00", Status: models.StatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}

	ctx := context.Background()
	worker.EnqueueTask(ctx, TaskAppend, appt.ID, appt, "")
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestSheetsWorker_EnqueueSyncSchedule(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3}, nil)

	ctx := context.Background()
	start := time.Now()
	end := start.AddDate(0, 0, 7)

	err := worker.EnqueueSyncSchedule(ctx, start, end)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, _ := db.GetPendingSyncTasks(ctx, 10)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].TaskType != TaskSyncSchedule {
		t.Fatalf("expected TaskSyncSchedule, got %s", tasks[0].TaskType)
	}

	if err := worker.EnqueueSyncSchedule(ctx, end, start); err == nil {
		t.Fatalf("expected error for inverted period")
	}
}

func TestSheetsWorker_HandleSheetTask(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{MaxRetries: 3}, nil)

	ctx := context.Background()

	t.Run("Append", func(t *testing.T) {
		appt := &models.Appointment{ID: 1, ClientName: "Ana"}
		err := worker.handleSheetTask(ctx, TaskAppend, sheetTaskPayload{Appointment: appt})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.upsertCalls != 1 {
			t.Fatalf("expected 1 upsert call, got %d", sheets.upsertCalls)
		}
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		err := worker.handleSheetTask(ctx, TaskUpdateStatus, sheetTaskPayload{AppointmentID: 123, Status: models.StatusConfirmed})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.statusCalls != 1 {
			t.Fatalf("expected 1 status call, got %d", sheets.statusCalls)
		}
	})

	t.Run("SyncSchedule", func(t *testing.T) {
		payload := sheetTaskPayload{StartDate: "2025-06-02", EndDate: "2025-06-08"}
		err := worker.handleSheetTask(ctx, TaskSyncSchedule, payload)
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.scheduleCalls != 1 {
			t.Fatalf("expected 1 schedule call, got %d", sheets.scheduleCalls)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := worker.handleSheetTask(ctx, "mystery", sheetTaskPayload{})
		if err == nil {
			t.Fatalf("expected error for unknown task type")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

func TestSheetsWorker_EnqueueTask(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := NewSheetsWorker(db, sheets, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	appt := &models.Appointment{ID: 1, ClientName: "test"}

	t.Run("ValidTask", func(t *testing.T) {
		err := worker.EnqueueTask(ctx, TaskAppend, 1, appt, "")
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	})

	t.Run("InvalidTaskType", func(t *testing.T) {
		err := worker.EnqueueTask(ctx, "", 1, appt, "")
		if err == nil {
			t.Fatalf("expected error for empty task type")
		}
	})

	t.Run("InvalidAppointmentID", func(t *testing.T) {
		err := worker.EnqueueTask(ctx, TaskAppend, 0, nil, "")
		if err == nil {
			t.Fatalf("expected error for missing appointment id")
		}
	})
}

func TestSheetsWorker_DecodePayload(t *testing.T) {
	worker := NewSheetsWorker(nil, nil, nil, RetryPolicy{}, nil)

	t.Run("ValidPayload", func(t *testing.T) {
		payload := `{"appointment_id":123,"status":"confirmed"}`
		decoded, err := worker.decodePayload(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.AppointmentID != 123 || decoded.Status != "confirmed" {
			t.Fatalf("unexpected decoded payload: %+v", decoded)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		payload := `invalid json`
		_, err := worker.decodePayload(payload)
		if err == nil {
			t.Fatalf("expected error for invalid json")
		}
	})
}

// Helpers

type fakeSheets struct {
	err           error
	upsertCalls   int
	statusCalls   int
	scheduleCalls int
}

func (f *fakeSheets) UpsertAppointment(ctx context.Context, appt *models.Appointment) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeSheets) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	f.statusCalls++
	return f.err
}

func (f *fakeSheets) UpdateScheduleSheet(ctx context.Context, startDate, endDate time.Time, dailyAppointments map[string][]models.Appointment, barbers []models.Barber) error {
	f.scheduleCalls++
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
