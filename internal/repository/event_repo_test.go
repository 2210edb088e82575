package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"lm500_emulator/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMock(t *testing.T) (sqlmock.Sqlmock, *EventSQLite, *SampleSQLite, *OperatorRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return mock, NewEventSQLite(db), NewSampleSQLite(db), NewOperatorRepository(db)
}

var eventCols = []string{"id", "occurred_at", "type", "channel", "message", "meta"}

func TestEventAppend_FillsDefaults(t *testing.T) {
	t.Parallel()
	mock, repo, _, _ := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "FILL_REQUEST", 2, "fill requested", `{"source":"tcp"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.FillEvent{
		Type:        " fill_request ",
		Channel:     2,
		Description: "fill requested",
		Metadata:    map[string]string{"source": "tcp"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventAppend_NilMetadataAndDBError(t *testing.T) {
	t.Parallel()
	mock, repo, _, _ := newMock(t)

	mock.ExpectExec("INSERT INTO fill_events").
		WithArgs("id-1", sqlmock.AnyArg(), "TRANSITION", 0, "idle -> chan1", nil).
		WillReturnError(errors.New("disk full"))

	err := repo.Append(ctx(t), models.FillEvent{
		EventID:     "id-1",
		OccurredAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:        models.EventTransition,
		Description: "idle -> chan1",
	})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestEventAppend_BadMetadata(t *testing.T) {
	t.Parallel()
	_, repo, _, _ := newMock(t)

	err := repo.Append(ctx(t), models.FillEvent{Type: "x", Metadata: make(chan int)})
	if err == nil || !strings.Contains(err.Error(), "marshal") {
		t.Fatalf("expected marshal error, got %v", err)
	}
}

func TestEventList_NoFilters(t *testing.T) {
	t.Parallel()
	mock, repo, _, _ := newMock(t)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"from": "idle"})
	rows := sqlmock.NewRows(eventCols).
		AddRow("a", now, "TRANSITION", 0, "idle -> chan1", string(js)).
		AddRow("b", now.Add(time.Second), "FILL_OFF", 1, "channel 1 off", nil).
		AddRow("c", now.Add(2*time.Second), "BACKDOOR", 0, "raw", "not-json")

	mock.ExpectQuery(regexp.QuoteMeta(selectEventSQL + " ORDER BY occurred_at ASC")).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 events, got %d", len(got))
	}
	if m, ok := got[0].Metadata.(map[string]any); !ok || m["from"] != "idle" {
		t.Fatalf("metadata not decoded: %#v", got[0].Metadata)
	}
	if got[1].Metadata != nil || got[1].Channel != 1 {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
	if got[2].Metadata != "not-json" {
		t.Fatalf("malformed metadata should stay raw: %#v", got[2].Metadata)
	}
}

func TestEventList_AllFilters(t *testing.T) {
	t.Parallel()
	mock, repo, _, _ := newMock(t)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventSQL +
		" WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? AND channel = ? ORDER BY occurred_at ASC")).
		WithArgs(from, to, "FILL_TIMEOUT", 2).
		WillReturnRows(sqlmock.NewRows(eventCols))

	got, err := repo.List(ctx(t), from, to, "fill_timeout", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want no events, got %d", len(got))
	}
}

func TestEventList_QueryError(t *testing.T) {
	t.Parallel()
	mock, repo, _, _ := newMock(t)

	mock.ExpectQuery("SELECT id, occurred_at").WillReturnError(errors.New("locked"))

	if _, err := repo.List(ctx(t), time.Time{}, time.Time{}, "", 0); err == nil {
		t.Fatal("expected error")
	}
}
