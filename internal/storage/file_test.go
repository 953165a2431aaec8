package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"remindbot/internal/remind"
	logx "remindbot/pkg/logx"
)

func TestFileBackendRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reminders.json")
	b, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer b.Close()

	ctx := context.Background()

	end := remind.Date{Year: 2026, Month: time.March, Day: 1}
	daily, err := remind.NewRecurring("water plants", remind.Daily, remind.TimeOfDay{Hour: 9, Minute: 0},
		remind.Date{Year: 2026, Month: time.January, Day: 1}, &end)
	if err != nil {
		t.Fatalf("NewRecurring error: %v", err)
	}
	oneOff, err := remind.NewOneOff("dentist", remind.DateTime{
		Date: remind.Date{Year: 2026, Month: time.February, Day: 15},
		Time: remind.TimeOfDay{Hour: 14, Minute: 30},
	})
	if err != nil {
		t.Fatalf("NewOneOff error: %v", err)
	}
	oneOff.Sent = true

	in := remind.UserReminderSet{
		"12345": {daily, oneOff},
		"67890": {},
	}
	if err := b.Save(ctx, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	got := out["12345"]
	if len(got) != 2 {
		t.Fatalf("got %d reminders, want 2", len(got))
	}
	if got[0].Kind != remind.KindRecurring || got[0].Task != "water plants" ||
		got[0].Frequency != remind.Daily || got[0].TimeOfDay != (remind.TimeOfDay{Hour: 9}) {
		t.Fatalf("recurring mismatch: %+v", got[0])
	}
	if got[0].EndDate == nil || *got[0].EndDate != end {
		t.Fatalf("end date mismatch: %+v", got[0].EndDate)
	}
	if got[1].Kind != remind.KindOneOff || !got[1].Sent || got[1].At.String() != "2026-02-15 14:30" {
		t.Fatalf("one-off mismatch: %+v", got[1])
	}
}

func TestFileBackendMissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing.json")
	b, err := Open(Config{Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	set, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %d users", len(set))
	}
}

func TestRecordEncodeDecode(t *testing.T) {
	t.Parallel()
	r, _ := remind.NewRecurring("x", remind.Weekly, remind.TimeOfDay{Hour: 7, Minute: 45},
		remind.Date{Year: 2026, Month: time.June, Day: 8}, nil)
	rec := encodeRecord(r)
	if rec.Frequency != "Weekly" || rec.Time != "07:45" || rec.StartDate != "2026-06-08" ||
		rec.EndDate != nil || rec.DateTime != "" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	back, err := decodeRecord(rec)
	if err != nil {
		t.Fatalf("decodeRecord error: %v", err)
	}
	if back != r {
		t.Fatalf("round trip mismatch: %+v != %+v", back, r)
	}
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		rec  record
	}{
		{"bad datetime", record{Task: "x", DateTime: "soon"}},
		{"bad time", record{Task: "x", Frequency: "Daily", Time: "25:00", StartDate: "2026-01-01"}},
		{"bad frequency", record{Task: "x", Frequency: "Hourly", Time: "09:00", StartDate: "2026-01-01"}},
		{"empty task", record{Task: "", Frequency: "Daily", Time: "09:00", StartDate: "2026-01-01"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeRecord(tt.rec); err == nil {
				t.Fatalf("decodeRecord(%+v) accepted", tt.rec)
			}
		})
	}
}
