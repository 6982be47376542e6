package consolidate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/internal/normalize"
	"tradelog-analyzer/pkg/errors"
)

func op(robot string, open time.Time, result string) models.Operation {
	d, _ := decimal.NewFromString(result)
	return models.Operation{Robot: robot, OpenTime: open, Result: d}
}

func day(hour, minute int) time.Time {
	return time.Date(2024, 2, 1, hour, minute, 0, 0, time.UTC)
}

func TestMerge(t *testing.T) {
	frames := []normalize.FrameResult{
		{
			Source:       "robot_b",
			ResultHeader: "Resultado",
			Dropped:      1,
			Operations: []models.Operation{
				op("robot_b", day(10, 30), "5"),
				op("robot_b", day(9, 0), "-2"),
			},
		},
		{
			Source:       "robot_a",
			ResultHeader: "Resultado",
			Dropped:      2,
			Operations: []models.Operation{
				op("robot_a", day(9, 45), "3"),
			},
		},
	}

	ds, err := Merge(frames)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if ds.Len() != 3 {
		t.Fatalf("expected 3 operations, got %d", ds.Len())
	}
	if ds.Dropped != 3 {
		t.Errorf("expected 3 dropped rows summed, got %d", ds.Dropped)
	}

	wantOrder := []string{"robot_b", "robot_a", "robot_b"}
	for i, want := range wantOrder {
		if ds.Operations[i].Robot != want {
			t.Errorf("operation %d: robot = %q, want %q", i, ds.Operations[i].Robot, want)
		}
	}
	for i := 1; i < ds.Len(); i++ {
		if ds.Operations[i].OpenTime.Before(ds.Operations[i-1].OpenTime) {
			t.Errorf("operations not sorted at index %d", i)
		}
	}

	wantRobots := []string{"robot_a", "robot_b"}
	if len(ds.Robots) != len(wantRobots) {
		t.Fatalf("robots = %v, want %v", ds.Robots, wantRobots)
	}
	for i, want := range wantRobots {
		if ds.Robots[i] != want {
			t.Errorf("robots[%d] = %q, want %q", i, ds.Robots[i], want)
		}
	}

	if ds.Range.From != day(9, 0) || ds.Range.To != day(10, 30) {
		t.Errorf("unexpected range %s", ds.Range)
	}
	if len(ds.Notes) != 0 {
		t.Errorf("expected no notes for uniform headers, got %v", ds.Notes)
	}
}

func TestMergeStableOrderForEqualTimestamps(t *testing.T) {
	same := day(10, 0)
	frames := []normalize.FrameResult{
		{Source: "first", Operations: []models.Operation{op("first", same, "1")}},
		{Source: "second", Operations: []models.Operation{op("second", same, "2")}},
		{Source: "third", Operations: []models.Operation{op("third", same, "3")}},
	}

	ds, err := Merge(frames)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if ds.Operations[i].Robot != want {
			t.Errorf("equal-timestamp order broken at %d: got %q, want %q", i, ds.Operations[i].Robot, want)
		}
	}
}

func TestMergeEmptyDataset(t *testing.T) {
	tests := []struct {
		name   string
		frames []normalize.FrameResult
	}{
		{
			name:   "No frames",
			frames: nil,
		},
		{
			name: "Frames with only dropped rows",
			frames: []normalize.FrameResult{
				{Source: "robot_a", Dropped: 4},
				{Source: "robot_b", Dropped: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(tt.frames)
			if err == nil {
				t.Fatal("expected empty dataset error")
			}
			if !errors.IsEmptyDataset(err) {
				t.Errorf("expected empty dataset error, got %v", err)
			}
		})
	}
}

func TestMergeSchemaDriftNote(t *testing.T) {
	frames := []normalize.FrameResult{
		{Source: "robot_a", ResultHeader: "Resultado", Operations: []models.Operation{op("robot_a", day(9, 0), "1")}},
		{Source: "robot_b", ResultHeader: "Profit", Operations: []models.Operation{op("robot_b", day(10, 0), "2")}},
	}

	ds, err := Merge(frames)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if len(ds.Notes) != 1 {
		t.Fatalf("expected 1 schema-drift note, got %v", ds.Notes)
	}
	// Drift never drops records.
	if ds.Len() != 2 {
		t.Errorf("expected both operations kept, got %d", ds.Len())
	}
}
