package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"tradelog-analyzer/pkg/errors"
)

func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for sheet, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("SetSheetName failed: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				t.Fatalf("NewSheet failed: %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName failed: %v", err)
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				t.Fatalf("SetSheetRow failed: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func TestReadWorkbookFrom(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"robot_alpha": {
			{"Abertura", "Resultado"},
			{"01/02/2024 09:15:00", "1.234,56"},
			{"01/02/2024 10:30:00", "-0,25"},
		},
	})

	frames, err := ReadWorkbookFrom(buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("ReadWorkbookFrom failed: %v", err)
	}

	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	frame := frames[0]
	if frame.Source != "robot_alpha" {
		t.Errorf("source = %q, want robot_alpha", frame.Source)
	}
	if len(frame.Headers) != 2 || frame.Headers[1] != "Resultado" {
		t.Errorf("unexpected headers %v", frame.Headers)
	}
	if len(frame.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(frame.Rows))
	}
}

func TestReadWorkbookFromMultipleSheets(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"robot_alpha": {
			{"Abertura", "Resultado"},
			{"01/02/2024 09:15:00", "1,00"},
		},
		"robot_beta": {
			{"Abertura", "Resultado"},
			{"01/02/2024 11:00:00", "2,00"},
		},
		"empty_sheet": {
			{"Abertura", "Resultado"},
		},
	})

	frames, err := ReadWorkbookFrom(buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("ReadWorkbookFrom failed: %v", err)
	}

	// The header-only sheet is skipped.
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	sources := map[string]bool{}
	for _, frame := range frames {
		sources[frame.Source] = true
	}
	if !sources["robot_alpha"] || !sources["robot_beta"] {
		t.Errorf("unexpected sources %v", sources)
	}
}

func TestReadWorkbookFromNoData(t *testing.T) {
	buf := buildWorkbook(t, map[string][][]string{
		"empty": {{"Abertura", "Resultado"}},
	})

	_, err := ReadWorkbookFrom(buf, "upload.xlsx")
	if err == nil {
		t.Fatal("expected error for a workbook with no data rows")
	}
	if !errors.IsCode(err, errors.CodeFileCorrupted) {
		t.Errorf("expected file corrupted code, got %v", err)
	}
}

func TestReadWorkbookFromGarbage(t *testing.T) {
	_, err := ReadWorkbookFrom(strings.NewReader("not an xlsx file"), "upload.xlsx")
	if err == nil {
		t.Fatal("expected error for a non-xlsx stream")
	}
	if !errors.IsCode(err, errors.CodeFileCorrupted) {
		t.Errorf("expected file corrupted code, got %v", err)
	}
}

func TestReadWorkbookMissingFile(t *testing.T) {
	_, err := ReadWorkbook("/nonexistent/operations.xlsx")
	if err == nil {
		t.Fatal("expected error for a missing workbook")
	}
	if !errors.IsCode(err, errors.CodeFileNotFound) {
		t.Errorf("expected file not found code, got %v", err)
	}
}
