package consolidate

import (
	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/pkg/errors"
)

// Window is the operating-hours filter: [StartHour:00, EndHour:00), compared
// against the time-of-day component only, irrespective of date.
type Window struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// DefaultWindow returns the standard trading-hours window, 08:00-18:00.
func DefaultWindow() Window {
	return Window{StartHour: 8, EndHour: 18}
}

// Validate checks the window bounds.
func (w Window) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return errors.ConfigError(errors.CodeInvalidConfig, "window start hour", nil).
			WithContext("start_hour", w.StartHour)
	}
	if w.EndHour < 1 || w.EndHour > 24 {
		return errors.ConfigError(errors.CodeInvalidConfig, "window end hour", nil).
			WithContext("end_hour", w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		return errors.ConfigError(errors.CodeInvalidConfig, "window start must precede end", nil)
	}
	return nil
}

// Contains reports whether a minute of day falls inside the window.
// Lower bound inclusive, upper bound exclusive.
func (w Window) Contains(minuteOfDay int) bool {
	return minuteOfDay >= w.StartHour*60 && minuteOfDay < w.EndHour*60
}

// FilterWindow returns a fresh dataset restricted to operations whose
// time-of-day falls inside the window. The input is not mutated; robot set
// and date range are recomputed over the filtered subset. An empty result is
// a valid outcome, not an error; downstream consumers report "no data in
// window" instead of failing.
func FilterWindow(ds *models.Dataset, w Window) *models.Dataset {
	out := &models.Dataset{
		Operations: make([]models.Operation, 0, len(ds.Operations)),
		Dropped:    ds.Dropped,
		Notes:      append([]string(nil), ds.Notes...),
	}

	for i := range ds.Operations {
		if w.Contains(ds.Operations[i].MinuteOfDay()) {
			out.Operations = append(out.Operations, ds.Operations[i])
		}
	}

	finalize(out)
	return out
}
