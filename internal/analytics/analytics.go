// Package analytics derives the aggregate metrics consumed by reporting: the
// total result, per-robot cumulative series, minute-of-day buckets, and the
// best/worst intervals of the trading day.
//
// Every computation here is a pure, deterministic function of the dataset:
// identical input yields identical metrics, which report reproducibility
// depends on.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradelog-analyzer/internal/consolidate"
	"tradelog-analyzer/internal/models"
	"tradelog-analyzer/pkg/errors"
)

// Config controls aggregation granularity and the day range scanned for the
// best contiguous interval.
type Config struct {
	// BucketMinutes is the minute-of-day bucket granularity.
	BucketMinutes int `json:"bucket_minutes"`
	// Window bounds the best-interval scan; buckets outside it hold no
	// operations anyway once the window filter ran.
	Window consolidate.Window `json:"window"`
}

// DefaultConfig returns one-minute buckets over the default trading window.
func DefaultConfig() *Config {
	return &Config{
		BucketMinutes: 1,
		Window:        consolidate.DefaultWindow(),
	}
}

// Validate checks the aggregation configuration.
func (c *Config) Validate() error {
	if c.BucketMinutes < 1 || c.BucketMinutes > 24*60 {
		return errors.ConfigError(errors.CodeInvalidConfig, "bucket minutes", nil).
			WithContext("bucket_minutes", c.BucketMinutes)
	}
	return c.Window.Validate()
}

// CumulativePoint is one step of a robot's running-sum curve.
type CumulativePoint struct {
	Time  time.Time       `json:"time"`
	Total decimal.Decimal `json:"total"`
}

// MinuteBucket is the summed result of all operations opened inside one
// minute-of-day bucket, across robots and dates.
type MinuteBucket struct {
	Minute int             `json:"minute"`
	Total  decimal.Decimal `json:"total"`
}

// Clock renders the bucket's start as HH:MM.
func (b MinuteBucket) Clock() string {
	return MinuteToClock(b.Minute)
}

// Interval is a contiguous minute-of-day range with its accumulated gain.
type Interval struct {
	StartMinute int             `json:"start_minute"`
	EndMinute   int             `json:"end_minute"`
	Gain        decimal.Decimal `json:"gain"`
}

// String renders the interval as "HH:MM-HH:MM".
func (iv Interval) String() string {
	return fmt.Sprintf("%s-%s", MinuteToClock(iv.StartMinute), MinuteToClock(iv.EndMinute))
}

// Metrics is the derived, read-only view over a consolidated dataset.
type Metrics struct {
	Total       decimal.Decimal            `json:"total"`
	RobotTotals map[string]decimal.Decimal `json:"robot_totals"`

	// Cumulative holds, per robot, the chronological running sum of its
	// results.
	Cumulative map[string][]CumulativePoint `json:"cumulative"`

	// Buckets lists the non-empty minute-of-day buckets in ascending
	// minute order.
	Buckets []MinuteBucket `json:"buckets"`

	// Best and Worst are the single buckets with the highest and lowest
	// aggregated result; nil when the dataset is empty.
	Best  *MinuteBucket `json:"best,omitempty"`
	Worst *MinuteBucket `json:"worst,omitempty"`

	// BestInterval is the contiguous minute range with the highest
	// cumulative result; nil when no interval sums positive.
	BestInterval *Interval `json:"best_interval,omitempty"`

	// RobotIntervals holds each robot's own best interval, for robots
	// that have one.
	RobotIntervals map[string]Interval `json:"robot_intervals,omitempty"`

	Operations       int `json:"operations"`
	WithSpecificTime int `json:"with_specific_time"`
	DateOnly         int `json:"date_only"`
}

// Compute derives the aggregate metrics of a dataset. An empty dataset
// yields empty metrics, never an error: "no data in window" is a valid
// reporting outcome.
func Compute(ds *models.Dataset, cfg *Config) *Metrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	m := &Metrics{
		Total:       decimal.Zero,
		RobotTotals: make(map[string]decimal.Decimal),
		Cumulative:  make(map[string][]CumulativePoint),
		Operations:  ds.Len(),
	}

	buckets := make(map[int]decimal.Decimal)
	for i := range ds.Operations {
		op := &ds.Operations[i]

		m.Total = m.Total.Add(op.Result)
		m.RobotTotals[op.Robot] = m.RobotTotals[op.Robot].Add(op.Result)

		running := op.Result
		if points := m.Cumulative[op.Robot]; len(points) > 0 {
			running = points[len(points)-1].Total.Add(op.Result)
		}
		m.Cumulative[op.Robot] = append(m.Cumulative[op.Robot], CumulativePoint{
			Time:  op.OpenTime,
			Total: running,
		})

		if op.HasSpecificTime() {
			m.WithSpecificTime++
		} else {
			m.DateOnly++
		}

		bucket := bucketOf(op.MinuteOfDay(), cfg.BucketMinutes)
		buckets[bucket] = buckets[bucket].Add(op.Result)
	}

	minutes := make([]int, 0, len(buckets))
	for minute := range buckets {
		minutes = append(minutes, minute)
	}
	sort.Ints(minutes)
	for _, minute := range minutes {
		m.Buckets = append(m.Buckets, MinuteBucket{Minute: minute, Total: buckets[minute]})
	}

	for i := range m.Buckets {
		b := m.Buckets[i]
		if m.Best == nil || b.Total.GreaterThan(m.Best.Total) {
			best := b
			m.Best = &best
		}
		if m.Worst == nil || b.Total.LessThan(m.Worst.Total) {
			worst := b
			m.Worst = &worst
		}
	}

	m.BestInterval = bestInterval(buckets, cfg)

	robotIntervals := make(map[string]Interval)
	for _, robot := range ds.Robots {
		robotBuckets := make(map[int]decimal.Decimal)
		for i := range ds.Operations {
			op := &ds.Operations[i]
			if op.Robot != robot {
				continue
			}
			bucket := bucketOf(op.MinuteOfDay(), cfg.BucketMinutes)
			robotBuckets[bucket] = robotBuckets[bucket].Add(op.Result)
		}
		if iv := bestInterval(robotBuckets, cfg); iv != nil {
			robotIntervals[robot] = *iv
		}
	}
	if len(robotIntervals) > 0 {
		m.RobotIntervals = robotIntervals
	}

	return m
}

func bucketOf(minuteOfDay, granularity int) int {
	if granularity <= 1 {
		return minuteOfDay
	}
	return (minuteOfDay / granularity) * granularity
}

// bestInterval finds the contiguous bucket range with the highest cumulative
// result, scanning the window densely (missing buckets count as zero) with a
// Kadane-style running sum that resets when it drops below zero. An interval
// has to sum strictly positive to be reported.
func bestInterval(buckets map[int]decimal.Decimal, cfg *Config) *Interval {
	if len(buckets) == 0 {
		return nil
	}

	start := cfg.Window.StartHour * 60
	end := cfg.Window.EndHour*60 - 1

	var best *Interval
	maxSum := decimal.Zero
	current := decimal.Zero
	start = bucketOf(start, cfg.BucketMinutes)
	currentStart := start

	for minute := start; minute <= end; minute += cfg.BucketMinutes {
		current = current.Add(buckets[minute])

		if current.GreaterThan(maxSum) {
			maxSum = current
			best = &Interval{StartMinute: currentStart, EndMinute: minute, Gain: maxSum}
		}

		// A negative prefix cannot help any later interval; restart from
		// the next bucket.
		if current.IsNegative() {
			current = decimal.Zero
			currentStart = minute + cfg.BucketMinutes
		}
	}

	return best
}

// MinuteToClock converts minutes since midnight to "HH:MM".
func MinuteToClock(minute int) string {
	if minute < 0 || minute >= 24*60 {
		return "N/A"
	}
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
