package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// DaysPerWeek columns in a week grid
const DaysPerWeek = 7

// DefaultGridSlots blank project rows a loaded week is padded to
const DefaultGridSlots = 5

// MaxHoursPerDay upper bound for one cell
const MaxHoursPerDay = 24

// ── week window ──

// WeekAnchor returns the Sunday on or before t, at midnight UTC
func WeekAnchor(t time.Time) time.Time {
	d := model.Day(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// ParseWeekStart parses a YYYY-MM-DD date and snaps it to its week anchor
func ParseWeekStart(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeekStart, s)
	}
	return WeekAnchor(d), nil
}

// WeekDates the seven calendar dates starting at anchor
func WeekDates(anchor time.Time) [DaysPerWeek]time.Time {
	var out [DaysPerWeek]time.Time
	for i := range out {
		out[i] = anchor.AddDate(0, 0, i)
	}
	return out
}

// ── grid ──

// GridSlot one project row of a week grid
type GridSlot struct {
	Project  string
	Hours    [DaysPerWeek]float64
	Statuses [DaysPerWeek]string
}

// WeekGrid wide form: project rows × day columns anchored on a Sunday
type WeekGrid struct {
	Anchor time.Time
	Slots  []GridSlot
}

// CellFact long form of one non-empty grid cell
type CellFact struct {
	Project string
	Date    time.Time
	Hours   float64
}

type cellKey struct {
	project string
	day     int
}

// Validate rejects cells of named slots holding more than MaxHoursPerDay.
// Blank slots are ignored since Flatten drops them.
func (g WeekGrid) Validate() error {
	for _, slot := range g.Slots {
		name := strings.TrimSpace(slot.Project)
		if name == "" {
			continue
		}
		for day, raw := range slot.Hours {
			if math.IsNaN(raw) || math.IsInf(raw, 0) || roundHours(raw) > MaxHoursPerDay {
				return fmt.Errorf("%w: %s on %s has %v",
					ErrHoursOutOfRange, name, g.Anchor.AddDate(0, 0, day).Format(model.DateLayout), raw)
			}
		}
	}
	return nil
}

// Flatten converts the grid into facts. Project names are trimmed; cells with
// a blank project or non-positive hours are dropped. When a project appears in
// several slots the later slot wins for each day. Output keeps
// first-appearance order.
func (g WeekGrid) Flatten() []CellFact {
	dates := WeekDates(g.Anchor)
	index := make(map[cellKey]int)
	var out []CellFact

	for _, slot := range g.Slots {
		name := strings.TrimSpace(slot.Project)
		if name == "" {
			continue
		}
		for day, raw := range slot.Hours {
			hours, ok := normalizeHours(raw)
			if !ok {
				continue
			}
			key := cellKey{project: name, day: day}
			if i, seen := index[key]; seen {
				out[i].Hours = hours
				continue
			}
			index[key] = len(out)
			out = append(out, CellFact{Project: name, Date: dates[day], Hours: hours})
		}
	}
	return out
}

// normalizeHours rounds to the stored precision; reports false for values that
// cannot become a fact
func normalizeHours(h float64) (float64, bool) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false
	}
	h = roundHours(h)
	if h <= 0 {
		return 0, false
	}
	return h, true
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// PivotWeek builds the grid for anchor from persisted facts. Facts outside the
// window are ignored. Rows are ordered by project name and padded with blank
// slots up to minSlots; projects beyond minSlots extend the grid.
func PivotWeek(anchor time.Time, facts []model.Timesheet, minSlots int) WeekGrid {
	end := anchor.AddDate(0, 0, DaysPerWeek)
	rows := make(map[string]*GridSlot)

	for i := range facts {
		f := &facts[i]
		d := model.Day(f.Date)
		if d.Before(anchor) || !d.Before(end) {
			continue
		}
		day := int(d.Sub(anchor).Hours() / 24)

		name := f.ProjectName()
		if name == "" {
			name = "project #" + strconv.FormatInt(f.ProjectID, 10)
		}
		slot, ok := rows[name]
		if !ok {
			slot = &GridSlot{Project: name}
			rows[name] = slot
		}
		slot.Hours[day] = roundHours(slot.Hours[day] + f.Hours)
		slot.Statuses[day] = f.Status
	}

	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)

	grid := WeekGrid{Anchor: anchor, Slots: make([]GridSlot, 0, max(len(names), minSlots))}
	for _, name := range names {
		grid.Slots = append(grid.Slots, *rows[name])
	}
	for len(grid.Slots) < minSlots {
		grid.Slots = append(grid.Slots, GridSlot{})
	}
	return grid
}

// DailyTotals column sums
func (g WeekGrid) DailyTotals() [DaysPerWeek]float64 {
	var out [DaysPerWeek]float64
	for _, slot := range g.Slots {
		for day, h := range slot.Hours {
			out[day] += h
		}
	}
	for day := range out {
		out[day] = roundHours(out[day])
	}
	return out
}
