package schedule

import (
	"studyflow-service/internal/app/models"
	"time"
)

// CyclePoint is one (cycle, dateOfIssue) candidate of a definition's schedule.
type CyclePoint struct {
	Cycle       int
	DateOfIssue time.Time
}

// Calculator turns a questionnaire definition and an anchor date into the
// ordered sequence of cycle points. It is a total, deterministic function:
// the same definition and anchor always yield the same cycle-to-date mapping,
// which is what makes reconciliation idempotent.
type Calculator struct {
	lookAheadCycles int
}

func NewCalculator(lookAheadCycles int) *Calculator {
	if lookAheadCycles < 0 {
		lookAheadCycles = 0
	}
	return &Calculator{lookAheadCycles: lookAheadCycles}
}

// Calculate returns every cycle point of the definition's full window.
// The anchor is the proband's first login for per-proband schedules, or the
// definition's creation date for proband-independent ones.
func (c *Calculator) Calculate(def *models.QuestionnaireDefinition, anchor time.Time) []CyclePoint {
	switch def.CycleUnit {
	case models.CycleUnitOnce:
		date := anchor.AddDate(0, 0, def.ActivateAfterDays)
		return []CyclePoint{{Cycle: 1, DateOfIssue: shiftToWeekday(date, def.NotificationWeekday)}}
	case models.CycleUnitDate:
		if def.ActivateAtDate == nil {
			return nil
		}
		return []CyclePoint{{Cycle: 1, DateOfIssue: shiftToWeekday(*def.ActivateAtDate, def.NotificationWeekday)}}
	case models.CycleUnitSpontan:
		// One open instance at a time; appending further cycles is
		// event-driven in the reconciler, not computed here.
		return []CyclePoint{{Cycle: 1, DateOfIssue: anchor}}
	case models.CycleUnitDay, models.CycleUnitWeek, models.CycleUnitMonth:
		return c.calculatePeriodic(def, anchor)
	case models.CycleUnitHour:
		return c.calculateHourly(def, anchor)
	default:
		return nil
	}
}

// TargetSet bounds Calculate to the cycles the reconciler should materialize
// now: everything already due plus a fixed look-ahead for periodic units.
// Hourly schedules are pre-materialized over their whole window because each
// day's points arrive too quickly for event-driven creation.
func (c *Calculator) TargetSet(def *models.QuestionnaireDefinition, anchor, now time.Time) []CyclePoint {
	points := c.Calculate(def, anchor)
	if def.CycleUnit == models.CycleUnitHour {
		return points
	}

	bounded := make([]CyclePoint, 0, len(points))
	ahead := 0
	for _, point := range points {
		if !point.DateOfIssue.After(now) {
			bounded = append(bounded, point)
			continue
		}
		if ahead >= c.lookAheadCycles {
			break
		}
		ahead++
		bounded = append(bounded, point)
	}
	return bounded
}

func (c *Calculator) calculatePeriodic(def *models.QuestionnaireDefinition, anchor time.Time) []CyclePoint {
	if def.CycleAmount <= 0 {
		return nil
	}

	first := anchor.AddDate(0, 0, def.ActivateAfterDays)
	// The window end is a calendar-day bound, not a duration, so a DST
	// transition inside the window cannot shave off the last cycle.
	windowEnd := first.AddDate(0, 0, def.DeactivateAfterDays)

	var points []CyclePoint
	for i := 0; ; i++ {
		var date time.Time
		switch def.CycleUnit {
		case models.CycleUnitDay:
			date = first.AddDate(0, 0, i*def.CycleAmount)
		case models.CycleUnitWeek:
			date = first.AddDate(0, 0, i*def.CycleAmount*7)
		case models.CycleUnitMonth:
			date = first.AddDate(0, i*def.CycleAmount, 0)
		}
		if date.After(windowEnd) {
			break
		}
		points = append(points, CyclePoint{
			Cycle:       i + 1,
			DateOfIssue: shiftToWeekday(date, def.NotificationWeekday),
		})
	}
	return points
}

// calculateHourly materializes perDay points per calendar day starting at
// firstHour, stepped by amount hours, over deactivateAfterDays days. The
// notification weekday does not apply to hourly schedules.
func (c *Calculator) calculateHourly(def *models.QuestionnaireDefinition, anchor time.Time) []CyclePoint {
	if def.CycleAmount <= 0 || def.CyclePerDay <= 0 {
		return nil
	}

	start := anchor.AddDate(0, 0, def.ActivateAfterDays)
	firstDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var points []CyclePoint
	cycle := 1
	for day := 0; day <= def.DeactivateAfterDays; day++ {
		base := firstDay.AddDate(0, 0, day)
		for slot := 0; slot < def.CyclePerDay; slot++ {
			// time.Date normalizes an overflowing hour into the next day.
			date := time.Date(base.Year(), base.Month(), base.Day(),
				def.CycleFirstHour+slot*def.CycleAmount, 0, 0, 0, base.Location())
			points = append(points, CyclePoint{Cycle: cycle, DateOfIssue: date})
			cycle++
		}
	}
	return points
}

// shiftToWeekday moves a date forward to the next occurrence of the wanted
// weekday. A date already on that weekday is never moved.
func shiftToWeekday(date time.Time, weekday *time.Weekday) time.Time {
	if weekday == nil {
		return date
	}
	offset := (int(*weekday) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}
