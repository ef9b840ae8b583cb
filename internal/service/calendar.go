package service

import (
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
)

// ── iCalendar feed ──────────────────────────────────────────
//
// One all-day VEVENT per timesheet fact. UIDs derive from the fact id so a
// subscribed client replaces events instead of duplicating them.
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//Volunteer Portal//Timesheets//EN"

// BuildHoursCalendar renders facts as an iCalendar; stamp is the DTSTAMP of
// every event
func BuildHoursCalendar(volunteerCode string, facts []model.Timesheet, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName(calendarName(volunteerCode))

	stamp = stamp.UTC()
	for i := range facts {
		f := &facts[i]
		day := model.Day(f.Date)

		event := cal.AddEvent("timesheet-" + strconv.FormatInt(f.ID, 10) + "@volunteer-portal")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s: %sh", eventProject(f), strconv.FormatFloat(f.Hours, 'f', -1, 64)))
		event.SetDescription(fmt.Sprintf("Status: %s", f.Status))
		if f.Status == model.StatusApproved {
			event.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}
	return cal
}

func calendarName(volunteerCode string) string {
	if volunteerCode == "" {
		return "Volunteer hours"
	}
	return "Volunteer hours " + volunteerCode
}

func eventProject(f *model.Timesheet) string {
	if name := f.ProjectName(); name != "" {
		return name
	}
	return "Project " + strconv.FormatInt(f.ProjectID, 10)
}
