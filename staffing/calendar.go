package staffing

import (
	"context"

	"github.com/warp/staffing-engine/generic"
)

// =============================================================================
// WORKING CALENDAR - Is a given day bookable at a given location?
// =============================================================================

// ReasonWeekend is reported by NonWorkingReason for Saturdays and Sundays.
const ReasonWeekend = "weekend"

// WorkingCalendar answers working-day questions from a fixed set of events.
// It is immutable once built; load a fresh one to see new events.
type WorkingCalendar struct {
	events map[generic.Date][]generic.CalendarEvent
}

func NewWorkingCalendar(events []generic.CalendarEvent) *WorkingCalendar {
	byDate := make(map[generic.Date][]generic.CalendarEvent, len(events))
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return &WorkingCalendar{events: byDate}
}

// LoadCalendar reads the events dated inside r.
func LoadCalendar(ctx context.Context, store generic.CalendarStore, r generic.DateRange) (*WorkingCalendar, error) {
	events, err := store.ListCalendarEvents(ctx, r)
	if err != nil {
		return nil, err
	}
	return NewWorkingCalendar(events), nil
}

// IsWorkingDay is false on weekends, on NATIONAL_HOLIDAY and
// COMPANY_CLOSURE dates, and on LOCAL_HOLIDAY dates matching location.
func (c *WorkingCalendar) IsWorkingDay(date generic.Date, location generic.Location) bool {
	return c.NonWorkingReason(date, location) == ""
}

// NonWorkingReason names the first rule that blocks date, or "" for a
// working day.
func (c *WorkingCalendar) NonWorkingReason(date generic.Date, location generic.Location) string {
	if date.IsWeekend() {
		return ReasonWeekend
	}
	for _, e := range c.events[date] {
		if e.AppliesTo(location) {
			return string(e.Type)
		}
	}
	return ""
}

// WorkingDays lists the working days of r at location in date order.
func (c *WorkingCalendar) WorkingDays(r generic.DateRange, location generic.Location) []generic.Date {
	var days []generic.Date
	for _, d := range r.Days() {
		if c.IsWorkingDay(d, location) {
			days = append(days, d)
		}
	}
	return days
}

// ValidateCalendarEvent checks the event type and the location rule.
func ValidateCalendarEvent(e generic.CalendarEvent) error {
	if !e.Type.Valid() {
		return &calendarEventError{msg: "unknown event type " + string(e.Type)}
	}
	if e.Date.IsZero() {
		return &calendarEventError{msg: "event date is required"}
	}
	if e.Type == generic.LocalHoliday && e.Location == "" {
		return &calendarEventError{msg: "LOCAL_HOLIDAY requires a location"}
	}
	return nil
}

type calendarEventError struct {
	msg string
}

func (e *calendarEventError) Error() string { return "invalid calendar event: " + e.msg }
func (e *calendarEventError) Unwrap() error { return generic.ErrInvalidCalendarEvent }
