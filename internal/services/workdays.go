package services

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"
)

// WorkdayService answers business-day questions for due-date analytics.
// The country code selects the holiday calendar; "NONE" counts only
// weekends as non-working days.
type WorkdayService struct {
	calendars map[string]*cal.BusinessCalendar
}

func NewWorkdayService() *WorkdayService {
	s := &WorkdayService{
		calendars: make(map[string]*cal.BusinessCalendar),
	}
	s.calendars["US"] = newCalendar("United States", us.Holidays...)
	s.calendars["GB"] = newCalendar("United Kingdom", gb.Holidays...)
	s.calendars["DE"] = newCalendar("Germany", de.Holidays...)
	s.calendars["FR"] = newCalendar("France", fr.Holidays...)
	s.calendars["JP"] = newCalendar("Japan", jp.Holidays...)
	s.calendars["AU"] = newCalendar("Australia", au.HolidaysNSW...)
	s.calendars["CA"] = newCalendar("Canada", ca.Holidays...)
	return s
}

func newCalendar(name string, holidays ...*cal.Holiday) *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.Name = name
	c.AddHoliday(holidays...)
	return c
}

func (s *WorkdayService) IsWorkday(t time.Time, countryCode string) bool {
	c, ok := s.calendars[countryCode]
	if !ok {
		return !cal.IsWeekend(t)
	}
	return c.IsWorkday(t)
}

// AddBusinessDays returns the date n business days after t.
func (s *WorkdayService) AddBusinessDays(t time.Time, n int, countryCode string) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if s.IsWorkday(t, countryCode) {
			n--
		}
	}
	return t
}

// BusinessDaysBetween counts working days in (from, to]. Returns 0 when
// to is not after from.
func (s *WorkdayService) BusinessDaysBetween(from, to time.Time, countryCode string) int {
	if !to.After(from) {
		return 0
	}
	days := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if s.IsWorkday(d, countryCode) {
			days++
		}
	}
	return days
}

func (s *WorkdayService) SupportedCountries() []string {
	codes := make([]string, 0, len(s.calendars)+1)
	for code := range s.calendars {
		codes = append(codes, code)
	}
	codes = append(codes, "NONE")
	return codes
}
