// Package cftime decodes numeric CF time coordinates ("<unit> since <date>")
// into calendar dates for the CF calendars.
//
// Dates from calendars that are not the proleptic Gregorian calendar are
// returned as time.Time values built from their own year/month/day labels.
// Labels that do not exist in Go's calendar (ex: 2001-02-30 in 360_day) are
// clamped to the last day of their month, keeping the time of day, so a
// decoded date never leaves its month and decoding stays monotonic.
package cftime

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Calendar string

const (
	Standard           Calendar = "standard"
	ProlepticGregorian Calendar = "proleptic_gregorian"
	Julian             Calendar = "julian"
	NoLeap             Calendar = "noleap"
	AllLeap            Calendar = "all_leap"
	Day360             Calendar = "360_day"
)

var ErrInvalidUnits = errors.New("invalid time units")

const (
	microsPerSecond = int64(1_000_000)
	microsPerDay    = 86_400 * microsPerSecond
	// first Gregorian day (1582-10-15) in the mixed calendar
	gregorianStartJDN = int64(2299161)
)

// ParseCalendar maps a CF calendar attribute to a Calendar. Empty means standard.
func ParseCalendar(s string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "gregorian":
		return Standard, nil
	case "proleptic_gregorian":
		return ProlepticGregorian, nil
	case "julian":
		return Julian, nil
	case "noleap", "365_day":
		return NoLeap, nil
	case "all_leap", "366_day":
		return AllLeap, nil
	case "360_day":
		return Day360, nil
	default:
		return "", fmt.Errorf("unsupported calendar %q", s)
	}
}

// Units is a parsed "<unit> since <reference>" string.
type Units struct {
	Step      float64 // seconds per unit
	Reference civil
	// offset of the reference time zone, subtracted to reach UTC
	ZoneOffset time.Duration
}

type civil struct {
	Year, Month, Day int
	// microseconds since midnight
	Micros int64
}

var stepSeconds = map[string]float64{
	"microseconds": 1e-6, "microsecond": 1e-6, "us": 1e-6,
	"milliseconds": 1e-3, "millisecond": 1e-3, "msecs": 1e-3, "msec": 1e-3, "ms": 1e-3,
	"seconds": 1, "second": 1, "secs": 1, "sec": 1, "s": 1,
	"minutes": 60, "minute": 60, "mins": 60, "min": 60,
	"hours": 3600, "hour": 3600, "hrs": 3600, "hr": 3600, "h": 3600,
	"days": 86400, "day": 86400, "d": 86400,
	"weeks": 604800, "week": 604800,
}

var referencePattern = regexp.MustCompile(
	`^(-?\d{1,4})-(\d{1,2})-(\d{1,2})` +
		`(?:[T ]+(\d{1,2}):(\d{1,2})(?::(\d{1,2}(?:\.\d+)?))?)?` +
		`\s*(Z|UTC|GMT|[+-]\d{1,2}(?::?\d{2})?)?$`)

// ParseUnits parses a CF time units string such as "days since 2000-01-01".
func ParseUnits(s string) (Units, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 3 || !strings.EqualFold(fields[1], "since") {
		return Units{}, fmt.Errorf("%w: %q", ErrInvalidUnits, s)
	}

	step, ok := stepSeconds[strings.ToLower(fields[0])]
	if !ok {
		return Units{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidUnits, fields[0])
	}

	ref := strings.Join(fields[2:], " ")
	m := referencePattern.FindStringSubmatch(ref)
	if m == nil {
		return Units{}, fmt.Errorf("%w: cannot parse reference date %q", ErrInvalidUnits, ref)
	}

	u := Units{Step: step}
	u.Reference.Year, _ = strconv.Atoi(m[1])
	u.Reference.Month, _ = strconv.Atoi(m[2])
	u.Reference.Day, _ = strconv.Atoi(m[3])
	if u.Reference.Month < 1 || u.Reference.Month > 12 || u.Reference.Day < 1 || u.Reference.Day > 31 {
		return Units{}, fmt.Errorf("%w: reference date out of range %q", ErrInvalidUnits, ref)
	}

	if m[4] != "" {
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		var sec float64
		if m[6] != "" {
			sec, _ = strconv.ParseFloat(m[6], 64)
		}
		if hour > 24 || minute > 59 || sec >= 61 {
			return Units{}, fmt.Errorf("%w: reference time out of range %q", ErrInvalidUnits, ref)
		}
		u.Reference.Micros = int64(hour)*3600*microsPerSecond +
			int64(minute)*60*microsPerSecond +
			int64(math.Round(sec*float64(microsPerSecond)))
	}

	offset, err := parseZone(m[7])
	if err != nil {
		return Units{}, fmt.Errorf("%w: %v", ErrInvalidUnits, err)
	}
	u.ZoneOffset = offset

	return u, nil
}

func parseZone(z string) (time.Duration, error) {
	switch z {
	case "", "Z", "UTC", "GMT":
		return 0, nil
	}

	sign := time.Duration(1)
	if z[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(z[1:], ":", "")

	var hours, minutes int
	var err error
	switch {
	case len(digits) <= 2:
		hours, err = strconv.Atoi(digits)
	case len(digits) == 3 || len(digits) == 4:
		hours, err = strconv.Atoi(digits[:len(digits)-2])
		if err == nil {
			minutes, err = strconv.Atoi(digits[len(digits)-2:])
		}
	default:
		err = fmt.Errorf("bad zone %q", z)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to parse zone %q: %w", z, err)
	}

	return sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), nil
}

// Decode converts numeric values to dates using units and calendar
// (empty calendar = standard). Results are UTC with microsecond resolution.
func Decode(values []float64, units, calendar string) ([]time.Time, error) {
	u, err := ParseUnits(units)
	if err != nil {
		return nil, err
	}
	cal, err := ParseCalendar(calendar)
	if err != nil {
		return nil, err
	}

	refDay := dayNumber(cal, u.Reference.Year, u.Reference.Month, u.Reference.Day)
	refMicros := refDay*microsPerDay + u.Reference.Micros - u.ZoneOffset.Microseconds()

	out := make([]time.Time, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("cannot decode non-finite time value %v", v)
		}
		delta := v * u.Step * float64(microsPerSecond)
		if math.Abs(delta) > math.MaxInt64/4 {
			return nil, fmt.Errorf("time value %v out of range", v)
		}

		total := refMicros + int64(math.Round(delta))
		day := floorDiv(total, microsPerDay)
		rem := total - day*microsPerDay

		y, m, d := civilFromDay(cal, day)
		d = min(d, daysIn(y, m))
		out[i] = time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(rem) * time.Microsecond)
	}

	return out, nil
}

// dayNumber counts days in the calendar's own epoch.
func dayNumber(cal Calendar, y, m, d int) int64 {
	switch cal {
	case ProlepticGregorian:
		return gregorianJDN(y, m, d)
	case Julian:
		return julianJDN(y, m, d)
	case Standard:
		if jdn := gregorianJDN(y, m, d); jdn >= gregorianStartJDN {
			return jdn
		}
		return julianJDN(y, m, d)
	case NoLeap:
		return int64(y)*365 + int64(cumulativeDays(m, false)) + int64(d-1)
	case AllLeap:
		return int64(y)*366 + int64(cumulativeDays(m, true)) + int64(d-1)
	case Day360:
		return int64(y)*360 + int64(m-1)*30 + int64(d-1)
	}
	return 0
}

func civilFromDay(cal Calendar, day int64) (int, int, int) {
	switch cal {
	case ProlepticGregorian:
		return gregorianFromJDN(day)
	case Julian:
		return julianFromJDN(day)
	case Standard:
		if day >= gregorianStartJDN {
			return gregorianFromJDN(day)
		}
		return julianFromJDN(day)
	case NoLeap:
		return fixedYearFromDay(day, 365, false)
	case AllLeap:
		return fixedYearFromDay(day, 366, true)
	case Day360:
		y := floorDiv(day, 360)
		doy := day - y*360
		return int(y), int(doy/30) + 1, int(doy%30) + 1
	}
	return 0, 0, 0
}

// daysIn is the length of month m of year y in the proleptic Gregorian calendar.
func daysIn(y, m int) int {
	return time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func cumulativeDays(month int, leap bool) int {
	n := 0
	for i := 0; i < month-1 && i < 12; i++ {
		n += monthDays[i]
		if leap && i == 1 {
			n++
		}
	}
	return n
}

func fixedYearFromDay(day, yearLen int64, leap bool) (int, int, int) {
	y := floorDiv(day, yearLen)
	doy := int(day - y*yearLen)
	for m := 0; m < 12; m++ {
		n := monthDays[m]
		if leap && m == 1 {
			n++
		}
		if doy < n {
			return int(y), m + 1, doy + 1
		}
		doy -= n
	}
	return int(y), 12, 31
}

func gregorianJDN(y, m, d int) int64 {
	a := floorDiv(int64(14-m), 12)
	yy := int64(y) + 4800 - a
	mm := int64(m) + 12*a - 3
	return int64(d) + floorDiv(153*mm+2, 5) + 365*yy +
		floorDiv(yy, 4) - floorDiv(yy, 100) + floorDiv(yy, 400) - 32045
}

func julianJDN(y, m, d int) int64 {
	a := floorDiv(int64(14-m), 12)
	yy := int64(y) + 4800 - a
	mm := int64(m) + 12*a - 3
	return int64(d) + floorDiv(153*mm+2, 5) + 365*yy + floorDiv(yy, 4) - 32083
}

func gregorianFromJDN(j int64) (int, int, int) {
	a := j + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	return fromDayOfEra(100*b, c)
}

func julianFromJDN(j int64) (int, int, int) {
	return fromDayOfEra(0, j+32082)
}

func fromDayOfEra(century, c int64) (int, int, int) {
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)
	day := e - floorDiv(153*m+2, 5) + 1
	month := m + 3 - 12*floorDiv(m, 10)
	year := century + d - 4800 + floorDiv(m, 10)
	return int(year), int(month), int(day)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
