package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateStyle selects how much of the date phrase is spelled out.
type DateStyle string

const (
	DateStyleLong  DateStyle = "long"
	DateStyleShort DateStyle = "short"
)

// DateFormat controls FormatDate output. Zero value renders the absolute
// date only, long style.
type DateFormat struct {
	Absolute bool
	Relative bool
	Style    DateStyle
}

// FormatDate renders a timestamp as an absolute calendar date, a relative
// phrase, or both ("Mon, Jan 2, 2006 (in 3 days)"). now is passed explicitly
// so callers and tests share one clock.
func FormatDate(date, now time.Time, opts DateFormat) string {
	style := opts.Style
	if style == "" {
		style = DateStyleLong
	}

	layout := "Jan 2, 2006"
	if style == DateStyleLong {
		layout = "Mon, Jan 2, 2006"
	}
	absolute := date.Format(layout)
	if !opts.Relative {
		return absolute
	}

	relative := relativePhrase(date, now, style)
	if !opts.Absolute {
		return relative
	}
	return fmt.Sprintf("%s (%s)", absolute, relative)
}

// relativePhrase buckets the day delta into day/week/month/year units using
// the original thresholds: |days| > 355 years, > 29 months, > 6 weeks.
func relativePhrase(date, now time.Time, style DateStyle) string {
	days := DeltaDays(date, now)

	abs := days
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > 355:
		delta := math.Round(float64(days)/365*10) / 10
		return phraseFloat(delta, "year", "y", style)
	case abs > 29:
		return phraseInt(floorInt(float64(days)/30), "month", "mo", style)
	case abs > 6:
		return phraseInt(floorInt(float64(days)/7), "week", "w", style)
	default:
		return dayPhrase(days, style)
	}
}

func dayPhrase(days int, style DateStyle) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	}
	return phraseInt(days, "day", "d", style)
}

func phraseInt(delta int, unit, shortUnit string, style DateStyle) string {
	switch delta {
	case 1:
		return "next " + unit
	case -1:
		return "last " + unit
	}
	n := delta
	if n < 0 {
		n = -n
	}
	if style == DateStyleShort {
		if delta > 0 {
			return fmt.Sprintf("in %d%s", n, shortUnit)
		}
		return fmt.Sprintf("%d%s ago", n, shortUnit)
	}
	if delta > 0 {
		return fmt.Sprintf("in %d %ss", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func phraseFloat(delta float64, unit, shortUnit string, style DateStyle) string {
	switch delta {
	case 1:
		return "next " + unit
	case -1:
		return "last " + unit
	}
	n := math.Abs(delta)
	display := strconv.FormatFloat(n, 'f', -1, 64)
	if style == DateStyleShort {
		if delta > 0 {
			return fmt.Sprintf("in %s%s", display, shortUnit)
		}
		return fmt.Sprintf("%s%s ago", display, shortUnit)
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	if delta > 0 {
		return fmt.Sprintf("in %s %s%s", display, unit, plural)
	}
	return fmt.Sprintf("%s %s%s ago", display, unit, plural)
}
