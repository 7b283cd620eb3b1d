package weather

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// airColors maps the six air quality categories, best to worst, to the
// accent color used by the card.
var airColors = map[string]string{
	"优":    "#95B359",
	"良":    "#A9A538",
	"轻度污染": "#E0991D",
	"中度污染": "#D96161",
	"重度污染": "#A257D0",
	"严重污染": "#D94371",
}

var weekNames = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

const todayLabel = "今日"

// fxTime layouts seen in QWeather responses, e.g. 2021-02-16T15:00+08:00.
var hourLayouts = []string{"2006-01-02T15:04Z07:00", time.RFC3339}

// AirView is an air quality record plus its display color.
type AirView struct {
	Air
	TagColor string `json:"tag_color,omitempty"`
}

// DayView is a forecast day plus its weekday label and "M月D日" date.
type DayView struct {
	Daily
	Week string `json:"week"`
	Date string `json:"date"`
}

// HourView is a forecast hour plus its clock label and relative height.
type HourView struct {
	Hourly
	Hour        string `json:"hour"`
	TempPercent int    `json:"temp_percent"`
}

// View is everything the weather card template needs.
type View struct {
	Now     Now        `json:"now"`
	Days    []DayView  `json:"days"`
	City    string     `json:"city"`
	Warning []Warning  `json:"warning"`
	Air     *AirView   `json:"air"`
	Hours   []HourView `json:"hours"`
}

// PresentOptions control the presentation of a snapshot.
type PresentOptions struct {
	HourlyType HourlyType
	Location   *time.Location
}

// TagColor returns the accent color for an air quality category.
// Unknown categories have no color.
func TagColor(category string) (string, bool) {
	c, ok := airColors[category]
	return c, ok
}

// TagAir builds the display record for an air quality reading.
func TagAir(air Air) AirView {
	color, _ := TagColor(air.Category)
	return AirView{Air: air, TagColor: color}
}

// LabelDays labels each forecast day. The first one is always "今日";
// the others get the weekday of their fxDate. Days with an unparsable
// fxDate keep empty labels.
func LabelDays(days []Daily) []DayView {
	out := make([]DayView, 0, len(days))
	for i, d := range days {
		v := DayView{Daily: d}
		if date, err := time.Parse(time.DateOnly, d.FxDate); err == nil {
			v.Week = weekNames[date.Weekday()]
			v.Date = fmt.Sprintf("%d月%d日", int(date.Month()), date.Day())
		}
		if i == 0 {
			v.Week = todayLabel
		}
		out = append(out, v)
	}
	return out
}

// SelectHours computes the clock label and relative height of every hour and
// then picks the hours to display. Heights are scaled against the whole
// series before selection, with the floor pushed one range below the
// minimum so the coldest hour never sits at the bottom of the chart.
func SelectHours(hours []Hourly, mode HourlyType, loc *time.Location) ([]HourView, error) {
	if len(hours) == 0 {
		return []HourView{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	temps := make([]int, len(hours))
	for i, h := range hours {
		t, err := strconv.Atoi(h.Temp)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature %q at %s: %w", h.Temp, h.FxTime, err)
		}
		temps[i] = t
	}

	minTemp := slices.Min(temps)
	high := float64(slices.Max(temps))
	low := float64(minTemp) - (high - float64(minTemp))

	views := make([]HourView, len(hours))
	for i, h := range hours {
		ts, err := parseHour(h.FxTime)
		if err != nil {
			return nil, err
		}
		pct := 100
		if high != low {
			pct = int(math.Round((float64(temps[i]) - low) / (high - low) * 100))
		}
		views[i] = HourView{
			Hourly:      h,
			Hour:        clockLabel(ts.In(loc)),
			TempPercent: pct,
		}
	}

	switch mode {
	case Hourly12h:
		return views[:min(12, len(views))], nil
	case Hourly24h:
		out := make([]HourView, 0, (len(views)+1)/2)
		for i := 0; i < len(views); i += 2 {
			out = append(out, views[i])
		}
		return out, nil
	default:
		return views, nil
	}
}

// Present turns a validated snapshot into the card view.
func Present(s *Snapshot, opts PresentOptions) (View, error) {
	hours, err := SelectHours(s.Hourly, opts.HourlyType, opts.Location)
	if err != nil {
		return View{}, err
	}

	v := View{
		Now:     s.Now,
		Days:    LabelDays(s.Daily),
		City:    s.CityName(),
		Warning: s.Warnings,
		Hours:   hours,
	}
	if s.Air != nil {
		air := TagAir(*s.Air)
		v.Air = &air
	}
	return v, nil
}

func parseHour(s string) (time.Time, error) {
	for _, layout := range hourLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid fxTime %q", s)
}

// clockLabel formats the hour as 12AM, 1AM, ... 11PM.
func clockLabel(t time.Time) string {
	h := t.Hour()
	n := h % 12
	if n == 0 {
		n = 12
	}
	if h < 12 {
		return strconv.Itoa(n) + "AM"
	}
	return strconv.Itoa(n) + "PM"
}
