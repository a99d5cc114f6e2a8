package activity

import (
	"errors"
	"time"

	"agency-backend/internal/models"
	"agency-backend/internal/report"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

var (
	ErrUnknownPeriod = errors.New("period must be daily, weekly or monthly")
	ErrRangeTooLong  = errors.New("date range is too long for this period")
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	case "":
		return PeriodDaily, nil
	}
	return "", ErrUnknownPeriod
}

// MaxSpanDays is the widest from..to range a summary covers for p. Every
// bucket in the range is materialized, so the range has to be bounded.
func MaxSpanDays(p Period) int {
	if p == PeriodDaily {
		return 366
	}
	return 5 * 366
}

// CheckRange rejects ranges wider than MaxSpanDays(p).
func CheckRange(from, to time.Time, p Period) error {
	if to.After(from.AddDate(0, 0, MaxSpanDays(p))) {
		return ErrRangeTooLong
	}
	return nil
}

// bucketStart truncates t to the start of its period. Weeks start on Monday.
func bucketStart(t time.Time, p Period) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return day
}

func next(t time.Time, p Period) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

func label(t time.Time, p Period) string {
	if p == PeriodMonthly {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// Summarize counts activities per period between from and to, inclusive.
// Every period in the range is present, even when empty, in date order.
// Activities outside the range are ignored. Callers bound the range with
// CheckRange first.
func Summarize(acts []models.Activity, from, to time.Time, p Period) []report.ActivityPeriod {
	if to.Before(from) {
		return []report.ActivityPeriod{}
	}

	var out []report.ActivityPeriod
	index := make(map[string]int)
	last := bucketStart(to, p)
	for cur := bucketStart(from, p); !cur.After(last); cur = next(cur, p) {
		l := label(cur, p)
		index[l] = len(out)
		out = append(out, report.ActivityPeriod{Label: l})
	}

	end := bucketStart(to, PeriodDaily).AddDate(0, 0, 1)
	start := bucketStart(from, PeriodDaily)
	for _, a := range acts {
		d := a.Date.In(from.Location())
		if d.Before(start) || !d.Before(end) {
			continue
		}
		i, ok := index[label(bucketStart(d, p), p)]
		if !ok {
			continue
		}
		switch a.Kind {
		case models.ActivityDoorKnock:
			out[i].DoorKnocks++
		case models.ActivityPhoneCall:
			out[i].PhoneCalls++
		case models.ActivityAppraisal:
			out[i].Appraisals++
		}
	}
	return out
}
