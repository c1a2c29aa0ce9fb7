package services

import (
	"ess/internal/models"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	noWorkingHours  = "--"
	percentageScale = 100
)

// ReconcileDay derives the attendance of one calendar day. Only the earliest
// IN and the earliest OUT are used; further pairs are ignored.
func ReconcileDay(date time.Time, records []models.CheckinRecord) models.DayAttendance {
	day := models.DayAttendance{
		Date:         date.Format(dateLayout),
		Day:          date.Day(),
		Weekday:      date.Format("Mon"),
		Status:       models.StatusAbsent,
		WorkingHours: noWorkingHours,
	}

	firstIn, firstOut := firstOfEach(records)
	if firstIn != nil {
		ts := firstIn.Timestamp
		day.CheckIn = &ts
	}
	if firstOut != nil {
		ts := firstOut.Timestamp
		day.CheckOut = &ts
	}

	switch {
	case firstIn != nil && firstOut != nil:
		day.Status = models.StatusPresent
		minutes := workingMinutes(firstIn.Timestamp, firstOut.Timestamp)
		day.WorkingMinutes = &minutes
		day.WorkingHours = formatWorkingHours(minutes)
	case firstIn != nil || firstOut != nil:
		day.Status = models.StatusIncomplete
	}
	return day
}

// ReconcileMonth buckets records by calendar day in loc and reconciles every
// day of the month in ascending order. Records outside the month are ignored.
func ReconcileMonth(records []models.CheckinRecord, year int, month time.Month, loc *time.Location) models.MonthlyAttendance {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := DaysInMonth(year, month)

	buckets := make(map[int][]models.CheckinRecord, daysInMonth)
	for _, r := range records {
		local := r.Timestamp.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		buckets[local.Day()] = append(buckets[local.Day()], r)
	}

	result := models.MonthlyAttendance{
		Days: make([]models.DayAttendance, 0, daysInMonth),
		Summary: models.MonthlyAttendanceSummary{
			Year:      year,
			Month:     int(month),
			TotalDays: daysInMonth,
		},
	}

	totalMinutes := 0
	for d := 1; d <= daysInMonth; d++ {
		day := ReconcileDay(first.AddDate(0, 0, d-1), buckets[d])
		switch day.Status {
		case models.StatusPresent:
			result.Summary.PresentDays++
			totalMinutes += *day.WorkingMinutes
		case models.StatusIncomplete:
			result.Summary.IncompleteDays++
		default:
			result.Summary.AbsentDays++
		}
		result.Days = append(result.Days, day)
	}

	totalHours := float64(totalMinutes) / 60
	result.Summary.TotalWorkingHours = round1(totalHours)
	if result.Summary.PresentDays > 0 {
		result.Summary.AverageWorkingHours = round1(totalHours / float64(result.Summary.PresentDays))
	}
	result.Summary.AttendancePercentage = round1(float64(result.Summary.PresentDays) / float64(daysInMonth) * percentageScale)
	return result
}

// CurrentDayCheckState derives the live check-in/check-out action from the
// records of today.
func CurrentDayCheckState(records []models.CheckinRecord) models.CheckState {
	firstIn, firstOut := firstOfEach(records)

	state := models.CheckState{}
	if firstIn != nil {
		ts := firstIn.Timestamp
		state.CheckInTime = &ts
	}
	if firstOut != nil {
		ts := firstOut.Timestamp
		state.CheckOutTime = &ts
	}

	switch {
	case firstIn != nil && firstOut != nil:
		state.IsComplete = true
	case firstIn != nil:
		state.IsCheckedIn = true
		state.NextAction = models.LogTypeOut
	default:
		state.NextAction = models.LogTypeIn
	}
	return state
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// firstOfEach returns the earliest IN and earliest OUT. Ties keep input order.
func firstOfEach(records []models.CheckinRecord) (firstIn, firstOut *models.CheckinRecord) {
	sorted := make([]models.CheckinRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	for i := range sorted {
		switch sorted[i].LogType {
		case models.LogTypeIn:
			if firstIn == nil {
				firstIn = &sorted[i]
			}
		case models.LogTypeOut:
			if firstOut == nil {
				firstOut = &sorted[i]
			}
		}
	}
	return firstIn, firstOut
}

// workingMinutes is floored and never negative; an OUT logged before the IN
// yields zero.
func workingMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

func formatWorkingHours(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
