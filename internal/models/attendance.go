package models

import "time"

type Status string

const (
	StatusPresent    Status = "Present"
	StatusIncomplete Status = "Incomplete"
	StatusAbsent     Status = "Absent"
)

// DayAttendance is derived from the checkins of one calendar day.
type DayAttendance struct {
	Date           string     `json:"date"`
	Day            int        `json:"day"`
	Weekday        string     `json:"weekday"`
	Status         Status     `json:"status"`
	CheckIn        *time.Time `json:"checkIn,omitempty"`
	CheckOut       *time.Time `json:"checkOut,omitempty"`
	WorkingMinutes *int       `json:"workingMinutes,omitempty"`
	WorkingHours   string     `json:"workingHours"`
}

type MonthlyAttendanceSummary struct {
	Year                 int     `json:"year"`
	Month                int     `json:"month"`
	TotalDays            int     `json:"totalDays"`
	PresentDays          int     `json:"presentDays"`
	IncompleteDays       int     `json:"incompleteDays"`
	AbsentDays           int     `json:"absentDays"`
	TotalWorkingHours    float64 `json:"totalWorkingHours"`
	AverageWorkingHours  float64 `json:"averageWorkingHours"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

type MonthlyAttendance struct {
	Days    []DayAttendance          `json:"days"`
	Summary MonthlyAttendanceSummary `json:"summary"`
}

// CheckState drives the live check-in/check-out action. NextAction is empty
// once the day is complete.
type CheckState struct {
	IsCheckedIn  bool       `json:"isCheckedIn"`
	IsComplete   bool       `json:"isComplete"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	NextAction   LogType    `json:"nextAction,omitempty"`
}

type TodayAttendance struct {
	Employee string          `json:"employee"`
	Date     string          `json:"date"`
	State    CheckState      `json:"state"`
	Records  []CheckinRecord `json:"records"`
}
