package models

import "time"

type Employee struct {
	Name          string `json:"name"`
	EmployeeName  string `json:"employee_name"`
	UserID        string `json:"user_id,omitempty"`
	Status        string `json:"status,omitempty"`
	AllowESS      int    `json:"allow_ess,omitempty"`
	HolidayList   string `json:"holiday_list,omitempty"`
	Company       string `json:"company,omitempty"`
	Department    string `json:"department,omitempty"`
	Designation   string `json:"designation,omitempty"`
	Gender        string `json:"gender,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	DateOfJoining string `json:"date_of_joining,omitempty"`
	CellNumber    string `json:"cell_number,omitempty"`
	PersonalEmail string `json:"personal_email,omitempty"`
	CompanyEmail  string `json:"company_email,omitempty"`
	Branch        string `json:"branch,omitempty"`
	ReportsTo     string `json:"reports_to,omitempty"`
}

type LeaveType struct {
	Name             string  `json:"name"`
	LeaveTypeName    string  `json:"leave_type_name"`
	MaxLeavesAllowed float64 `json:"max_leaves_allowed"`
	IsEarnedLeave    int     `json:"is_earned_leave"`
}

// LeaveRequest is the local input for a leave application.
type LeaveRequest struct {
	LeaveType string `json:"leaveType" validate:"required"`
	FromDate  string `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate    string `json:"toDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required"`
}

type LeaveApplication struct {
	Name        string `json:"name,omitempty"`
	Employee    string `json:"employee"`
	LeaveType   string `json:"leave_type"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	PostingDate string `json:"posting_date"`
	Reason      string `json:"reason"`
	HalfDay     int    `json:"half_day"`
	Status      string `json:"status"`
}

type LeaveResult struct {
	Application LeaveApplication `json:"application"`
	Days        int              `json:"days"`
}

type Holiday struct {
	HolidayDate string `json:"holiday_date"`
	Description string `json:"description"`
	WeeklyOff   int    `json:"weekly_off,omitempty"`
}

type HolidayList struct {
	Name     string    `json:"name"`
	FromDate string    `json:"from_date"`
	ToDate   string    `json:"to_date"`
	Holidays []Holiday `json:"holidays,omitempty"`
}

type HolidayEntry struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	WeeklyOff   bool      `json:"weeklyOff"`
	Label       string    `json:"label"`
	DaysUntil   int       `json:"daysUntil"`
}

type HolidayOverview struct {
	ListName string         `json:"listName"`
	Year     int            `json:"year"`
	All      []HolidayEntry `json:"all"`
	Upcoming []HolidayEntry `json:"upcoming"`
}
