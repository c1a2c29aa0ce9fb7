package models

import (
	"fmt"
	"strings"
	"time"
)

type LogType string

const (
	LogTypeIn  LogType = "IN"
	LogTypeOut LogType = "OUT"
)

// FrappeTimeLayout is the datetime layout the remote backend reads and writes.
const FrappeTimeLayout = "2006-01-02 15:04:05"

var frappeTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	FrappeTimeLayout,
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func ParseLogType(s string) (LogType, error) {
	switch LogType(strings.ToUpper(strings.TrimSpace(s))) {
	case LogTypeIn:
		return LogTypeIn, nil
	case LogTypeOut:
		return LogTypeOut, nil
	}
	return "", fmt.Errorf("unknown log type %q", s)
}

// ParseFrappeTime parses a backend datetime string in loc. Strings carrying
// their own offset keep it.
func ParseFrappeTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range frappeTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}

func FormatFrappeTime(t time.Time) string {
	return t.Format(FrappeTimeLayout)
}

// CheckinRecord is one attendance event. Records are never persisted locally.
type CheckinRecord struct {
	Name       string    `json:"name,omitempty"`
	EmployeeID string    `json:"employee"`
	Timestamp  time.Time `json:"time"`
	LogType    LogType   `json:"logType"`
}

// RemoteCheckin is an `Employee Checkin` document as listed by the backend.
type RemoteCheckin struct {
	Name     string `json:"name"`
	Employee string `json:"employee"`
	Time     string `json:"time"`
	LogType  string `json:"log_type"`
	DeviceID string `json:"device_id,omitempty"`
}

func (r RemoteCheckin) Record(loc *time.Location) (CheckinRecord, error) {
	ts, err := ParseFrappeTime(r.Time, loc)
	if err != nil {
		return CheckinRecord{}, fmt.Errorf("checkin %s: %w", r.Name, err)
	}
	lt, err := ParseLogType(r.LogType)
	if err != nil {
		return CheckinRecord{}, fmt.Errorf("checkin %s: %w", r.Name, err)
	}
	return CheckinRecord{Name: r.Name, EmployeeID: r.Employee, Timestamp: ts, LogType: lt}, nil
}

// NewCheckin is the payload used to create an `Employee Checkin`.
type NewCheckin struct {
	Employee string `json:"employee"`
	Time     string `json:"time"`
	LogType  string `json:"log_type"`
	DeviceID string `json:"device_id,omitempty"`
}
