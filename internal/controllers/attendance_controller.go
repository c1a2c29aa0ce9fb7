package controllers

import (
	"ess/internal/services"
	"ess/internal/structures"
	"net/http"
	"strconv"
	"time"
)

type AttendanceController struct {
	session    services.SiteSessionInterface
	attendance services.AttendanceServiceInterface
	loc        *time.Location
	now        func() time.Time
}

type toggleRequest struct {
	Location string `json:"location" validate:"max=140"`
}

func NewAttendanceController(conf *structures.Config, session services.SiteSessionInterface, attendance services.AttendanceServiceInterface) *AttendanceController {
	return &AttendanceController{
		session:    session,
		attendance: attendance,
		loc:        conf.Location(),
		now:        time.Now,
	}
}

func (ac *AttendanceController) Today(w http.ResponseWriter, r *http.Request) {
	if err := ac.session.RequireAuthenticated(); err != nil {
		writeError(w, err)
		return
	}
	today, err := ac.attendance.Today(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, today)
}

func (ac *AttendanceController) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := ac.session.RequireAuthenticated(); err != nil {
		writeError(w, err)
		return
	}
	var req toggleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	today, err := ac.attendance.Toggle(r.Context(), req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, today)
}

// Month serves /attendance/month?year=&month=, defaulting to the current month.
func (ac *AttendanceController) Month(w http.ResponseWriter, r *http.Request) {
	if err := ac.session.RequireAuthenticated(); err != nil {
		writeError(w, err)
		return
	}

	now := ac.now().In(ac.loc)
	year, month := now.Year(), int(now.Month())
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, &services.Error{Kind: services.KindValidation, Message: "year must be a number.", Err: err})
			return
		}
		year = parsed
	}
	if v := q.Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, &services.Error{Kind: services.KindValidation, Message: "month must be a number.", Err: err})
			return
		}
		month = parsed
	}

	result, err := ac.attendance.Month(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, result)
}
