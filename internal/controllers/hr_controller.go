package controllers

import (
	"ess/internal/models"
	"ess/internal/services"
	"net/http"
)

type HRController struct {
	session  services.SiteSessionInterface
	leave    services.LeaveServiceInterface
	holidays services.HolidayServiceInterface
	profile  services.ProfileServiceInterface
}

func NewHRController(
	session services.SiteSessionInterface,
	leave services.LeaveServiceInterface,
	holidays services.HolidayServiceInterface,
	profile services.ProfileServiceInterface,
) *HRController {
	return &HRController{session: session, leave: leave, holidays: holidays, profile: profile}
}

// authorized writes the gate error and reports false when the session is not
// fully authenticated.
func (hc *HRController) authorized(w http.ResponseWriter) bool {
	if err := hc.session.RequireAuthenticated(); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func (hc *HRController) LeaveTypes(w http.ResponseWriter, r *http.Request) {
	if !hc.authorized(w) {
		return
	}
	types, err := hc.leave.LeaveTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, types)
}

func (hc *HRController) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	if !hc.authorized(w) {
		return
	}
	var req models.LeaveRequest
	if err := readBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := hc.leave.Apply(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: result})
}

func (hc *HRController) Holidays(w http.ResponseWriter, r *http.Request) {
	if !hc.authorized(w) {
		return
	}
	overview, err := hc.holidays.Holidays(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, overview)
}

func (hc *HRController) Profile(w http.ResponseWriter, r *http.Request) {
	if !hc.authorized(w) {
		return
	}
	employee, err := hc.profile.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, employee)
}
