package controllers

import (
	"ess/internal/services"
	"net/http"
)

type UpdatesController struct {
	session services.SiteSessionInterface
	updates services.UpdatesServiceInterface
}

func NewUpdatesController(session services.SiteSessionInterface, updates services.UpdatesServiceInterface) *UpdatesController {
	return &UpdatesController{session: session, updates: updates}
}

func (uc *UpdatesController) Recent(w http.ResponseWriter, r *http.Request) {
	if err := uc.session.RequireAuthenticated(); err != nil {
		writeError(w, err)
		return
	}
	updates, err := uc.updates.Recent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, updates)
}
