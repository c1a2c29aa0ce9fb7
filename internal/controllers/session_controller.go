package controllers

import (
	"ess/internal/providers"
	"ess/internal/services"
	"net/http"
)

type SessionController struct {
	logger  providers.Logger
	session services.SiteSessionInterface
}

type siteRequest struct {
	URL string `json:"url" validate:"required"`
}

type loginRequest struct {
	AppID       string `json:"appId" validate:"required"`
	AppPassword string `json:"appPassword" validate:"required"`
}

type passwordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

func NewSessionController(logger providers.Logger, session services.SiteSessionInterface) *SessionController {
	return &SessionController{logger: logger, session: session}
}

func (sc *SessionController) Status(w http.ResponseWriter, _ *http.Request) {
	writeData(w, sc.session.Snapshot())
}

func (sc *SessionController) ConfigureSite(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	siteURL, err := sc.session.ConfigureSite(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, map[string]string{"url": siteURL})
}

func (sc *SessionController) ResetSite(w http.ResponseWriter, _ *http.Request) {
	if err := sc.session.ResetSiteURL(); err != nil {
		sc.logger.Errorf(providers.TypeApp, "Reset site: %v", err)
		writeError(w, err)
		return
	}
	writeData(w, sc.session.Snapshot())
}

func (sc *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := sc.session.Login(r.Context(), req.AppID, req.AppPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, result)
}

func (sc *SessionController) Logout(w http.ResponseWriter, _ *http.Request) {
	if err := sc.session.Logout(); err != nil {
		sc.logger.Errorf(providers.TypeApp, "Logout: %v", err)
		writeError(w, err)
		return
	}
	writeData(w, sc.session.Snapshot())
}

func (sc *SessionController) Verify(w http.ResponseWriter, r *http.Request) {
	valid := sc.session.VerifySession(r.Context())
	writeData(w, map[string]any{"valid": valid, "session": sc.session.Snapshot()})
}

func (sc *SessionController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := sc.session.ResetPassword(r.Context(), req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, sc.session.Snapshot())
}
