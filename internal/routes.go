package internal

import (
	"ess/internal/controllers"
	"ess/internal/providers"
	"net/http"
)

func InitRoutes(
	sessionController *controllers.SessionController,
	deviceController *controllers.DeviceController,
	attendanceController *controllers.AttendanceController,
	hrController *controllers.HRController,
	updatesController *controllers.UpdatesController,
) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/session", http.HandlerFunc(sessionController.Status))
	routers.Post("/session/site", http.HandlerFunc(sessionController.ConfigureSite))
	routers.Delete("/session/site", http.HandlerFunc(sessionController.ResetSite))
	routers.Post("/session/login", http.HandlerFunc(sessionController.Login))
	routers.Post("/session/logout", http.HandlerFunc(sessionController.Logout))
	routers.Post("/session/verify", http.HandlerFunc(sessionController.Verify))
	routers.Post("/session/password", http.HandlerFunc(sessionController.ResetPassword))

	routers.Get("/device", http.HandlerFunc(deviceController.Info))

	routers.Get("/attendance/today", http.HandlerFunc(attendanceController.Today))
	routers.Post("/attendance/toggle", http.HandlerFunc(attendanceController.Toggle))
	routers.Get("/attendance/month", http.HandlerFunc(attendanceController.Month))

	routers.Get("/leave/types", http.HandlerFunc(hrController.LeaveTypes))
	routers.Post("/leave", http.HandlerFunc(hrController.ApplyLeave))
	routers.Get("/holidays", http.HandlerFunc(hrController.Holidays))
	routers.Get("/profile", http.HandlerFunc(hrController.Profile))

	routers.Get("/updates", http.HandlerFunc(updatesController.Recent))
	return routers
}
