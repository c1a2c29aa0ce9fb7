//go:build wireinject
// +build wireinject

package di

import (
	"ess/internal"
	"ess/internal/client"
	"ess/internal/controllers"
	"ess/internal/providers"
	"ess/internal/services"
	"ess/internal/storage"
	"ess/internal/structures"
	wire "github.com/google/wire"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	storage.NewStoreProvider,
	client.NewTransport,

	services.HostProbe,
	services.NewDeviceIdentity,
	wire.Bind(new(services.DeviceIdentityInterface), new(*services.DeviceIdentity)),
	services.NewInFlight,
	services.NewSiteSession,
	wire.Bind(new(services.SiteSessionInterface), new(*services.SiteSession)),
	wire.Bind(new(client.CredentialSource), new(*services.SiteSession)),
	wire.Bind(new(services.ProfileSource), new(*services.SiteSession)),

	client.NewResourceClient,
	wire.Bind(new(client.ResourceClientInterface), new(*client.ResourceClient)),
	services.NewEmployeeDirectory,
	wire.Bind(new(services.EmployeeDirectoryInterface), new(*services.EmployeeDirectory)),
	services.NewAttendanceService,
	wire.Bind(new(services.AttendanceServiceInterface), new(*services.AttendanceService)),
	services.NewLeaveService,
	wire.Bind(new(services.LeaveServiceInterface), new(*services.LeaveService)),
	services.NewHolidayService,
	wire.Bind(new(services.HolidayServiceInterface), new(*services.HolidayService)),
	services.NewProfileService,
	wire.Bind(new(services.ProfileServiceInterface), new(*services.ProfileService)),
	services.NewUpdatesService,
	wire.Bind(new(services.UpdatesServiceInterface), new(*services.UpdatesService)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		coreSet,
		controllers.NewSessionController,
		controllers.NewDeviceController,
		controllers.NewAttendanceController,
		controllers.NewHRController,
		controllers.NewUpdatesController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

// InitDevice builds only the device identity, for CLI commands that must not
// start the daemon.
func InitDevice(cfg *structures.CliFlags) (services.DeviceIdentityInterface, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		storage.NewStoreProvider,
		services.HostProbe,
		services.NewDeviceIdentity,
		wire.Bind(new(services.DeviceIdentityInterface), new(*services.DeviceIdentity)),
	)

	return nil, nil, nil
}
