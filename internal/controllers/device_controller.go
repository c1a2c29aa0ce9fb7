package controllers

import (
	"ess/internal/services"
	"net/http"
)

type DeviceController struct {
	device services.DeviceIdentityInterface
}

func NewDeviceController(device services.DeviceIdentityInterface) *DeviceController {
	return &DeviceController{device: device}
}

func (dc *DeviceController) Info(w http.ResponseWriter, _ *http.Request) {
	writeData(w, dc.device.DeviceInfo())
}
