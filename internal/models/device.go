package models

type DeviceInfo struct {
	DeviceID    string `json:"deviceId"`
	DeviceModel string `json:"deviceModel"`
	DeviceBrand string `json:"deviceBrand"`
}
