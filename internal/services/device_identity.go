package services

import (
	"crypto/sha256"
	"encoding/base64"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/storage"
	"ess/internal/structures"
	"fmt"
	"github.com/google/uuid"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	KeyDeviceID = "device_id"

	deviceIDMaxLen   = 32
	unknownPart      = "unknown"
	unknownModel     = "Unknown Model"
	unknownBrand     = "Unknown Brand"
	fingerprintJoint = "-"
)

type DeviceIdentityInterface interface {
	GetOrCreateDeviceID() string
	DeviceInfo() models.DeviceInfo
}

// DeviceFacts are the inputs of the fingerprint.
type DeviceFacts struct {
	Model     string
	Brand     string
	OSVersion string
	Name      string
	Platform  string
}

// DeviceProbe reads device facts. It must not touch the network.
type DeviceProbe func() (DeviceFacts, error)

// HostProbe reads device facts from config, filling gaps from the host.
func HostProbe(conf *structures.Config) DeviceProbe {
	return func() (DeviceFacts, error) {
		facts := DeviceFacts{
			Model:     conf.Device.Model,
			Brand:     conf.Device.Brand,
			OSVersion: conf.Device.OSVersion,
			Name:      conf.Device.Name,
			Platform:  conf.Device.Platform,
		}
		if facts.Platform == "" {
			facts.Platform = runtime.GOOS
		}
		if facts.Model == "" {
			facts.Model = runtime.GOARCH
		}
		if facts.Name == "" {
			host, err := os.Hostname()
			if err != nil {
				return facts, fmt.Errorf("hostname: %w", err)
			}
			facts.Name = host
		}
		return facts, nil
	}
}

// DeviceIdentity owns the device_id key. It is the only writer of that key.
type DeviceIdentity struct {
	mu           sync.Mutex
	store        storage.Store
	probe        DeviceProbe
	logger       providers.Logger
	sessionToken string
	now          func() time.Time
	cached       string
}

func NewDeviceIdentity(store storage.Store, probe DeviceProbe, logger providers.Logger) *DeviceIdentity {
	return &DeviceIdentity{
		store:        store,
		probe:        probe,
		logger:       logger,
		sessionToken: uuid.NewString(),
		now:          time.Now,
	}
}

// GetOrCreateDeviceID returns the persisted fingerprint, creating it on first
// use. Store failures are logged and never surface; the id stays stable for
// the life of the process even when it cannot be persisted.
func (d *DeviceIdentity) GetOrCreateDeviceID() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != "" {
		return d.cached
	}

	stored, ok, err := d.store.Get(KeyDeviceID)
	if err != nil {
		d.logger.Warnf(providers.TypeApp, "Unable to read device id: %v", err)
	} else if ok && stored != "" {
		d.cached = stored
		return stored
	}

	id := d.generate()
	if err := d.store.Set(KeyDeviceID, id); err != nil {
		d.logger.Warnf(providers.TypeApp, "Unable to persist device id: %v", err)
	} else {
		d.logger.Infof(providers.TypeApp, "Generated device id %s", id)
	}
	d.cached = id
	return id
}

func (d *DeviceIdentity) generate() string {
	facts, err := d.probe()
	if err != nil {
		d.logger.Warnf(providers.TypeApp, "Device info unavailable, using fallback id: %v", err)
		return d.fallbackID(facts.Platform)
	}

	parts := []string{
		orUnknown(facts.Model),
		orUnknown(facts.Brand),
		orUnknown(facts.OSVersion),
		orUnknown(facts.Name),
		orUnknown(facts.Platform),
		d.sessionToken,
	}
	digest := sha256.Sum256([]byte(strings.Join(parts, fingerprintJoint)))
	encoded := base64.StdEncoding.EncodeToString(digest[:])
	id := truncate(alphanumeric(encoded), deviceIDMaxLen)
	if id == "" {
		return d.fallbackID(facts.Platform)
	}
	return id
}

func (d *DeviceIdentity) fallbackID(platform string) string {
	if token := alphanumeric(d.sessionToken); token != "" {
		return truncate(token, deviceIDMaxLen)
	}
	if platform == "" {
		platform = runtime.GOOS
	}
	return truncate(fmt.Sprintf("%s-%d", platform, d.now().UnixMilli()), deviceIDMaxLen)
}

// DeviceInfo returns the id with the model and brand sent on login.
func (d *DeviceIdentity) DeviceInfo() models.DeviceInfo {
	info := models.DeviceInfo{
		DeviceID:    d.GetOrCreateDeviceID(),
		DeviceModel: unknownModel,
		DeviceBrand: unknownBrand,
	}
	if facts, err := d.probe(); err == nil {
		if facts.Model != "" {
			info.DeviceModel = facts.Model
		}
		if facts.Brand != "" {
			info.DeviceBrand = facts.Brand
		}
	}
	return info
}

func orUnknown(s string) string {
	if s == "" {
		return unknownPart
	}
	return s
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
