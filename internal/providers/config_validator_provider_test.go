package providers

import (
	"ess/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "127.0.0.1",
			Port: 8085,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Store: structures.StoreConfig{
			Driver:   "file",
			FilePath: "/tmp/ess.dat",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_UnknownStoreDriver(t *testing.T) {
	c := validConfig()
	c.Store.Driver = "keychain"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_FileDriverNeedsPath(t *testing.T) {
	c := validConfig()
	c.Store.FilePath = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MemoryDriverWithoutPath(t *testing.T) {
	c := validConfig()
	c.Store.Driver = "memory"
	c.Store.FilePath = ""
	v := NewCnfValidator(c)
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_BadTimezone(t *testing.T) {
	c := validConfig()
	c.Attendance.Timezone = "Mars/Olympus_Mons"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
