package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// SiteConfig describes the remote backend. URL may be empty: the site can be
// configured later through the session API.
type SiteConfig struct {
	URL                 string        `yaml:"url"`
	Timeout             time.Duration `yaml:"timeout"`
	WhoAmIMethod        string        `yaml:"whoAmIMethod"`
	LoginMethod         string        `yaml:"loginMethod"`
	ResetPasswordMethod string        `yaml:"resetPasswordMethod"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver" validate:"required|in:file,memory"`
	FilePath   string `yaml:"filePath"`
	Secret     string `yaml:"secret"`
	MemorySize int    `yaml:"memorySize"`
}

type DeviceConfig struct {
	Model     string `yaml:"model"`
	Brand     string `yaml:"brand"`
	OSVersion string `yaml:"osVersion"`
	Name      string `yaml:"name"`
	Platform  string `yaml:"platform"`
}

type AttendanceConfig struct {
	Timezone string `yaml:"timezone"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	WebServer  Server           `yaml:"webServer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Site       SiteConfig       `yaml:"site"`
	Store      StoreConfig      `yaml:"store"`
	Device     DeviceConfig     `yaml:"device"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// Location resolves the attendance time zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Attendance.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
