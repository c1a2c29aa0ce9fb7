package providers

import (
	"errors"
	"ess/internal/structures"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultWhoAmIMethod        = "frappe.auth.get_logged_user"
	DefaultLoginMethod         = "ashida.ashida_gaxis.api.mobile_auth.mobile_app_login"
	DefaultResetPasswordMethod = "ashida.ashida_gaxis.api.mobile_auth.reset_app_password"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8085)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("site.timeout", 30*time.Second)
	v.SetDefault("site.whoAmIMethod", DefaultWhoAmIMethod)
	v.SetDefault("site.loginMethod", DefaultLoginMethod)
	v.SetDefault("site.resetPasswordMethod", DefaultResetPasswordMethod)
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.memorySize", 1)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	dir := filepath.Dir(flags.ConfigPath)
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "ESS_LOG_LEVEL")
	v.BindEnv("site.url", "ESS_SITE_URL")
	v.BindEnv("store.driver", "ESS_STORE_DRIVER")
	v.BindEnv("store.secret", "ESS_STORE_SECRET")
	v.BindEnv("webServer.port", "ESS_LISTEN_PORT")

	err = v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "EmployeeSelfServiceDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
