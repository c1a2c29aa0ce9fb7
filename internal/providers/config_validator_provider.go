package providers

import (
	"errors"
	"ess/internal/structures"
	"fmt"
	"github.com/gookit/validate"
	"time"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if cv.conf.Store.Driver == "file" && cv.conf.Store.FilePath == "" {
		return errors.New("store.filePath is required for the file driver")
	}
	if cv.conf.Attendance.Timezone != "" {
		if _, err := time.LoadLocation(cv.conf.Attendance.Timezone); err != nil {
			return fmt.Errorf("attendance.timezone: %w", err)
		}
	}
	if cv.conf.Site.Timeout < 0 {
		return errors.New("site.timeout must not be negative")
	}
	return nil
}
