package utils

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures the package-level logger used across the service.
func SetupLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "maze",
	}))
	if err != nil {
		log.Warn("unknown LOG_LEVEL, using info", "level", level)
	}
}
