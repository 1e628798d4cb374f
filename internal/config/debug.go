package config

import (
	"os"
	"strconv"
)

// IsDebug reports whether CAMPUS_DEBUG is set to a true value ("1", "true").
func IsDebug() bool {
	on, _ := strconv.ParseBool(os.Getenv("CAMPUS_DEBUG"))
	return on
}
