package notebook

import (
	"github.com/akeil/notebook/internal/logging"
)

// SetLogLevel sets the log level for the notebook packages.
// Accepts "debug", "info", "warning" and "error"; anything else disables
// logging.
func SetLogLevel(level string) {
	logging.SetLevel(logging.ParseLevel(level))
}
