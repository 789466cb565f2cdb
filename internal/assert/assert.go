// Package assert reports broken internal invariants.
//
// Builds tagged stratumdebug panic on a failed assertion. Release builds log
// the failure at error level and let the caller continue best-effort.
package assert

import (
	"fmt"
	"log/slog"
)

// That reports msg when cond is false and returns cond.
func That(cond bool, logger *slog.Logger, msg string, args ...any) bool {
	if cond {
		return true
	}
	if enabled {
		panic(fmt.Sprintf("assertion failed: %s %v", msg, args))
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("assertion failed: "+msg, args...)
	return false
}
