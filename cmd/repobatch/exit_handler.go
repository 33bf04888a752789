package main

import (
	"os"

	"github.com/loykin/repobatch/internal/common"
)

// Exit codes reported by the process: 0 full success, 1 at least one target
// failed, 2 setup failed before any target was attempted.
const (
	exitSuccess     = 0
	exitRunFailed   = 1
	exitSetupFailed = 2
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
	LogSetupError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct {
	logger *common.Logger
}

// NewDefaultExitHandler creates a new default exit handler
func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{
		logger: common.GetLogger().WithComponent("main"),
	}
}

// Exit terminates the program with the given exit code
func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

// LogFatalError logs a fatal error and exits with the run-failure code
func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	h.logger.Error(msg, allKeyvals...)
	h.Exit(exitRunFailed)
}

// LogSetupError logs a setup error (config, credential) and exits with the
// setup-failure code. No target was attempted, so the outcome log stays
// untouched.
func (h *DefaultExitHandler) LogSetupError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	h.logger.Error(msg, allKeyvals...)
	h.Exit(exitSetupFailed)
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = NewDefaultExitHandler()
