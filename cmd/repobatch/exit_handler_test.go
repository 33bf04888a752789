package main

import (
	"errors"
	"testing"
)

type mockExitHandler struct {
	code   int
	exited bool
}

func (m *mockExitHandler) Exit(code int) {
	m.code = code
	m.exited = true
}

func (m *mockExitHandler) LogFatalError(_ error, _ string, _ ...any) {
	m.Exit(exitRunFailed)
}

func (m *mockExitHandler) LogSetupError(_ error, _ string, _ ...any) {
	m.Exit(exitSetupFailed)
}

func TestExitHandler_Codes(t *testing.T) {
	orig := exitHandler
	defer func() { exitHandler = orig }()

	mock := &mockExitHandler{}
	exitHandler = mock

	exitHandler.LogSetupError(errors.New("no credential"), "run setup failed")
	if !mock.exited || mock.code != exitSetupFailed {
		t.Fatalf("expected setup failure to exit %d, got %d", exitSetupFailed, mock.code)
	}

	mock.exited = false
	exitHandler.LogFatalError(errors.New("boom"), "command execution failed")
	if !mock.exited || mock.code != exitRunFailed {
		t.Fatalf("expected run failure to exit %d, got %d", exitRunFailed, mock.code)
	}
}
