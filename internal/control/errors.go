package control

import "errors"

var (
	// ErrHardwareIO marks indicator and display failures. They end the process.
	ErrHardwareIO = errors.New("hardware I/O error")
	// ErrExternalCommand marks managed-service invocation failures. They are
	// only logged.
	ErrExternalCommand = errors.New("external command failed")
)
