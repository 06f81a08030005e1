package simulator

import "fmt"

// CommandError is returned when an external tool invocation exits with a
// non-zero code.
type CommandError struct {
	Cmd    string
	Output string
	Cause  error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %s, output: %s", e.Cmd, e.Cause, e.Output)
	}
	return fmt.Sprintf("%s failed: %s", e.Cmd, e.Cause)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// DeviceNotFoundError is returned when simctl has no record at all of the
// requested device. This is distinct from a device in Unknown state: Unknown
// means a record exists, with a state label this package doesn't recognise.
type DeviceNotFoundError struct {
	UDID string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("no simulator device found with UDID: %s", e.UDID)
}
