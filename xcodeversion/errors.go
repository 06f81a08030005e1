package xcodeversion

import "fmt"

// NotInstalledError is returned when xcodebuild can't be executed at all:
// the Xcode Command Line Tools are missing from the host.
type NotInstalledError struct {
	Cause error
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("Xcode is not installed (xcodebuild -version failed): %s", e.Cause)
}

func (e *NotInstalledError) Unwrap() error {
	return e.Cause
}

// VersionTooLowError is returned when the installed Xcode version is older
// than the required minimum. Both versions are in dot joined form.
type VersionTooLowError struct {
	Required  string
	Installed string
}

func (e *VersionTooLowError) Error() string {
	return fmt.Sprintf("Xcode %s is required, but %s is installed. Please update Xcode.", e.Required, e.Installed)
}

type unexpectedOutputError struct {
	Line string
}

func (e *unexpectedOutputError) Error() string {
	return fmt.Sprintf("unexpected xcodebuild -version output: %s", e.Line)
}
