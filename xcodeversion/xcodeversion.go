package xcodeversion

import (
	"strconv"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	version "github.com/hashicorp/go-version"
)

// Checker verifies that the Xcode Command Line Tools are installed, and that
// their version meets a minimum requirement.
type Checker interface {
	EnsureInstalled(minVersion *version.Version) error
}

type checker struct {
	commandFactory command.Factory
	logger         log.Logger
}

// NewChecker ...
func NewChecker(commandFactory command.Factory, logger log.Logger) Checker {
	return checker{
		commandFactory: commandFactory,
		logger:         logger,
	}
}

// EnsureInstalled runs xcodebuild -version and validates the reported version
// against minVersion. A nil minVersion accepts any installed Xcode.
//
// xcodebuild's human readable output is not a stable contract: if the version
// can't be parsed out of it, a warning is logged and the check passes, instead
// of blocking the build on an unknown output format.
func (c checker) EnsureInstalled(minVersion *version.Version) error {
	cmd := c.commandFactory.Create("xcodebuild", []string{"-version"}, nil)

	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return &NotInstalledError{Cause: err}
	}

	if minVersion == nil {
		return nil
	}

	installedVersion, err := parseXcodebuildVersionOutput(out)
	if err != nil {
		c.logger.Warnf("Unable to determine the installed Xcode version: %s", err)
		c.logger.Warnf("Proceeding anyway, but if the build fails, an outdated Xcode is a likely cause.")
		return nil
	}

	c.logger.Printf("Xcode version: %s", installedVersion.String())

	if installedVersion.LessThan(minVersion) {
		return &VersionTooLowError{
			Required:  formatVersion(minVersion),
			Installed: formatVersion(installedVersion),
		}
	}

	return nil
}

func parseXcodebuildVersionOutput(out string) (*version.Version, error) {
	firstLine := strings.SplitN(out, "\n", 2)[0]
	if !strings.HasPrefix(firstLine, "Xcode ") {
		return nil, &unexpectedOutputError{Line: firstLine}
	}

	return version.NewVersion(strings.TrimPrefix(firstLine, "Xcode "))
}

// formatVersion renders a version in its zero padded, at least 3 component
// form: "11.2" becomes "11.2.0".
func formatVersion(v *version.Version) string {
	segments := v.Segments()

	segmentStrs := make([]string, len(segments))
	for i, segment := range segments {
		segmentStrs[i] = strconv.Itoa(segment)
	}

	return strings.Join(segmentStrs, ".")
}
