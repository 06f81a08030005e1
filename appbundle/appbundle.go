package appbundle

import (
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/go-utils/fileutil"
	"howett.net/plist"
)

type infoPlist struct {
	CFBundleIdentifier string `plist:"CFBundleIdentifier"`
}

// ReadBundleIdentifier reads the CFBundleIdentifier out of the Info.plist of
// the .app bundle at appPth.
func ReadBundleIdentifier(appPth string) (string, error) {
	infoPlistPth := filepath.Join(appPth, "Info.plist")

	content, err := fileutil.ReadBytesFromFile(infoPlistPth)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %s", infoPlistPth, err)
	}

	var info infoPlist
	if _, err := plist.Unmarshal(content, &info); err != nil {
		return "", fmt.Errorf("failed to parse %s: %s", infoPlistPth, err)
	}

	if info.CFBundleIdentifier == "" {
		return "", fmt.Errorf("no CFBundleIdentifier found in %s", infoPlistPth)
	}

	return info.CFBundleIdentifier, nil
}
