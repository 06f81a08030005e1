package simulator

import (
	"fmt"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"
)

// Inventory is a snapshot of the simulators available on the host for one
// platform: OS version -> device UDID -> device display name.
//
// It is built fresh on every List call and never mutated afterwards. Map
// iteration order carries no meaning.
type Inventory map[string]map[string]string

// LatestVersion returns the highest OS version present in the inventory.
// Versions are compared numerically per component, so "14.10" is newer
// than "14.2".
func (i Inventory) LatestVersion() (string, error) {
	var latest *version.Version
	var latestKey string

	for versionStr := range i {
		v, err := version.NewVersion(versionStr)
		if err != nil {
			return "", fmt.Errorf("invalid OS version (%s) in the simulator list: %s", versionStr, err)
		}

		if latest == nil || v.GreaterThan(latest) {
			latest = v
			latestKey = versionStr
		}
	}

	if latest == nil {
		return "", fmt.Errorf("no simulator runtimes found")
	}

	return latestKey, nil
}

// FindDevice returns the UDID of the device with the given display name under
// the given OS version.
func (i Inventory) FindDevice(osVersion, name string) (string, error) {
	devices, ok := i[osVersion]
	if !ok {
		return "", fmt.Errorf("no simulators found for OS version %s, available versions: %s", osVersion, strings.Join(i.versions(), ", "))
	}

	for udid, deviceName := range devices {
		if deviceName == name {
			return udid, nil
		}
	}

	return "", fmt.Errorf("no simulator named %s found for OS version %s, available devices: %s", name, osVersion, strings.Join(deviceNames(devices), ", "))
}

func (i Inventory) versions() []string {
	var versions []string
	for versionStr := range i {
		versions = append(versions, versionStr)
	}
	sort.Strings(versions)
	return versions
}

func deviceNames(devices map[string]string) []string {
	var names []string
	for _, name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
