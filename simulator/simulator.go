package simulator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Manager queries and controls the simulator devices available on the host,
// through the xcrun simctl command line tool.
//
// Every operation issues a single blocking invocation and holds no state
// across calls, so a Manager is safe to use from multiple goroutines.
type Manager interface {
	List(osName string) (Inventory, error)
	State(udid string) (DeviceState, error)

	Boot(udid string) error
	Shutdown(udid string) error
	Erase(udid string) error
	OpenSimulatorApp(udid string) error
	Install(udid, appPth string) error
	Uninstall(udid, bundleID string) error
	Launch(udid, bundleID string, args ...string) error
}

type manager struct {
	commandFactory command.Factory
	logger         log.Logger
}

// NewManager ...
func NewManager(commandFactory command.Factory, logger log.Logger) Manager {
	return manager{
		commandFactory: commandFactory,
		logger:         logger,
	}
}

type listOutput struct {
	Runtimes []runtimeInfo           `json:"runtimes"`
	Devices  map[string][]deviceInfo `json:"devices"`
}

type runtimeInfo struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	IsAvailable bool   `json:"isAvailable"`
}

type deviceInfo struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	IsAvailable bool   `json:"isAvailable"`
	State       string `json:"state"`
}

// List returns the available simulators running the given OS (iOS, tvOS or
// watchOS). A platform with no matching runtimes yields an empty Inventory,
// not an error.
func (m manager) List(osName string) (Inventory, error) {
	out, err := m.runSimctlJSON("list", "-j")
	if err != nil {
		return nil, err
	}

	var payload listOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse simctl list output: %s", err)
	}

	inventory := Inventory{}
	for _, runtime := range payload.Runtimes {
		if !runtime.IsAvailable || !strings.HasPrefix(runtime.Name, osName+" ") {
			continue
		}

		osVersion := strings.SplitN(runtime.Name, " ", 2)[1]

		devices := map[string]string{}
		for _, device := range payload.Devices[runtime.Identifier] {
			if !device.IsAvailable {
				continue
			}
			devices[device.UDID] = device.Name
		}

		inventory[osVersion] = devices
	}

	return inventory, nil
}

// State reports the current lifecycle state of the device with the given UDID.
// An unrecognised state label maps to Unknown; a device simctl has no record
// of at all is a DeviceNotFoundError.
func (m manager) State(udid string) (DeviceState, error) {
	out, err := m.runSimctlJSON("list", "devices", "-j", udid)
	if err != nil {
		return Unknown, err
	}

	var payload listOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return Unknown, fmt.Errorf("failed to parse simctl list output: %s", err)
	}

	for _, devices := range payload.Devices {
		for _, device := range devices {
			if device.UDID == udid {
				return parseDeviceState(device.State), nil
			}
		}
	}

	return Unknown, &DeviceNotFoundError{UDID: udid}
}

// Boot ...
func (m manager) Boot(udid string) error {
	return m.runSimctl("boot", udid)
}

// Shutdown ...
func (m manager) Shutdown(udid string) error {
	return m.runSimctl("shutdown", udid)
}

// Erase resets a device to factory state. The device has to be Shutdown.
func (m manager) Erase(udid string) error {
	return m.runSimctl("erase", udid)
}

// OpenSimulatorApp brings up the Simulator UI for the given device.
func (m manager) OpenSimulatorApp(udid string) error {
	cmd := m.commandFactory.Create("open", []string{"-a", "Simulator", "--args", "-CurrentDeviceUDID", udid}, nil)
	m.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	if out, err := cmd.RunAndReturnTrimmedCombinedOutput(); err != nil {
		return &CommandError{Cmd: cmd.PrintableCommandArgs(), Output: out, Cause: err}
	}
	return nil
}

// Install installs the .app bundle at appPth onto the device.
func (m manager) Install(udid, appPth string) error {
	return m.runSimctl("install", udid, appPth)
}

// Uninstall removes the app with the given bundle ID from the device. It is
// not an error if the app isn't installed.
func (m manager) Uninstall(udid, bundleID string) error {
	return m.runSimctl("uninstall", udid, bundleID)
}

// Launch starts the app with the given bundle ID on the device.
func (m manager) Launch(udid, bundleID string, args ...string) error {
	return m.runSimctl(append([]string{"launch", udid, bundleID}, args...)...)
}

func (m manager) runSimctl(args ...string) error {
	cmd := m.commandFactory.Create("xcrun", append([]string{"simctl"}, args...), nil)
	m.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	if out, err := cmd.RunAndReturnTrimmedCombinedOutput(); err != nil {
		return &CommandError{Cmd: cmd.PrintableCommandArgs(), Output: out, Cause: err}
	}
	return nil
}

// runSimctlJSON captures stdout only, to keep warnings printed to stderr out
// of the JSON payload.
func (m manager) runSimctlJSON(args ...string) (string, error) {
	cmd := m.commandFactory.Create("xcrun", append([]string{"simctl"}, args...), nil)
	m.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	out, err := cmd.RunAndReturnTrimmedOutput()
	if err != nil {
		return "", &CommandError{Cmd: cmd.PrintableCommandArgs(), Output: out, Cause: err}
	}
	return out, nil
}
