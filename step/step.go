package step

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/appbundle"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/pretty"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/simulator"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/xcodeversion"
	version "github.com/hashicorp/go-version"
	"github.com/kballard/go-shellquote"
)

const (
	simulatorUDIDEnvKey      = "BITRISE_SIMULATOR_UDID"
	simulatorOSVersionEnvKey = "BITRISE_SIMULATOR_OS_VERSION"
	simulatorNameEnvKey      = "BITRISE_SIMULATOR_NAME"
	simulatorStatusEnvKey    = "BITRISE_SIMULATOR_STATUS"

	// osVersionLatest selects the newest installed runtime of the platform.
	osVersionLatest = "latest"

	statePollInterval = 5 * time.Second
)

// Inputs ...
type Inputs struct {
	Platform            string `env:"platform,opt[iOS,tvOS,watchOS]"`
	OSVersion           string `env:"os_version,required"`
	DeviceName          string `env:"device_name,required"`
	MinimumXcodeVersion string `env:"minimum_xcode_version"`

	ResetDevice     bool   `env:"reset_device,opt[yes,no]"`
	OpenSimulatorUI bool   `env:"open_simulator_ui,opt[yes,no]"`
	AppPath         string `env:"app_path"`
	LaunchArguments string `env:"launch_arguments"`

	WaitForBootTimeout int  `env:"wait_for_boot_timeout"`
	VerboseLog         bool `env:"verbose_log,opt[yes,no]"`
}

// Config ...
type Config struct {
	Inputs
	SimulatorPlatform Platform
	MinXcodeVersion   *version.Version
	LaunchArgs        []string
}

// Result ...
type Result struct {
	UDID       string
	OSVersion  string
	DeviceName string
	Status     simulator.DeviceState
}

// SimulatorStarter verifies the Xcode toolchain, selects a simulator device
// and makes sure it is booted, optionally installing and launching an app
// on it.
type SimulatorStarter struct {
	logger           log.Logger
	commandFactory   command.Factory
	inputParser      stepconf.InputParser
	xcodeChecker     xcodeversion.Checker
	simulatorManager simulator.Manager
	pathChecker      pathutil.PathChecker
}

// NewSimulatorStarter ...
func NewSimulatorStarter(
	logger log.Logger,
	commandFactory command.Factory,
	inputParser stepconf.InputParser,
	xcodeChecker xcodeversion.Checker,
	simulatorManager simulator.Manager,
	pathChecker pathutil.PathChecker,
) SimulatorStarter {
	return SimulatorStarter{
		logger:           logger,
		commandFactory:   commandFactory,
		inputParser:      inputParser,
		xcodeChecker:     xcodeChecker,
		simulatorManager: simulatorManager,
		pathChecker:      pathChecker,
	}
}

// ProcessInputs ...
func (s SimulatorStarter) ProcessInputs() (Config, error) {
	var inputs Inputs
	if err := s.inputParser.Parse(&inputs); err != nil {
		return Config{}, fmt.Errorf("issue with input: %s", err)
	}

	stepconf.Print(inputs)
	s.logger.Println()
	s.logger.EnableDebugLog(inputs.VerboseLog)

	config := Config{Inputs: inputs}

	platform, err := parsePlatform(inputs.Platform)
	if err != nil {
		return Config{}, fmt.Errorf("issue with input Platform: %s", err)
	}
	config.SimulatorPlatform = platform

	if inputs.MinimumXcodeVersion != "" {
		minVersion, err := version.NewVersion(inputs.MinimumXcodeVersion)
		if err != nil {
			return Config{}, fmt.Errorf("issue with input MinimumXcodeVersion (%s): %s", inputs.MinimumXcodeVersion, err)
		}
		config.MinXcodeVersion = minVersion
	}

	if inputs.AppPath != "" {
		if filepath.Ext(inputs.AppPath) != ".app" {
			return Config{}, fmt.Errorf("issue with input AppPath: should be an .app bundle path")
		}

		if exist, err := s.pathChecker.IsPathExists(inputs.AppPath); err != nil {
			return Config{}, fmt.Errorf("issue with input AppPath: %s", err)
		} else if !exist {
			return Config{}, fmt.Errorf("issue with input AppPath: path does not exist: %s", inputs.AppPath)
		}
	}

	if inputs.LaunchArguments != "" {
		args, err := shellquote.Split(inputs.LaunchArguments)
		if err != nil {
			return Config{}, fmt.Errorf("issue with input LaunchArguments (%s): %s", inputs.LaunchArguments, err)
		}
		config.LaunchArgs = args
	}

	if inputs.WaitForBootTimeout <= 0 {
		return Config{}, fmt.Errorf("issue with input WaitForBootTimeout: should be greater than 0")
	}

	return config, nil
}

// EnsureDependencies ...
func (s SimulatorStarter) EnsureDependencies(config Config) error {
	s.logger.Println()
	s.logger.Infof("Checking Xcode installation")

	if err := s.xcodeChecker.EnsureInstalled(config.MinXcodeVersion); err != nil {
		return err
	}

	s.logger.Donef("Xcode is installed")
	return nil
}

// Run ...
func (s SimulatorStarter) Run(config Config) (Result, error) {
	s.logger.Println()
	s.logger.Infof("Collecting available %s simulators", config.SimulatorPlatform)

	inventory, err := s.simulatorManager.List(string(config.SimulatorPlatform))
	if err != nil {
		return Result{}, fmt.Errorf("failed to list simulators: %w", err)
	}
	s.logger.Debugf("Simulator inventory:\n%s", pretty.Object(inventory))

	osVersion := config.OSVersion
	if osVersion == osVersionLatest {
		osVersion, err = inventory.LatestVersion()
		if err != nil {
			return Result{}, fmt.Errorf("failed to find the latest %s runtime: %w", config.SimulatorPlatform, err)
		}
		s.logger.Printf("Latest installed %s version: %s", config.SimulatorPlatform, osVersion)
	}

	udid, err := inventory.FindDevice(osVersion, config.DeviceName)
	if err != nil {
		return Result{}, err
	}
	s.logger.Donef("Simulator found: %s (%s %s), UDID: %s", config.DeviceName, config.SimulatorPlatform, osVersion, udid)

	result := Result{
		UDID:       udid,
		OSVersion:  osVersion,
		DeviceName: config.DeviceName,
	}

	state, err := s.simulatorManager.State(udid)
	if err != nil {
		return result, fmt.Errorf("failed to determine simulator state: %w", err)
	}
	result.Status = state
	s.logger.Printf("Simulator state: %s", state)

	if config.ResetDevice {
		if err := s.resetDevice(udid, state, config.WaitForBootTimeout); err != nil {
			return result, fmt.Errorf("failed to reset simulator: %w", err)
		}
		state = simulator.Shutdown
		result.Status = state
	}

	if state != simulator.Booted {
		s.logger.Println()
		s.logger.Infof(colorstring.Greenf("Booting simulator: %s (%s %s)", config.DeviceName, config.SimulatorPlatform, osVersion))

		if state == simulator.ShuttingDown {
			if err := s.waitForState(udid, simulator.Shutdown, config.WaitForBootTimeout); err != nil {
				return result, err
			}
		}

		if err := s.simulatorManager.Boot(udid); err != nil {
			return result, fmt.Errorf("failed to boot simulator: %w", err)
		}
		if err := s.waitForState(udid, simulator.Booted, config.WaitForBootTimeout); err != nil {
			return result, err
		}

		result.Status = simulator.Booted
		s.logger.Donef("Simulator booted")
	}

	if config.OpenSimulatorUI {
		if err := s.simulatorManager.OpenSimulatorApp(udid); err != nil {
			return result, fmt.Errorf("failed to open the Simulator app: %w", err)
		}
	}

	if config.AppPath != "" {
		if err := s.installAndLaunchApp(config, udid); err != nil {
			return result, err
		}
	}

	return result, nil
}

// ExportOutput exports the selected simulator's details for later steps. It
// runs even after a failed Run, so whatever was resolved is still reported.
func (s SimulatorStarter) ExportOutput(config Config, result Result) error {
	s.logger.Println()
	s.logger.Infof("Exporting outputs")

	outputs := map[string]string{
		simulatorUDIDEnvKey:      result.UDID,
		simulatorOSVersionEnvKey: result.OSVersion,
		simulatorNameEnvKey:      result.DeviceName,
		simulatorStatusEnvKey:    string(result.Status),
	}

	for _, key := range []string{simulatorUDIDEnvKey, simulatorOSVersionEnvKey, simulatorNameEnvKey, simulatorStatusEnvKey} {
		value := outputs[key]
		if value == "" {
			continue
		}

		if err := ExportOutputValue(s.commandFactory, key, value, s.logger); err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
	}

	return nil
}

func (s SimulatorStarter) resetDevice(udid string, state simulator.DeviceState, timeoutSec int) error {
	s.logger.Println()
	s.logger.Infof("Resetting simulator (%s)", udid)

	if state != simulator.Shutdown {
		if state != simulator.ShuttingDown {
			if err := s.simulatorManager.Shutdown(udid); err != nil {
				return err
			}
		}
		if err := s.waitForState(udid, simulator.Shutdown, timeoutSec); err != nil {
			return err
		}
	}

	// erase only works on a Shutdown device
	return s.simulatorManager.Erase(udid)
}

// pollSchedule sizes the state polling for the given timeout: the interval
// never exceeds the timeout and the sleeps between polls add up to at most
// the timeout.
func pollSchedule(timeoutSec int) (uint, time.Duration) {
	timeout := time.Duration(timeoutSec) * time.Second
	interval := statePollInterval
	if timeout < interval {
		interval = timeout
	}
	return uint(timeout / interval), interval
}

func (s SimulatorStarter) waitForState(udid string, want simulator.DeviceState, timeoutSec int) error {
	retries, interval := pollSchedule(timeoutSec)

	err := retry.Times(retries).Wait(interval).TryWithAbort(func(attempt uint) (error, bool) {
		state, err := s.simulatorManager.State(udid)
		if err != nil {
			var notFoundErr *simulator.DeviceNotFoundError
			if errors.As(err, &notFoundErr) {
				return err, true
			}
			return err, false
		}

		if state != want {
			s.logger.Debugf("Simulator state is %s, waiting...", state)
			return fmt.Errorf("simulator state is %s", state), false
		}

		return nil, false
	})
	if err != nil {
		return fmt.Errorf("simulator did not reach %s state in %d seconds: %w", want, timeoutSec, err)
	}

	return nil
}

func (s SimulatorStarter) installAndLaunchApp(config Config, udid string) error {
	s.logger.Println()
	s.logger.Infof("Installing app: %s", config.AppPath)

	bundleID, err := appbundle.ReadBundleIdentifier(config.AppPath)
	if err != nil {
		return fmt.Errorf("failed to determine the app's bundle identifier: %w", err)
	}
	s.logger.Printf("App bundle ID: %s", bundleID)

	if err := s.simulatorManager.Uninstall(udid, bundleID); err != nil {
		s.logger.Warnf("Failed to uninstall the previous app version: %s", err)
	}

	if err := s.simulatorManager.Install(udid, config.AppPath); err != nil {
		return fmt.Errorf("failed to install app: %w", err)
	}

	if err := s.simulatorManager.Launch(udid, bundleID, config.LaunchArgs...); err != nil {
		return fmt.Errorf("failed to launch app: %w", err)
	}

	s.logger.Donef("App is running on the simulator")
	return nil
}
