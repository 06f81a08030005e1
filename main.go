package main

import (
	"os"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/simulator"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/step"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/steprunner"
	"github.com/bitrise-steplib/steps-xcode-simulator-boot/xcodeversion"
)

func main() {
	logger := log.NewLogger()
	envRepository := env.NewRepository()
	commandFactory := command.NewFactory(envRepository)

	simulatorStarter := step.NewSimulatorStarter(
		logger,
		commandFactory,
		stepconf.NewInputParser(envRepository),
		xcodeversion.NewChecker(commandFactory, logger),
		simulator.NewManager(commandFactory, logger),
		pathutil.NewPathChecker(),
	)

	runner := steprunner.NewStepRunner[step.Config, step.Result](logger)
	os.Exit(runner.Run(simulatorStarter))
}
