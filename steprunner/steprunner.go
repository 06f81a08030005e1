package steprunner

import (
	"fmt"

	"github.com/bitrise-io/go-utils/v2/errorutil"
	"github.com/bitrise-io/go-utils/v2/log"
)

// Step is the lifecycle every step of this steplib goes through.
type Step[C any, R any] interface {
	ProcessInputs() (C, error)
	EnsureDependencies(C) error
	Run(C) (R, error)
	ExportOutput(C, R) error
}

// StepRunner drives a Step through its phases and maps failures to an exit
// code.
type StepRunner[C any, R any] struct {
	logger log.Logger
}

// NewStepRunner ...
func NewStepRunner[C any, R any](logger log.Logger) StepRunner[C, R] {
	return StepRunner[C, R]{
		logger: logger,
	}
}

// Run ...
func (r StepRunner[C, R]) Run(step Step[C, R]) int {
	config, err := step.ProcessInputs()
	if err != nil {
		r.logger.Errorf(errorutil.FormattedError(fmt.Errorf("processing Step inputs failed: %w", err)))
		return 1
	}

	if err := step.EnsureDependencies(config); err != nil {
		r.logger.Errorf(errorutil.FormattedError(fmt.Errorf("installing Step dependencies failed: %w", err)))
		return 1
	}

	exitCode := 0
	result, err := step.Run(config)
	if err != nil {
		r.logger.Errorf(errorutil.FormattedError(fmt.Errorf("step run failed: %w", err)))
		exitCode = 1
		// outputs are exported even when the run failed, so later steps can
		// report on whatever was resolved
	}

	if err := step.ExportOutput(config, result); err != nil {
		r.logger.Errorf(errorutil.FormattedError(fmt.Errorf("exporting Step outputs failed: %w", err)))
		return 1
	}

	return exitCode
}
