package step

import (
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
)

func exportEnvironmentWithEnvman(cmdFactory command.Factory, keyStr, valueStr string) error {
	cmd := cmdFactory.Create("envman", []string{"add", "--key", keyStr}, &command.Opts{Stdin: strings.NewReader(valueStr)})
	return cmd.Run()
}

// ExportOutputValue makes a value available to later steps of the workflow in
// the given environment variable.
func ExportOutputValue(cmdFactory command.Factory, key, value string, logger log.Logger) error {
	if err := exportEnvironmentWithEnvman(cmdFactory, key, value); err != nil {
		return err
	}

	logger.Donef("%s: %s", key, value)
	return nil
}
