package steps

import (
	"context"

	"dronefleet/internal/fleet/cli"
)

func (fc *FeatureContext) iRun(ctx context.Context, commandLine string) error {
	fc.cliDriver.API.ClearRequests()

	code, err := fc.cliDriver.Run(ctx, commandLine)
	if err != nil {
		return err
	}
	fc.exitCode = code
	return nil
}

func (fc *FeatureContext) theCommandShouldSucceed() error {
	fc.require.Equal(cli.ExitOK, fc.exitCode, "stderr: %s", fc.cliDriver.Stderr())
	return nil
}

func (fc *FeatureContext) theCommandShouldFail() error {
	fc.require.Equal(cli.ExitFailure, fc.exitCode, "stdout: %s", fc.cliDriver.Stdout())
	return nil
}

func (fc *FeatureContext) theCommandShouldFailWithAUsageError() error {
	fc.require.Equal(cli.ExitUsage, fc.exitCode)
	return nil
}

func (fc *FeatureContext) theOutputShouldContain(text string) error {
	fc.require.Contains(fc.cliDriver.Stdout(), text)
	return nil
}

func (fc *FeatureContext) theOutputShouldNotContain(text string) error {
	fc.require.NotContains(fc.cliDriver.Stdout(), text)
	return nil
}

func (fc *FeatureContext) theErrorOutputShouldBe(text string) error {
	fc.require.Equal(text+"\n", fc.cliDriver.Stderr())
	return nil
}
