package steps

import (
	"context"

	"dronefleet/test/functional/driver"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

type FeatureContext struct {
	cliDriver *driver.CLIDriver
	exitCode  int
	require   *require.Assertions
	t         godog.TestingT
}

func NewFeatureContext() *FeatureContext {
	return &FeatureContext{}
}

func (fc *FeatureContext) RegisterSteps(ctx *godog.ScenarioContext) {
	// Server state
	ctx.Given(`^a user "([^"]*)" with password "([^"]*)" exists$`, fc.aUserWithPasswordExists)
	ctx.Given(`^I am logged in as "([^"]*)"$`, fc.iAmLoggedInAs)
	ctx.Given(`^the following (\w+) exist:$`, fc.theFollowingEntitiesExist)
	ctx.Given(`^the API answers (GET|POST|PUT|DELETE) "([^"]*)" with status (\d+)$`, fc.theAPIAnswersWithStatus)

	// Commands
	ctx.When("^I run `([^`]*)`$", fc.iRun)
	ctx.Then(`^the command should succeed$`, fc.theCommandShouldSucceed)
	ctx.Then(`^the command should fail$`, fc.theCommandShouldFail)
	ctx.Then(`^the command should fail with a usage error$`, fc.theCommandShouldFailWithAUsageError)
	ctx.Then(`^the output should contain "([^"]*)"$`, fc.theOutputShouldContain)
	ctx.Then(`^the output should not contain "([^"]*)"$`, fc.theOutputShouldNotContain)
	ctx.Then(`^the error output should be "([^"]*)"$`, fc.theErrorOutputShouldBe)

	// Requests
	ctx.Then(`^no request should have been sent$`, fc.noRequestShouldHaveBeenSent)
	ctx.Then(`^the last request should be (GET|POST|PUT|DELETE) "([^"]*)"$`, fc.theLastRequestShouldBe)
	ctx.Then(`^the last request query should be "([^"]*)"$`, fc.theLastRequestQueryShouldBe)
	ctx.Then(`^the last request body should be:$`, fc.theLastRequestBodyShouldBe)
	ctx.Then(`^the last request should carry the session token$`, fc.theLastRequestShouldCarryTheSessionToken)
	ctx.Then(`^there should be (\d+) (\w+) on the server$`, fc.thereShouldBeEntitiesOnTheServer)

	// Session
	ctx.Then(`^the stored session should be empty$`, fc.theStoredSessionShouldBeEmpty)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		fc.t = godog.T(ctx)
		fc.require = require.New(fc.t)

		return ctx, fc.reset()
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if fc.cliDriver != nil {
			fc.cliDriver.Close()
			fc.cliDriver = nil
		}
		return ctx, err
	})
}

func (fc *FeatureContext) reset() error {
	cliDriver, err := driver.NewCLIDriver()
	if err != nil {
		return err
	}
	fc.cliDriver = cliDriver
	fc.exitCode = 0
	return nil
}
