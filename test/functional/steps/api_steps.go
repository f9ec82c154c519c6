package steps

import (
	"context"
	"strconv"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/usecases"

	"github.com/cucumber/godog"
)

func (fc *FeatureContext) aUserWithPasswordExists(username, password string) error {
	fc.cliDriver.API.AddUser(username, password)
	return nil
}

func (fc *FeatureContext) iAmLoggedInAs(ctx context.Context, username string) error {
	token := fc.cliDriver.API.IssueToken(username)
	if err := fc.cliDriver.Store.Set(ctx, usecases.TokenKey, token); err != nil {
		return err
	}
	return fc.cliDriver.Store.Set(ctx, usecases.UsernameKey, username)
}

// theFollowingEntitiesExist seeds rows of a table whose header names the
// fields. Cells holding numbers or booleans are stored with that type.
func (fc *FeatureContext) theFollowingEntitiesExist(key string, table *godog.Table) error {
	fc.require.NotEmpty(table.Rows, "the table needs a header row")

	header := table.Rows[0].Cells
	for _, row := range table.Rows[1:] {
		record := make(domain.Record, len(header))
		for i, cell := range row.Cells {
			record[header[i].Value] = parseCell(cell.Value)
		}
		fc.cliDriver.API.Seed(domain.EntityKey(key), record)
	}
	return nil
}

func parseCell(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func (fc *FeatureContext) theAPIAnswersWithStatus(method, path string, status int) error {
	fc.cliDriver.API.FailNext(method, path, status, 1)
	return nil
}

func (fc *FeatureContext) noRequestShouldHaveBeenSent() error {
	fc.require.Empty(fc.cliDriver.API.Requests())
	return nil
}

func (fc *FeatureContext) theLastRequestShouldBe(method, path string) error {
	last, ok := fc.cliDriver.API.LastRequest()
	fc.require.True(ok, "no request was sent")
	fc.require.Equal(method, last.Method)
	fc.require.Equal(path, last.Path)
	return nil
}

func (fc *FeatureContext) theLastRequestQueryShouldBe(query string) error {
	last, ok := fc.cliDriver.API.LastRequest()
	fc.require.True(ok, "no request was sent")
	fc.require.Equal(query, last.Query.Encode())
	return nil
}

func (fc *FeatureContext) theLastRequestBodyShouldBe(body *godog.DocString) error {
	last, ok := fc.cliDriver.API.LastRequest()
	fc.require.True(ok, "no request was sent")
	fc.require.JSONEq(body.Content, string(last.Body))
	return nil
}

func (fc *FeatureContext) theLastRequestShouldCarryTheSessionToken(ctx context.Context) error {
	token, err := fc.cliDriver.Store.Get(ctx, usecases.TokenKey)
	fc.require.NoError(err)

	last, ok := fc.cliDriver.API.LastRequest()
	fc.require.True(ok, "no request was sent")
	fc.require.Equal("Bearer "+token, last.Header.Get("Authorization"))
	return nil
}

func (fc *FeatureContext) thereShouldBeEntitiesOnTheServer(count int, key string) error {
	fc.require.Equal(count, fc.cliDriver.API.Count(domain.EntityKey(key)))
	return nil
}

func (fc *FeatureContext) theStoredSessionShouldBeEmpty(ctx context.Context) error {
	for _, key := range []string{usecases.TokenKey, usecases.UsernameKey} {
		_, err := fc.cliDriver.Store.Get(ctx, key)
		fc.require.Error(err, "%s should be cleared", key)
	}
	return nil
}
