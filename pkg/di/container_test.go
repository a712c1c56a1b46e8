package di

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-character-list/config"
	"github.com/goliatone/go-character-list/imagestore"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/pkg/testsupport"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 2 * time.Second
	cfg.Store = imagestore.Config{
		Driver: imagestore.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	cfg.List.SearchDebounce = 20 * time.Millisecond
	cfg.Logging.Level = "disabled"
	return cfg
}

func newTestContainer(t *testing.T, cfg config.Config) *Container {
	t.Helper()
	c, err := NewContainerWithLogger(context.Background(), cfg, logging.NewWithWriter(cfg.Logging, io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewContainer(t *testing.T) {
	api := testsupport.NewFakeAPI(t, []string{"Rick Sanchez"})
	cfg := testConfig(api.BaseURL())

	c := newTestContainer(t, cfg)

	assert.NotNil(t, c.CacheService())
	assert.NotNil(t, c.KeySerializer())
	assert.NotNil(t, c.Client())
	assert.NotNil(t, c.Memory())
	assert.NotNil(t, c.Store())
	assert.NotNil(t, c.Pipeline())
	assert.NotNil(t, c.Alerts())
	assert.Equal(t, cfg, c.Config())

	count, err := c.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("not a url")

	c, err := NewContainer(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestNewContainerUnreachableStore(t *testing.T) {
	cfg := testConfig("https://example.invalid/api")
	cfg.Store.DSN = "file:/nonexistent/dir/charlist.db?mode=ro"

	c, err := NewContainer(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, errors.CodeDatabase, errors.GetCode(err))
}

func TestNewControllerUsesListConfig(t *testing.T) {
	api := testsupport.NewFakeAPI(t, []string{"Rick Sanchez"})
	cfg := testConfig(api.BaseURL())
	cfg.List.PerPage = 20

	c := newTestContainer(t, cfg)
	ctrl := c.NewController(context.Background())
	t.Cleanup(ctrl.Close)

	assert.Equal(t, 20, ctrl.Pagination().PerPage)
	assert.NotEmpty(t, ctrl.Owner())

	other := c.NewController(context.Background())
	t.Cleanup(other.Close)
	assert.NotEqual(t, ctrl.Owner(), other.Owner())
}
