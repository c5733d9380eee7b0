package firewall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriverNone(t *testing.T) {
	driver, err := NewDriver(DriverNone)
	require.NoError(t, err)

	// The none driver never touches the packet filter.
	require.NoError(t, driver.SetupNetwork(testNetwork("hash", "10.0.0.0/24")))
	require.NoError(t, driver.TeardownNetwork(testNetwork("hash", "10.0.0.0/24"), true))
	require.NoError(t, driver.SetupPortForward(testPortForward("123", "10.0.0.2")))
	require.NoError(t, driver.TeardownPortForward(TeardownPortForward{Config: testPortForward("123", "10.0.0.2")}))
}

func TestNewDriverUnknown(t *testing.T) {
	_, err := NewDriver("nftables")
	assert.Error(t, err)
}
