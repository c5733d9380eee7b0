package firewall

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheon/netavark/internal/network"
)

func TestReplayConfigsRebuildsRules(t *testing.T) {
	configDir := t.TempDir()

	netConf := testNetConf()
	portConf := testPortConf()
	portConf.PortMappings = []PortMapping{{HostPort: 8080, ContainerPort: 80}}
	require.NoError(t, WriteFwConfig(configDir, "abc", "123", DriverIptables, netConf, portConf))

	conf, err := ReadFwConfig(configDir)
	require.NoError(t, err)

	mockSys := new(network.MockSystemController)
	mockLink := new(network.MockNetlinker)
	origSys := network.DefaultSystemController
	origLink := network.DefaultNetlinker
	network.DefaultSystemController = mockSys
	network.DefaultNetlinker = mockLink
	defer func() {
		network.DefaultSystemController = origSys
		network.DefaultNetlinker = origLink
	}()

	// The bridge name must be recovered from the stored network config.
	mockLink.On("LinkByName", "bridge").Return(nil, nil).Once()
	mockSys.On("WriteSysctl", "net.ipv4.conf.bridge.route_localnet", "1").Return(nil).Once()

	driver, conn := testDriver()
	require.NoError(t, ReplayConfigs(driver, conf))

	assert.Contains(t, conn.Rules("nat", "NETAVARK-hash"), "-d 10.0.0.0/24 -j ACCEPT")
	assert.Contains(t, conn.Rules("nat", "POSTROUTING"), "-j NETAVARK-hash -s 10.0.0.2 -m comment --comment name: name id: 123")
	assert.Contains(t, conn.Rules("nat", "NETAVARK-DN-hash"), "-j DNAT -p tcp --to-destination 10.0.0.2:80 --destination-port 8080")
	mockSys.AssertExpectations(t)
	mockLink.AssertExpectations(t)
}

func TestReplayConfigsContinuesPastFailures(t *testing.T) {
	broken := SetupNetwork{
		Subnets:         []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")},
		NetworkHashName: "bad",
	}
	good := *testPortConf()
	good.PortMappings = []PortMapping{{HostPort: 8080, ContainerPort: 80}}

	driver, conn := testDriver()
	conn.Errs["insert"] = assert.AnError

	err := ReplayConfigs(driver, &FirewallConfig{
		Driver:    DriverIptables,
		NetConfs:  []SetupNetwork{broken},
		PortConfs: []PortForwardConfig{good},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 entries failed")
	// The port forward entry was still replayed.
	assert.Contains(t, conn.Rules("nat", "NETAVARK-DN-hash"), "-j DNAT -p tcp --to-destination 10.0.0.2:80 --destination-port 8080")
}

func TestReloadUnknownDriver(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, WriteFwConfig(configDir, "abc", "123", "bogus", testNetConf(), testPortConf()))

	err := Reload(configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported firewall driver")
}
