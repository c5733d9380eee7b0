package firewall

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDriver() (*IptablesDriver, *MockIPTables) {
	conn := NewMockIPTables()
	return NewWithConn(conn, nil), conn
}

func testNetwork(hash string, subnets ...string) SetupNetwork {
	net := SetupNetwork{
		BridgeName:      "podman0",
		NetworkHashName: hash,
		Isolation:       IsolateNever,
		DNSPort:         53,
	}
	for _, s := range subnets {
		net.Subnets = append(net.Subnets, netip.MustParsePrefix(s))
	}
	return net
}

func TestSetupNetwork(t *testing.T) {
	driver, conn := testDriver()

	require.NoError(t, driver.SetupNetwork(testNetwork("hash", "10.0.0.0/24")))

	assert.Equal(t, []string{
		"-d 10.0.0.0/24 -j ACCEPT",
		"! -d 224.0.0.0/4 -j MASQUERADE",
	}, conn.Rules("nat", "NETAVARK-hash"), "masquerade must come last")

	assert.Equal(t, []string{
		"-m comment --comment netavark firewall plugin rules -j NETAVARK_FORWARD",
	}, conn.Rules("filter", "FORWARD"))

	assert.Equal(t, []string{
		"-d 10.0.0.0/24 -m conntrack --ctstate RELATED,ESTABLISHED -j ACCEPT",
		"-s 10.0.0.0/24 -j ACCEPT",
	}, conn.Rules("filter", "NETAVARK_FORWARD"))
}

func TestSetupNetworkIdempotent(t *testing.T) {
	driver, conn := testDriver()
	net := testNetwork("hash", "10.0.0.0/24")

	require.NoError(t, driver.SetupNetwork(net))
	want := conn.AllRules()

	require.NoError(t, driver.SetupNetwork(net))
	assert.Equal(t, want, conn.AllRules(), "second setup must not duplicate rules")
}

func TestForwardJumpStaysFirstAndUnique(t *testing.T) {
	driver, conn := testDriver()

	// Host-level forward rules that must not shadow container traffic.
	require.NoError(t, conn.Append("filter", "FORWARD", "-j", "REJECT"))

	require.NoError(t, driver.SetupNetwork(testNetwork("aaa", "10.0.0.0/24")))
	require.NoError(t, driver.SetupNetwork(testNetwork("bbb", "10.89.0.0/24")))

	forward := conn.Rules("filter", "FORWARD")
	require.NotEmpty(t, forward)
	assert.Equal(t, "-m comment --comment netavark firewall plugin rules -j NETAVARK_FORWARD", forward[0])

	count := 0
	for _, rule := range forward {
		if rule == forward[0] {
			count++
		}
	}
	assert.Equal(t, 1, count, "jump rule must appear exactly once")
}

func TestTeardownNetworkPartial(t *testing.T) {
	driver, conn := testDriver()
	net := testNetwork("hash", "10.0.0.0/24")

	require.NoError(t, driver.SetupNetwork(net))
	require.NoError(t, driver.TeardownNetwork(net, false))

	assert.Len(t, conn.Rules("filter", "NETAVARK_FORWARD"), 2, "allow rules stay until complete teardown")
	assert.True(t, conn.HasChain("nat", "NETAVARK-hash"))
}

func TestTeardownNetworkComplete(t *testing.T) {
	driver, conn := testDriver()
	net := testNetwork("hash", "10.0.0.0/24")

	require.NoError(t, driver.SetupNetwork(net))
	require.NoError(t, driver.TeardownNetwork(net, true))

	assert.Empty(t, conn.Rules("filter", "NETAVARK_FORWARD"))
	// The per-network NAT chain lifecycle belongs to the port-forward
	// teardown path, not this one.
	assert.True(t, conn.HasChain("nat", "NETAVARK-hash"))
}

func TestTeardownNetworkNeverSetUp(t *testing.T) {
	driver, conn := testDriver()

	require.NoError(t, driver.TeardownNetwork(testNetwork("hash", "10.0.0.0/24"), true))
	assert.Empty(t, conn.Rules("filter", "NETAVARK_FORWARD"))
	assert.Empty(t, conn.Rules("filter", "FORWARD"))
}

func TestSetupNetworkNoSubnets(t *testing.T) {
	driver, conn := testDriver()

	require.NoError(t, driver.SetupNetwork(testNetwork("hash")))
	assert.Empty(t, conn.AllRules())
}

func TestSetupNetworkMultipleSubnets(t *testing.T) {
	driver, conn := testDriver()

	require.NoError(t, driver.SetupNetwork(testNetwork("hash", "10.0.0.0/24", "10.89.0.0/24")))

	assert.Equal(t, []string{
		"-d 10.0.0.0/24 -j ACCEPT",
		"! -d 224.0.0.0/4 -j MASQUERADE",
		"-d 10.89.0.0/24 -j ACCEPT",
	}, conn.Rules("nat", "NETAVARK-hash")[:3])
	assert.Len(t, conn.Rules("filter", "NETAVARK_FORWARD"), 4)
}
