package firewall

import (
	"github.com/mheon/netavark/internal/logging"
)

// NoneDriver satisfies FirewallDriver without touching the packet
// filter, for hosts where firewall management is disabled or handled
// entirely by the administrator.
type NoneDriver struct {
	logger *logging.Logger
}

func (n *NoneDriver) SetupNetwork(net SetupNetwork) error {
	n.logger.Debug("none driver, skipping network setup", "network_hash_name", net.NetworkHashName)
	return nil
}

func (n *NoneDriver) TeardownNetwork(net SetupNetwork, completeTeardown bool) error {
	n.logger.Debug("none driver, skipping network teardown", "network_hash_name", net.NetworkHashName)
	return nil
}

func (n *NoneDriver) SetupPortForward(pf PortForwardConfig) error {
	n.logger.Debug("none driver, skipping port forward setup", "container_id", pf.ContainerID)
	return nil
}

func (n *NoneDriver) TeardownPortForward(tear TeardownPortForward) error {
	n.logger.Debug("none driver, skipping port forward teardown", "container_id", tear.Config.ContainerID)
	return nil
}
