package firewall

import (
	"fmt"

	"github.com/mheon/netavark/internal/logging"
	"github.com/mheon/netavark/internal/metrics"
)

// Reload re-applies every persisted firewall config through the driver
// named in the config store. It is the recovery path after an external
// firewall reload event wiped the ruleset.
func Reload(configDir string) error {
	conf, err := ReadFwConfig(configDir)
	if err != nil {
		return err
	}
	driver, err := NewDriver(conf.Driver)
	if err != nil {
		return err
	}
	return ReplayConfigs(driver, conf)
}

// ReplayConfigs re-invokes setup for every stored network and port
// config. Setup is idempotent, so replaying on top of intact rules is
// harmless. A failing entry is logged and counted but does not stop the
// replay of the remaining entries; one broken network should not leave
// every other network without rules.
func ReplayConfigs(driver FirewallDriver, conf *FirewallConfig) error {
	logger := logging.Default()
	reg := metrics.Get()

	// Bridge names are only stored in the network configs; port configs
	// find theirs through the shared network hash.
	bridges := make(map[string]string, len(conf.NetConfs))

	var failed int
	for _, nc := range conf.NetConfs {
		bridges[nc.NetworkHashName] = nc.BridgeName
		if err := driver.SetupNetwork(nc); err != nil {
			logger.Error("replay network setup", "network_hash_name", nc.NetworkHashName, "error", err)
			failed++
		}
	}
	for _, pc := range conf.PortConfs {
		pc.NetworkInterface = bridges[pc.NetworkHashName]
		if err := driver.SetupPortForward(pc); err != nil {
			logger.Error("replay port forward setup", "container_id", pc.ContainerID, "network_name", pc.NetworkName, "error", err)
			failed++
		}
	}

	if failed > 0 {
		reg.ReloadTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("replaying firewall configs: %d entries failed", failed)
	}
	reg.ReloadTotal.WithLabelValues("success").Inc()
	return nil
}
