package firewall

import (
	"fmt"
	"net/netip"
	"strconv"

	"github.com/mheon/netavark/internal/network"
)

func networkComment(networkName, containerID string) []string {
	return []string{"-m", "comment", "--comment", fmt.Sprintf("name: %s id: %s", networkName, containerID)}
}

func dnatComment(networkName, containerID string) []string {
	return []string{"-m", "comment", "--comment", fmt.Sprintf("dnat name: %s id: %s", networkName, containerID)}
}

func localDestRule(chain string) []string {
	return []string{"-j", chain, "-m", "addrtype", "--dst-type", "LOCAL"}
}

func setMarkRule() []string {
	return []string{"-j", markTarget, "--set-xmark", hexMark + "/" + hexMark}
}

func masqMarkRule() []string {
	return []string{"-j", masqTarget, "-m", "comment", "--comment", "netavark portfw masq mark", "-m", "mark", "--mark", hexMark + "/" + hexMark}
}

// postroutingContainerRule jumps into the per-network chain for traffic
// sourced from the container. The comment is load-bearing: it is the
// only text distinguishing POSTROUTING rules of different containers on
// the same network.
func postroutingContainerRule(chain string, ip netip.Addr, networkName, containerID string) []string {
	rule := []string{"-j", chain, "-s", ip.String()}
	return append(rule, networkComment(networkName, containerID)...)
}

func hostPortDNATRule(dnChain string, pm PortMapping, networkName, containerID string) []string {
	rule := []string{"-j", dnChain, "-p", pm.protocol(), "-m", "multiport", "--destination-ports", strconv.Itoa(int(pm.HostPort))}
	return append(rule, dnatComment(networkName, containerID)...)
}

func setMarkSourceRule(source string, pm PortMapping) []string {
	return []string{"-j", hostportSetMarkChain, "-s", source, "-p", pm.protocol(), "--dport", strconv.Itoa(int(pm.HostPort))}
}

func dnatDestRule(ip netip.Addr, pm PortMapping) []string {
	dest := ip.String() + ":" + strconv.Itoa(int(pm.ContainerPort))
	return []string{"-j", dnatTarget, "-p", pm.protocol(), "--to-destination", dest, "--destination-port", strconv.Itoa(int(pm.HostPort))}
}

// SetupPortForward installs hairpin-capable DNAT for a container's
// published ports. Every step is idempotent; a failed call can be
// retried as-is and will complete the remainder.
func (d *IptablesDriver) SetupPortForward(pf PortForwardConfig) error {
	// Traffic arriving via localhost must be allowed to leave the
	// loopback network, otherwise the hairpin path is dropped before
	// DNAT takes effect.
	if pf.NetworkInterface != "" {
		if err := network.EnableRouteLocalnet(pf.NetworkInterface); err != nil {
			return err
		}
	}

	if pf.ContainerIPv4 == nil {
		return ErrNoContainerIP
	}
	if pf.SubnetV4 == nil {
		return ErrNoSubnet
	}
	containerIP := *pf.ContainerIPv4
	subnet := *pf.SubnetV4

	networkDNChainName := containerDNChain + pf.NetworkHashName
	networkChainName := containerChain + pf.NetworkHashName

	for _, chain := range []string{hostportDNATChain, hostportSetMarkChain, hostportMasqChain, networkDNChainName, networkChainName} {
		if err := d.addChainUnique(tableNAT, chain); err != nil {
			return err
		}
	}

	// One-time rules independent of individual ports.
	if err := d.appendUnique(tableNAT, preroutingChain, localDestRule(hostportDNATChain)...); err != nil {
		return err
	}
	if err := d.appendUnique(tableNAT, outputChain, localDestRule(hostportDNATChain)...); err != nil {
		return err
	}
	if err := d.appendUnique(tableNAT, hostportSetMarkChain, setMarkRule()...); err != nil {
		return err
	}
	if err := d.appendUnique(tableNAT, hostportMasqChain, masqMarkRule()...); err != nil {
		return err
	}
	if err := d.appendUnique(tableNAT, postroutingChain, "-j", hostportMasqChain); err != nil {
		return err
	}
	if err := d.appendUnique(tableNAT, postroutingChain,
		postroutingContainerRule(networkChainName, containerIP, pf.NetworkName, pf.ContainerID)...); err != nil {
		return err
	}

	for _, pm := range pf.PortMappings {
		if err := d.appendUnique(tableNAT, hostportDNATChain,
			hostPortDNATRule(networkDNChainName, pm, pf.NetworkName, pf.ContainerID)...); err != nil {
			return err
		}
		// Mark both externally-sourced and loopback-sourced traffic so
		// the masquerade chain catches the hairpin return path.
		if err := d.appendUnique(tableNAT, networkDNChainName, setMarkSourceRule(subnet.String(), pm)...); err != nil {
			return err
		}
		if err := d.appendUnique(tableNAT, networkDNChainName, setMarkSourceRule("127.0.0.1", pm)...); err != nil {
			return err
		}
		if err := d.appendUnique(tableNAT, networkDNChainName, dnatDestRule(containerIP, pm)...); err != nil {
			return err
		}
	}

	return nil
}

// TeardownPortForward removes the rules SetupPortForward installed for
// one container. Each removal is a no-op when the rule is already gone.
// When the container is the last one on the network the per-network
// chains are flushed and deleted; the shared hostport chains are
// cross-network singletons and always stay.
func (d *IptablesDriver) TeardownPortForward(tear TeardownPortForward) error {
	pf := tear.Config
	if pf.ContainerIPv4 == nil {
		return ErrNoContainerIP
	}
	if pf.SubnetV4 == nil {
		return ErrNoSubnet
	}
	containerIP := *pf.ContainerIPv4
	subnet := *pf.SubnetV4

	networkDNChainName := containerDNChain + pf.NetworkHashName
	networkChainName := containerChain + pf.NetworkHashName

	if err := d.removeIfExists(tableNAT, postroutingChain,
		postroutingContainerRule(networkChainName, containerIP, pf.NetworkName, pf.ContainerID)...); err != nil {
		return err
	}

	for _, pm := range pf.PortMappings {
		if err := d.removeIfExists(tableNAT, hostportDNATChain,
			hostPortDNATRule(networkDNChainName, pm, pf.NetworkName, pf.ContainerID)...); err != nil {
			return err
		}
		if err := d.removeIfExists(tableNAT, networkDNChainName, setMarkSourceRule(subnet.String(), pm)...); err != nil {
			return err
		}
		if err := d.removeIfExists(tableNAT, networkDNChainName, setMarkSourceRule("127.0.0.1", pm)...); err != nil {
			return err
		}
		if err := d.removeIfExists(tableNAT, networkDNChainName, dnatDestRule(containerIP, pm)...); err != nil {
			return err
		}
	}

	if tear.CompleteTeardown {
		if err := d.removeChainAndRules(tableNAT, networkChainName); err != nil {
			return err
		}
		if err := d.removeChainAndRules(tableNAT, networkDNChainName); err != nil {
			return err
		}
	}

	return nil
}
