package firewall

import (
	"net/netip"
)

// Rule text helpers shared by setup and teardown. Rules carry no
// identity beyond their rendered text, so both sides must produce the
// exact same token sequence.

func subnetAcceptRule(subnet netip.Prefix) []string {
	return []string{"-d", subnet.String(), "-j", acceptTarget}
}

func masqueradeRule() []string {
	// Everything except multicast; must stay last in the chain since
	// evaluation is match-first.
	return []string{"!", "-d", "224.0.0.0/4", "-j", masqTarget}
}

func forwardJumpRule() []string {
	return []string{"-m", "comment", "--comment", "netavark firewall plugin rules", "-j", privChainName}
}

func allowIncomingRule(subnet netip.Prefix) []string {
	return []string{"-d", subnet.String(), "-m", "conntrack", "--ctstate", "RELATED,ESTABLISHED", "-j", acceptTarget}
}

func allowOutgoingRule(subnet netip.Prefix) []string {
	return []string{"-s", subnet.String(), "-j", acceptTarget}
}

// SetupNetwork installs the per-network NAT chain with its accept and
// masquerade rules and wires the private forwarding chain into the
// built-in FORWARD chain.
func (d *IptablesDriver) SetupNetwork(net SetupNetwork) error {
	networkChainName := containerChain + net.NetworkHashName
	for _, subnet := range net.Subnets {
		if err := d.addChainUnique(tableNAT, networkChainName); err != nil {
			return err
		}
		if err := d.appendUnique(tableNAT, networkChainName, subnetAcceptRule(subnet)...); err != nil {
			return err
		}
		if err := d.appendUnique(tableNAT, networkChainName, masqueradeRule()...); err != nil {
			return err
		}

		if err := d.addChainUnique(tableFilter, privChainName); err != nil {
			return err
		}
		// The jump must sit in front of host-level forward rules that
		// could otherwise reject container traffic.
		if err := d.insertUnique(tableFilter, forwardChain, 1, forwardJumpRule()...); err != nil {
			return err
		}

		if err := d.appendUnique(tableFilter, privChainName, allowIncomingRule(subnet)...); err != nil {
			return err
		}
		if err := d.appendUnique(tableFilter, privChainName, allowOutgoingRule(subnet)...); err != nil {
			return err
		}
	}
	return nil
}

// TeardownNetwork removes the per-subnet allow rules when
// completeTeardown is set. The rules are re-asserted first so a teardown
// against drifted state converges the same way setup does. The
// per-network NAT chain is left alone here; its lifecycle belongs to
// TeardownPortForward's complete-teardown path.
func (d *IptablesDriver) TeardownNetwork(net SetupNetwork, completeTeardown bool) error {
	for _, subnet := range net.Subnets {
		if err := d.addChainUnique(tableFilter, privChainName); err != nil {
			return err
		}
		if err := d.appendUnique(tableFilter, privChainName, allowIncomingRule(subnet)...); err != nil {
			return err
		}
		if err := d.appendUnique(tableFilter, privChainName, allowOutgoingRule(subnet)...); err != nil {
			return err
		}
		if completeTeardown {
			if err := d.removeIfExists(tableFilter, privChainName, allowIncomingRule(subnet)...); err != nil {
				return err
			}
			if err := d.removeIfExists(tableFilter, privChainName, allowOutgoingRule(subnet)...); err != nil {
				return err
			}
		}
	}
	return nil
}
