package firewall

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
)

// IsolateOption controls whether traffic between this network and other
// bridge networks is blocked.
type IsolateOption string

const (
	IsolateNever  IsolateOption = "Never"
	IsolateNormal IsolateOption = "Normal"
	IsolateStrict IsolateOption = "Strict"
)

// SetupNetwork describes the network-level firewall setup for one
// network. It is immutable once the network is created and doubles as
// the persisted network config schema, so field order and names are part
// of the on-disk format.
type SetupNetwork struct {
	// Subnets is the list of CIDRs assigned to the network.
	Subnets []netip.Prefix `json:"subnets"`
	// BridgeName is the bridge interface of the network.
	BridgeName string `json:"bridge_name"`
	// NetworkHashName is the truncated hash of the network name used to
	// derive chain names, see NetworkHashName().
	NetworkHashName string `json:"network_hash_name"`
	// Isolation mode for the network.
	Isolation IsolateOption `json:"isolation"`
	// DNSPort is the port the DNS forwarder listens on.
	DNSPort uint16 `json:"dns_port"`
}

// PortMapping is one published port of a container.
type PortMapping struct {
	// HostIP is the host address to bind to, empty for all addresses.
	HostIP string `json:"host_ip"`
	// ContainerPort is the port inside the container.
	ContainerPort uint16 `json:"container_port"`
	// HostPort is the externally reachable port on the host.
	HostPort uint16 `json:"host_port"`
	// Range is the number of consecutive ports this mapping covers.
	Range uint16 `json:"range"`
	// Protocol is tcp, udp or sctp. Empty means tcp.
	Protocol string `json:"protocol"`
}

// protocol returns the protocol with the tcp default applied.
func (p *PortMapping) protocol() string {
	if p.Protocol == "" {
		return "tcp"
	}
	return p.Protocol
}

// PortForwardConfig describes the port forwarding of one (network,
// container) attachment. It doubles as the persisted port config schema,
// so field order and names are part of the on-disk format.
type PortForwardConfig struct {
	// ContainerID of the container the ports are forwarded to.
	ContainerID string `json:"container_id"`
	// PortMappings to set up, nil when the container publishes no ports.
	PortMappings []PortMapping `json:"port_mappings"`
	// NetworkName is the full name of the network.
	NetworkName string `json:"network_name"`
	// NetworkHashName is the truncated hash of the network name, shared
	// with the SetupNetwork config of the same network.
	NetworkHashName string `json:"network_hash_name"`
	// ContainerIPv4 is the container's assigned v4 address, nil when the
	// network is v6-only.
	ContainerIPv4 *netip.Addr `json:"container_ip_v4"`
	// SubnetV4 is the network's primary v4 subnet.
	SubnetV4 *netip.Prefix `json:"subnet_v4"`
	// ContainerIPv6 is the container's assigned v6 address, if any.
	ContainerIPv6 *netip.Addr `json:"container_ip_v6"`
	// SubnetV6 is the network's primary v6 subnet, if any.
	SubnetV6 *netip.Prefix `json:"subnet_v6"`
	// DNSPort is the port the DNS forwarder listens on.
	DNSPort uint16 `json:"dns_port"`
	// DNSServerIPs are the DNS forwarder addresses for the network.
	DNSServerIPs []netip.Addr `json:"dns_server_ips"`

	// NetworkInterface is the bridge interface of the network, used to
	// enable route_localnet for hairpin NAT. Not persisted; the replay
	// path restores it from the network config of the same network.
	NetworkInterface string `json:"-"`
}

// TeardownPortForward is the argument to FirewallDriver.TeardownPortForward.
type TeardownPortForward struct {
	Config PortForwardConfig
	// CompleteTeardown is set when the last container on the network is
	// being torn down, removing the per-network chains as well.
	CompleteTeardown bool
}

// NetworkHashName derives the chain-name fragment for a network name.
// The digest is deterministic and truncated to maxHashSize so derived
// chain names stay within the iptables chain-name length limit.
func NetworkHashName(networkName string) string {
	digest := sha256.Sum256([]byte(networkName))
	return hex.EncodeToString(digest[:])[:maxHashSize]
}
