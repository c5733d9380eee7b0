package firewall

import (
	"fmt"

	"github.com/coreos/go-iptables/iptables"

	"github.com/mheon/netavark/internal/logging"
	"github.com/mheon/netavark/internal/metrics"
)

// FirewallDriver defines the interface for managing container network
// firewall rules. All descriptors are fully resolved by the caller; no
// lookups happen inside the driver.
type FirewallDriver interface {
	// SetupNetwork installs the subnet-level isolation and masquerade
	// rules for a network.
	SetupNetwork(net SetupNetwork) error
	// TeardownNetwork removes the network-level rules. Rules shared by
	// all containers on the network are only removed when
	// completeTeardown is set, i.e. the last container is leaving.
	TeardownNetwork(net SetupNetwork, completeTeardown bool) error
	// SetupPortForward installs hairpin-capable DNAT rules for a
	// container's published ports.
	SetupPortForward(pf PortForwardConfig) error
	// TeardownPortForward removes the rules installed by
	// SetupPortForward for one container, and the per-network chains
	// when this is the last container on the network.
	TeardownPortForward(tear TeardownPortForward) error
}

// IPTablesConn abstracts the iptables primitives the drivers consume.
// *iptables.IPTables from go-iptables satisfies it directly; MockIPTables
// provides an in-memory implementation for tests. The primitives are not
// idempotent themselves, the apply layer on top makes them so.
type IPTablesConn interface {
	// Chain operations
	ListChains(table string) ([]string, error)
	NewChain(table, chain string) error
	ClearChain(table, chain string) error
	DeleteChain(table, chain string) error

	// Rule operations
	Exists(table, chain string, rulespec ...string) (bool, error)
	Append(table, chain string, rulespec ...string) error
	Insert(table, chain string, pos int, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

// IptablesDriver realizes FirewallDriver with direct iptables commands.
type IptablesDriver struct {
	conn    IPTablesConn
	logger  *logging.Logger
	metrics *metrics.Registry
}

// New creates an iptables-backed firewall driver with default dependencies.
func New() (FirewallDriver, error) {
	conn, err := iptables.New(iptables.IPFamily(iptables.ProtocolIPv4))
	if err != nil {
		return nil, fmt.Errorf("create iptables connection: %w", err)
	}
	return NewWithConn(conn, logging.Default()), nil
}

// NewWithConn creates an iptables-backed firewall driver with injected
// dependencies.
func NewWithConn(conn IPTablesConn, logger *logging.Logger) *IptablesDriver {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &IptablesDriver{
		conn:    conn,
		logger:  logger,
		metrics: metrics.Get(),
	}
}

// NewDriver returns the driver registered under name. The name matches
// the contents of the firewall-driver state file.
func NewDriver(name string) (FirewallDriver, error) {
	switch name {
	case DriverIptables:
		return New()
	case DriverNone:
		return &NoneDriver{logger: logging.Default()}, nil
	default:
		return nil, fmt.Errorf("unsupported firewall driver %q", name)
	}
}
