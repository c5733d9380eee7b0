package firewall

// Tables.
const (
	tableNAT    = "nat"
	tableFilter = "filter"
)

// Built-in chains.
const (
	forwardChain     = "FORWARD"
	preroutingChain  = "PREROUTING"
	outputChain      = "OUTPUT"
	postroutingChain = "POSTROUTING"
)

// Chains owned by this package. The per-network chains are the two
// prefixes plus the truncated network hash.
const (
	privChainName        = "NETAVARK_FORWARD"
	hostportDNATChain    = "NETAVARK-HOSTPORT-DNAT"
	hostportSetMarkChain = "NETAVARK-HOSTPORT-SETMARK"
	hostportMasqChain    = "NETAVARK-HOSTPORT-MASQ"
	containerDNChain     = "NETAVARK-DN-"
	containerChain       = "NETAVARK-"
)

// Jump targets.
const (
	acceptTarget = "ACCEPT"
	masqTarget   = "MASQUERADE"
	markTarget   = "MARK"
	dnatTarget   = "DNAT"
)

// hexMark is the firewall mark carried by hairpin NAT traffic between
// the setmark chain and the masquerade chain.
const hexMark = "0x2000"

// maxHashSize bounds the hash fragment embedded in chain names.
// iptables limits chain names to 28 characters; the longest prefix,
// "NETAVARK-DN-", leaves room for 13 hash characters within that limit.
const maxHashSize = 13

// Driver names accepted by NewDriver and stored in the firewall-driver
// state file.
const (
	DriverIptables = "iptables"
	DriverNone     = "none"
)
