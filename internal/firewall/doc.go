// Package firewall implements iptables-based firewall management for
// container networks.
//
// # Overview
//
// Given a network's address ranges and a container's published ports, the
// package installs the chain/rule set needed for subnet isolation,
// masquerading, and hairpin-capable DNAT, and tears down exactly what it
// installed. The packet-filter configuration is shared, global state that
// other agents and the host firewall daemon mutate concurrently, so every
// operation here is expressed as "ensure present" / "ensure absent" keyed
// by exact rule text: running setup twice, or concurrently with an
// equivalent setup, converges to the same final ruleset.
//
// # Architecture
//
//	descriptors → FirewallDriver → idempotent apply → IPTablesConn → iptables
//
// # Key Types
//
//   - [FirewallDriver]: the four driver operations (setup/teardown for
//     networks and port forwards)
//   - [IPTablesConn]: the primitive backend capabilities (chain listing,
//     rule existence, append/insert/delete), satisfied by
//     go-iptables and by [MockIPTables] in tests
//   - [SetupNetwork], [PortForwardConfig]: fully-resolved descriptors,
//     also the on-disk persistence schema
//
// # Persistence and replay
//
// Applied configs are recorded under <config-dir>/firewall/ (see
// [WriteFwConfig]) so that an external firewall reload can be recovered
// from by replaying the stored descriptors with [Reload]. Teardown removes
// the matching records via [RemoveFwConfig].
package firewall
