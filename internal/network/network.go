// Package network provides the small system-level collaborators the
// firewall core depends on: sysctl reads/writes and link lookups. Both
// are abstracted behind interfaces so that rule orchestration can be
// tested without touching the host.
package network

import (
	"github.com/vishvananda/netlink"
)

// SystemController is an interface that abstracts system-level operations like sysctl.
type SystemController interface {
	ReadSysctl(path string) (string, error)
	WriteSysctl(path, value string) error
	IsNotExist(err error) bool
}

// Netlinker is an interface that abstracts netlink interactions.
// This allows for mocking netlink calls during unit testing.
type Netlinker interface {
	LinkByName(name string) (netlink.Link, error)
}
