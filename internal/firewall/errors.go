package firewall

import "errors"

// Caller contract violations: the descriptor is missing a field the
// operation cannot proceed without.
var (
	// ErrNoContainerIP is returned when a port-forward descriptor
	// carries no container IPv4 address.
	ErrNoContainerIP = errors.New("no container ip provided")
	// ErrNoSubnet is returned when a descriptor carries no subnet.
	ErrNoSubnet = errors.New("no network address provided")
)
