package network

import "fmt"

// ReadSysctl reads a sysctl value from the specified path.
func ReadSysctl(path string) (string, error) {
	return DefaultSystemController.ReadSysctl(path)
}

// WriteSysctl writes a sysctl value to the specified path.
func WriteSysctl(path, value string) error {
	return DefaultSystemController.WriteSysctl(path, value)
}

// IsNotExist checks if an error indicates that a file or directory does not exist.
func IsNotExist(err error) bool {
	return DefaultSystemController.IsNotExist(err)
}

// EnableRouteLocalnet enables route_localnet on the given interface so
// that hairpin NAT traffic returning via localhost is not dropped.
// The interface is checked first so a missing bridge produces a clear
// error instead of a raw sysctl failure.
func EnableRouteLocalnet(iface string) error {
	if _, err := DefaultNetlinker.LinkByName(iface); err != nil {
		return fmt.Errorf("bridge interface %s not found: %w", iface, err)
	}
	path := fmt.Sprintf("net.ipv4.conf.%s.route_localnet", iface)
	if err := DefaultSystemController.WriteSysctl(path, "1"); err != nil {
		return fmt.Errorf("enable route_localnet on %s: %w", iface, err)
	}
	return nil
}
