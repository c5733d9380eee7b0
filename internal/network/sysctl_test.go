package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vishvananda/netlink"
)

func TestReadSysctl(t *testing.T) {
	mockSys := new(MockSystemController)
	originalController := DefaultSystemController
	DefaultSystemController = mockSys
	defer func() { DefaultSystemController = originalController }()

	// Success
	mockSys.On("ReadSysctl", "/proc/sys/net/ipv4/ip_forward").Return("1", nil).Once()
	val, err := ReadSysctl("/proc/sys/net/ipv4/ip_forward")
	assert.NoError(t, err)
	assert.Equal(t, "1", val)

	// Failure
	mockSys.On("ReadSysctl", "/invalid/path").Return("", errors.New("read error")).Once()
	val, err = ReadSysctl("/invalid/path")
	assert.Error(t, err)
	assert.Empty(t, val)

	mockSys.AssertExpectations(t)
}

func TestWriteSysctl(t *testing.T) {
	mockSys := new(MockSystemController)
	originalController := DefaultSystemController
	DefaultSystemController = mockSys
	defer func() { DefaultSystemController = originalController }()

	mockSys.On("WriteSysctl", "/proc/sys/net/ipv4/ip_forward", "1").Return(nil).Once()
	err := WriteSysctl("/proc/sys/net/ipv4/ip_forward", "1")
	assert.NoError(t, err)

	mockSys.On("WriteSysctl", "/proc/sys/net/ipv4/ip_forward", "invalid").Return(errors.New("write error")).Once()
	err = WriteSysctl("/proc/sys/net/ipv4/ip_forward", "invalid")
	assert.Error(t, err)

	mockSys.AssertExpectations(t)
}

func TestEnableRouteLocalnet(t *testing.T) {
	mockSys := new(MockSystemController)
	mockLink := new(MockNetlinker)
	originalController := DefaultSystemController
	originalNetlinker := DefaultNetlinker
	DefaultSystemController = mockSys
	DefaultNetlinker = mockLink
	defer func() {
		DefaultSystemController = originalController
		DefaultNetlinker = originalNetlinker
	}()

	bridge := &netlink.GenericLink{LinkType: "bridge"}

	mockLink.On("LinkByName", "podman0").Return(bridge, nil).Once()
	mockSys.On("WriteSysctl", "net.ipv4.conf.podman0.route_localnet", "1").Return(nil).Once()
	assert.NoError(t, EnableRouteLocalnet("podman0"))

	// Missing bridge surfaces a clear error without touching sysctl
	mockLink.On("LinkByName", "missing0").Return(nil, errors.New("no such device")).Once()
	err := EnableRouteLocalnet("missing0")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing0")

	mockSys.AssertExpectations(t)
	mockLink.AssertExpectations(t)
}
