package firewall

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// On-disk layout under <config-dir>:
//
//	firewall/
//	        - firewall-driver          name of the firewall driver
//	        - networks/<netID>         network config
//	        - ports/<netID>_<ctrID>    port config
const (
	firewallDir        = "firewall"
	firewallDriverFile = "firewall-driver"
	networkConfDir     = "networks"
	portConfDir        = "ports"
)

type filePaths struct {
	fwDriverFile string
	netConfFile  string
	portConfFile string
}

// getFilePaths assembles the config file paths, creating the parent
// directories when createDirs is set. With empty network and container
// ids it returns the directory paths instead, used to walk all configs.
func getFilePaths(configDir, networkID, containerID string, createDirs bool) (*filePaths, error) {
	path := filepath.Join(configDir, firewallDir)
	fwDriverFile := filepath.Join(path, firewallDriverFile)
	netConfFile := filepath.Join(path, networkConfDir)
	portConfFile := filepath.Join(path, portConfDir)

	if createDirs {
		if err := os.MkdirAll(netConfFile, 0o755); err != nil {
			return nil, fmt.Errorf("create network config dir %s: %w", netConfFile, err)
		}
		if err := os.MkdirAll(portConfFile, 0o755); err != nil {
			return nil, fmt.Errorf("create port config dir %s: %w", portConfFile, err)
		}
	}
	if networkID != "" && containerID != "" {
		netConfFile = filepath.Join(netConfFile, networkID)
		portConfFile = filepath.Join(portConfFile, networkID+"_"+containerID)
	}

	return &filePaths{
		fwDriverFile: fwDriverFile,
		netConfFile:  netConfFile,
		portConfFile: portConfFile,
	}, nil
}

// writeFileAtomic writes data to path via a temp file in the same
// directory and a rename, so a crash mid-write cannot leave a partially
// written config behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func removeFileIgnoreEnoent(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// WriteFwConfig stores the firewall configs on disk after a successful
// setup, so a later reload event can replay the same rules.
//
// The network config is shared state for the network and written
// first-writer-wins: a second container attaching to the same network
// must not clobber the canonical record. The port config is sealed per
// container and always overwritten.
func WriteFwConfig(configDir, networkID, containerID, fwDriver string, netConf *SetupNetwork, portConf *PortForwardConfig) error {
	paths, err := getFilePaths(configDir, networkID, containerID, true)
	if err != nil {
		return err
	}

	if err := writeFileAtomic(paths.fwDriverFile, []byte(fwDriver)); err != nil {
		return fmt.Errorf("write firewall-driver file %s: %w", paths.fwDriverFile, err)
	}

	// The network config is written by whichever container attaches
	// first; later attaches find the file and leave it alone.
	switch _, err := os.Stat(paths.netConfFile); {
	case errors.Is(err, fs.ErrNotExist):
		data, err := json.Marshal(netConf)
		if err != nil {
			return fmt.Errorf("serialize network config: %w", err)
		}
		if err := writeFileAtomic(paths.netConfFile, data); err != nil {
			return fmt.Errorf("create network config %s: %w", paths.netConfFile, err)
		}
	case err != nil:
		return fmt.Errorf("stat network config %s: %w", paths.netConfFile, err)
	}

	data, err := json.Marshal(portConf)
	if err != nil {
		return fmt.Errorf("serialize port config: %w", err)
	}
	if err := writeFileAtomic(paths.portConfFile, data); err != nil {
		return fmt.Errorf("create port config %s: %w", paths.portConfFile, err)
	}

	return nil
}

// RemoveFwConfig removes the port config for a (network, container)
// pair, and the shared network config as well on complete teardown.
// Already-removed files are not an error.
func RemoveFwConfig(configDir, networkID, containerID string, completeTeardown bool) error {
	paths, err := getFilePaths(configDir, networkID, containerID, false)
	if err != nil {
		return err
	}
	if err := removeFileIgnoreEnoent(paths.portConfFile); err != nil {
		return fmt.Errorf("remove port config %s: %w", paths.portConfFile, err)
	}
	if completeTeardown {
		if err := removeFileIgnoreEnoent(paths.netConfFile); err != nil {
			return fmt.Errorf("remove network config %s: %w", paths.netConfFile, err)
		}
	}
	return nil
}

// FirewallConfig is everything the config store knows, as read back for
// replay.
type FirewallConfig struct {
	// Driver is the name of the firewall driver.
	Driver string
	// NetConfs are all persisted network firewall configs.
	NetConfs []SetupNetwork
	// PortConfs are all persisted port forwarding configs.
	PortConfs []PortForwardConfig
}

// ReadFwConfig reads all firewall config files from the config dir.
// Entry order is not significant; each config is self-describing.
func ReadFwConfig(configDir string) (*FirewallConfig, error) {
	paths, err := getFilePaths(configDir, "", "", false)
	if err != nil {
		return nil, err
	}

	driver, err := os.ReadFile(paths.fwDriverFile)
	if err != nil {
		return nil, fmt.Errorf("read firewall-driver %s: %w", paths.fwDriverFile, err)
	}

	netConfs, err := readDirConf[SetupNetwork](paths.netConfFile)
	if err != nil {
		return nil, err
	}
	portConfs, err := readDirConf[PortForwardConfig](paths.portConfFile)
	if err != nil {
		return nil, err
	}

	return &FirewallConfig{
		Driver:    string(driver),
		NetConfs:  netConfs,
		PortConfs: portConfs,
	}, nil
}

func readDirConf[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var confs []T
	for _, entry := range entries {
		// Skip temp files left behind by an interrupted atomic write.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var conf T
		if err := json.Unmarshal(content, &conf); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		confs = append(confs, conf)
	}
	return confs, nil
}
