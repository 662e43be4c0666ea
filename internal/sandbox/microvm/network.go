package microvm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/containernetworking/cni/libcni"
	"github.com/containernetworking/cni/pkg/types"
	types100 "github.com/containernetworking/cni/pkg/types/100"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// Networking defaults for the bridge + tc-redirect-tap CNI chain.
const (
	defaultBridgeName = "bashletbr0"
	defaultSubnet     = "10.168.0.0/24"
	defaultGateway    = "10.168.0.1"
	cniNetworkName    = "bashlet-net"
	cniVersion        = "1.0.0"
	cniIfName         = "eth0"
	cniCacheDir       = "/var/lib/cni/cache"
	cniBinDir         = "/opt/cni/bin"
	netNSRunDir       = "/var/run/netns"
	netNSPrefix       = "bashlet-"
)

var requiredCNIPlugins = []string{"bridge", "host-local", "tc-redirect-tap"}

// NetworkConfig is the outcome of CNI setup for one instance: the TAP
// device and MAC address to wire into the VM's network interface.
type NetworkConfig struct {
	TAPDevice     string
	GuestIP       string
	GatewayIP     string
	MACAddress    string
	NamespacePath string
}

// NetworkManager provisions a per-instance network namespace and CNI
// bridge/tap chain for microVMs with MicroVMConfig.EnableNetworking set.
type NetworkManager struct {
	cniConfig *libcni.CNIConfig
	confList  *libcni.NetworkConfigList
	logger    *slog.Logger

	mu         sync.Mutex
	namespaces map[string]string
}

// NewNetworkManager builds the CNI bridge+tap conflist and prepares the
// plugin invocation path.
func NewNetworkManager(logger *slog.Logger) (*NetworkManager, error) {
	cniCfg := libcni.NewCNIConfigWithCacheDir([]string{cniBinDir}, cniCacheDir, nil)

	confBytes, err := generateConfList()
	if err != nil {
		return nil, sandbox.NewSandboxInit("generate CNI conflist", err)
	}
	confList, err := libcni.ConfListFromBytes(confBytes)
	if err != nil {
		return nil, sandbox.NewSandboxInit("parse CNI conflist", err)
	}

	return &NetworkManager{
		cniConfig:  cniCfg,
		confList:   confList,
		logger:     logger,
		namespaces: make(map[string]string),
	}, nil
}

// Setup creates a network namespace for instanceID and runs CNI ADD,
// returning the TAP device and MAC to attach to the VM.
func (nm *NetworkManager) Setup(ctx context.Context, instanceID string) (*NetworkConfig, error) {
	nsName := netNSPrefix + instanceID
	nsPath := filepath.Join(netNSRunDir, nsName)

	if err := createNetNS(nsName); err != nil {
		return nil, sandbox.NewSandboxInit("create netns "+nsName, err)
	}

	nm.mu.Lock()
	nm.namespaces[instanceID] = nsPath
	nm.mu.Unlock()

	rtConf := &libcni.RuntimeConf{
		ContainerID: instanceID,
		NetNS:       nsPath,
		IfName:      cniIfName,
	}

	result, err := nm.cniConfig.AddNetworkList(ctx, nm.confList, rtConf)
	if err != nil {
		_ = deleteNetNS(nsName)
		nm.mu.Lock()
		delete(nm.namespaces, instanceID)
		nm.mu.Unlock()
		return nil, sandbox.NewSandboxInit("CNI ADD for "+instanceID, err)
	}

	netCfg, err := parseResult(result, nsPath)
	if err != nil {
		_ = nm.cniConfig.DelNetworkList(ctx, nm.confList, rtConf)
		_ = deleteNetNS(nsName)
		nm.mu.Lock()
		delete(nm.namespaces, instanceID)
		nm.mu.Unlock()
		return nil, sandbox.NewSandboxInit("parse CNI result for "+instanceID, err)
	}

	nm.logger.Info("network setup complete", "instance_id", instanceID, "tap", netCfg.TAPDevice, "guest_ip", netCfg.GuestIP)
	return netCfg, nil
}

// Teardown removes networking and the namespace for instanceID. Safe to
// call more than once.
func (nm *NetworkManager) Teardown(ctx context.Context, instanceID string) error {
	nm.mu.Lock()
	nsPath, exists := nm.namespaces[instanceID]
	if !exists {
		nm.mu.Unlock()
		return nil
	}
	delete(nm.namespaces, instanceID)
	nm.mu.Unlock()

	nsName := netNSPrefix + instanceID
	rtConf := &libcni.RuntimeConf{ContainerID: instanceID, NetNS: nsPath, IfName: cniIfName}

	var firstErr error
	if err := nm.cniConfig.DelNetworkList(ctx, nm.confList, rtConf); err != nil {
		firstErr = fmt.Errorf("CNI DEL for %s: %w", instanceID, err)
		nm.logger.Warn("CNI DEL failed", "instance_id", instanceID, "error", err)
	}
	if err := deleteNetNS(nsName); err != nil {
		nm.logger.Warn("netns cleanup failed", "instance_id", instanceID, "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("delete netns for %s: %w", instanceID, err)
		}
	}
	return firstErr
}

// Verify checks that all required CNI plugins are installed.
func (nm *NetworkManager) Verify() error {
	var missing []string
	for _, plugin := range requiredCNIPlugins {
		if _, err := os.Stat(filepath.Join(cniBinDir, plugin)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, plugin)
				continue
			}
			return fmt.Errorf("stat CNI plugin %s: %w", plugin, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing CNI plugins in %s: %s", cniBinDir, strings.Join(missing, ", "))
	}
	return nil
}

type confListJSON struct {
	CNIVersion string           `json:"cniVersion"`
	Name       string           `json:"name"`
	Plugins    []map[string]any `json:"plugins"`
}

func generateConfList() ([]byte, error) {
	confList := confListJSON{
		CNIVersion: cniVersion,
		Name:       cniNetworkName,
		Plugins: []map[string]any{
			{
				"type":      "bridge",
				"bridge":    defaultBridgeName,
				"isGateway": true,
				"ipMasq":    true,
				"ipam": map[string]any{
					"type":    "host-local",
					"subnet":  defaultSubnet,
					"gateway": defaultGateway,
				},
			},
			{"type": "tc-redirect-tap"},
		},
	}
	return json.MarshalIndent(confList, "", "  ")
}

func parseResult(result types.Result, nsPath string) (*NetworkConfig, error) {
	res, err := types100.NewResultFromResult(result)
	if err != nil {
		return nil, fmt.Errorf("convert CNI result: %w", err)
	}

	netCfg := &NetworkConfig{NamespacePath: nsPath}

	for _, iface := range res.Interfaces {
		if iface.Sandbox != "" && iface.Name != cniIfName {
			netCfg.TAPDevice = iface.Name
			netCfg.MACAddress = iface.Mac
			break
		}
	}
	if netCfg.TAPDevice == "" {
		for _, iface := range res.Interfaces {
			if iface.Sandbox != "" {
				netCfg.TAPDevice = iface.Name
				netCfg.MACAddress = iface.Mac
				break
			}
		}
	}
	if netCfg.TAPDevice == "" {
		return nil, fmt.Errorf("no TAP device in CNI result")
	}

	if len(res.IPs) > 0 {
		netCfg.GuestIP = res.IPs[0].Address.String()
		if res.IPs[0].Gateway != nil {
			netCfg.GatewayIP = res.IPs[0].Gateway.String()
		}
	}
	if netCfg.GuestIP == "" {
		return nil, fmt.Errorf("no IP address in CNI result")
	}

	return netCfg, nil
}

func createNetNS(name string) error {
	if err := os.MkdirAll(netNSRunDir, 0o755); err != nil {
		return fmt.Errorf("create netns dir: %w", err)
	}
	cmd := exec.Command("ip", "netns", "add", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ip netns add %s: %s: %w", name, strings.TrimSpace(string(output)), err)
	}
	return nil
}

func deleteNetNS(name string) error {
	nsPath := filepath.Join(netNSRunDir, name)
	if _, err := os.Stat(nsPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat netns %s: %w", name, err)
	}
	cmd := exec.Command("ip", "netns", "delete", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ip netns delete %s: %s: %w", name, strings.TrimSpace(string(output)), err)
	}
	return nil
}
