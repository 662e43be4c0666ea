package microvm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"github.com/seantiz/bashlet/internal/sandbox"
)

// apiClient is a minimal client for the Firecracker REST API, exposed over
// a Unix domain socket at socketPath. Go's http.Transport.DialContext dials
// the socket directly, so no separate "local" transport library is needed
// the way Rust's hyper required hyperlocal.
type apiClient struct {
	httpClient *http.Client
}

func newAPIClient(socketPath string) *apiClient {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &apiClient{httpClient: &http.Client{Transport: transport}}
}

// request issues method/path against the API socket with an optional JSON
// body, on the fixed host "firecracker" (ignored by the UDS dialer).
func (c *apiClient) request(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return sandbox.NewJSON("marshal firecracker request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://firecracker"+path, reader)
	if err != nil {
		return sandbox.NewHypervisorAPI(0, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sandbox.NewHypervisorAPI(0, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sandbox.NewHypervisorAPI(resp.StatusCode, string(respBody))
	}
	return nil
}

type bootSourceBody struct {
	KernelImagePath string `json:"kernel_image_path"`
	BootArgs        string `json:"boot_args"`
}

// putBootSource configures the kernel image and boot arguments.
func (c *apiClient) putBootSource(ctx context.Context, kernelPath, bootArgs string) error {
	return c.request(ctx, http.MethodPut, "/boot-source", bootSourceBody{
		KernelImagePath: kernelPath,
		BootArgs:        bootArgs,
	})
}

type machineConfigBody struct {
	VCPUCount  int   `json:"vcpu_count"`
	MemSizeMib int64 `json:"mem_size_mib"`
}

// putMachineConfig sets vCPU count and memory size.
func (c *apiClient) putMachineConfig(ctx context.Context, vcpuCount int, memSizeMib int64) error {
	return c.request(ctx, http.MethodPut, "/machine-config", machineConfigBody{
		VCPUCount:  vcpuCount,
		MemSizeMib: memSizeMib,
	})
}

type driveBody struct {
	DriveID      string `json:"drive_id"`
	PathOnHost   string `json:"path_on_host"`
	IsRootDevice bool   `json:"is_root_device"`
	IsReadOnly   bool   `json:"is_read_only"`
}

// putDrive attaches the rootfs drive.
func (c *apiClient) putDrive(ctx context.Context, driveID, pathOnHost string, isRootDevice, isReadOnly bool) error {
	return c.request(ctx, http.MethodPut, "/drives/"+driveID, driveBody{
		DriveID:      driveID,
		PathOnHost:   pathOnHost,
		IsRootDevice: isRootDevice,
		IsReadOnly:   isReadOnly,
	})
}

type vsockBody struct {
	GuestCID uint32 `json:"guest_cid"`
	UDSPath  string `json:"uds_path"`
}

// putVsock configures the vsock device bridging host and guest.
func (c *apiClient) putVsock(ctx context.Context, guestCID uint32, udsPath string) error {
	return c.request(ctx, http.MethodPut, "/vsock", vsockBody{
		GuestCID: guestCID,
		UDSPath:  udsPath,
	})
}

type networkInterfaceBody struct {
	IfaceID     string `json:"iface_id"`
	GuestMAC    string `json:"guest_mac,omitempty"`
	HostDevName string `json:"host_dev_name"`
}

// putNetworkInterface attaches a TAP network interface to the VM.
func (c *apiClient) putNetworkInterface(ctx context.Context, ifaceID, guestMAC, hostDevName string) error {
	return c.request(ctx, http.MethodPut, "/network-interfaces/"+ifaceID, networkInterfaceBody{
		IfaceID:     ifaceID,
		GuestMAC:    guestMAC,
		HostDevName: hostDevName,
	})
}

type actionBody struct {
	ActionType string `json:"action_type"`
}

// putActions performs an instance action (InstanceStart, SendCtrlAltDel).
func (c *apiClient) putActions(ctx context.Context, actionType string) error {
	return c.request(ctx, http.MethodPut, "/actions", actionBody{ActionType: actionType})
}

// instanceInfo mirrors Firecracker's GET / response.
type instanceInfo struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	VMMVersion string `json:"vmm_version"`
}

// getInfo retrieves the instance's current state.
func (c *apiClient) getInfo(ctx context.Context) (instanceInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://firecracker/", nil)
	if err != nil {
		return instanceInfo{}, sandbox.NewHypervisorAPI(0, err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return instanceInfo{}, sandbox.NewHypervisorAPI(0, err.Error())
	}
	defer resp.Body.Close()

	var info instanceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return instanceInfo{}, sandbox.NewJSON("decode instance info", err)
	}
	return info, nil
}
