package microvm

import (
	"encoding/json"
	"testing"
)

func TestGenerateConfListProducesBridgeAndTapRedirectChain(t *testing.T) {
	data, err := generateConfList()
	if err != nil {
		t.Fatalf("generateConfList() error = %v", err)
	}

	var parsed confListJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("generateConfList() produced invalid JSON: %v", err)
	}

	if parsed.Name != cniNetworkName {
		t.Errorf("Name = %q, want %q", parsed.Name, cniNetworkName)
	}
	if len(parsed.Plugins) != 2 {
		t.Fatalf("Plugins = %d entries, want 2", len(parsed.Plugins))
	}
	if parsed.Plugins[0]["type"] != "bridge" {
		t.Errorf("Plugins[0].type = %v, want bridge", parsed.Plugins[0]["type"])
	}
	if parsed.Plugins[1]["type"] != "tc-redirect-tap" {
		t.Errorf("Plugins[1].type = %v, want tc-redirect-tap", parsed.Plugins[1]["type"])
	}
}
