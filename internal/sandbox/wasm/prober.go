package wasm

// Prober reports WASM backend availability. Unlike the container and
// microvm backends, there is no daemon or device file to probe: the
// runtime binary and WEBC package are fetched on demand (PATH, then
// cache, then download) at construction time, so WASM is always the
// last-resort, always-available entry in auto-selection.
type Prober struct{}

// Available always reports true.
func (Prober) Available() (bool, string) { return true, "" }

// Description is a short, static summary for diagnostic listings.
func (Prober) Description() string { return "WebAssembly sandbox (cross-platform)" }
