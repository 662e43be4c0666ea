package sandbox

import (
	"fmt"
	"sort"
)

// autoPriority is the order auto-selection probes backends in.
var autoPriority = []string{KindMicroVM, KindContainer, KindWasm}

// Prober reports whether a backend kind's platform prerequisites are met,
// without constructing it.
type Prober interface {
	// Available reports readiness and, when false, a human-readable reason.
	Available() (bool, string)
	// Description is a short, static summary for diagnostic listings.
	Description() string
}

// Constructor builds a Backend from a BackendConfig of matching kind.
type Constructor func(cfg BackendConfig) (Backend, error)

type registration struct {
	prober      Prober
	constructor Constructor
}

// Factory resolves BackendConfig.Kind ("auto" or an explicit kind) to a
// constructed Backend, probing platform prerequisites first.
type Factory struct {
	registrations map[string]registration
}

// NewFactory creates a Factory with no registered kinds.
func NewFactory() *Factory {
	return &Factory{registrations: make(map[string]registration)}
}

// RegisterKind wires a backend kind's availability probe and constructor
// into the factory.
func (f *Factory) RegisterKind(kind string, prober Prober, constructor Constructor) {
	f.registrations[kind] = registration{prober: prober, constructor: constructor}
}

// Create resolves cfg.Kind to a Backend. An explicit kind that fails its
// prerequisite probe returns BackendNotAvailable{backend,reason}. "auto"
// probes MicroVM, Container, WASM in order and returns the first available;
// if none are, it returns BackendNotAvailable{backend:"auto"}.
func (f *Factory) Create(cfg BackendConfig) (Backend, error) {
	if cfg.Kind == KindAuto {
		for _, kind := range autoPriority {
			reg, ok := f.registrations[kind]
			if !ok {
				continue
			}
			if available, _ := reg.prober.Available(); available {
				kindCfg := cfg
				kindCfg.Kind = kind
				return reg.constructor(kindCfg)
			}
		}
		return nil, NewBackendNotAvailable(KindAuto, "no backend available on this host")
	}

	reg, ok := f.registrations[cfg.Kind]
	if !ok {
		return nil, NewConfig(fmt.Sprintf("unknown backend kind %q", cfg.Kind))
	}
	if available, reason := reg.prober.Available(); !available {
		return nil, NewBackendNotAvailable(cfg.Kind, reason)
	}
	return reg.constructor(cfg)
}

// AvailabilityInfo is one entry of the factory's diagnostic listing.
type AvailabilityInfo struct {
	Name              string
	Available         bool
	Description       string
	UnavailableReason string
}

// AvailableBackends returns a diagnostic listing of every registered kind,
// sorted by name for stable output.
func (f *Factory) AvailableBackends() []AvailabilityInfo {
	infos := make([]AvailabilityInfo, 0, len(f.registrations))
	for kind, reg := range f.registrations {
		available, reason := reg.prober.Available()
		info := AvailabilityInfo{
			Name:        kind,
			Available:   available,
			Description: reg.prober.Description(),
		}
		if !available {
			info.UnavailableReason = reason
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
