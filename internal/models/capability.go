package models

import (
	"encoding/json"
	"fmt"
)

// Capability is a role a profile may hold. Capabilities are independent:
// a profile can be a mentor, an admin, both or neither.
type Capability string

const (
	CapabilityMentor Capability = "mentor"
	CapabilityAdmin  Capability = "admin"
)

// AllCapabilities lists every known capability in a stable order
var AllCapabilities = []Capability{CapabilityMentor, CapabilityAdmin}

func (c Capability) bit() (Capabilities, bool) {
	switch c {
	case CapabilityMentor:
		return 1 << 0, true
	case CapabilityAdmin:
		return 1 << 1, true
	default:
		return 0, false
	}
}

// IsValid reports whether c is a known capability
func (c Capability) IsValid() bool {
	_, ok := c.bit()
	return ok
}

// Capabilities is a set of Capability values
type Capabilities uint8

// NewCapabilities builds a set from the given capabilities, ignoring unknown ones
func NewCapabilities(caps ...Capability) Capabilities {
	var set Capabilities
	for _, c := range caps {
		set = set.With(c)
	}
	return set
}

// CapabilitiesFromFlags maps the stored is_mentor/is_admin columns onto a set
func CapabilitiesFromFlags(isMentor, isAdmin bool) Capabilities {
	var set Capabilities
	if isMentor {
		set = set.With(CapabilityMentor)
	}
	if isAdmin {
		set = set.With(CapabilityAdmin)
	}
	return set
}

// ParseCapabilities converts names (e.g. from token claims) into a set.
// Unknown names are an error.
func ParseCapabilities(names []string) (Capabilities, error) {
	var set Capabilities
	for _, name := range names {
		c := Capability(name)
		if !c.IsValid() {
			return 0, fmt.Errorf("unknown capability %q", name)
		}
		set = set.With(c)
	}
	return set, nil
}

// Has reports whether the set contains c
func (s Capabilities) Has(c Capability) bool {
	b, ok := c.bit()
	return ok && s&b != 0
}

// With returns a copy of the set with c added
func (s Capabilities) With(c Capability) Capabilities {
	b, ok := c.bit()
	if !ok {
		return s
	}
	return s | b
}

// Without returns a copy of the set with c removed
func (s Capabilities) Without(c Capability) Capabilities {
	b, ok := c.bit()
	if !ok {
		return s
	}
	return s &^ b
}

// Flags returns the set as the stored column pair
func (s Capabilities) Flags() (isMentor, isAdmin bool) {
	return s.Has(CapabilityMentor), s.Has(CapabilityAdmin)
}

// List returns the capabilities in the set in AllCapabilities order
func (s Capabilities) List() []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Strings returns the capability names, as carried in session claims
func (s Capabilities) Strings() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = string(c)
	}
	return out
}

func (s Capabilities) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *Capabilities) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseCapabilities(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
