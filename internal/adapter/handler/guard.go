package handler

// Capability names one boundary operation class. Which callers may
// invoke which operation is data in the table below, checked by
// Authorized at the boundary, not inferred from handler wiring.
type Capability string

const (
	CapabilityInventoryRead  Capability = "inventory.read"
	CapabilityInventoryWrite Capability = "inventory.write"
)

var roleCapabilities = map[string][]Capability{
	"admin": {CapabilityInventoryRead, CapabilityInventoryWrite},
	"user":  {CapabilityInventoryRead},
}

func Authorized(role string, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}
