package fahlink

import "github.com/fold-labs/fahlink/internal/domain"

// Derived run states of a resource group.
const (
	StatusFolding   = domain.StatusFolding
	StatusPaused    = domain.StatusPaused
	StatusFinishing = domain.StatusFinishing
	StatusUnknown   = domain.StatusUnknown
)

// Projections over the mirrored document. All are pure and return defaults
// when the document (or the addressed field) is absent.

// MachineID returns the remote client's stable identifier, or "".
func MachineID(doc Value) string { return domain.MachineID(doc) }

// MachineName returns the remote client's display name.
func MachineName(doc Value) string { return domain.MachineName(doc) }

// GroupStatus derives the run state of the named resource group.
func GroupStatus(doc Value, group string) Status { return domain.GroupStatus(doc, group) }

// Paused reports whether the named group is paused.
func Paused(doc Value, group string) bool { return domain.Paused(doc, group) }

// Finishing reports whether the named group is finishing before pausing.
func Finishing(doc Value, group string) bool { return domain.Finishing(doc, group) }

// TotalPPD sums estimated points per day across active work units.
func TotalPPD(doc Value) int { return domain.TotalPPD(doc) }

// ActiveCPUs returns the CPU count allocated to the named group.
func ActiveCPUs(doc Value, group string) int { return domain.ActiveCPUs(doc, group) }

// ActiveGPUs counts the GPUs enabled in the named group's config.
func ActiveGPUs(doc Value, group string) int { return domain.ActiveGPUs(doc, group) }

// Units extracts the active work units from the document.
func Units(doc Value) []Unit { return domain.Units(doc) }

// UnitCount returns the number of entries in the units array.
func UnitCount(doc Value) int { return domain.UnitCount(doc) }
