package domain

// DefaultGroup is the name of the default resource group. Folding@home
// clients key the default group's configuration under the empty string.
const DefaultGroup = ""

// Machine summarizes the identity fields of a mirrored client document.
type Machine struct {
	ID      string
	Name    string
	Version string
}

// MachineID returns the remote client's stable identifier, or "".
func MachineID(doc Value) string {
	return doc.Lookup("info", "id").StringOr("")
}

// MachineName returns the remote client's display name.
func MachineName(doc Value) string {
	return doc.Lookup("info", "mach_name").StringOr("FAH Client")
}

// MachineInfo extracts the identity block from a document.
func MachineInfo(doc Value) Machine {
	return Machine{
		ID:      MachineID(doc),
		Name:    MachineName(doc),
		Version: doc.Lookup("info", "version").StringOr(""),
	}
}

// GroupConfig returns the config object for a named resource group, or
// Undefined when the group does not exist.
func GroupConfig(doc Value, group string) Value {
	return doc.Field("groups").Field(group).Field("config")
}

// Paused reports whether the named group is paused. An absent document or
// group counts as paused: a client we cannot see is not folding.
func Paused(doc Value, group string) bool {
	return GroupConfig(doc, group).Field("paused").BoolOr(true)
}

// Finishing reports whether the named group is finishing its current work
// units before pausing.
func Finishing(doc Value, group string) bool {
	return GroupConfig(doc, group).Field("finish").BoolOr(false)
}

// Status describes the run state of a resource group.
type Status string

const (
	StatusFolding   Status = "folding"
	StatusPaused    Status = "paused"
	StatusFinishing Status = "finishing"
	StatusUnknown   Status = "unknown"
)

// GroupStatus derives the run state of the named group.
func GroupStatus(doc Value, group string) Status {
	if doc.IsUndefined() {
		return StatusUnknown
	}
	switch {
	case Finishing(doc, group):
		return StatusFinishing
	case Paused(doc, group):
		return StatusPaused
	default:
		return StatusFolding
	}
}

// ActiveCPUs returns the CPU count allocated to the named group.
func ActiveCPUs(doc Value, group string) int {
	return GroupConfig(doc, group).Field("cpus").IntOr(0)
}

// TotalCPUs returns the machine's total CPU count from the info block.
func TotalCPUs(doc Value) int {
	return doc.Lookup("info", "cpus").IntOr(0)
}

// ActiveGPUs counts the GPUs enabled in the named group's config.
func ActiveGPUs(doc Value, group string) int {
	gpus := GroupConfig(doc, group).Field("gpus")
	n := 0
	for _, id := range gpus.Keys() {
		if gpus.Field(id).Field("enabled").BoolOr(false) {
			n++
		}
	}
	return n
}

// TotalGPUs returns the number of GPUs the machine reports in its info block.
func TotalGPUs(doc Value) int {
	return doc.Lookup("info", "gpus").Len()
}

// Unit is a snapshot of one active work unit.
type Unit struct {
	Project  int
	State    string
	Progress float64 // 0..1
	PPD      int
}

// Units extracts the active work units from a document. Null entries in the
// units array are skipped.
func Units(doc Value) []Unit {
	raw := doc.Field("units")
	if raw.Kind() != Array {
		return nil
	}
	units := make([]Unit, 0, raw.Len())
	for _, u := range raw.Items() {
		if u.Kind() != Object {
			continue
		}
		units = append(units, Unit{
			Project:  u.Lookup("assignment", "project").IntOr(0),
			State:    u.Field("state").StringOr(""),
			Progress: u.Field("progress").FloatOr(0),
			PPD:      u.Field("ppd").IntOr(0),
		})
	}
	return units
}

// UnitCount returns the number of entries in the units array, including
// null placeholders.
func UnitCount(doc Value) int {
	return doc.Field("units").Len()
}

// TotalPPD sums estimated points per day across all active work units.
func TotalPPD(doc Value) int {
	total := 0
	for _, u := range Units(doc) {
		total += u.PPD
	}
	return total
}
