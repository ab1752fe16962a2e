package domain

import "encoding/json"

// RunState is a requested run state for a resource group.
type RunState string

const (
	RunStateFold   RunState = "fold"
	RunStatePause  RunState = "pause"
	RunStateFinish RunState = "finish"
)

// Valid reports whether the run state is one the client understands.
func (s RunState) Valid() bool {
	switch s {
	case RunStateFold, RunStatePause, RunStateFinish:
		return true
	default:
		return false
	}
}

// Command is a one-shot outbound request to the remote client.
// Delivery is fire-and-forget: no response is correlated with it.
type Command struct {
	Cmd   string `json:"cmd"`
	State string `json:"state,omitempty"`
	Group string `json:"group"`
}

// NewStateCommand builds the state-change command for a resource group:
// {"cmd":"state","state":"pause","group":""}.
func NewStateCommand(state RunState, group string) Command {
	return Command{Cmd: "state", State: string(state), Group: group}
}

// Encode serializes the command to its wire form.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}
