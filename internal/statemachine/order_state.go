package statemachine

import (
	"fmt"
	"os"
	"strings"

	"table_ordering/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	ModePermissive  = "permissive"
	ModeForwardOnly = "forward_only"
	ModeCustom      = "custom"
)

// Policy decides which order status changes are accepted. A nil transition
// table accepts any change between known statuses.
type Policy struct {
	mode        string
	transitions map[models.OrderStatus]map[models.OrderStatus]bool
}

// PolicyFile is the YAML layout of a transition policy file:
//
//	mode: custom
//	transitions:
//	  received: [in_progress, cancelled]
//	  in_progress: [ready, received, cancelled]
type PolicyFile struct {
	Mode        string              `yaml:"mode"`
	Transitions map[string][]string `yaml:"transitions"`
}

// Permissive accepts any status change, including backward moves, so staff
// can correct mistakes.
func Permissive() *Policy {
	return &Policy{mode: ModePermissive}
}

// ForwardOnly accepts received -> in_progress -> ready -> delivered, skipping
// ahead, and cancellation from any non-terminal status.
func ForwardOnly() *Policy {
	transitions := make(map[models.OrderStatus]map[models.OrderStatus]bool)
	lifecycle := []models.OrderStatus{models.OrderReceived, models.OrderInProgress, models.OrderReady, models.OrderDelivered}
	for i, from := range lifecycle {
		if from.Terminal() {
			continue
		}
		next := map[models.OrderStatus]bool{models.OrderCancelled: true}
		for _, to := range lifecycle[i+1:] {
			next[to] = true
		}
		transitions[from] = next
	}
	return &Policy{mode: ModeForwardOnly, transitions: transitions}
}

// NewPolicy builds a custom policy from an explicit table.
func NewPolicy(table map[string][]string) (*Policy, error) {
	transitions := make(map[models.OrderStatus]map[models.OrderStatus]bool)
	for from, targets := range table {
		fromStatus := models.OrderStatus(from)
		if !fromStatus.Valid() {
			return nil, fmt.Errorf("unknown status %q in transition table", from)
		}
		next := make(map[models.OrderStatus]bool)
		for _, to := range targets {
			toStatus := models.OrderStatus(to)
			if !toStatus.Valid() {
				return nil, fmt.Errorf("unknown status %q in transitions of %q", to, from)
			}
			next[toStatus] = true
		}
		transitions[fromStatus] = next
	}
	return &Policy{mode: ModeCustom, transitions: transitions}, nil
}

// LoadPolicy reads a policy file. An empty path selects the permissive policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return Permissive(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read status policy: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (*Policy, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse status policy: %w", err)
	}

	switch file.Mode {
	case "", ModePermissive:
		if len(file.Transitions) > 0 {
			return NewPolicy(file.Transitions)
		}
		return Permissive(), nil
	case ModeForwardOnly:
		return ForwardOnly(), nil
	case ModeCustom:
		return NewPolicy(file.Transitions)
	default:
		return nil, fmt.Errorf("unknown status policy mode %q", file.Mode)
	}
}

func (p *Policy) Mode() string {
	return p.mode
}

// CanTransition returns nil when from -> to is accepted. Setting the current
// status again is always accepted.
func (p *Policy) CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("invalid status %q", to)
	}
	if p.transitions == nil || from == to {
		return nil
	}
	if p.transitions[from][to] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s -> %s is not allowed. Valid transitions from %s are: %s",
		from, to, from, describeValidFrom(p.ValidTransitionsFrom(from)))
}

// ValidTransitionsFrom lists accepted targets in lifecycle order.
func (p *Policy) ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, candidate := range models.OrderStatuses {
		if candidate == status {
			continue
		}
		if p.transitions == nil || p.transitions[status][candidate] {
			nexts = append(nexts, candidate)
		}
	}
	return nexts
}

func describeValidFrom(nexts []models.OrderStatus) string {
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
