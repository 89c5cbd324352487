// Package participants holds the two-party identity registry of the household.
//
// The original data keeps literal participant keys on every row (paid_by,
// responsibility); the registry maps those keys to display names and answers
// "who is the other one" for split-expense reconciliation, so no business
// logic hardcodes the couple's names.
package participants

import (
	"errors"
	"strings"
)

// Participant is one of the two household members.
type Participant struct {
	Key  string // stable key stored on rows, e.g. "franklin"
	Name string // display name, e.g. "Franklim"
}

// Registry is a fixed two-party registry plus a joint label.
type Registry struct {
	a, b  Participant
	joint Participant
}

var (
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrInvalidRegistry    = errors.New("registry needs two distinct participants")
)

// Default mirrors the household the application was built for.
func Default() *Registry {
	r, _ := New(
		Participant{Key: "franklin", Name: "Franklim"},
		Participant{Key: "michele", Name: "Michele"},
		Participant{Key: "casal", Name: "Casal"},
	)
	return r
}

// New builds a registry from two participants and a joint label.
func New(a, b, joint Participant) (*Registry, error) {
	a.Key = strings.TrimSpace(a.Key)
	b.Key = strings.TrimSpace(b.Key)
	joint.Key = strings.TrimSpace(joint.Key)
	if a.Key == "" || b.Key == "" || a.Key == b.Key {
		return nil, ErrInvalidRegistry
	}
	if a.Name == "" {
		a.Name = a.Key
	}
	if b.Name == "" {
		b.Name = b.Key
	}
	if joint.Key == "" {
		joint = Participant{Key: "casal", Name: "Casal"}
	}
	if joint.Name == "" {
		joint.Name = joint.Key
	}
	return &Registry{a: a, b: b, joint: joint}, nil
}

// Members returns both participants in registry order.
func (r *Registry) Members() (Participant, Participant) {
	return r.a, r.b
}

// Joint returns the shared-responsibility pseudo participant.
func (r *Registry) Joint() Participant {
	return r.joint
}

// Lookup resolves a stored key to a participant, including the joint key.
func (r *Registry) Lookup(key string) (Participant, error) {
	switch key {
	case r.a.Key:
		return r.a, nil
	case r.b.Key:
		return r.b, nil
	case r.joint.Key:
		return r.joint, nil
	default:
		return Participant{}, ErrUnknownParticipant
	}
}

// DisplayName resolves a key to its display name, falling back to the key
// itself so unknown data still renders.
func (r *Registry) DisplayName(key string) string {
	if p, err := r.Lookup(key); err == nil {
		return p.Name
	}
	return key
}

// Other returns the counterpart of the given participant: the ower of a split
// expense paid by key. The joint key has no counterpart.
func (r *Registry) Other(key string) (Participant, error) {
	switch key {
	case r.a.Key:
		return r.b, nil
	case r.b.Key:
		return r.a, nil
	default:
		return Participant{}, ErrUnknownParticipant
	}
}
