package participants

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalidPairs(t *testing.T) {
	tests := []struct {
		name string
		a, b Participant
	}{
		{"empty first key", Participant{}, Participant{Key: "b"}},
		{"empty second key", Participant{Key: "a"}, Participant{}},
		{"same key", Participant{Key: "a"}, Participant{Key: "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.a, tc.b, Participant{Key: "joint"}); !errors.Is(err, ErrInvalidRegistry) {
				t.Errorf("New() error = %v, want %v", err, ErrInvalidRegistry)
			}
		})
	}
}

func TestOther(t *testing.T) {
	r := Default()

	other, err := r.Other("franklin")
	if err != nil {
		t.Fatalf("Other(franklin) error = %v", err)
	}
	if other.Key != "michele" {
		t.Errorf("Other(franklin) = %q, want michele", other.Key)
	}

	other, err = r.Other("michele")
	if err != nil {
		t.Fatalf("Other(michele) error = %v", err)
	}
	if other.Key != "franklin" {
		t.Errorf("Other(michele) = %q, want franklin", other.Key)
	}

	if _, err := r.Other("casal"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("Other(casal) error = %v, want %v", err, ErrUnknownParticipant)
	}
	if _, err := r.Other("nobody"); !errors.Is(err, ErrUnknownParticipant) {
		t.Errorf("Other(nobody) error = %v, want %v", err, ErrUnknownParticipant)
	}
}

func TestDisplayNameFallsBackToKey(t *testing.T) {
	r := Default()
	if got := r.DisplayName("franklin"); got != "Franklim" {
		t.Errorf("DisplayName(franklin) = %q, want Franklim", got)
	}
	if got := r.DisplayName("visitante"); got != "visitante" {
		t.Errorf("DisplayName(visitante) = %q, want the key itself", got)
	}
}
