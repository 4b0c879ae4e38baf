package ecs

import "testing"

func TestSparseSetRemoveKeepsOtherSlots(t *testing.T) {
	tests := []struct {
		name   string
		remove int
		want   map[int]string
	}{
		{name: "first", remove: 2, want: map[int]string{5: "e", 9: "i"}},
		{name: "middle", remove: 5, want: map[int]string{2: "b", 9: "i"}},
		{name: "last", remove: 9, want: map[int]string{2: "b", 5: "e"}},
		{name: "absent", remove: 7, want: map[int]string{2: "b", 5: "e", 9: "i"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SparseSet
			s.Set(2, "b")
			s.Set(5, "e")
			s.Set(9, "i")

			s.Remove(tt.remove)

			if got := len(s.Entities()); got != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), got)
			}
			if s.Has(tt.remove) || s.Get(tt.remove) != nil {
				t.Fatalf("slot %d still present", tt.remove)
			}
			for id, v := range tt.want {
				if got := s.Get(id); got != v {
					t.Fatalf("slot %d: expected %q, got %v", id, v, got)
				}
			}
		})
	}
}

func TestSparseSetOverwriteAndBounds(t *testing.T) {
	var s SparseSet
	s.Set(0, "ignored")
	s.Set(3, "old")
	s.Set(3, "new")

	if s.Has(0) || s.Has(-1) || s.Has(40) {
		t.Fatalf("out of range slots must not be present")
	}
	if got := s.Get(3); got != "new" {
		t.Fatalf("expected overwrite, got %v", got)
	}
	if got := len(s.Entities()); got != 1 {
		t.Fatalf("expected one entry, got %d", got)
	}

	var nilSet *SparseSet
	if nilSet.Has(1) || nilSet.Get(1) != nil || nilSet.Entities() != nil {
		t.Fatalf("nil set must be empty")
	}
	nilSet.Remove(1)
}
