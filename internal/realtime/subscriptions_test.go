package realtime

import (
	"reflect"
	"testing"
)

func TestSubscriptionSet_AddRemoveSequences(t *testing.T) {
	type op struct {
		action string // "add" or "remove"
		types  []string
	}

	tests := []struct {
		name string
		seed []string
		ops  []op
		want []string
	}{
		{
			name: "add to empty",
			ops:  []op{{"add", []string{"order.created", "order.updated"}}},
			want: []string{"order.created", "order.updated"},
		},
		{
			name: "duplicate add is idempotent",
			seed: []string{"order.created"},
			ops:  []op{{"add", []string{"order.created", "job.progress"}}},
			want: []string{"job.progress", "order.created"},
		},
		{
			name: "remove absent type is a no-op",
			seed: []string{"order.created"},
			ops:  []op{{"remove", []string{"export.completed"}}},
			want: []string{"order.created"},
		},
		{
			name: "interleaved adds and removes",
			seed: []string{"order.created", "order.updated"},
			ops: []op{
				{"remove", []string{"order.created"}},
				{"add", []string{"inventory.alert"}},
				{"add", []string{"order.created"}},
				{"remove", []string{"order.updated", "inventory.alert"}},
			},
			want: []string{"order.created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSubscriptionSet(tt.seed...)
			for _, o := range tt.ops {
				switch o.action {
				case "add":
					s.Add(o.types...)
				case "remove":
					s.Remove(o.types...)
				}
			}
			if got := s.All(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("All() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionSet_AddReturnsOnlyNew(t *testing.T) {
	s := NewSubscriptionSet("order.created")

	added := s.Add("order.created", "order.updated")
	if !reflect.DeepEqual(added, []string{"order.updated"}) {
		t.Errorf("Add returned %v, want [order.updated]", added)
	}
}

func TestSubscriptionSet_RemoveReturnsOnlyPresent(t *testing.T) {
	s := NewSubscriptionSet("order.created")

	removed := s.Remove("order.created", "order.updated")
	if !reflect.DeepEqual(removed, []string{"order.created"}) {
		t.Errorf("Remove returned %v, want [order.created]", removed)
	}
}

func TestSubscriptionSet_AllSorted(t *testing.T) {
	s := NewSubscriptionSet("c.event", "a.event", "b.event")

	want := []string{"a.event", "b.event", "c.event"}
	if got := s.All(); !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

func TestSubscriptionSet_Has(t *testing.T) {
	s := NewSubscriptionSet("order.created")

	if !s.Has("order.created") {
		t.Error("Has(order.created) = false, want true")
	}
	if s.Has("order.updated") {
		t.Error("Has(order.updated) = true, want false")
	}
}
