package game

import (
	"reflect"
	"testing"

	"blindpick-service/internal/domain"
)

func TestBuildSlotsKeepsEmptyAnswers(t *testing.T) {
	slots := buildSlots([]string{"A", "B"}, []string{"Paris", ""}, "Paris")
	want := []domain.Slot{
		{Author: "A", Text: "Paris"},
		{Author: "B", Text: ""},
		{Author: domain.TruthAuthor, Text: "Paris"},
	}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %+v, got %+v", want, slots)
	}
}

func TestRotated(t *testing.T) {
	players := []string{"A", "B", "C"}
	cases := []struct {
		round int
		want  []string
	}{
		{0, []string{"A", "B", "C"}},
		{1, []string{"C", "A", "B"}},
		{2, []string{"B", "C", "A"}},
		{3, []string{"A", "B", "C"}}, // full cycle
	}
	for _, tc := range cases {
		if got := rotated(players, tc.round); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("round %d: expected %v, got %v", tc.round, tc.want, got)
		}
	}
	if got := rotated(nil, 1); got != nil {
		t.Fatalf("expected nil for no players, got %v", got)
	}
}
