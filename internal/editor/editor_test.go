package editor

import (
	"path/filepath"
	"reflect"
	"testing"

	"blindpick-service/internal/domain"
)

func TestNewStartsWithOneRound(t *testing.T) {
	e := New()
	rounds := e.Rounds()
	if len(rounds) != 1 || rounds[0].Title != "Round 1" {
		t.Fatalf("expected a single default round, got %+v", rounds)
	}
	if e.Dirty() {
		t.Fatalf("fresh document should not be dirty")
	}
}

func TestListOperations(t *testing.T) {
	e := New()
	if err := e.Update(0, domain.RoundTemplate{Title: "Capitals", Video: "a.mp4", Truth: "Paris"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	i := e.Add()
	if i != 1 || e.Rounds()[1].Title != "Round 2" {
		t.Fatalf("expected appended default round, got %+v", e.Rounds())
	}

	j, err := e.Duplicate(0)
	if err != nil || j != 1 {
		t.Fatalf("duplicate: index %d err %v", j, err)
	}
	if got := e.Rounds()[1].Title; got != "Capitals (copy)" {
		t.Fatalf("expected copy title, got %q", got)
	}
	// A second duplicate must get a distinct title.
	if _, err := e.Duplicate(0); err != nil {
		t.Fatalf("duplicate 2: %v", err)
	}
	if got := e.Rounds()[1].Title; got != "Capitals (copy) 2" {
		t.Fatalf("expected numbered copy title, got %q", got)
	}

	if err := e.MoveDown(0); err != nil {
		t.Fatalf("move down: %v", err)
	}
	if got := e.Rounds()[1].Title; got != "Capitals" {
		t.Fatalf("expected Capitals moved to index 1, got %q", got)
	}
	if err := e.MoveUp(1); err != nil {
		t.Fatalf("move up: %v", err)
	}
	if got := e.Rounds()[0].Title; got != "Capitals" {
		t.Fatalf("expected Capitals back at index 0, got %q", got)
	}

	for len(e.Rounds()) > 1 {
		if err := e.Delete(1); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	if err := e.Delete(0); err != ErrLastRound {
		t.Fatalf("expected last-round guard, got %v", err)
	}
}

func TestUpdateKeepsTitleWhenBlank(t *testing.T) {
	e := New()
	if err := e.Update(0, domain.RoundTemplate{Title: "  ", Video: "a.mp4", Truth: "Paris"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := e.Rounds()[0].Title; got != "Round 1" {
		t.Fatalf("expected original title kept, got %q", got)
	}
}

func TestSaveValidatesAndRoundTrips(t *testing.T) {
	e := New()
	if err := e.Save(); err != ErrNoPath {
		t.Fatalf("expected no-path error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "rounds.json")
	if err := e.SaveAs(path); err == nil {
		t.Fatalf("expected validation error for blank video/truth")
	}

	if err := e.Update(0, domain.RoundTemplate{Title: "Capitals", Video: "a.mp4", Truth: "Paris"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := e.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if e.Dirty() {
		t.Fatalf("expected clean document after save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Rounds(), e.Rounds()) {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded.Rounds(), e.Rounds())
	}
}
