package game

import (
	"testing"

	"github.com/mcdev12/eightypercent/go/internal/models"
)

func TestRosterKeepsJoinOrder(t *testing.T) {
	r := newRoster()
	for _, id := range []string{"c", "a", "b"} {
		r.add(models.NewPlayer(id, id, 10))
	}
	r.remove("a")
	r.add(models.NewPlayer("a", "a", 10))

	var got []string
	for _, p := range r.players() {
		got = append(got, p.ID)
	}
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if first, _ := r.first(); first.ID != "c" {
		t.Fatalf("expected first c, got %s", first.ID)
	}
}

func TestRosterRemoveUnknown(t *testing.T) {
	r := newRoster()
	if r.remove("ghost") {
		t.Fatal("expected remove of unknown id to report false")
	}
}

func TestRosterNameTakenFoldsCase(t *testing.T) {
	r := newRoster()
	r.add(models.NewPlayer("p1", "Straße", 10))

	for _, name := range []string{"Straße", "STRASSE", "strasse"} {
		if !r.nameTaken(name) {
			t.Fatalf("expected %q to collide", name)
		}
	}
	if r.nameTaken("street") {
		t.Fatal("expected distinct name to be free")
	}
}

func TestRosterAllSubmittedEmpty(t *testing.T) {
	if !newRoster().allSubmitted() {
		t.Fatal("expected empty roster to count as all submitted")
	}
}

func TestRosterSnapshotIsolated(t *testing.T) {
	r := newRoster()
	p := models.NewPlayer("p1", "alice", 10)
	r.add(p)

	snap := r.snapshot()
	p.Score = 3
	if snap[0].Score != 10 {
		t.Fatalf("snapshot changed with roster: %d", snap[0].Score)
	}
}
