package models

import "testing"

func TestPlayerPenalizeFloorsAtZero(t *testing.T) {
	p := NewPlayer("p1", "alice", 3)
	p.Penalize(2)
	if p.Score != 1 {
		t.Fatalf("expected 1, got %d", p.Score)
	}
	p.Penalize(2)
	if p.Score != 0 {
		t.Fatalf("expected 0, got %d", p.Score)
	}
}

func TestPlayerRoundLifecycle(t *testing.T) {
	p := NewPlayer("p1", "alice", 10)
	if p.HasSubmitted() {
		t.Fatal("new player should not have submitted")
	}

	p.Ready = true
	p.Submit(0)
	if !p.HasSubmitted() || *p.Number != 0 {
		t.Fatalf("expected pick 0 recorded, got %v", p.Number)
	}

	p.ResetRound()
	if p.HasSubmitted() || p.Ready {
		t.Fatalf("expected round fields cleared, got %+v", p)
	}
}

func TestPlayerCloneIsDeep(t *testing.T) {
	p := NewPlayer("p1", "alice", 10)
	p.Submit(42)

	c := p.Clone()
	*p.Number = 7
	p.Score = 1

	if *c.Number != 42 || c.Score != 10 {
		t.Fatalf("clone shares state with original: %+v", c)
	}
}
