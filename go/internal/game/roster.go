package game

import (
	"golang.org/x/text/cases"

	"github.com/mcdev12/eightypercent/go/internal/models"
)

// roster keeps present players in join order. Scoring tie-breaks depend on it.
type roster struct {
	order []string
	byID  map[string]*models.Player
}

func newRoster() *roster {
	return &roster{byID: make(map[string]*models.Player)}
}

func (r *roster) len() int {
	return len(r.order)
}

func (r *roster) get(id string) (*models.Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *roster) add(p *models.Player) {
	r.order = append(r.order, p.ID)
	r.byID[p.ID] = p
}

func (r *roster) remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// players returns the present players in join order
func (r *roster) players() []*models.Player {
	out := make([]*models.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *roster) first() (*models.Player, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.byID[r.order[0]], true
}

// nameTaken compares with Unicode case folding
func (r *roster) nameTaken(name string) bool {
	folded := cases.Fold().String(name)
	for _, p := range r.byID {
		if cases.Fold().String(p.Name) == folded {
			return true
		}
	}
	return false
}

func (r *roster) allReady() bool {
	for _, p := range r.byID {
		if !p.Ready {
			return false
		}
	}
	return true
}

// allSubmitted is vacuously true for an empty roster
func (r *roster) allSubmitted() bool {
	for _, p := range r.byID {
		if !p.HasSubmitted() {
			return false
		}
	}
	return true
}

func (r *roster) snapshot() []models.Player {
	out := make([]models.Player, 0, len(r.order))
	for _, p := range r.players() {
		out = append(out, p.Clone())
	}
	return out
}
