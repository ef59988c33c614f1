package game

import (
	"math"

	"github.com/mcdev12/eightypercent/go/internal/models"
)

// roundOutcome is what a scoring pass decided. Winner is reported to clients;
// lastWinner is the last player credited with a win, which differs from
// Winner only when several players hit the target exactly.
type roundOutcome struct {
	winner     *models.Player
	lastWinner *models.Player
}

func single(p *models.Player) roundOutcome {
	return roundOutcome{winner: p, lastWinner: p}
}

// scoreRound applies one round of scoring to the present players, given in
// join order. Every "closest pick" search keeps the first player found on
// equal distance.
func scoreRound(players []*models.Player, ratio float64) roundOutcome {
	numbers := submittedNumbers(players)
	if len(numbers) == 0 {
		return roundOutcome{}
	}
	target := mean(numbers) * ratio

	if len(players) == 4 {
		if repeated := repeatedValues(numbers); len(repeated) > 0 {
			return single(scoreFourPlayerDuplicates(players, target, repeated))
		}
	}
	if len(players) == 3 {
		if outcome := scoreExactMatch(players, target); outcome.winner != nil {
			return outcome
		}
	}
	if len(players) == 2 {
		if winner := scoreEndgame(players); winner != nil {
			return single(winner)
		}
	}
	return single(scoreNormal(players, target))
}

// Target returns the value picks are scored against
func Target(numbers []int, ratio float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	return mean(numbers) * ratio
}

func submittedNumbers(players []*models.Player) []int {
	numbers := make([]int, 0, len(players))
	for _, p := range players {
		if p.HasSubmitted() {
			numbers = append(numbers, *p.Number)
		}
	}
	return numbers
}

func mean(numbers []int) float64 {
	sum := 0
	for _, n := range numbers {
		sum += n
	}
	return float64(sum) / float64(len(numbers))
}

// repeatedValues returns the set of values picked more than once
func repeatedValues(numbers []int) map[int]bool {
	counts := make(map[int]int, len(numbers))
	for _, n := range numbers {
		counts[n]++
	}
	repeated := make(map[int]bool)
	for n, c := range counts {
		if c > 1 {
			repeated[n] = true
		}
	}
	return repeated
}

// closest returns the submitted player nearest the target, skipping excluded ones
func closest(players []*models.Player, target float64, excluded func(*models.Player) bool) *models.Player {
	var best *models.Player
	minDiff := math.Inf(1)
	for _, p := range players {
		if !p.HasSubmitted() || excluded(p) {
			continue
		}
		if diff := math.Abs(float64(*p.Number) - target); diff < minDiff {
			minDiff = diff
			best = p
		}
	}
	return best
}

// scoreFourPlayerDuplicates: duplicate pickers lose a point, the closest unique
// pick wins and nobody else is touched.
func scoreFourPlayerDuplicates(players []*models.Player, target float64, repeated map[int]bool) *models.Player {
	isDuplicate := func(p *models.Player) bool {
		return p.HasSubmitted() && repeated[*p.Number]
	}
	for _, p := range players {
		if isDuplicate(p) {
			p.Penalize(PenaltyFourPlayerDuplicate)
		}
	}
	winner := closest(players, target, isDuplicate)
	if winner != nil {
		winner.RecordWin()
	}
	return winner
}

// scoreExactMatch: with three players every pick equal to the target scores
// a win, and each such hit takes two points from every other player, other
// hitters included. Equality is exact, no tolerance. The first hitter is the
// reported winner.
func scoreExactMatch(players []*models.Player, target float64) roundOutcome {
	var outcome roundOutcome
	for _, hitter := range players {
		if !hitter.HasSubmitted() || float64(*hitter.Number) != target {
			continue
		}
		for _, p := range players {
			if p != hitter {
				p.Penalize(PenaltyExactMatch)
			}
		}
		hitter.RecordWin()
		if outcome.winner == nil {
			outcome.winner = hitter
		}
		outcome.lastWinner = hitter
	}
	return outcome
}

// scoreEndgame: with two players, 100 against 0 wins outright and wipes the loser.
func scoreEndgame(players []*models.Player) *models.Player {
	a, b := players[0], players[1]
	if !a.HasSubmitted() || !b.HasSubmitted() {
		return nil
	}
	var winner, loser *models.Player
	switch {
	case *a.Number == endgameLowPick && *b.Number == endgameHighPick:
		winner, loser = b, a
	case *a.Number == endgameHighPick && *b.Number == endgameLowPick:
		winner, loser = a, b
	default:
		return nil
	}
	loser.Score = 0
	winner.RecordWin()
	return winner
}

func scoreNormal(players []*models.Player, target float64) *models.Player {
	repeated := repeatedValues(submittedNumbers(players))
	isDuplicate := func(p *models.Player) bool {
		return p.HasSubmitted() && repeated[*p.Number]
	}

	winner := closest(players, target, isDuplicate)
	if winner == nil {
		for _, p := range players {
			p.Penalize(PenaltyDuplicate)
			p.ConsecutiveWins = 0
		}
		return nil
	}

	for _, p := range players {
		if p == winner {
			p.RecordWin()
			continue
		}
		if isDuplicate(p) {
			p.Penalize(PenaltyDuplicate)
		} else {
			p.Penalize(PenaltyLoss)
		}
		p.ConsecutiveWins = 0
	}
	return winner
}
