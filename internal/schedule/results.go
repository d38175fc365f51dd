package schedule

import (
	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/strategy"
)

// Outcome is how a week went for one team.
type Outcome int

const (
	Loss Outcome = iota
	Win
	Tie
	Bye
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "W"
	case Tie:
		return "T"
	case Bye:
		return "BYE"
	default:
		return "L"
	}
}

// Wins counts each team's wins under the schedule. Higher score wins the
// matchup; equal scores give neither team a win, and a bye is worth nothing.
func Wins(s Schedule, scores league.Scores) []int {
	wins := make([]int, scores.Teams())
	WinsInto(wins, s, scores)
	return wins
}

// WinsInto is Wins writing into a caller-owned slice, which it zeroes first.
func WinsInto(wins []int, s Schedule, scores league.Scores) {
	for i := range wins {
		wins[i] = 0
	}
	for w, p := range s {
		for _, m := range p.Matchups {
			a, b := scores[m.A][w], scores[m.B][w]
			if a > b {
				wins[m.A]++
			} else if b > a {
				wins[m.B]++
			}
		}
	}
}

// TeamWeek is one row of a team's game log.
type TeamWeek struct {
	Week          int // 1-based
	Opponent      int // strategy.NoBye on a bye
	Score         float64
	OpponentScore float64
	Outcome       Outcome
}

// TeamLog lists a team's week-by-week results under the schedule.
func TeamLog(s Schedule, scores league.Scores, team int) []TeamWeek {
	log := make([]TeamWeek, 0, len(s))
	for w := range s {
		tw := TeamWeek{Week: w + 1, Opponent: s.Opponent(team, w), Score: scores[team][w]}
		if tw.Opponent == strategy.NoBye {
			tw.Outcome = Bye
			log = append(log, tw)
			continue
		}
		tw.OpponentScore = scores[tw.Opponent][w]
		switch {
		case tw.Score > tw.OpponentScore:
			tw.Outcome = Win
		case tw.Score < tw.OpponentScore:
			tw.Outcome = Loss
		default:
			tw.Outcome = Tie
		}
		log = append(log, tw)
	}
	return log
}
