package schedule

import (
	"fmt"
	"math/rand"

	"github.com/derekprior/schedluck/internal/strategy"
)

// Schedule is one full season: a pairing per week, indexed by week.
type Schedule []strategy.Pairing

// Generate draws a season of independent weekly pairings.
func Generate(teams, weeks int, pairer strategy.Pairer, rng *rand.Rand) Schedule {
	s := make(Schedule, weeks)
	for w := range s {
		s[w] = pairer.Pair(teams, rng)
	}
	return s
}

// Check reports the first week in which a team plays twice, not at all, or
// an id falls outside 0..teams-1.
func (s Schedule) Check(teams int) error {
	for w, p := range s {
		seen := make([]bool, teams)
		mark := func(id int) error {
			if id < 0 || id >= teams {
				return fmt.Errorf("week %d: team id %d out of range", w+1, id)
			}
			if seen[id] {
				return fmt.Errorf("week %d: team %d scheduled more than once", w+1, id)
			}
			seen[id] = true
			return nil
		}
		for _, m := range p.Matchups {
			if err := mark(m.A); err != nil {
				return err
			}
			if err := mark(m.B); err != nil {
				return err
			}
		}
		if p.Bye != strategy.NoBye {
			if err := mark(p.Bye); err != nil {
				return err
			}
		}
		for id, ok := range seen {
			if !ok {
				return fmt.Errorf("week %d: team %d has no game", w+1, id)
			}
		}
	}
	return nil
}

// Opponent returns who team plays in week w, or strategy.NoBye if the team
// sits out that week.
func (s Schedule) Opponent(team, w int) int {
	for _, m := range s[w].Matchups {
		switch team {
		case m.A:
			return m.B
		case m.B:
			return m.A
		}
	}
	return strategy.NoBye
}
