package strategy

import (
	"fmt"
	"math/rand"
)

// NoBye marks a week in which every team has an opponent.
const NoBye = -1

// Matchup is one game between two team ids.
type Matchup struct {
	A int
	B int
}

// Pairing is one week of matchups. With an odd number of teams the
// leftover team sits out and is recorded in Bye.
type Pairing struct {
	Matchups []Matchup
	Bye      int
}

// Pairer draws a random pairing of team ids 0..teams-1 for a single week.
type Pairer interface {
	Name() string
	Pair(teams int, rng *rand.Rand) Pairing
}

// Names lists the registered pairer names.
func Names() []string {
	return []string{"shuffle_pairs", "uniform_matching"}
}

// Get returns a Pairer by name.
func Get(name string) (Pairer, error) {
	switch name {
	case "shuffle_pairs", "":
		return &ShufflePairs{}, nil
	case "uniform_matching":
		return &UniformMatching{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// ShufflePairs shuffles all team ids (Fisher-Yates) and pairs them by
// repeatedly taking the last two remaining ids.
type ShufflePairs struct{}

func (s *ShufflePairs) Name() string { return "shuffle_pairs" }

func (s *ShufflePairs) Pair(teams int, rng *rand.Rand) Pairing {
	ids := make([]int, teams)
	for i := range ids {
		ids[i] = i
	}
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}

	p := Pairing{Matchups: make([]Matchup, 0, teams/2), Bye: NoBye}
	for len(ids) >= 2 {
		a := ids[len(ids)-1]
		b := ids[len(ids)-2]
		ids = ids[:len(ids)-2]
		p.Matchups = append(p.Matchups, Matchup{A: a, B: b})
	}
	if len(ids) == 1 {
		p.Bye = ids[0]
	}
	return p
}

// UniformMatching samples uniformly over perfect matchings: the first
// unpaired id is matched with a uniformly chosen unpaired partner. For odd
// counts the bye is drawn uniformly first.
type UniformMatching struct{}

func (s *UniformMatching) Name() string { return "uniform_matching" }

func (s *UniformMatching) Pair(teams int, rng *rand.Rand) Pairing {
	ids := make([]int, teams)
	for i := range ids {
		ids[i] = i
	}

	p := Pairing{Matchups: make([]Matchup, 0, teams/2), Bye: NoBye}
	if teams%2 == 1 {
		k := rng.Intn(teams)
		p.Bye = ids[k]
		ids = append(ids[:k], ids[k+1:]...)
	}
	for len(ids) >= 2 {
		k := 1 + rng.Intn(len(ids)-1)
		p.Matchups = append(p.Matchups, Matchup{A: ids[0], B: ids[k]})
		ids[k] = ids[len(ids)-1]
		ids = ids[1 : len(ids)-1]
	}
	return p
}
