package league

import (
	"fmt"
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Team is one franchise in the league. ID is its row in the score matrix.
type Team struct {
	ID   int
	Name string
}

// Scores holds one row per team and one column per week.
type Scores [][]float64

// Teams returns the number of rows.
func (s Scores) Teams() int {
	return len(s)
}

// Weeks returns the number of columns, taken from the first row.
func (s Scores) Weeks() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// League is the fixed set of teams and their weekly scores.
type League struct {
	Teams  []Team
	Scores Scores
}

// NumTeams returns the number of teams.
func (l *League) NumTeams() int {
	return len(l.Teams)
}

// NumWeeks returns the number of weeks in the season.
func (l *League) NumWeeks() int {
	return l.Scores.Weeks()
}

// Validate checks that teams and scores line up by position and that every
// score is a finite number.
func (l *League) Validate() error {
	if len(l.Teams) < 2 {
		return fmt.Errorf("league needs at least 2 teams, got %d", len(l.Teams))
	}
	if len(l.Scores) != len(l.Teams) {
		return fmt.Errorf("have %d teams but %d score rows", len(l.Teams), len(l.Scores))
	}
	weeks := l.Scores.Weeks()
	if weeks < 1 {
		return fmt.Errorf("season needs at least 1 week")
	}
	for i, t := range l.Teams {
		if t.ID != i {
			return fmt.Errorf("team %q has id %d at position %d", t.Name, t.ID, i)
		}
		row := l.Scores[i]
		if len(row) != weeks {
			return fmt.Errorf("team %q has %d weekly scores, want %d", t.Name, len(row), weeks)
		}
		for w, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("team %q week %d: score %v is not a finite number", t.Name, w+1, v)
			}
		}
	}
	return nil
}

// FindTeam returns the team whose name best matches query. Names containing
// the query's characters in order are preferred; among candidates the one
// with the smallest edit distance wins.
func (l *League) FindTeam(query string) (Team, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Team{}, fmt.Errorf("empty team name")
	}

	best := -1
	bestDistance := 0
	bestMatched := false
	for i, t := range l.Teams {
		name := strings.ToLower(t.Name)
		if name == q {
			return t, nil
		}
		matched := fuzzy.MatchFold(q, name)
		distance := fuzzy.LevenshteinDistance(q, name)
		switch {
		case best < 0,
			matched && !bestMatched,
			matched == bestMatched && distance < bestDistance:
			best, bestDistance, bestMatched = i, distance, matched
		}
	}

	// Without a subsequence match, only accept names that are close.
	if best < 0 || (!bestMatched && bestDistance > len(q)/2) {
		return Team{}, fmt.Errorf("no team matches %q", query)
	}
	return l.Teams[best], nil
}
