package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/logging"
	"github.com/derekprior/schedluck/internal/schedule"
	"github.com/derekprior/schedluck/internal/strategy"
)

// DefaultRuns is the number of simulated seasons when none is configured.
const DefaultRuns = 10000

// ErrInvalidLeague wraps every input-shape problem Run rejects.
var ErrInvalidLeague = errors.New("invalid league")

// Bucket is one bar of a win histogram.
type Bucket struct {
	Wins  int
	Count int
}

// Result holds one team's simulated season statistics.
type Result struct {
	TeamID          int
	TeamName        string
	BaseWins        int
	AvgWins         float64 // mean over all runs, rounded to 2 decimals
	MinWins         int
	MaxWins         int
	WinDistribution []Bucket // one bucket per win total 0..weeks
}

// Report is the output of a simulation.
type Report struct {
	Results  []Result // sorted by AvgWins, highest first
	Base     schedule.Schedule
	Runs     int
	Weeks    int
	Strategy string
	Seed     int64
}

// Options controls a simulation.
type Options struct {
	Runs   int
	Pairer strategy.Pairer
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Runs == 0 {
		o.Runs = DefaultRuns
	}
	if o.Pairer == nil {
		o.Pairer = &strategy.ShufflePairs{}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// Run replays the league's scores under opts.Runs random schedules plus one
// base schedule drawn first, and summarises each team's win totals.
func Run(lg *league.League, rng *rand.Rand, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := lg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLeague, err)
	}
	if opts.Runs < 1 {
		return nil, fmt.Errorf("%w: runs must be at least 1, got %d", ErrInvalidLeague, opts.Runs)
	}

	teams, weeks := lg.NumTeams(), lg.NumWeeks()
	log := opts.Logger.WithFields(logrus.Fields{
		"teams":    teams,
		"weeks":    weeks,
		"runs":     opts.Runs,
		"strategy": opts.Pairer.Name(),
	})
	log.Debug("Starting simulation")

	base := schedule.Generate(teams, weeks, opts.Pairer, rng)
	baseWins := schedule.Wins(base, lg.Scores)

	tallies := make([]tally, teams)
	for i := range tallies {
		tallies[i] = newTally(weeks)
	}
	wins := make([]int, teams)
	for n := 0; n < opts.Runs; n++ {
		s := schedule.Generate(teams, weeks, opts.Pairer, rng)
		schedule.WinsInto(wins, s, lg.Scores)
		for team, w := range wins {
			tallies[team].add(w)
		}
	}

	results := make([]Result, teams)
	for i, t := range lg.Teams {
		results[i] = tallies[i].result(t, baseWins[i])
	}

	// Stable sort keeps league order among teams with equal averages.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AvgWins > results[j].AvgWins
	})

	log.WithField("leader", results[0].TeamName).Debug("Simulation complete")

	return &Report{
		Results:  results,
		Base:     base,
		Runs:     opts.Runs,
		Weeks:    weeks,
		Strategy: opts.Pairer.Name(),
	}, nil
}

// tally accumulates one team's win totals across runs.
type tally struct {
	counts []int // indexed by win total
	sum    int
	runs   int
}

func newTally(weeks int) tally {
	return tally{counts: make([]int, weeks+1)}
}

func (t *tally) add(wins int) {
	t.counts[wins]++
	t.sum += wins
	t.runs++
}

func (t *tally) result(team league.Team, baseWins int) Result {
	r := Result{
		TeamID:          team.ID,
		TeamName:        team.Name,
		BaseWins:        baseWins,
		AvgWins:         roundTo2(float64(t.sum) / float64(t.runs)),
		MinWins:         -1,
		WinDistribution: make([]Bucket, len(t.counts)),
	}
	for wins, n := range t.counts {
		r.WinDistribution[wins] = Bucket{Wins: wins, Count: n}
		if n == 0 {
			continue
		}
		if r.MinWins < 0 {
			r.MinWins = wins
		}
		r.MaxWins = wins
	}
	return r
}

// roundTo2 rounds half away from zero at the second decimal.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
