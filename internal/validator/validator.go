package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/schedluck/internal/excel"
	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/schedule"
	"github.com/derekprior/schedluck/internal/strategy"
)

// Violation represents a problem found in a saved report.
type Violation struct {
	Sheet   string
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// Validate opens a report workbook and checks that its numbers agree with
// each other.
func Validate(path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rep, err := readReport(f)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var violations []Violation
	violations = append(violations, checkDistributionTotals(rep)...)
	violations = append(violations, checkSummaryBounds(rep)...)
	violations = append(violations, checkSummaryAgainstDistribution(rep)...)
	violations = append(violations, checkOrdering(rep)...)
	violations = append(violations, checkBaseWins(f, rep)...)
	return violations, nil
}

type summaryRow struct {
	Row      int
	Team     string
	TeamID   int
	BaseWins int
	AvgWins  float64
	MinWins  int
	MaxWins  int
}

type distributionRow struct {
	Row    int
	Team   string
	Counts []int
	Total  int
}

type savedReport struct {
	Runs         int
	Weeks        int
	Summary      []summaryRow
	Distribution map[string]distributionRow
}

func readReport(f *excelize.File) (*savedReport, error) {
	rep := &savedReport{Distribution: make(map[string]distributionRow)}

	meta, err := f.GetRows(excel.RunSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.RunSheet, err)
	}
	for _, row := range meta {
		if len(row) < 2 {
			continue
		}
		switch row[0] {
		case "Runs":
			rep.Runs, err = strconv.Atoi(row[1])
		case "Weeks":
			rep.Weeks, err = strconv.Atoi(row[1])
		}
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", excel.RunSheet, row[0], err)
		}
	}
	if rep.Runs < 1 || rep.Weeks < 1 {
		return nil, fmt.Errorf("%s sheet is missing runs or weeks", excel.RunSheet)
	}

	rows, err := f.GetRows(excel.SummarySheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.SummarySheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", excel.SummarySheet)
	}
	for i, row := range rows[1:] {
		if len(row) < 7 {
			return nil, fmt.Errorf("%s row %d: want 7 columns, got %d", excel.SummarySheet, i+2, len(row))
		}
		sr := summaryRow{Row: i + 2, Team: row[1]}
		ints := []*int{&sr.TeamID, &sr.BaseWins, &sr.MinWins, &sr.MaxWins}
		for j, col := range []int{2, 3, 5, 6} {
			if *ints[j], err = strconv.Atoi(row[col]); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", excel.SummarySheet, sr.Row, err)
			}
		}
		if sr.AvgWins, err = strconv.ParseFloat(row[4], 64); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", excel.SummarySheet, sr.Row, err)
		}
		rep.Summary = append(rep.Summary, sr)
	}

	rows, err = f.GetRows(excel.DistributionSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.DistributionSheet, err)
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 || row[0] == "" {
			continue
		}
		dr := distributionRow{Row: i + 1, Team: row[0]}
		// Team, buckets..., Total
		for j := 1; j < len(row); j++ {
			n, err := strconv.Atoi(row[j])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", excel.DistributionSheet, dr.Row, err)
			}
			if j == len(row)-1 {
				dr.Total = n
			} else {
				dr.Counts = append(dr.Counts, n)
			}
		}
		rep.Distribution[dr.Team] = dr
	}

	return rep, nil
}

func checkDistributionTotals(rep *savedReport) []Violation {
	var violations []Violation
	for _, sr := range rep.Summary {
		dr, ok := rep.Distribution[sr.Team]
		if !ok {
			violations = append(violations, Violation{
				Sheet: excel.DistributionSheet, Type: "error",
				Message: fmt.Sprintf("%s has no win distribution", sr.Team),
			})
			continue
		}
		if len(dr.Counts) != rep.Weeks+1 {
			violations = append(violations, Violation{
				Sheet: excel.DistributionSheet, Row: dr.Row, Type: "error",
				Message: fmt.Sprintf("%s has %d win buckets, want %d", dr.Team, len(dr.Counts), rep.Weeks+1),
			})
		}
		sum := 0
		for _, n := range dr.Counts {
			if n < 0 {
				violations = append(violations, Violation{
					Sheet: excel.DistributionSheet, Row: dr.Row, Type: "error",
					Message: fmt.Sprintf("%s has a negative bucket count %d", dr.Team, n),
				})
			}
			sum += n
		}
		if sum != rep.Runs {
			violations = append(violations, Violation{
				Sheet: excel.DistributionSheet, Row: dr.Row, Type: "error",
				Message: fmt.Sprintf("%s distribution sums to %d, want %d runs", dr.Team, sum, rep.Runs),
			})
		}
		if dr.Total != sum {
			violations = append(violations, Violation{
				Sheet: excel.DistributionSheet, Row: dr.Row, Type: "warning",
				Message: fmt.Sprintf("%s total column says %d but buckets sum to %d", dr.Team, dr.Total, sum),
			})
		}
	}
	return violations
}

func checkSummaryBounds(rep *savedReport) []Violation {
	var violations []Violation
	for _, sr := range rep.Summary {
		if sr.MinWins < 0 || sr.MaxWins > rep.Weeks {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s min/max %d/%d outside 0..%d", sr.Team, sr.MinWins, sr.MaxWins, rep.Weeks),
			})
		}
		if float64(sr.MinWins) > sr.AvgWins || sr.AvgWins > float64(sr.MaxWins) {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s average %.2f not between min %d and max %d", sr.Team, sr.AvgWins, sr.MinWins, sr.MaxWins),
			})
		}
		if sr.BaseWins < 0 || sr.BaseWins > rep.Weeks {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s base wins %d outside 0..%d", sr.Team, sr.BaseWins, rep.Weeks),
			})
		}
	}
	return violations
}

// checkSummaryAgainstDistribution recomputes min, max and mean from each histogram.
func checkSummaryAgainstDistribution(rep *savedReport) []Violation {
	var violations []Violation
	for _, sr := range rep.Summary {
		dr, ok := rep.Distribution[sr.Team]
		if !ok {
			continue
		}
		lo, hi, sum, n := -1, -1, 0, 0
		for wins, count := range dr.Counts {
			if count <= 0 {
				continue
			}
			if lo < 0 {
				lo = wins
			}
			hi = wins
			sum += wins * count
			n += count
		}
		if n == 0 {
			continue
		}
		if lo != sr.MinWins || hi != sr.MaxWins {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s min/max %d/%d but distribution spans %d..%d", sr.Team, sr.MinWins, sr.MaxWins, lo, hi),
			})
		}
		mean := math.Round(float64(sum)/float64(n)*100) / 100
		if math.Abs(mean-sr.AvgWins) > 0.005 {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s average %.2f but distribution mean is %.2f", sr.Team, sr.AvgWins, mean),
			})
		}
		if sr.BaseWins < len(dr.Counts) && sr.BaseWins >= 0 && dr.Counts[sr.BaseWins] == 0 {
			violations = append(violations, Violation{
				Sheet: excel.DistributionSheet, Row: dr.Row, Type: "warning",
				Message: fmt.Sprintf("%s base result of %d wins never came up in %d runs", sr.Team, sr.BaseWins, n),
			})
		}
	}
	return violations
}

func checkOrdering(rep *savedReport) []Violation {
	var violations []Violation
	for i := 1; i < len(rep.Summary); i++ {
		prev, cur := rep.Summary[i-1], rep.Summary[i]
		if cur.AvgWins > prev.AvgWins {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: cur.Row, Type: "error",
				Message: fmt.Sprintf("%s (%.2f) ranked below %s (%.2f)", cur.Team, cur.AvgWins, prev.Team, prev.AvgWins),
			})
		}
	}
	return violations
}

// checkBaseWins replays the Base Schedule sheet against the Scores sheet.
func checkBaseWins(f *excelize.File, rep *savedReport) []Violation {
	lg, err := readScores(f)
	if err != nil {
		return []Violation{{Sheet: excel.ScoresSheet, Type: "warning", Message: err.Error()}}
	}
	base, err := readBaseSchedule(f, lg)
	if err != nil {
		return []Violation{{Sheet: excel.BaseScheduleSheet, Type: "error", Message: err.Error()}}
	}
	if err := base.Check(lg.NumTeams()); err != nil {
		return []Violation{{Sheet: excel.BaseScheduleSheet, Type: "error", Message: err.Error()}}
	}

	wins := schedule.Wins(base, lg.Scores)
	var violations []Violation
	for _, sr := range rep.Summary {
		if sr.TeamID < 0 || sr.TeamID >= len(wins) {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s has unknown team id %d", sr.Team, sr.TeamID),
			})
			continue
		}
		if wins[sr.TeamID] != sr.BaseWins {
			violations = append(violations, Violation{
				Sheet: excel.SummarySheet, Row: sr.Row, Type: "error",
				Message: fmt.Sprintf("%s base wins %d but the base schedule gives %d", sr.Team, sr.BaseWins, wins[sr.TeamID]),
			})
		}
	}
	return violations
}

func readScores(f *excelize.File) (*league.League, error) {
	rows, err := f.GetRows(excel.ScoresSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.ScoresSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s is empty", excel.ScoresSheet)
	}
	weeks := len(rows[0]) - 1
	lg := &league.League{}
	for i, row := range rows[1:] {
		scores := make([]float64, weeks)
		for w := 0; w < weeks; w++ {
			if w+1 >= len(row) || row[w+1] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[w+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", excel.ScoresSheet, i+2, err)
			}
			scores[w] = v
		}
		lg.Teams = append(lg.Teams, league.Team{ID: i, Name: row[0]})
		lg.Scores = append(lg.Scores, scores)
	}
	return lg, nil
}

func readBaseSchedule(f *excelize.File, lg *league.League) (schedule.Schedule, error) {
	rows, err := f.GetRows(excel.BaseScheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", excel.BaseScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", excel.BaseScheduleSheet)
	}

	ids := make(map[string]int)
	for _, t := range lg.Teams {
		ids[t.Name] = t.ID
	}
	byeCol := len(rows[0]) - 1

	var s schedule.Schedule
	for i, row := range rows[1:] {
		p := strategy.Pairing{Bye: strategy.NoBye}
		for col := 1; col < len(row); col++ {
			cell := row[col]
			if cell == "" {
				continue
			}
			if col == byeCol {
				id, ok := ids[cell]
				if !ok {
					return nil, fmt.Errorf("%s row %d: unknown bye team %q", excel.BaseScheduleSheet, i+2, cell)
				}
				p.Bye = id
				continue
			}
			a, b, ok := parseMatchupCell(cell, ids)
			if !ok {
				return nil, fmt.Errorf("%s row %d: cannot read matchup %q", excel.BaseScheduleSheet, i+2, cell)
			}
			p.Matchups = append(p.Matchups, strategy.Matchup{A: a, B: b})
		}
		s = append(s, p)
	}
	return s, nil
}

// parseMatchupCell splits "Team A vs Team B" at the separator whose two sides
// are both known team names.
func parseMatchupCell(cell string, ids map[string]int) (a, b int, ok bool) {
	sep := excel.MatchupSeparator
	for i := 0; i+len(sep) <= len(cell); i++ {
		if !strings.HasPrefix(cell[i:], sep) {
			continue
		}
		left, right := cell[:i], cell[i+len(sep):]
		idA, okA := ids[left]
		idB, okB := ids[right]
		if okA && okB {
			return idA, idB, true
		}
	}
	return 0, 0, false
}
