package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/schedule"
	"github.com/derekprior/schedluck/internal/simulation"
	"github.com/derekprior/schedluck/internal/strategy"
)

// Sheet names shared with the validator.
const (
	SummarySheet      = "Summary"
	DistributionSheet = "Distribution"
	BaseScheduleSheet = "Base Schedule"
	ScoresSheet       = "Scores"
	RunSheet          = "Run"
)

// MatchupSeparator joins two team names in a Base Schedule cell.
const MatchupSeparator = " vs "

var reservedSheets = []string{SummarySheet, DistributionSheet, BaseScheduleSheet, ScoresSheet, RunSheet}

// Generate creates a workbook with the simulation summary, win histograms,
// the base schedule, the input scores, and one game-log sheet per team.
func Generate(lg *league.League, report *simulation.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDefaultFont("Arial")

	if err := writeSummarySheet(f, report); err != nil {
		return nil, fmt.Errorf("writing summary sheet: %w", err)
	}
	if err := writeDistributionSheet(f, report); err != nil {
		return nil, fmt.Errorf("writing distribution sheet: %w", err)
	}
	if err := writeBaseScheduleSheet(f, lg, report); err != nil {
		return nil, fmt.Errorf("writing base schedule sheet: %w", err)
	}
	if err := writeScoresSheet(f, lg); err != nil {
		return nil, fmt.Errorf("writing scores sheet: %w", err)
	}
	if err := writeTeamSheets(f, lg, report); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}
	if err := writeRunSheet(f, lg, report); err != nil {
		return nil, fmt.Errorf("writing run sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(SummarySheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

type styles struct {
	header int
	cell   int
	avg    int
	base   int
}

func newStyles(f *excelize.File) styles {
	var s styles
	s.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.cell, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.avg, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		NumFmt:    2, // 0.00
	})
	s.base, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFD966"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return s
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeSummarySheet(f *excelize.File, report *simulation.Report) error {
	sheet := SummarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Rank", "Team", "Team ID", "Base Wins", "Avg Wins", "Min Wins", "Max Wins"}
	writeHeaders(f, sheet, headers, st.header)

	for i, r := range report.Results {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), i+1)
		f.SetCellValue(sheet, cellRef(2, row), r.TeamName)
		f.SetCellValue(sheet, cellRef(3, row), r.TeamID)
		f.SetCellValue(sheet, cellRef(4, row), r.BaseWins)
		f.SetCellValue(sheet, cellRef(5, row), r.AvgWins)
		f.SetCellValue(sheet, cellRef(6, row), r.MinWins)
		f.SetCellValue(sheet, cellRef(7, row), r.MaxWins)
		if st.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), st.cell)
		}
		if st.avg != 0 {
			f.SetCellStyle(sheet, cellRef(5, row), cellRef(5, row), st.avg)
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "G", 12)

	// Base wins above the simulated average were lucky (green), below unlucky (red).
	lastRow := len(report.Results) + 1
	if lastRow < 2 {
		return nil
	}
	lucky, _ := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
	})
	unlucky, _ := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	})
	return f.SetConditionalFormat(sheet, fmt.Sprintf("D2:D%d", lastRow), []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: "D2>E2", Format: &lucky},
		{Type: "formula", Criteria: "D2<E2", Format: &unlucky},
	})
}

func writeDistributionSheet(f *excelize.File, report *simulation.Report) error {
	sheet := DistributionSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	// Team, one column per win total, Total
	headers := []string{"Team"}
	for w := 0; w <= report.Weeks; w++ {
		headers = append(headers, strconv.Itoa(w))
	}
	headers = append(headers, "Total")
	writeHeaders(f, sheet, headers, st.header)

	for i, r := range report.Results {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), r.TeamName)
		total := 0
		for _, b := range r.WinDistribution {
			col := b.Wins + 2
			f.SetCellValue(sheet, cellRef(col, row), b.Count)
			style := st.cell
			if b.Wins == r.BaseWins {
				style = st.base
			}
			if style != 0 {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), style)
			}
			total += b.Count
		}
		f.SetCellValue(sheet, cellRef(len(headers), row), total)
	}

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, colLetter(2), colLetter(len(headers)), 9)
	return nil
}

func writeBaseScheduleSheet(f *excelize.File, lg *league.League, report *simulation.Report) error {
	sheet := BaseScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	games := lg.NumTeams() / 2
	headers := []string{"Week"}
	for g := 1; g <= games; g++ {
		headers = append(headers, fmt.Sprintf("Game %d", g))
	}
	headers = append(headers, "Bye")
	writeHeaders(f, sheet, headers, st.header)

	for w, p := range report.Base {
		row := w + 2
		f.SetCellValue(sheet, cellRef(1, row), w+1)
		for g, m := range p.Matchups {
			f.SetCellValue(sheet, cellRef(g+2, row),
				lg.Teams[m.A].Name+MatchupSeparator+lg.Teams[m.B].Name)
		}
		if p.Bye != strategy.NoBye {
			f.SetCellValue(sheet, cellRef(len(headers), row), lg.Teams[p.Bye].Name)
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, colLetter(2), colLetter(len(headers)), 36)
	return nil
}

func writeScoresSheet(f *excelize.File, lg *league.League) error {
	sheet := ScoresSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	st := newStyles(f)

	headers := []string{"Team"}
	for w := 1; w <= lg.NumWeeks(); w++ {
		headers = append(headers, fmt.Sprintf("Week %d", w))
	}
	writeHeaders(f, sheet, headers, st.header)

	for i, t := range lg.Teams {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), t.Name)
		for w, v := range lg.Scores[i] {
			f.SetCellValue(sheet, cellRef(w+2, row), v)
		}
	}

	f.SetColWidth(sheet, "A", "A", 24)
	return nil
}

func writeTeamSheets(f *excelize.File, lg *league.League, report *simulation.Report) error {
	st := newStyles(f)
	used := make(map[string]bool)
	for _, name := range reservedSheets {
		used[strings.ToLower(name)] = true
	}

	for _, team := range lg.Teams {
		sheet := sheetName(team.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		headers := []string{"Week", "Opponent", "Score", "Opponent Score", "Result"}
		writeHeaders(f, sheet, headers, st.header)

		for i, g := range schedule.TeamLog(report.Base, lg.Scores, team.ID) {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), g.Week)
			f.SetCellValue(sheet, cellRef(3, row), g.Score)
			f.SetCellValue(sheet, cellRef(5, row), g.Outcome.String())
			if g.Outcome != schedule.Bye {
				f.SetCellValue(sheet, cellRef(2, row), lg.Teams[g.Opponent].Name)
				f.SetCellValue(sheet, cellRef(4, row), g.OpponentScore)
			}
			if st.cell != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), st.cell)
			}
		}

		widths := map[string]float64{"A": 8, "B": 24, "C": 10, "D": 16, "E": 10}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

func writeRunSheet(f *excelize.File, lg *league.League, report *simulation.Report) error {
	sheet := RunSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][2]string{
		{"Runs", strconv.Itoa(report.Runs)},
		{"Weeks", strconv.Itoa(report.Weeks)},
		{"Teams", strconv.Itoa(lg.NumTeams())},
		{"Strategy", report.Strategy},
		{"Seed", strconv.FormatInt(report.Seed, 10)},
	}
	for i, kv := range rows {
		f.SetCellValue(sheet, cellRef(1, i+1), kv[0])
		f.SetCellValue(sheet, cellRef(2, i+1), kv[1])
	}
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 24)
	return nil
}

// sheetName makes a valid, unique worksheet name from a team name.
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "Team"
	}
	if r := []rune(clean); len(r) > 31 {
		clean = string(r[:31])
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(clean)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
