package excel

import (
	"math/rand"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/simulation"
	"github.com/derekprior/schedluck/internal/strategy"
)

func testData(t *testing.T) (*league.League, *simulation.Report) {
	t.Helper()
	lg := &league.League{
		Teams: []league.Team{
			{ID: 0, Name: "Gronks"},
			{ID: 1, Name: "Waivers"},
			{ID: 2, Name: "Summary"},
			{ID: 3, Name: "Sleepers/Busts"},
		},
		Scores: league.Scores{
			{120, 110, 100},
			{90, 95, 130},
			{80, 85, 70},
			{100, 100, 100},
		},
	}
	report, err := simulation.Run(lg, rand.New(rand.NewSource(3)), simulation.Options{Runs: 100})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	report.Seed = 1776000000000000123
	return lg, report
}

func TestGenerateWorkbook(t *testing.T) {
	lg, report := testData(t)

	f, err := Generate(lg, report)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	t.Run("has report sheets", func(t *testing.T) {
		for _, sheet := range reservedSheets {
			idx, err := f.GetSheetIndex(sheet)
			if err != nil {
				t.Fatalf("GetSheetIndex error: %v", err)
			}
			if idx < 0 {
				t.Errorf("%s sheet not found", sheet)
			}
		}
	})

	t.Run("summary follows result order", func(t *testing.T) {
		rows, _ := f.GetRows(SummarySheet)
		if len(rows) != 5 {
			t.Fatalf("summary rows = %d, want 5", len(rows))
		}
		if rows[0][4] != "Avg Wins" {
			t.Errorf("E1 = %q, want Avg Wins", rows[0][4])
		}
		for i, r := range report.Results {
			if rows[i+1][1] != r.TeamName {
				t.Errorf("row %d team = %q, want %q", i+2, rows[i+1][1], r.TeamName)
			}
		}
	})

	t.Run("distribution has a column per win total", func(t *testing.T) {
		rows, _ := f.GetRows(DistributionSheet)
		header := rows[0]
		if len(header) != 6 { // Team, 0..3, Total
			t.Fatalf("distribution headers = %v", header)
		}
		if header[1] != "0" || header[4] != "3" || header[5] != "Total" {
			t.Errorf("distribution headers = %v", header)
		}
		for _, row := range rows[1:] {
			if row[5] != "100" {
				t.Errorf("%s total = %s, want 100", row[0], row[5])
			}
		}
	})

	t.Run("base wins bucket is highlighted", func(t *testing.T) {
		r := report.Results[0]
		baseCell := cellRef(r.BaseWins+2, 2)
		style, err := f.GetCellStyle(DistributionSheet, baseCell)
		if err != nil {
			t.Fatalf("GetCellStyle error: %v", err)
		}
		other := cellRef((r.BaseWins+1)%4+2, 2)
		otherStyle, _ := f.GetCellStyle(DistributionSheet, other)
		if style == otherStyle {
			t.Errorf("base bucket %s has the same style as %s", baseCell, other)
		}
	})

	t.Run("base schedule lists every week", func(t *testing.T) {
		rows, _ := f.GetRows(BaseScheduleSheet)
		if len(rows) != 4 {
			t.Fatalf("base schedule rows = %d, want 4", len(rows))
		}
		if rows[0][1] != "Game 1" || rows[0][3] != "Bye" {
			t.Errorf("headers = %v", rows[0])
		}
		for w, p := range report.Base {
			m := p.Matchups[0]
			want := lg.Teams[m.A].Name + MatchupSeparator + lg.Teams[m.B].Name
			if rows[w+1][1] != want {
				t.Errorf("week %d game 1 = %q, want %q", w+1, rows[w+1][1], want)
			}
		}
	})

	t.Run("team sheets avoid reserved and invalid names", func(t *testing.T) {
		for _, sheet := range []string{"Gronks", "Waivers", "Summary (2)", "Sleepers-Busts"} {
			idx, _ := f.GetSheetIndex(sheet)
			if idx < 0 {
				t.Errorf("sheet %q not found", sheet)
			}
		}
		rows, _ := f.GetRows("Gronks")
		if len(rows) != 4 {
			t.Errorf("Gronks sheet rows = %d, want 4", len(rows))
		}
	})

	t.Run("run sheet keeps the full seed", func(t *testing.T) {
		val, _ := f.GetCellValue(RunSheet, "B5")
		if val != "1776000000000000123" {
			t.Errorf("seed = %q", val)
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should be removed")
		}
	})
}

func TestGenerateOddLeagueHasByes(t *testing.T) {
	lg := &league.League{
		Teams:  []league.Team{{ID: 0, Name: "A"}, {ID: 1, Name: "B"}, {ID: 2, Name: "C"}},
		Scores: league.Scores{{1, 2}, {2, 1}, {3, 3}},
	}
	report, err := simulation.Run(lg, rand.New(rand.NewSource(5)), simulation.Options{Runs: 10})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	f, err := Generate(lg, report)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	rows, _ := f.GetRows(BaseScheduleSheet)
	for w, p := range report.Base {
		if p.Bye == strategy.NoBye {
			t.Fatalf("week %d has no bye", w+1)
		}
		if got := rows[w+1][2]; got != lg.Teams[p.Bye].Name {
			t.Errorf("week %d bye = %q, want %q", w+1, got, lg.Teams[p.Bye].Name)
		}
	}
}

func TestWriteAndRead(t *testing.T) {
	lg, report := testData(t)

	f, err := Generate(lg, report)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	path := t.TempDir() + "/report.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f2.Close()

	val, _ := f2.GetCellValue(SummarySheet, "B1")
	if val != "Team" {
		t.Errorf("re-read B1 = %q, want Team", val)
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"summary": true}
	tests := []struct {
		in, want string
	}{
		{"Gronks", "Gronks"},
		{"gronks", "gronks (2)"},
		{"Summary", "Summary (2)"},
		{"What? Me [Worry]", "What- Me -Worry-"},
		{"A Very Long Fantasy Team Name That Goes On", "A Very Long Fantasy Team Name T"},
		{"A Very Long Fantasy Team Name That Goes On", "A Very Long Fantasy Team Na (2)"},
		{"''", "Team"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in, used); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColLetter(t *testing.T) {
	tests := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for in, want := range tests {
		if got := colLetter(in); got != want {
			t.Errorf("colLetter(%d) = %q, want %q", in, got, want)
		}
	}
}
