package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/derekprior/schedluck/internal/config"
	"github.com/derekprior/schedluck/internal/excel"
	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/logging"
	"github.com/derekprior/schedluck/internal/schedule"
	"github.com/derekprior/schedluck/internal/simulation"
	"github.com/derekprior/schedluck/internal/strategy"
	"github.com/derekprior/schedluck/internal/validator"
)

const defaultConfigFile = "league.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no league file found. Either run `schedluck init` to create %s or pass --config", defaultConfigFile)
}

// overrides are command-line settings that win over the league file and
// the environment.
type overrides struct {
	runs     int
	seed     int64
	strategy string
	logLevel string
	logFile  string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "⚠ loading .env: %s\n", err)
	}

	var ov overrides
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "schedluck",
		Short: "How much of a fantasy season came down to the schedule",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to league file (default: league.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&ov.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&ov.logFile, "log-file", "", "Also write logs to this file (rotated)")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter league.yaml with sample scores",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the league file")

	var outputFile, teamQuery string
	simulateCmd := &cobra.Command{
		Use:          "simulate",
		Short:        "Replay the season under thousands of random schedules",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(configFile, ov)
			if err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cfg, log, outputFile, teamQuery)
		},
	}
	simulateCmd.Flags().StringVarP(&outputFile, "output", "o", "report.xlsx", "Output Excel file path (empty to skip)")
	simulateCmd.Flags().StringVar(&teamQuery, "team", "", "Show the win distribution for this team")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Work with single random schedules",
	}
	showCmd := &cobra.Command{
		Use:          "show",
		Short:        "Draw one random schedule and show how the season would have gone",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configFile, ov)
			if err != nil {
				return err
			}
			return runShow(cfg)
		},
	}
	scheduleCmd.AddCommand(showCmd)

	for _, cmd := range []*cobra.Command{simulateCmd, showCmd} {
		cmd.Flags().Int64Var(&ov.seed, "seed", 0, "Random seed (default: from league file, else the clock)")
		cmd.Flags().StringVar(&ov.strategy, "strategy", "", "Pairing strategy: "+strings.Join(strategy.Names(), ", "))
	}
	simulateCmd.Flags().IntVar(&ov.runs, "runs", 0, "Number of simulated seasons (default: from league file, else 10000)")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Work with saved simulation reports",
	}
	validateCmd := &cobra.Command{
		Use:          "validate <report.xlsx>",
		Short:        "Check that a saved report is internally consistent",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
	reportCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(initCmd, simulateCmd, scheduleCmd, reportCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the league file, then applies environment variables and
// flags on top, and builds the logger from the result.
func loadConfig(configFlag string, ov overrides) (*config.Config, *logrus.Logger, error) {
	path, err := resolveConfigPath(configFlag)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if ov.runs != 0 {
		cfg.Simulation.Runs = ov.runs
	}
	if ov.seed != 0 {
		cfg.Simulation.Seed = ov.seed
	}
	if ov.strategy != "" {
		cfg.Simulation.Strategy = ov.strategy
	}
	if ov.logLevel != "" {
		cfg.Log.Level = ov.logLevel
	}
	if ov.logFile != "" {
		cfg.Log.File = ov.logFile
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}

	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	log.WithField("path", path).Debug("Loaded league file")

	for _, w := range cfg.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	return cfg, log, nil
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# schedluck league file
# =====================
# Enter every team's weekly score. The simulator replays these scores under
# thousands of random schedules to see how much each record owed to luck.

simulation:
  # Number of random seasons to simulate.
  runs: 10000

  # Random seed. 0 picks a new seed every run; set it to repeat a result.
  seed: 0

  # How weekly matchups are drawn:
  #   shuffle_pairs     shuffle all teams and pair them off from the end
  #   uniform_matching  every possible set of weekly matchups is equally likely
  strategy: shuffle_pairs

log:
  level: warn
  # file: schedluck.log

# One entry per team. Every team needs the same number of weekly scores.
# With an odd number of teams, one team sits out (a bye, no win) each week.
teams:
  - name: Gridiron Gronks
    scores: [117.4, 122.4, 121.4, 112.9, 101.3, 108.6, 100.6, 104.5, 99.5]
  - name: Waiver Wire Warriors
    scores: [100.0, 72.7, 110.6, 105.3, 105.2, 72.4, 71.6, 84.4, 90.7]
  - name: Sleeper Cells
    scores: [152.7, 132.8, 122.2, 132.4, 133.8, 133.0, 128.1, 115.6, 105.6]
  - name: Bust Stop
    scores: [95.7, 101.0, 104.6, 115.7, 109.9, 99.5, 91.8, 98.4, 124.5]
  - name: Handcuff Heroes
    scores: [100.4, 134.0, 105.1, 97.9, 92.3, 100.3, 125.8, 91.5, 98.7]
  - name: Stack Attack
    scores: [139.4, 76.6, 111.0, 108.6, 112.7, 120.2, 104.0, 100.3, 79.1]
  - name: Punt Return
    scores: [112.2, 142.6, 104.9, 110.2, 93.6, 129.1, 137.3, 115.5, 118.5]
  - name: Fade Runners
    scores: [111.5, 87.5, 78.3, 121.4, 105.0, 99.2, 130.7, 132.6, 118.4]
  - name: Reach Squad
    scores: [103.9, 103.6, 100.9, 92.2, 100.3, 115.0, 104.3, 95.6, 82.1]
  - name: Tank Commanders
    scores: [127.4, 134.1, 94.3, 118.7, 136.8, 101.8, 145.7, 129.8, 119.2]
`

func runSimulate(ctx context.Context, cfg *config.Config, log *logrus.Logger, outputPath, teamQuery string) error {
	pairer, err := strategy.Get(cfg.Simulation.Strategy)
	if err != nil {
		return err
	}

	lg := cfg.League()
	runs := cfg.Simulation.Runs
	if runs == 0 {
		runs = simulation.DefaultRuns
	}

	var focus *league.Team
	if teamQuery != "" {
		t, err := lg.FindTeam(teamQuery)
		if err != nil {
			return err
		}
		focus = &t
	}

	fmt.Printf("Simulating %d seasons for %d teams over %d weeks (seed %d)...\n",
		runs, lg.NumTeams(), lg.NumWeeks(), cfg.Simulation.Seed)

	start := time.Now()
	report, err := simulation.Wait(ctx, simulation.Start(ctx, lg, cfg.Simulation.Seed, simulation.Options{
		Runs:   runs,
		Pairer: pairer,
		Logger: log,
	}))
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidLeague) || errors.Is(err, context.Canceled) {
			return err
		}
		log.WithError(err).WithField("seed", cfg.Simulation.Seed).Error("Simulation failed")
		return fmt.Errorf("simulation failed; run again or check the log for details")
	}
	log.WithField("elapsed", time.Since(start)).Info("Simulation finished")
	fmt.Printf("✓ %d seasons simulated\n", report.Runs)

	printResults(report)
	if focus != nil {
		printDistribution(report, focus.ID)
	}

	if outputPath == "" {
		return nil
	}
	f, err := excel.Generate(lg, report)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Report saved to %s\n", outputPath)
	return nil
}

func printResults(report *simulation.Report) {
	fmt.Println("\nExpected Wins:")
	fmt.Printf("  %4s %-24s %5s %6s %4s %4s %6s\n", "Rank", "Team", "Base", "Avg", "Min", "Max", "Luck")
	for i, r := range report.Results {
		fmt.Printf("  %4d %-24s %5d %6.2f %4d %4d %+6.2f\n",
			i+1, r.TeamName, r.BaseWins, r.AvgWins, r.MinWins, r.MaxWins, float64(r.BaseWins)-r.AvgWins)
	}
}

func printDistribution(report *simulation.Report, teamID int) {
	for _, r := range report.Results {
		if r.TeamID != teamID {
			continue
		}
		fmt.Printf("\n%s win distribution:\n", r.TeamName)
		peak := 0
		for _, b := range r.WinDistribution {
			peak = max(peak, b.Count)
		}
		for _, b := range r.WinDistribution {
			bar := 0
			if peak > 0 {
				bar = b.Count * 40 / peak
			}
			marker := ""
			if b.Wins == r.BaseWins {
				marker = " ◀ base"
			}
			fmt.Printf("  %2d │%-40s %6d%s\n", b.Wins, strings.Repeat("█", bar), b.Count, marker)
		}
		return
	}
}

func runShow(cfg *config.Config) error {
	pairer, err := strategy.Get(cfg.Simulation.Strategy)
	if err != nil {
		return err
	}
	lg := cfg.League()
	if err := lg.Validate(); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	s := schedule.Generate(lg.NumTeams(), lg.NumWeeks(), pairer, rng)

	fmt.Printf("Random schedule (seed %d, %s):\n", cfg.Simulation.Seed, pairer.Name())
	for w, p := range s {
		fmt.Printf("\nWeek %d\n", w+1)
		for _, m := range p.Matchups {
			a, b := lg.Teams[m.A], lg.Teams[m.B]
			sa, sb := lg.Scores[m.A][w], lg.Scores[m.B][w]
			switch {
			case sa > sb:
				fmt.Printf("  %s (%.2f) def. %s (%.2f)\n", a.Name, sa, b.Name, sb)
			case sb > sa:
				fmt.Printf("  %s (%.2f) def. %s (%.2f)\n", b.Name, sb, a.Name, sa)
			default:
				fmt.Printf("  %s and %s tied at %.2f\n", a.Name, b.Name, sa)
			}
		}
		if p.Bye != strategy.NoBye {
			fmt.Printf("  %s has a bye\n", lg.Teams[p.Bye].Name)
		}
	}

	fmt.Println("\nRecords (W-L-T):")
	for _, t := range lg.Teams {
		record := make(map[schedule.Outcome]int)
		for _, g := range schedule.TeamLog(s, lg.Scores, t.ID) {
			record[g.Outcome]++
		}
		fmt.Printf("  %-24s %d-%d-%d", t.Name, record[schedule.Win], record[schedule.Loss], record[schedule.Tie])
		if n := record[schedule.Bye]; n > 0 {
			fmt.Printf(" (%d byes)", n)
		}
		fmt.Println()
	}
	return nil
}

func runValidate(path string) error {
	violations, err := validator.Validate(path)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errCount := 0
	warnings := 0
	for _, v := range violations {
		where := v.Sheet
		if v.Row > 0 {
			where = fmt.Sprintf("%s row %d", v.Sheet, v.Row)
		}
		switch v.Type {
		case "error":
			errCount++
			fmt.Printf("✗ %s: %s\n", where, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ %s: %s\n", where, v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errCount, warnings)
	if errCount > 0 {
		return fmt.Errorf("%d inconsistencies found", errCount)
	}
	return nil
}
