package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/WilliamSoderberg/volley-bracket/exports"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "bracketctl",
		Usage:     "preview volleyball brackets and day plans without a server",
		ArgsUsage: "TEAM...",
		Writer:    out,
		Commands: []*cli.Command{
			{
				Name:      "preview",
				Usage:     "print the bracket, round by round",
				ArgsUsage: "TEAM...",
				Flags:     tournamentFlags(),
				Action: func(c *cli.Context) error {
					t, err := buildTournament(c)
					if err != nil {
						return err
					}
					return printBracket(c.App.Writer, t)
				},
			},
			{
				Name:      "schedule",
				Usage:     "print the day plan sorted by time and court",
				ArgsUsage: "TEAM...",
				Flags:     tournamentFlags(),
				Action: func(c *cli.Context) error {
					t, err := buildTournament(c)
					if err != nil {
						return err
					}
					return printSchedule(c.App.Writer, t)
				},
			},
			{
				Name:      "export",
				Usage:     "write the day plan as an xlsx workbook",
				ArgsUsage: "TEAM...",
				Flags: append(tournamentFlags(), &cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "workbook path",
					Value:   "schedule.xlsx",
				}),
				Action: func(c *cli.Context) error {
					t, err := buildTournament(c)
					if err != nil {
						return err
					}
					f, err := os.Create(c.String("out"))
					if err != nil {
						return err
					}
					if err := exports.WriteSchedule(f, t); err != nil {
						_ = f.Close()
						return err
					}
					if err := f.Close(); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "wrote %d matches to %s\n", t.PlayableMatches(), c.String("out"))
					return nil
				},
			},
		},
	}
}

func tournamentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Value: "Preview Cup", Usage: "tournament name"},
		&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(models.BracketSingle), Usage: "single or double"},
		&cli.StringFlag{Name: "teams-file", Aliases: []string{"f"}, Usage: "file with one team per line, # starts a comment"},
		&cli.StringFlag{Name: "date", Usage: "event date, YYYY-MM-DD (default today)"},
		&cli.StringFlag{Name: "start", Value: "09:00", Usage: "first match, HH:MM"},
		&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Value: 30, Usage: "minutes per match"},
		&cli.StringSliceFlag{Name: "court", Aliases: []string{"c"}, Value: cli.NewStringSlice("Court 1"), Usage: "court name, repeatable"},
		&cli.IntFlag{Name: "best-of", Usage: "sets per match, odd; 0 accepts any decided majority"},
		&cli.BoolFlag{Name: "wait-for-feeders", Usage: "never schedule a match before its feeders end"},
		&cli.StringFlag{Name: "tz", Usage: "IANA time zone of the event (default local)"},
	}
}

// buildTournament runs the same create path as the server against an
// in-memory store.
func buildTournament(c *cli.Context) (*models.Tournament, error) {
	names, err := teamNames(c)
	if err != nil {
		return nil, err
	}
	loc := time.Local
	if tz := c.String("tz"); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid time zone %q: %w", tz, err)
		}
	}
	date := c.String("date")
	if date == "" {
		date = time.Now().In(loc).Format(models.DateLayout)
	}

	teams := make([]services.TeamInput, len(names))
	for i, n := range names {
		teams[i] = services.TeamInput{Name: n}
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := services.NewTournamentService(repositories.NewMemoryTournamentRepository(), services.NewLocker(), nil, nil, loc, logger)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return svc.Create(ctx, services.TournamentInput{
		Name:           c.String("name"),
		Type:           models.BracketType(c.String("type")),
		Date:           date,
		StartTime:      c.String("start"),
		MatchDuration:  c.Int("duration"),
		Courts:         c.StringSlice("court"),
		Teams:          teams,
		BestOf:         c.Int("best-of"),
		WaitForFeeders: c.Bool("wait-for-feeders"),
	})
}

func teamNames(c *cli.Context) ([]string, error) {
	names := c.Args().Slice()
	path := c.String("teams-file")
	if path == "" {
		return names, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return names, nil
}

func printBracket(w io.Writer, t *models.Tournament) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	playable := make([]*models.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		if !m.IsGhost() {
			playable = append(playable, m)
		}
	}
	sort.Slice(playable, func(i, j int) bool { return *playable[i].Number < *playable[j].Number })

	var bracket models.Bracket
	round := -1
	for _, m := range playable {
		if m.Bracket != bracket || m.Round != round {
			bracket, round = m.Bracket, m.Round
			fmt.Fprintf(tw, "\n%s round %d\n", bracket, round)
		}
		line := fmt.Sprintf("  #%d\t%s\tvs\t%s", *m.Number, slotText(t, m.P1), slotText(t, m.P2))
		if m.Winner != "" {
			line += "\t(" + t.TeamName(m.Winner) + " advances)"
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func printSchedule(w io.Writer, t *models.Tournament) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCOURT\tMATCH\tTEAM 1\tTEAM 2")
	for _, e := range services.BuildSchedule(t) {
		fmt.Fprintf(tw, "%s\t%s\t#%d\t%s\t%s\n", e.Time.Format(models.StartTimeLayout), e.Court, e.Number, e.Team1, e.Team2)
	}
	return tw.Flush()
}

func slotText(t *models.Tournament, s models.Slot) string {
	if s.IsConcrete() {
		return t.TeamName(s.Team)
	}
	return s.Label
}
