package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"

	"ctrnf-scores/internal/api"
	"ctrnf-scores/internal/boardfile"
	"ctrnf-scores/internal/cache"
	"ctrnf-scores/internal/config"
	"ctrnf-scores/internal/database"
	"ctrnf-scores/internal/domain"
	"ctrnf-scores/internal/logger"
	"ctrnf-scores/internal/metrics"
	"ctrnf-scores/internal/repository"
	"ctrnf-scores/internal/service"
	"ctrnf-scores/internal/table"
)

func main() {
	app := &cli.App{
		Name:  "scorectl",
		Usage: "parse and resolve lobby results tables",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "zerolog level"},
		},
		Commands: []*cli.Command{
			parseCommand(),
			predictCommand(),
			resolveCommand(),
			importCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if msg := domain.Explain(err); strings.Contains(msg, "\n") {
			fmt.Fprintln(os.Stderr, msg)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	return logger.SetLevel(level)
}

func readTable(c *cli.Context) (string, error) {
	path := c.Args().First()
	if path == "" {
		return "", fmt.Errorf("table file is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read table: %w", err)
	}
	return string(data), nil
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "print the canonical template and rankings of a table",
		ArgsUsage: "<file|->",
		Action: func(c *cli.Context) error {
			text, err := readTable(c)
			if err != nil {
				return err
			}
			m, err := table.Parse(text)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s\n\n", m.Template)
			printMatch(c.App.Writer, m)
			return nil
		},
	}
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Usage:     "resolve a table against a YAML board snapshot",
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "board", Required: true, Usage: "board snapshot YAML"},
		},
		Action: func(c *cli.Context) error {
			text, err := readTable(c)
			if err != nil {
				return err
			}
			fixture, err := boardfile.Load(c.String("board"))
			if err != nil {
				return err
			}
			log := newLogger(c)
			s := service.NewResolutionService(fixture, fixture, metrics.New(), otel.Tracer("scorectl"), log)
			return resolveAndPrint(c, s, text)
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve a table against the live leaderboard and the local backlog",
		ArgsUsage: "<file|->",
		Action: func(c *cli.Context) error {
			text, err := readTable(c)
			if err != nil {
				return err
			}
			log := newLogger(c)
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer db.Close()

			m := metrics.New()
			var leaderboard service.LeaderboardClient = api.NewLeaderboardClient(cfg, m, log)
			rc, err := cache.New(cfg, log)
			if err != nil {
				return err
			}
			if rc != nil {
				defer rc.Close()
				leaderboard = cache.NewRatingUpdatesCache(leaderboard, rc, cfg.RatingUpdatesCacheTTL, log)
			}

			feed := repository.NewSubmissionRepository(db, cfg, log)
			s := service.NewResolutionService(leaderboard, feed, m, otel.Tracer("scorectl"), log)
			return resolveAndPrint(c, s, text)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "copy the submissions of a YAML board snapshot into the local backlog",
		ArgsUsage: "<board.yaml>",
		Action: func(c *cli.Context) error {
			log := newLogger(c)
			fixture, err := boardfile.Load(c.Args().First())
			if err != nil {
				return err
			}
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer db.Close()

			subs, err := fixture.RecentSubmissions(c.Context)
			if err != nil {
				return err
			}
			var accepted []domain.Submission
			for _, s := range subs {
				m, err := table.Parse(s.Text)
				if err != nil {
					log.Warn().Err(err).Time("posted_at", s.PostedAt).Msg("skipping unparsable submission")
					continue
				}
				s.Template, s.BoardID, s.LobbyNumber = m.Template, m.BoardID, m.LobbyNumber
				accepted = append(accepted, s)
			}

			repo := repository.NewSubmissionRepository(db, cfg, log)
			if err := repo.CreateBatch(c.Context, accepted); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d of %d submissions\n", len(accepted), len(subs))
			return nil
		},
	}
}

func resolveAndPrint(c *cli.Context, s *service.ResolutionService, text string) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := s.Resolve(ctx, text)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%s (%s)\n", res.Match.LobbyName, res.Match.LobbyType)
	if res.Submitted {
		fmt.Fprintf(w, "already scored as %s\n\n", res.MatchID)
	} else {
		fmt.Fprintf(w, "predicted after replaying %d lobbies\n\n", res.Replayed)
	}
	printResults(w, res.Results)
	return nil
}

func printMatch(w io.Writer, m domain.Match) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "POS\tTEAM\tPLAYER\tSCORE\tPENALTY")
	for _, t := range m.Teams {
		for _, p := range t.Players {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", p.Position, t.Name, p.Name, p.Score, p.Penalty)
		}
	}
}

func printResults(w io.Writer, results []domain.MatchResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "POS\tPLAYER\tTEAM\tRATING\tDELTA\tNEW\tTIER\tRANK")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%+.1f\t%.1f\t%s\t%s -> %s\n",
			r.Position, r.Name, r.Team, r.OriginalRating, r.Delta, r.FinalRating,
			r.FinalTier, rank(r.OriginalRanking), rank(r.FinalRanking))
	}
}

func rank(r *int) string {
	if r == nil {
		return "-"
	}
	return strconv.Itoa(*r)
}
