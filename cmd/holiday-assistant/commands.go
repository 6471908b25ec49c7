package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/holiday-assistant/internal/assistant"
	"github.com/username/holiday-assistant/internal/config"
	"github.com/username/holiday-assistant/internal/daemon"
	"github.com/username/holiday-assistant/internal/holiday"
	"github.com/username/holiday-assistant/internal/llm"
	"github.com/username/holiday-assistant/internal/metrics"
	"github.com/username/holiday-assistant/internal/server"
	"github.com/username/holiday-assistant/pkg/dateutil"
	"go.uber.org/zap"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question, or start a chat without one",
		Example: `  holiday-assistant ask "Is Jan 26 2025 a holiday?"
  holiday-assistant ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			s, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			asst, err := initializeAssistant(cfg, s, nil)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return runChat(ctx, asst, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			reply, err := asst.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printReply(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Answer questions from standard input until q",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			s, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			asst, err := initializeAssistant(cfg, s, nil)
			if err != nil {
				return err
			}

			return runChat(ctx, asst, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat prompts for questions until q or end of input. Every question of
// one chat belongs to the same conversation.
func runChat(ctx context.Context, asst *assistant.Assistant, in io.Reader, out io.Writer) error {
	ctx = llm.WithSession(ctx, fmt.Sprintf("chat-%d", time.Now().UnixNano()))
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "Enter a question: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		reply, err := asst.Ask(ctx, question)
		if err != nil {
			logger.Error("Failed to answer question", zap.String("question", question), zap.Error(err))
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printReply(out, reply)
	}
}

func printReply(out io.Writer, reply *assistant.Reply) {
	fmt.Fprintln(out, reply.Answer)
	if len(reply.Sources) > 0 {
		fmt.Fprintf(out, "\nSources: %s\n", strings.Join(reply.Sources, ", "))
	}
}

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and reload the calendar on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			ctx := cmd.Context()
			m := metrics.New()
			s, err := initializeStores(ctx, cfg, m)
			if err != nil {
				return fmt.Errorf("failed to initialize holiday store: %w", err)
			}
			defer s.Close()

			asst, err := initializeAssistant(cfg, s, m)
			if err != nil {
				return err
			}

			srv := server.New(cfg.Server.Listen, asst, m.Handler(), logger)
			d, err := newDaemon(ctx, cfg, s, srv, m)
			if err != nil {
				return err
			}
			srv.SetStatusFunc(d.GetStatus)

			logger.Info("Starting holiday assistant",
				zap.String("listen", cfg.Server.Listen),
				zap.String("store", cfg.Store.Type),
				zap.Bool("llm", cfg.LLM.Enabled))

			return d.Start()
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")

	return cmd
}

// newDaemon wires the daemon and runs the first calendar load through it,
// so status and metrics describe the loaded table from the first request.
func newDaemon(ctx context.Context, cfg *config.Config, s *stores, srv daemon.Runner, m *metrics.Metrics) (*daemon.Daemon, error) {
	d := daemon.NewDaemon(srv, s.reloader, cfg.Store.ReloadCron, m, logger)
	if err := loadCalendar(ctx, s, d.ReloadNow); err != nil {
		return nil, err
	}
	return d, nil
}

func seedCmd() *cobra.Command {
	var seedFile string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the SQLite schema and insert the seed calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if seedFile == "" {
				seedFile = cfg.Store.SeedFile
			}
			if dbPath == "" {
				dbPath = cfg.Store.Path
			}

			ctx := cmd.Context()
			db, err := holiday.OpenSQLStore(dbPath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Init(ctx); err != nil {
				return err
			}

			holidays, err := holiday.NewReloader(seedFile, nil, nil, nil, logger).Load()
			if err != nil {
				return err
			}

			inserted, err := db.Seed(ctx, holidays)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d new of %d holidays\n", dbPath, inserted, len(holidays))
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "Seed file (.txt, .yaml, .ics); default is the built-in calendar")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path (overrides store.path)")

	return cmd
}

func listCmd() *cobra.Command {
	var year int
	var month int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List holidays of a year or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("month must be between 1 and 12")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			s, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			holidays, err := lookup(ctx, s.read, year, month)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(holidays) == 0 {
				fmt.Fprintln(out, "No holidays found")
				return nil
			}
			for _, h := range holidays {
				fmt.Fprintf(out, "%s  %-40s %s\n", h.Date.Format(dateutil.ISODate), h.Name, h.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", dateutil.Today().Year(), "Year")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (0 lists the whole year)")

	return cmd
}

func exportCmd() *cobra.Command {
	var year int
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a year of holidays as an iCalendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx := cmd.Context()
			s, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			holidays, err := s.read.HolidaysInYear(ctx, year)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := holiday.ExportICS(w, holidays); err != nil {
				return err
			}

			logger.Info("Calendar exported",
				zap.Int("year", year),
				zap.Int("holidays", len(holidays)),
				zap.String("output", output))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", dateutil.Today().Year(), "Year")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

func lookup(ctx context.Context, store holiday.Store, year, month int) ([]holiday.Holiday, error) {
	if month == 0 {
		return store.HolidaysInYear(ctx, year)
	}
	return store.HolidaysInMonth(ctx, year, time.Month(month))
}
