package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"salondesk/app"
	"salondesk/internal/config"
	"salondesk/internal/container"
	"salondesk/internal/migration"
	"salondesk/internal/testkit"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := container.OpenDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s ready on %s\n", migration.NewRunner().Version(), cfg.Database.Driver)
			return nil
		},
	}
}

func newImportSpecialCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "import-special",
		Short: "Import the reference tabs and salon master, then write cleaned CSV files",
		Long: `Reads the Training, 16 Digits and Contact tabs plus the salon master of the
reference workbook, stores the cleaned lists and writes one CSV per list.

Example: crmctl import-special --out ./cleaned`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", outDir, err)
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				run, err := c.Reconcile.Run(cmd.Context())
				if err != nil {
					return err
				}
				files, err := c.Reconcile.ExportCleaned(cmd.Context(), outDir, c.Exporter)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s\n", run.ID, run.Status)
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for cleaned CSV files")
	return cmd
}

func newBuildHistoryCmd() *cobra.Command {
	var sheet, out string
	var importRows bool

	cmd := &cobra.Command{
		Use:   "build-history",
		Short: "Merge the day tabs of a daily workbook into one history CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if sheet == "" {
					sheet = c.Config.CRM.ReferenceSheet
				}
				history, err := c.History.Build(cmd.Context(), sheet)
				if err != nil {
					return err
				}
				if err := c.History.WriteCSV(out, history, c.Exporter); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(history), out)

				if importRows {
					n, err := c.History.Import(cmd.Context(), history)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d tickets\n", n)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Daily workbook to read (default: the reference sheet)")
	cmd.Flags().StringVar(&out, "out", app.HistoryFile, "History CSV path")
	cmd.Flags().BoolVar(&importRows, "import", false, "Also insert the rows into the local ticket table")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var sheets []string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the ticket volume report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if len(sheets) == 0 {
					sheets = c.DefaultSheets()
				}
				report, err := c.Analysis.Load(cmd.Context(), sheets)
				if err != nil {
					return err
				}
				md := app.Markdown(report)
				if asHTML {
					_, err = cmd.OutOrStdout().Write(app.RenderHTML(md))
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&sheets, "sheet", nil, "Report sheets to analyze (repeatable)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the report as HTML")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconcile pass against the reference lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				run, err := c.Reconcile.Run(cmd.Context())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			})
		},
	}
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [term]",
		Short: "Look a salon up on the vendor portal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				table, err := c.Portal.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join(table.Headers, "\t"))
				for _, row := range table.Rows {
					fmt.Fprintln(w, strings.Join(row, "\t"))
				}
				return w.Flush()
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var count, salons int
	var seed int64
	var from, to string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake local tickets for demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			genConfig := testkit.TicketGeneratorConfig{Count: count, SalonCount: salons, Seed: seed}
			var err error
			if from != "" {
				if genConfig.StartDate, err = time.ParseInLocation("2006-01-02", from, time.Local); err != nil {
					return fmt.Errorf("invalid --from (use YYYY-MM-DD): %w", err)
				}
			}
			if to != "" {
				if genConfig.EndDate, err = time.ParseInLocation("2006-01-02", to, time.Local); err != nil {
					return fmt.Errorf("invalid --to (use YYYY-MM-DD): %w", err)
				}
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				genConfig.Agents = c.Config.CRM.Agents
				tickets := testkit.NewTicketGenerator(genConfig).Generate()
				n, err := testkit.Seed(cmd.Context(), c.TicketRepo, tickets)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tickets\n", n)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 200, "Number of tickets")
	cmd.Flags().IntVar(&salons, "salons", 40, "Number of distinct salons")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic data")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	return cmd
}
