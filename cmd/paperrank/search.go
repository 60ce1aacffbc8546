package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paperrank/app/internal/domain"
	"github.com/paperrank/app/internal/export"
	"github.com/paperrank/app/internal/session"
	"github.com/paperrank/app/internal/usecase"
)

var searchCmd = &cobra.Command{
	Use:   "search [topic...]",
	Short: "Run one search and print the ranked papers",
	Long: `search sends one topic to the ranking webhook and prints the returned
papers as numbered cards. Ranking styles:

  Best Overall     A balanced mix of relevance, research quality, and innovation.
  Most Relevant    Papers most related to your topic.
  Most Innovative  Novel ideas, unique approaches, new concepts.
  Highest Quality  Strong evidence, citations, methodology.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if topic == "" {
			topic = strings.Join(args, " ")
		}
		modeFlag, _ := cmd.Flags().GetString("mode")
		csvPath, _ := cmd.Flags().GetString("csv")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode, err := domain.ParseRankingMode(modeFlag)
		if err != nil {
			return err
		}

		cfg, log, client, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Webhook.Timeout)
		defer cancel()

		store := session.NewStore()
		rs, err := usecase.NewSearchUsecase(client, log).Submit(ctx, store, topic, mode, newLoader(os.Stderr))
		if err != nil {
			notice := usecase.NoticeFor(rs, err)
			fmt.Fprintln(os.Stderr, notice.Message)
			cmd.SilenceErrors = true
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rs); err != nil {
				return err
			}
		} else if err := export.WriteText(out, rs); err != nil {
			return err
		}

		if csvPath != "" {
			if err := writeCSVFile(csvPath, store.Get()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %d results to %s\n", len(rs), csvPath)
		}
		return nil
	},
}

func writeCSVFile(path string, rs domain.ResultSet) error {
	if len(rs) == 0 {
		return fmt.Errorf("no results to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	searchCmd.Flags().String("topic", "", "research topic (defaults to the positional arguments)")
	searchCmd.Flags().String("mode", string(domain.DefaultRankingMode), "ranking style")
	searchCmd.Flags().String("csv", "", "also write the results to this CSV file (e.g. "+export.Filename+")")
	searchCmd.Flags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(searchCmd)
}
