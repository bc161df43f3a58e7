package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatwrap/internal/config"
	"chatwrap/internal/search"
	"chatwrap/internal/store"
	"chatwrap/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var sender, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across saved chat messages",
		Long: `Searches the content of all saved messages using FTS5. Interactive when
stdout is a terminal; otherwise prints TSV rows:
  uploadId, seq, uploadDate, sender, fileName, snippet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Sender: sender,
				Since:  since,
				Limit:  limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				uploadID, err := tui.Run(db, args[0], opts)
				if err != nil {
					return err
				}
				if uploadID == "" {
					return nil
				}
				return printAnalysis(db, uploadID)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				// first two fields stay plain for fzf-style {1} {2} use
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\n",
					r.UploadID,
					r.Seq,
					sColorDim, r.UploadDate, sColorReset,
					sColorGreen+r.Sender+sColorReset,
					r.FileName,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Filter by sender name")
	cmd.Flags().StringVar(&since, "since", "", "Only uploads since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
