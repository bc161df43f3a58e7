package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatwrap/internal/config"
	"chatwrap/internal/render"
	"chatwrap/internal/search"
	"chatwrap/internal/store"
	"chatwrap/internal/tui"
)

func historyCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved analyses, newest first",
		Long:  `Opens an interactive panel over all saved chat uploads; type to filter by file name. With piped output, prints one TSV row per upload instead.`,
		Args:  cobra.NoArgs,
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
				Since: since,
				Limit: limit,
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				uploadID, err := tui.RunHistory(db, opts)
				if err != nil {
					return err
				}
				if uploadID == "" {
					return nil
				}
				return printAnalysis(db, uploadID)
			}

			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t%s\t%s\t%s\n", r.UploadID, r.UploadDate, r.FileName, r.Summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only uploads since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}

func printAnalysis(db *store.DB, uploadID string) error {
	res, err := db.GetResult(uploadID)
	if err != nil {
		return err
	}
	upload, err := db.GetUpload(uploadID)
	if err != nil {
		return err
	}
	if upload != nil {
		fmt.Printf("%s (uploaded %s)\n", upload.FileName, upload.UploadDate)
	}
	fmt.Print(render.RenderResult(res))
	return nil
}
