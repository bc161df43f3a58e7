package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatwrap/internal/config"
	"chatwrap/internal/render"
	"chatwrap/internal/store"
)

func showCmd() *cobra.Command {
	var chat bool
	var context int

	cmd := &cobra.Command{
		Use:   "show <upload-id>",
		Short: "Render a saved analysis (or the stored chat itself)",
		Args:  cobra.ExactArgs(1),
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

			if chat {
				out, _, err := render.RenderConversation(db, args[0], render.Options{
					HitSeq:  -1,
					Context: context,
				})
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			return printAnalysis(db, args[0])
		},
	}

	cmd.Flags().BoolVar(&chat, "chat", false, "Print the stored conversation instead of the analysis")
	cmd.Flags().IntVar(&context, "context", -1, "Messages to show around the start (-1 = all)")

	return cmd
}
