package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chatwrap/internal/analyze"
	"chatwrap/internal/classify"
	"chatwrap/internal/config"
	"chatwrap/internal/render"
	"chatwrap/internal/store"
)

func analyzeCmd() *cobra.Command {
	var (
		selfSender   string
		jsonOut      bool
		save         bool
		maxLines     int
		classifyTask string
		sentiment    bool
		sampleSize   int
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Parse a chat export and report message statistics",
		Long: `Parses a WhatsApp-style text export (one message per line, date/time
header) and reports message counts, hour and weekday distributions, emoji and
word rankings, and a communicator-type label for the reference sender.

The reference sender defaults to whoever sent the first message; override it
with --self. Lines that do not match the message header (multi-line
continuations, system notices) are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := newLogger(cfg.Log.Level)
			defer log.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			opts := analyze.Options{
				SelfSender: selfSender,
				MaxLines:   maxLines,
				SampleSize: sampleSize,
				Seed:       seed,
				Log:        log,
			}
			if opts.MaxLines == 0 {
				opts.MaxLines = cfg.MaxLines
			}
			if opts.SampleSize == 0 {
				opts.SampleSize = cfg.Sentiment.SampleSize
			}
			if sentiment {
				opts.Sentiment = classify.LexiconSentiment
			}

			switch classifyTask {
			case "":
			case "emoji", "style":
				if cfg.Classifier.BaseURL == "" {
					return fmt.Errorf("--classify needs [classifier] base_url in the config file")
				}
				opts.Classifier = classify.New(
					cfg.Classifier.BaseURL, cfg.Classifier.APIKey, cfg.Classifier.Model, log)
				if classifyTask == "emoji" {
					opts.Task = analyze.TaskEmoji
				} else {
					opts.Task = analyze.TaskStyle
				}
			default:
				return fmt.Errorf("unknown --classify task %q (emoji or style)", classifyTask)
			}

			analyzer := analyze.New(opts)
			res, err := analyzer.Analyze(cmd.Context(), string(data))
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				fmt.Println(string(out))
			} else {
				fmt.Print(render.RenderResult(res))
			}

			if save {
				db, err := store.Open(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()

				id, err := db.SaveAnalysis(filepath.Base(args[0]), res)
				if err != nil {
					return fmt.Errorf("save: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Saved as %s\n", id)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&selfSender, "self", "", "Sender counted as \"sent\" (default: first message's sender)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result record as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Persist messages and result to the local database")
	cmd.Flags().IntVar(&maxLines, "max-lines", 0, "Max non-empty lines to parse (0 = all)")
	cmd.Flags().StringVar(&classifyTask, "classify", "", "Remote classification task: emoji or style")
	cmd.Flags().BoolVar(&sentiment, "sentiment", false, "Sample messages for sentiment")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Sentiment sample size (default 20)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Sentiment sample seed; 0 = random (results vary between runs)")

	return cmd
}
