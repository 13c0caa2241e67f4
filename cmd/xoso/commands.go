package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyellow/xoso-linebot-go/internal/buildinfo"
	"github.com/garyellow/xoso-linebot-go/internal/canchi"
	"github.com/garyellow/xoso-linebot-go/internal/config"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/logger"
	"github.com/garyellow/xoso-linebot-go/internal/lotto"
	"github.com/garyellow/xoso-linebot-go/internal/modules/phongthuy"
	"github.com/garyellow/xoso-linebot-go/internal/results"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

var errNoResult = errors.New("input produced no numbers")

// clock supplies "today" for phongthuy.
var clock = time.Now

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xoso",
		Short:         "Lottery number tools (ghép càng, đảo số, xiên, phong thủy)",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCangCmd(),
		newDaoCmd(),
		newXienCmd(),
		newPhongThuyCmd(),
		newImportCmd(),
	)
	return root
}

func newCangCmd() *cobra.Command {
	var (
		prefix string
		mode   string
	)
	cmd := &cobra.Command{
		Use:   "cang [numbers...]",
		Short: "Prepend càng digits to 2 and 3 digit numbers",
		Example: `  xoso cang --prefix "1 3" "12 34 567"
  xoso cang --mode 4d --prefix 5 123 456`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers := lotto.TokenizeDigits(strings.Join(args, " "), lotto.ModeTwoOrThreeDigit)
			switch strings.ToLower(mode) {
			case "":
			case "3d":
				numbers = keepLength(numbers, 2)
			case "4d":
				numbers = keepLength(numbers, 3)
			default:
				return fmt.Errorf("unknown mode %q (want 3d or 4d)", mode)
			}

			merged := lotto.MergePrefix(numbers, lotto.TokenizeDigits(prefix, lotto.ModeSingleDigit))
			return printItems(cmd, merged, lotto.MergePerLine)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "càng digits; empty means "+lotto.DefaultPrefix)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "3d keeps 2-digit numbers, 4d keeps 3-digit numbers")
	return cmd
}

func newDaoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dao <digits>",
		Short:   "List every distinct permutation of 2 to 6 digits",
		Example: "  xoso dao 1234",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printItems(cmd, lotto.PermuteDigits(strings.Join(args, "")), lotto.PermutePerLine)
		},
	}
}

func newXienCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:     "xien [numbers...]",
		Short:   "Combine numbers into xiên 2, 3 or 4",
		Example: `  xoso xien -n 3 "11 22 33 44"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !lotto.ValidArity(n) {
				return fmt.Errorf("xiên size must be %d-%d, got %d", lotto.MinArity, lotto.MaxArity, n)
			}
			tokens := lotto.TokenizeDigits(strings.Join(args, " "), lotto.ModeMinTwoDigit)
			return printItems(cmd, lotto.CombineTokens(tokens, n), lotto.CombinePerLine)
		},
	}
	cmd.Flags().IntVarP(&n, "size", "n", lotto.MinArity, "numbers per combination")
	return cmd
}

func newPhongThuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phongthuy [date | can chi]",
		Short: "Show the can chi reading for a date (default today) or a can chi name",
		Example: `  xoso phongthuy
  xoso phongthuy 25/07/2024
  xoso phongthuy "Giáp Tý"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := clock().In(lineutil.GetVietnamLocation())
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), phongthuy.FormatReading(canchi.ForDate(now)))
				return err
			}
			r, err := canchi.Lookup(strings.Join(args, " "), now)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), phongthuy.FormatReading(r))
			return err
		},
	}
}

func newImportCmd() *cobra.Command {
	var dataDir string
	cmd := &cobra.Command{
		Use:     "import <results.csv>",
		Short:   "Load draw results from a CSV file into the bot database",
		Example: "  xoso import --data-dir ./data xsmb.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForMode(config.CLIMode)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), config.ResultsLoadTimeout)
			defer cancel()

			db, err := storage.New(ctx, cfg.SQLitePath())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			log := logger.NewWithWriter(cfg.LogLevel, cmd.ErrOrStderr())
			n, err := results.NewLoader(db, results.Options{Logger: log}).ImportCSV(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d results into %s\n", n, cfg.SQLitePath())
			return err
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "database directory (default "+config.EnvDataDir+")")
	return cmd
}

func printItems(cmd *cobra.Command, items []string, perLine int) error {
	if len(items) == 0 {
		return errNoResult
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), lotto.FormatChunks(items, perLine))
	return err
}

func keepLength(tokens []string, n int) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if len(t) == n {
			out = append(out, t)
		}
	}
	return out
}
