package main

import (
	"fmt"
	"os/signal"
	"primes/internal/config"
	"primes/internal/scanner"
	"primes/pkg/logger"
	"primes/pkg/primality"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newLocalScanner returns a scanner without storage, good for Check and ScanRange.
func newLocalScanner() (scanner.Scanner, error) {
	s, err := scanner.New(nil, nil, scanner.Options{})
	if err != nil {
		return nil, fmt.Errorf("could not create scanner: %w", err)
	}

	return s, nil
}

// scanCommand constructs the 'scan' subcommand that prints every prime of a
// range on its own line in ascending order.
func scanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Prints the primes of [2, upper] or [2, upper)",
		Long: "Prints every prime of the range on its own line in ascending order. Without --upper " +
			"the configured default range is scanned; an explicit --upper is exclusive unless --inclusive is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := rangeFromFlags(cmd, cfg)
			ctx = logger.WithFields(ctx, zap.Stringer("range", r))

			s, err := newLocalScanner()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var writeErr error
			res, err := s.ScanRange(ctx, r, func(p int64) {
				if writeErr == nil {
					_, writeErr = fmt.Fprintln(out, p)
				}
			})
			if err != nil {
				return fmt.Errorf("could not scan range: %w", err)
			}
			if writeErr != nil {
				return fmt.Errorf("could not write primes: %w", writeErr)
			}

			logger.Info(ctx, "range scanned", zap.Int("count", len(res.Primes)), zap.Int64("max", res.Max))

			return nil
		},
	}

	addRangeFlags(cmd)

	return cmd
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("upper", 0, "Upper bound of the range (defaults to the configured range)")
	cmd.Flags().Bool("inclusive", false, "Include the upper bound in the range")
}

// rangeFromFlags starts from the configured range. An explicit --upper is
// exclusive unless --inclusive is also given.
func rangeFromFlags(cmd *cobra.Command, cfg *config.Config) primality.Range {
	r := primality.Range{Upper: cfg.Scanner.DefaultUpper, Inclusive: cfg.Scanner.DefaultInclusive}
	if cmd.Flags().Changed("upper") {
		r.Upper, _ = cmd.Flags().GetInt64("upper")
		r.Inclusive = false
	}
	if cmd.Flags().Changed("inclusive") {
		r.Inclusive, _ = cmd.Flags().GetBool("inclusive")
	}

	return r
}

// checkCommand constructs the 'check' subcommand that prints whether a single
// integer is prime.
func checkCommand(_ *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check <n>",
		Short: "Prints true when n is prime and false otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", args[0], err)
			}

			s, err := newLocalScanner()
			if err != nil {
				return err
			}

			prime, err := s.Check(cmd.Context(), n)
			if err != nil {
				return err //nolint: wrapcheck
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), prime)

			return err //nolint: wrapcheck
		},
	}
}
