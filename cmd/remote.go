package main

import (
	"fmt"
	"io"
	"net/http"
	"primes/internal/config"
	"primes/pkg/domain"
	"primes/pkg/primesclient"
	"primes/pkg/primesclient/httpclient"
	"primes/pkg/serrors"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// clientFactory builds the client used by the remote subcommands.
type clientFactory func(cfg *config.Config, serverURL, token string) (primesclient.Client, error)

func newHTTPClient(cfg *config.Config, serverURL, token string) (primesclient.Client, error) {
	c, err := httpclient.New(&http.Client{Timeout: cfg.Remote.Timeout}, serverURL, token)
	if err != nil {
		return nil, fmt.Errorf("could not create client: %w", err)
	}

	return c, nil
}

// remoteCommand constructs the 'remote' subcommand group that runs checks and
// scans against a running server instead of locally.
func remoteCommand(cfg *config.Config, newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Talks to a running primes server",
	}
	cmd.PersistentFlags().String("url", cfg.Remote.ServerURL, "Root URL of the primes server")
	cmd.PersistentFlags().String("token", cfg.Remote.Token, "Bearer token for scan requests")

	client := func(cmd *cobra.Command) (primesclient.Client, error) {
		serverURL, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")

		return newClient(cfg, serverURL, token)
	}

	check := &cobra.Command{
		Use:   "check <n>",
		Short: "Asks the server whether n is prime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", args[0], err)
			}
			c, err := client(cmd)
			if err != nil {
				return err
			}

			prime, err := c.Check(cmd.Context(), n)
			if err != nil {
				return err //nolint: wrapcheck
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prime)

			return err //nolint: wrapcheck
		},
	}

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Prints the primes of a range as the server finds them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var writeErr error
			err = c.StreamPrimes(cmd.Context(), rangeFromFlags(cmd, cfg), func(p int64) {
				if writeErr == nil {
					_, writeErr = fmt.Fprintln(out, p)
				}
			})
			if err != nil {
				return err //nolint: wrapcheck
			}

			return writeErr
		},
	}
	addRangeFlags(scan)

	submit := &cobra.Command{
		Use:   "submit",
		Short: "Enqueues a persisted scan and prints its ID and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}

			s, err := c.CreateScan(cmd.Context(), rangeFromFlags(cmd, cfg))
			if err != nil {
				return err //nolint: wrapcheck
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s.ID, s.Status)

			return err //nolint: wrapcheck
		},
	}
	addRangeFlags(submit)

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Prints the status of a scan and, once completed, its primes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			c, err := client(cmd)
			if err != nil {
				return err
			}

			s, err := c.Scan(cmd.Context(), id)
			if err != nil {
				return err //nolint: wrapcheck
			}

			return printScan(cmd.OutOrStdout(), s)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lists your scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}

			status, _ := cmd.Flags().GetString("status")
			cursor, _ := cmd.Flags().GetString("cursor")
			limit, _ := cmd.Flags().GetUint("limit")
			page, err := c.Scans(cmd.Context(), primesclient.ListOptions{
				Status: domain.ScanStatus(status),
				Cursor: cursor,
				Limit:  limit,
			})
			if err != nil {
				return err //nolint: wrapcheck
			}

			out := cmd.OutOrStdout()
			for _, s := range page.Items {
				if _, err := fmt.Fprintln(out, s.ID, s.Range, s.Status); err != nil {
					return err //nolint: wrapcheck
				}
			}
			if page.NextCursor != "" {
				_, err = fmt.Fprintln(cmd.ErrOrStderr(), "next cursor:", page.NextCursor)
			}

			return err //nolint: wrapcheck
		},
	}
	list.Flags().String("status", "", "Only list scans with this status (PENDING, COMPLETED, FAILED)")
	list.Flags().String("cursor", "", "Cursor returned by a previous page")
	list.Flags().Uint("limit", 0, "Page size (defaults to the server's)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Deletes a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			c, err := client(cmd)
			if err != nil {
				return err
			}

			return c.DeleteScan(cmd.Context(), id) //nolint: wrapcheck
		},
	}

	cmd.AddCommand(check, scan, submit, get, list, del)

	return cmd
}

func parseScanID(s string) (domain.ScanID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return domain.ScanID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid scan id %q", s)
	}

	return domain.ScanID(id), nil
}

// printScan writes the status line of s followed by its primes, one per line,
// when the scan completed.
func printScan(w io.Writer, s *domain.Scan) error {
	if _, err := fmt.Fprintln(w, s.ID, s.Range, s.Status); err != nil {
		return err //nolint: wrapcheck
	}
	if s.Status != domain.ScanStatusCompleted {
		return nil
	}
	for _, p := range s.Result.Primes {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err //nolint: wrapcheck
		}
	}

	return nil
}
