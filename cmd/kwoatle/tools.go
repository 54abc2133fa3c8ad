package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/graffic/kwoatle-go/internal/quotes"
	"github.com/spf13/cobra"
)

func newMigrateCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the key-value table",
		RunE: func(cmd *cobra.Command, args []string) error {
			// newApp migrates on open
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.Close()

			a.logger.Info("migrations completed successfully", "database_driver", a.cfg.Database.Driver)
			return nil
		},
	}
}

func newReconcileCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair quote counts, category order and orphaned quotes once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := quotes.NewReconciler(a.book, quotes.ReconcileConfig{}, a.logger).RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to reconcile: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "counts fixed: %d\norders fixed: %d\norphans removed: %d\n",
				report.CountsFixed, report.OrdersFixed, report.OrphansRemoved)
			return nil
		},
	}
}

func newExportCmd(env *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every category and quote as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.book.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read quote book: %w", err)
			}

			if out == "" {
				err = encodeSnapshot(cmd.OutOrStdout(), snap)
			} else {
				err = exportToFile(out, snap)
			}
			if err != nil {
				return err
			}

			a.logger.Info("exported quote book", "categories", len(snap.Categories), "quotes", len(snap.Quotes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func exportToFile(path string, snap *quotes.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return writeAndClose(f, snap)
}

// writeAndClose encodes snap into wc and reports a failed close as a failed export
func writeAndClose(wc io.WriteCloser, snap *quotes.Snapshot) error {
	if err := encodeSnapshot(wc, snap); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func encodeSnapshot(w io.Writer, snap *quotes.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
