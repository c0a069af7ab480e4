package main

import (
	"fmt"
	"time"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/store"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var restoreOutput string

// historyCmd lists recorded snapshots
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List snapshots recorded when documents were opened, saved or reloaded",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

// restoreCmd recovers a snapshot
var restoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Print a snapshot, or write it to a file with -o",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.StorePath, store.WithLogger(logger), store.WithHistoryLimit(cfg.HistoryLimit))
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := st.Snapshots(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No snapshots recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		Headers("ID", "WHEN", "REASON", "FILE")
	for _, s := range snaps {
		file := s.File
		if file == "" {
			file = "(untitled)"
		}
		t.Row(s.ID.String(), s.CreatedAt.Format(time.DateTime), s.Reason, file)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("snapshot id %q: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Snapshot(cmd.Context(), id)
	if err != nil {
		return err
	}
	// Snapshots are written by jform itself, but check before handing them on.
	doc, err := jform.ParseDocument(snap.Document)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", id, err)
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	if restoreOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileio.WriteAtomic(restoreOutput, data); err != nil {
		return err
	}
	logger.Info("snapshot restored", zap.String("id", id.String()), zap.String("path", restoreOutput))
	fmt.Fprintf(cmd.OutOrStdout(), "restored %s to %s\n", id, restoreOutput)
	return nil
}
