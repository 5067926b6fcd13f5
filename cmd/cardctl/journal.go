package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jmerrifield20/cardledger/pkg/client"
	"github.com/spf13/cobra"
)

// ── journal ──────────────────────────────────────────────────────────────────

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the server's audit journal",
}

var journalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the journal length and root hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		o, err := c.Journal(cmd.Context())
		if err != nil {
			return fmt.Errorf("get journal: %w", err)
		}
		return emit(cmd, o, func(w io.Writer) {
			fmt.Fprintf(w, "Entries: %d\n", o.Entries)
			fmt.Fprintf(w, "Root:    %s\n", o.Root)
			for _, name := range []string{"cards", "grading", "ownership"} {
				fmt.Fprintf(w, "  %-10s %d\n", name+":", o.Components[name])
			}
		})
	},
}

var journalVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Ask the server to verify the journal hash chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.VerifyJournal(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ journal chain intact")
		return nil
	},
}

var journalEntryCmd = &cobra.Command{
	Use:   "entry <index>",
	Short: "Show one journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[0])
		if err != nil || idx < 0 {
			return fmt.Errorf("invalid index %q: must be a non-negative integer", args[0])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		e, found, err := c.JournalEntry(cmd.Context(), idx)
		if err != nil {
			return fmt.Errorf("get journal entry: %w", err)
		}
		if !found {
			return fmt.Errorf("journal entry %d not found", idx)
		}
		return emit(cmd, e, func(w io.Writer) {
			fmt.Fprintf(w, "Index:     %d\n", e.Index)
			fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Format(time.RFC3339))
			fmt.Fprintf(w, "Height:    %d\n", e.Height)
			fmt.Fprintf(w, "Action:    %s\n", e.Action)
			fmt.Fprintf(w, "Component: %s\n", e.Component)
			fmt.Fprintf(w, "Actor:     %s\n", e.Actor)
			fmt.Fprintf(w, "Subject:   %s\n", e.Subject)
			fmt.Fprintf(w, "Hash:      %s\n", e.Hash)
		})
	},
}

var journalFilter client.JournalFilter

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.JournalEntries(cmd.Context(), journalFilter)
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		return emitEntries(cmd, page)
	},
}

var journalCardCmd = &cobra.Command{
	Use:   "card <card-id>",
	Short: "Show the audit trail of one card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card id")
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.CardTrail(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get card trail: %w", err)
		}
		return emitEntries(cmd, page)
	},
}

func emitEntries(cmd *cobra.Command, page *client.JournalPage) error {
	return emit(cmd, page, func(w io.Writer) {
		if page.Count == 0 {
			fmt.Fprintln(w, "No journal entries.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tHEIGHT\tACTION\tACTOR\tSUBJECT")
		for _, e := range page.Entries {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", e.Index, e.Height, e.Action, e.Actor, e.Subject)
		}
		tw.Flush() //nolint:errcheck
		if page.NextAfter > 0 {
			fmt.Fprintf(w, "More entries: --after %d\n", page.NextAfter)
		}
	})
}

func init() {
	f := journalListCmd.Flags()
	f.StringVar(&journalFilter.Component, "component", "", "only entries from this component (cards, grading, ownership)")
	f.StringVar(&journalFilter.Action, "action", "", "only entries with this action, e.g. card.graded")
	f.StringVar(&journalFilter.Actor, "actor", "", "only entries by this principal")
	f.StringVar(&journalFilter.Subject, "subject", "", "only entries for this subject, e.g. card:7")
	f.IntVar(&journalFilter.After, "after", 0, "only entries after this index")
	f.IntVar(&journalFilter.Limit, "limit", 0, "maximum entries to return (server default 100)")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalCardCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalVerifyCmd)
	journalCmd.AddCommand(journalEntryCmd)
}
