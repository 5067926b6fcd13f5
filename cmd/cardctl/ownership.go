package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmerrifield20/cardledger/pkg/client"
	"github.com/spf13/cobra"
)

// ── owner ────────────────────────────────────────────────────────────────────

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Track card ownership",
}

var ownerRegisterCmd = &cobra.Command{
	Use:   "register <card-id>",
	Short: "Claim first ownership of a card as the --as principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		id, err := parseID(args[0], "card id")
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.RegisterOwnership(cmd.Context(), id); err != nil {
			return fmt.Errorf("register ownership: %w", err)
		}
		return emit(cmd, map[string]any{"card_id": id, "owner": c.Principal()}, func(w io.Writer) {
			fmt.Fprintf(w, "%s now owns card %d\n", c.Principal(), id)
		})
	},
}

var ownerTransferCmd = &cobra.Command{
	Use:   "transfer <card-id> <new-owner>",
	Short: "Transfer a card you own to another principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		id, err := parseID(args[0], "card id")
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		at, err := c.TransferOwnership(cmd.Context(), id, args[1])
		if err != nil {
			return fmt.Errorf("transfer ownership: %w", err)
		}
		return emit(cmd, map[string]any{"card_id": id, "owner": args[1], "transfer_date": at}, func(w io.Writer) {
			fmt.Fprintf(w, "Card %d transferred to %s at %d\n", id, args[1], at)
		})
	},
}

var ownerGetCmd = &cobra.Command{
	Use:   "get <card-id>",
	Short: "Show the current owner of a card",
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
		rec, found, err := c.Owner(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get owner: %w", err)
		}
		if !found {
			return fmt.Errorf("card %d has no registered owner", id)
		}
		return emit(cmd, rec, func(w io.Writer) {
			fmt.Fprintln(w, rec.Owner)
		})
	},
}

var ownerHistoryCmd = &cobra.Command{
	Use:   "history <card-id>",
	Short: "Show every ownership transfer of a card",
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
		if cmd.Flags().Changed("index") {
			return showHistoryEntry(cmd, c, id, historyIndex)
		}
		h, err := c.History(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get history: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), h)
		}
		if h.Count == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Card %d has no transfers.\n", id)
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tFROM\tTO\tDATE")
		for _, e := range h.Entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", e.Index, e.PreviousOwner, e.NewOwner, e.TransferDate)
		}
		return w.Flush()
	},
}

var historyIndex uint64

func showHistoryEntry(cmd *cobra.Command, c *client.Client, id, index uint64) error {
	e, ok, err := c.HistoryEntry(cmd.Context(), id, index)
	if err != nil {
		return fmt.Errorf("get history entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("card %d has no transfer at index %d", id, index)
	}
	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s -> %s  at %d\n", e.Index, e.PreviousOwner, e.NewOwner, e.TransferDate)
	return nil
}

func init() {
	ownerHistoryCmd.Flags().Uint64Var(&historyIndex, "index", 0, "show only the transfer at this zero-based index")

	ownerCmd.AddCommand(ownerRegisterCmd)
	ownerCmd.AddCommand(ownerTransferCmd)
	ownerCmd.AddCommand(ownerGetCmd)
	ownerCmd.AddCommand(ownerHistoryCmd)
}
