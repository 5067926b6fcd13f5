package main

import (
	"fmt"
	"io"

	"github.com/jmerrifield20/cardledger/pkg/client"
	"github.com/spf13/cobra"
)

// ── card ─────────────────────────────────────────────────────────────────────

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Register and look up cards",
}

var (
	cardName         string
	cardSeries       string
	cardManufacturer string
	cardRarity       string
	cardIssueDate    uint64
)

var cardRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		id, err := c.RegisterCard(cmd.Context(), client.CardInput{
			Name:         cardName,
			Series:       cardSeries,
			Manufacturer: cardManufacturer,
			Rarity:       cardRarity,
			IssueDate:    cardIssueDate,
		})
		if err != nil {
			return fmt.Errorf("register card: %w", err)
		}
		return emit(cmd, map[string]uint64{"id": id}, func(w io.Writer) {
			fmt.Fprintf(w, "Registered card %d\n", id)
		})
	},
}

var cardGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a card",
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
		card, found, err := c.GetCard(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get card: %w", err)
		}
		if !found {
			return fmt.Errorf("card %d not found", id)
		}
		return emit(cmd, card, func(w io.Writer) {
			fmt.Fprintf(w, "ID:            %d\n", card.ID)
			fmt.Fprintf(w, "Name:          %s\n", card.Name)
			fmt.Fprintf(w, "Series:        %s\n", card.Series)
			fmt.Fprintf(w, "Manufacturer:  %s\n", card.Manufacturer)
			fmt.Fprintf(w, "Rarity:        %s\n", card.Rarity)
			fmt.Fprintf(w, "Issue date:    %d\n", card.IssueDate)
			fmt.Fprintf(w, "Registered by: %s\n", card.RegisteredBy)
		})
	},
}

func init() {
	cardRegisterCmd.Flags().StringVar(&cardName, "name", "", "Card name")
	cardRegisterCmd.Flags().StringVar(&cardSeries, "series", "", "Series or set")
	cardRegisterCmd.Flags().StringVar(&cardManufacturer, "manufacturer", "", "Manufacturer")
	cardRegisterCmd.Flags().StringVar(&cardRarity, "rarity", "", "Rarity")
	cardRegisterCmd.Flags().Uint64Var(&cardIssueDate, "issue-date", 0, "Issue date as an integer timestamp")

	cardCmd.AddCommand(cardRegisterCmd)
	cardCmd.AddCommand(cardGetCmd)
}

// ── admin ────────────────────────────────────────────────────────────────────

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Show or hand off a registry admin role",
	Long: `Each registry has its own admin. <registry> is "cards" or "grading".

  cardctl admin get cards
  cardctl --as SP1ADMIN... admin transfer grading SP1NEWADMIN...`,
}

func checkRegistry(name string) error {
	if name != "cards" && name != "grading" {
		return fmt.Errorf("unknown registry %q: want cards or grading", name)
	}
	return nil
}

var adminGetCmd = &cobra.Command{
	Use:   "get <registry>",
	Short: "Show the current admin of a registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkRegistry(args[0]); err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		var admin string
		if args[0] == "cards" {
			admin, err = c.CardAdmin(cmd.Context())
		} else {
			admin, err = c.GradingAdmin(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("get %s admin: %w", args[0], err)
		}
		return emit(cmd, map[string]string{"registry": args[0], "admin": admin}, func(w io.Writer) {
			fmt.Fprintln(w, admin)
		})
	},
}

var adminTransferCmd = &cobra.Command{
	Use:   "transfer <registry> <new-admin>",
	Short: "Hand the admin role of a registry to another principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkRegistry(args[0]); err != nil {
			return err
		}
		if err := requirePrincipal(); err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if args[0] == "cards" {
			err = c.TransferCardAdmin(cmd.Context(), args[1])
		} else {
			err = c.TransferGradingAdmin(cmd.Context(), args[1])
		}
		if err != nil {
			return fmt.Errorf("transfer %s admin: %w", args[0], err)
		}
		return emit(cmd, map[string]string{"registry": args[0], "admin": args[1]}, func(w io.Writer) {
			fmt.Fprintf(w, "%s admin is now %s\n", args[0], args[1])
		})
	},
}

func init() {
	adminCmd.AddCommand(adminGetCmd)
	adminCmd.AddCommand(adminTransferCmd)
}
