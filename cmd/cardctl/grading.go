package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// ── grader ───────────────────────────────────────────────────────────────────

var graderCmd = &cobra.Command{
	Use:   "grader",
	Short: "Manage verified graders",
}

var graderAddCmd = &cobra.Command{
	Use:   "add <principal>",
	Short: "Verify a grader (grading admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.AddGrader(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("add grader: %w", err)
		}
		return emit(cmd, map[string]any{"grader": args[0], "verified": true}, func(w io.Writer) {
			fmt.Fprintf(w, "✓ %s is a verified grader\n", args[0])
		})
	},
}

var graderRemoveCmd = &cobra.Command{
	Use:   "remove <principal>",
	Short: "Revoke a grader's verification (grading admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.RemoveGrader(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("remove grader: %w", err)
		}
		return emit(cmd, map[string]any{"grader": args[0], "verified": false}, func(w io.Writer) {
			fmt.Fprintf(w, "%s is no longer a verified grader\n", args[0])
		})
	},
}

var graderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verified graders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		graders, err := c.Graders(cmd.Context())
		if err != nil {
			return fmt.Errorf("list graders: %w", err)
		}
		return emit(cmd, graders, func(w io.Writer) {
			if len(graders) == 0 {
				fmt.Fprintln(w, "No verified graders.")
				return
			}
			for _, g := range graders {
				fmt.Fprintln(w, g)
			}
		})
	},
}

var graderCheckCmd = &cobra.Command{
	Use:   "check <principal>",
	Short: "Report whether a principal is a verified grader",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ok, err := c.IsVerifiedGrader(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("check grader: %w", err)
		}
		return emit(cmd, map[string]any{"grader": args[0], "verified": ok}, func(w io.Writer) {
			fmt.Fprintf(w, "%s verified=%t\n", args[0], ok)
		})
	},
}

func init() {
	graderCmd.AddCommand(graderAddCmd)
	graderCmd.AddCommand(graderRemoveCmd)
	graderCmd.AddCommand(graderListCmd)
	graderCmd.AddCommand(graderCheckCmd)
}

// ── grade ────────────────────────────────────────────────────────────────────

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Record and look up card grades",
}

var gradeNotes string

var gradeSetCmd = &cobra.Command{
	Use:   "set <card-id> <grade>",
	Short: "Grade a card (verified graders only; each card is graded once)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePrincipal(); err != nil {
			return err
		}
		id, err := parseID(args[0], "card id")
		if err != nil {
			return err
		}
		grade, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid grade %q: must be a non-negative integer", args[1])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		at, err := c.GradeCard(cmd.Context(), id, uint32(grade), gradeNotes)
		if err != nil {
			return fmt.Errorf("grade card: %w", err)
		}
		return emit(cmd, map[string]uint64{"card_id": id, "grading_date": at}, func(w io.Writer) {
			fmt.Fprintf(w, "Graded card %d as %d at %d\n", id, grade, at)
		})
	},
}

var gradeGetCmd = &cobra.Command{
	Use:   "get <card-id>",
	Short: "Show the grade recorded for a card",
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
		rec, found, err := c.GetGrading(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get grading: %w", err)
		}
		if !found {
			return fmt.Errorf("card %d has not been graded", id)
		}
		return emit(cmd, rec, func(w io.Writer) {
			fmt.Fprintf(w, "Card:    %d\n", rec.CardID)
			fmt.Fprintf(w, "Grade:   %d\n", rec.Grade)
			fmt.Fprintf(w, "Grader:  %s\n", rec.Grader)
			fmt.Fprintf(w, "Date:    %d\n", rec.GradingDate)
			if rec.Notes != "" {
				fmt.Fprintf(w, "Notes:   %s\n", rec.Notes)
			}
		})
	},
}

func init() {
	gradeSetCmd.Flags().StringVar(&gradeNotes, "notes", "", "Free-form grading notes")

	gradeCmd.AddCommand(gradeSetCmd)
	gradeCmd.AddCommand(gradeGetCmd)
}
