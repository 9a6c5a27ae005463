package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"pennywise/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func (c *cli) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "List budgets, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			budgets, err := c.app.Budgets.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No budgets yet")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tPERIOD\tBUDGETED\tAVAILABLE")
			for _, b := range budgets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Period(), b.TotalBudgeted.StringFixed(2), b.TotalAvailable.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	var total string
	var month, year int
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(total)
			if err != nil {
				return fmt.Errorf("invalid --total: %w", err)
			}
			b, err := c.app.Budgets.Create(cmd.Context(), userID, models.BudgetInput{
				Month:         month,
				Year:          year,
				TotalBudgeted: amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created budget %s for %s\n", b.ID, b.Period())
			return nil
		},
	}
	now := time.Now()
	create.Flags().StringVar(&total, "total", "", "amount to budget")
	create.Flags().IntVar(&month, "month", int(now.Month()), "budget month")
	create.Flags().IntVar(&year, "year", now.Year(), "budget year")
	_ = create.MarkFlagRequired("total")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			if err := c.app.Budgets.Delete(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete every budget, category and expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			if err := c.app.Budgets.Reset(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All budget data removed")
			return nil
		},
	}

	cmd.AddCommand(create, del, reset, c.categoriesCmd())
	return cmd
}

func (c *cli) categoriesCmd() *cobra.Command {
	var budgetID string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the categories of a budget (current by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := c.budgetOrCurrent(cmd, budgetID)
			if err != nil {
				return err
			}
			cats, err := c.app.Categories.ListByBudget(cmd.Context(), id)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tBUDGETED\tSPENT\tREMAINING")
			for _, cat := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", cat.ID, cat.Name, cat.Budgeted.StringFixed(2), cat.Spent.StringFixed(2), cat.Remaining().StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.PersistentFlags().StringVar(&budgetID, "budget", "", "budget id")

	var name, amount string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			id, err := c.budgetOrCurrent(cmd, budgetID)
			if err != nil {
				return err
			}
			budgeted, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --budgeted: %w", err)
			}
			cat, err := c.app.Categories.Create(cmd.Context(), userID, models.CategoryInput{
				BudgetID: id,
				Name:     name,
				Budgeted: budgeted,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", cat.Name, cat.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "category name")
	add.Flags().StringVar(&amount, "budgeted", "0", "amount budgeted")
	_ = add.MarkFlagRequired("name")

	cmd.AddCommand(add)
	return cmd
}

// budgetOrCurrent returns id, or the current budget's id when id is empty.
func (c *cli) budgetOrCurrent(cmd *cobra.Command, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	userID, err := c.userID()
	if err != nil {
		return "", err
	}
	current, err := c.app.Budgets.Current(cmd.Context(), userID)
	if err != nil {
		return "", err
	}
	if current == nil {
		return "", fmt.Errorf("no budget yet, create one with `pennywise budgets create`")
	}
	return current.ID, nil
}
