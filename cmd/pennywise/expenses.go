package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"pennywise/internal/models"
)

func (c *cli) expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Record and list transactions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			expenses, err := c.app.Expenses.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tAMOUNT\tDESCRIPTION")
			for _, e := range expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Type, e.Amount.StringFixed(2), e.Description)
			}
			return tw.Flush()
		},
	}

	var (
		budgetID, categoryID, amount, description, date string
		income                                          bool
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an expense or income",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			id, err := c.budgetOrCurrent(cmd, budgetID)
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}
			kind := models.ExpenseTypeExpense
			if income {
				kind = models.ExpenseTypeIncome
			}
			e, err := c.app.Expenses.Create(cmd.Context(), userID, models.ExpenseInput{
				BudgetID:    id,
				CategoryID:  categoryID,
				Amount:      value,
				Description: description,
				Date:        date,
				Type:        kind,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s (%s)\n", e.Type, e.Amount.StringFixed(2), e.ID)
			return nil
		},
	}
	add.Flags().StringVar(&budgetID, "budget", "", "budget id (current by default)")
	add.Flags().StringVar(&categoryID, "category", "", "category id")
	add.Flags().StringVar(&amount, "amount", "", "positive amount")
	add.Flags().StringVar(&description, "description", "", "what it was for")
	add.Flags().StringVar(&date, "date", time.Now().Format(models.DateLayout), "date as YYYY-MM-DD")
	add.Flags().BoolVar(&income, "income", false, "record income instead of an expense")
	_ = add.MarkFlagRequired("category")
	_ = add.MarkFlagRequired("amount")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			if err := c.app.Expenses.Delete(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func (c *cli) currencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currency [code]",
		Short: "Show or change the display currency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.userID(); err != nil {
				return err
			}
			var (
				code string
				err  error
			)
			if len(args) == 1 {
				code, err = c.app.Gateway.UpdateCurrency(cmd.Context(), args[0])
			} else {
				code, err = c.app.Gateway.GetCurrency(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}
