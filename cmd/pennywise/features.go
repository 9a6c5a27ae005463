package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pennywise/internal/access"
	"pennywise/internal/app"
	"pennywise/internal/entitlement"
	"pennywise/internal/reports"
)

func (c *cli) flagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Show feature flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, ok := c.app.Features.Snapshot()
			if !ok {
				return errors.New("no feature flags loaded")
			}
			keys := make([]string, 0, len(snap.Features))
			for k := range snap.Features {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user type: %s (source: %s)\n", snap.UserType, c.app.Features.Source())
			tw := newTable(out)
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%t\n", k, snap.Features[k])
			}
			return tw.Flush()
		},
	}
}

func (c *cli) accessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "access <feature>",
		Short: "Check whether a feature is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := access.Feature(args[0])
			if c.app.Access.HasAccess(f) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", f)
				return nil
			}
			c.app.Access.ShowUpgradeModal(cmd.Context(), f)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: requires pro, run `pennywise upgrade %s`\n", f, c.app.Entitlements.Status().Plan)
			return nil
		},
	}
}

func (c *cli) upgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "upgrade [plan]",
		Short:     "Buy a pro plan (monthly, yearly or lifetime)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(entitlement.PlanMonthly), string(entitlement.PlanYearly), string(entitlement.PlanLifetime)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.userID(); err != nil {
				return err
			}
			plan := entitlement.DefaultPlan
			if len(args) == 1 {
				plan = entitlement.Plan(args[0])
			}
			info, err := entitlement.Lookup(plan)
			if err != nil {
				return err
			}

			c.app.Entitlements.OpenModal(plan)
			if err := c.app.Entitlements.Purchase(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upgraded to %s (%s)\n", info.Title, info.Price.StringFixed(2))
			return nil
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore previous purchases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.userID(); err != nil {
				return err
			}
			pro, err := c.app.Entitlements.RestorePurchases(cmd.Context())
			if err != nil {
				return err
			}
			if pro {
				fmt.Fprintln(cmd.OutOrStdout(), "Pro restored")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No active purchases")
			}
			return nil
		},
	}
}

func (c *cli) aiBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ai-budget <prompt>",
		Short: "Create a budget from a description of your income",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.CreateAIBudget(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, app.ErrFeatureLocked) {
				return fmt.Errorf("AI budgets require pro, run `pennywise upgrade`")
			}
			if res != nil && res.Budget != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Budget %s: %s\n", res.Budget.Period(), res.Budget.TotalBudgeted.StringFixed(2))
				tw := newTable(out)
				for _, cat := range res.Categories {
					fmt.Fprintf(tw, "  %s\t%s\n", cat.Name, cat.Budgeted.StringFixed(2))
				}
				if flushErr := tw.Flush(); flushErr != nil && err == nil {
					err = flushErr
				}
			}
			return err
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize the current budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := c.userID()
			if err != nil {
				return err
			}
			current, err := c.app.Budgets.Current(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if current == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No budget yet")
				return nil
			}
			cats, err := c.app.Categories.ListByBudget(cmd.Context(), current.ID)
			if err != nil {
				return err
			}
			expenses, err := c.app.Expenses.List(cmd.Context(), userID)
			if err != nil {
				return err
			}

			s := reports.Summarize(*current, cats, expenses)
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Period\t%s\n", current.Period())
			fmt.Fprintf(tw, "Budgeted\t%s\n", s.Budgeted.StringFixed(2))
			fmt.Fprintf(tw, "Allocated\t%s\n", s.Allocated.StringFixed(2))
			fmt.Fprintf(tw, "Available\t%s\n", s.Available.StringFixed(2))
			fmt.Fprintf(tw, "Spent\t%s\n", s.Spent.StringFixed(2))
			fmt.Fprintf(tw, "Income\t%s\n", s.Income.StringFixed(2))
			if s.OverAllocated {
				fmt.Fprintln(tw, "Warning\tcategories exceed the budget")
			}
			return tw.Flush()
		},
	}
}
