package entitlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Plan identifies a subscription option.
type Plan string

const (
	PlanMonthly  Plan = "monthly"
	PlanYearly   Plan = "yearly"
	PlanLifetime Plan = "lifetime"
)

// DefaultPlan is preselected when the upgrade modal opens.
const DefaultPlan = PlanYearly

// PlanInfo describes a plan for the upgrade screen.
type PlanInfo struct {
	Plan      Plan
	Title     string
	Price     decimal.Decimal
	Period    string
	ProductID string
}

// Catalog lists the plans on offer.
var Catalog = []PlanInfo{
	{Plan: PlanMonthly, Title: "Pro Monthly", Price: decimal.RequireFromString("4.99"), Period: "month", ProductID: "pennywise_pro_monthly"},
	{Plan: PlanYearly, Title: "Pro Yearly", Price: decimal.RequireFromString("39.99"), Period: "year", ProductID: "pennywise_pro_yearly"},
	{Plan: PlanLifetime, Title: "Pro Lifetime", Price: decimal.RequireFromString("99.99"), ProductID: "pennywise_pro_lifetime"},
}

// Lookup returns the catalog entry for p.
func Lookup(p Plan) (PlanInfo, error) {
	for _, info := range Catalog {
		if info.Plan == p {
			return info, nil
		}
	}
	return PlanInfo{}, fmt.Errorf("unknown plan %q", p)
}
