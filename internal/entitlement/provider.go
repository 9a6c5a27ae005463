package entitlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProEntitlement is the provider entitlement that unlocks pro features.
const ProEntitlement = "pro"

// Package is a purchasable product offered by the provider.
type Package struct {
	Identifier string
	Plan       Plan
	ProductID  string
	Price      decimal.Decimal
}

// Offering groups the packages currently on sale.
type Offering struct {
	Identifier string
	Packages   []Package
}

// Entitlement is one access right granted by the provider.
type Entitlement struct {
	Identifier string
	Active     bool
	ProductID  string
	ExpiresAt  *time.Time
}

// CustomerInfo is the provider's view of the customer.
type CustomerInfo struct {
	Entitlements map[string]Entitlement
}

// Active reports whether the entitlement id is active.
func (c *CustomerInfo) Active(id string) bool {
	if c == nil {
		return false
	}
	e, ok := c.Entitlements[id]
	return ok && e.Active
}

// Provider is the in-app purchase SDK.
type Provider interface {
	Initialized() bool
	Offerings(ctx context.Context) ([]Offering, error)
	Purchase(ctx context.Context, pkg Package) (*CustomerInfo, error)
	CustomerInfo(ctx context.Context) (*CustomerInfo, error)
	Restore(ctx context.Context) (*CustomerInfo, error)
}
