package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// planShare is one line of the split applied to income.
type planShare struct {
	name    string
	section string
	percent int64
}

var (
	defaultSplit = []planShare{
		{"Rent", "Needs", 30},
		{"Groceries", "Needs", 12},
		{"Utilities", "Needs", 8},
		{"Transport", "Needs", 5},
		{"Dining Out", "Wants", 10},
		{"Entertainment", "Wants", 10},
		{"Savings", "Savings", 25},
	}

	incomePattern = regexp.MustCompile(`\$?\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d{1,2}))?`)
)

// rulePlanner splits income across a fixed set of categories. It stands in
// for a language model behind the Planner interface so the budget assistant
// endpoint is usable without external services.
type rulePlanner struct {
	split []planShare
}

// NewRulePlanner creates a deterministic Planner.
func NewRulePlanner() Planner {
	return &rulePlanner{split: defaultSplit}
}

// Plan proposes categories for income. When income is nil the first
// amount mentioned in prompt is used.
func (p *rulePlanner) Plan(ctx context.Context, prompt string, income *decimal.Decimal) (*models.AIBudgetResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPlannerUnavailable, err)
	}

	var total decimal.Decimal
	if income != nil {
		total = *income
	} else {
		parsed, ok := incomeFromPrompt(prompt)
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "could not find an income amount in the prompt")
		}
		total = parsed
	}
	if !total.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	lower := strings.ToLower(prompt)
	categories := make([]models.AICategory, 0, len(p.split))
	allocated := decimal.Zero
	for i, share := range p.split {
		amount := total.Mul(decimal.NewFromInt(share.percent)).Div(decimal.NewFromInt(100)).Round(2)
		// the last share absorbs rounding
		if i == len(p.split)-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		name := share.name
		if share.name == "Rent" && strings.Contains(lower, "mortgage") {
			name = "Mortgage"
		}
		categories = append(categories, models.AICategory{Name: name, Amount: amount, SectionName: share.section})
	}
	return &models.AIBudgetResponse{Income: total, Categories: categories}, nil
}

func incomeFromPrompt(prompt string) (decimal.Decimal, bool) {
	m := incomePattern.FindStringSubmatch(prompt)
	if m == nil {
		return decimal.Zero, false
	}
	s := strings.ReplaceAll(m[1], ",", "")
	if m[2] != "" {
		s += "." + m[2]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
