package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pennywise/internal/models"
)

// fakeAPI is an in-memory stand-in for the gateway. Setting fail makes every
// write return it; onWrite runs before each write is answered.
type fakeAPI struct {
	mu         sync.Mutex
	budgets    []models.Budget
	categories []models.Category
	expenses   []models.Expense
	seq        int
	fail       error
	echoRef    bool
	onWrite    func()
	lists      map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{echoRef: true, lists: make(map[string]int)}
}

func (f *fakeAPI) write() error {
	if f.onWrite != nil {
		f.onWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeAPI) nextID(prefix string) (string, time.Time) {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq), time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
}

func (f *fakeAPI) listed(what string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[what]
}

func (f *fakeAPI) ListBudgets(_ context.Context, userID string) ([]models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists["budgets"]++
	var out []models.Budget
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateBudget(_ context.Context, in models.BudgetInput) (*models.Budget, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b := models.Budget{UserID: "u1", Month: in.Month, Year: in.Year, TotalBudgeted: in.TotalBudgeted, TotalAvailable: in.Available()}
	b.ID, b.CreatedAt = f.nextID("budget")
	if f.echoRef {
		b.ClientRef = in.ClientRef
	}
	f.budgets = append(f.budgets, b)
	return &b, nil
}

func (f *fakeAPI) UpdateBudget(_ context.Context, id string, patch models.BudgetPatch) (*models.Budget, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.budgets {
		if f.budgets[i].ID == id {
			patch.Apply(&f.budgets[i])
			b := f.budgets[i]
			return &b, nil
		}
	}
	return nil, fmt.Errorf("budget %s not found", id)
}

func (f *fakeAPI) DeleteBudget(_ context.Context, id string) error {
	if err := f.write(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets = removeID(f.budgets, id)
	return nil
}

func (f *fakeAPI) ResetBudgets(context.Context) error {
	if err := f.write(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets, f.categories, f.expenses = nil, nil, nil
	return nil
}

func (f *fakeAPI) ListCategoriesByUser(_ context.Context, userID string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists["categories"]++
	var out []models.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListCategoriesByBudget(_ context.Context, budgetID string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists["categories:budget"]++
	var out []models.Category
	for _, c := range f.categories {
		if c.BudgetID == budgetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateCategory(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Category{UserID: "u1", BudgetID: in.BudgetID, Name: in.Name, SectionName: in.SectionName, Budgeted: in.Budgeted}
	c.ID, c.CreatedAt = f.nextID("category")
	if f.echoRef {
		c.ClientRef = in.ClientRef
	}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeAPI) UpdateCategory(_ context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			patch.Apply(&f.categories[i])
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %s not found", id)
}

func (f *fakeAPI) DeleteCategory(_ context.Context, id string) error {
	if err := f.write(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = removeID(f.categories, id)
	return nil
}

func (f *fakeAPI) ListExpenses(_ context.Context, userID string) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists["expenses"]++
	var out []models.Expense
	for _, e := range f.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateExpense(_ context.Context, in models.ExpenseInput) (*models.Expense, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := models.Expense{UserID: "u1", BudgetID: in.BudgetID, CategoryID: in.CategoryID, Amount: in.Amount, Description: in.Description, Date: in.Date, Type: in.Type}
	e.ID, e.CreatedAt = f.nextID("expense")
	if f.echoRef {
		e.ClientRef = in.ClientRef
	}
	f.expenses = append(f.expenses, e)
	return &e, nil
}

func (f *fakeAPI) UpdateExpense(_ context.Context, id string, patch models.ExpensePatch) (*models.Expense, error) {
	if err := f.write(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.expenses {
		if f.expenses[i].ID == id {
			patch.Apply(&f.expenses[i])
			e := f.expenses[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("expense %s not found", id)
}

func (f *fakeAPI) DeleteExpense(_ context.Context, id string) error {
	if err := f.write(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expenses = removeID(f.expenses, id)
	return nil
}
