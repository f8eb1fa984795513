package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.Mutex
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	now := time.Now()
	user := &domain.User{
		ID:        uuid.New(),
		Auth0ID:   auth0ID,
		Email:     email,
		Language:  domain.DefaultLanguage,
		Theme:     domain.DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdatePreferences updates language and theme
func (m *MockUserRepository) UpdatePreferences(ctx context.Context, id uuid.UUID, language, theme string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Language = language
	user.Theme = theme
	user.UpdatedAt = time.Now()
	return user, nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(m.ByID, id)
	delete(m.Users, user.Auth0ID)
	return nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories map[uuid.UUID]*domain.Category
	// GetByIDCalls counts lookups per category id
	GetByIDCalls map[uuid.UUID]int
	// Failures makes GetByID fail for specific ids
	Failures map[uuid.UUID]error
	// ListErr makes GetByUserID fail
	ListErr error
	// LookupDelay slows GetByID down; it honours context cancellation
	LookupDelay time.Duration
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories:   make(map[uuid.UUID]*domain.Category),
		GetByIDCalls: make(map[uuid.UUID]int),
		Failures:     make(map[uuid.UUID]error),
	}
}

// Create stores a category
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category owned by userID
func (m *MockCategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	m.mu.Lock()
	m.GetByIDCalls[id]++
	failure := m.Failures[id]
	category, ok := m.Categories[id]
	delay := m.LookupDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetByUserID lists categories for a user ordered by name
func (m *MockCategoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Category, 0)
	for _, c := range m.Categories {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update replaces a category
func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Categories[category.ID]
	if !ok || existing.UserID != category.UserID {
		return nil, domain.ErrCategoryNotFound
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Categories[id]
	if !ok || existing.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Categories[category.ID] = category
}

// SetLookupDelay changes LookupDelay while lookups may be running
func (m *MockCategoryRepository) SetLookupDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupDelay = d
}

// Calls returns the number of GetByID calls for id
func (m *MockCategoryRepository) Calls(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GetByIDCalls[id]
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions map[uuid.UUID]*domain.Transaction
	order        []uuid.UUID
	// ListErr makes GetByUserID fail
	ListErr error
	// ListFn overrides GetByUserID when set
	ListFn    func(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)
	ListCalls int
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

// Create stores a transaction
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	now := time.Now()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	m.Transactions[transaction.ID] = transaction
	m.order = append(m.order, transaction.ID)
	return transaction, nil
}

// GetByID retrieves a transaction owned by userID
func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok || tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// GetByUserID returns the user's transactions in insertion order
func (m *MockTransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	m.mu.Lock()
	m.ListCalls++
	fn := m.ListFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Transaction, 0)
	for _, id := range m.order {
		if tx, ok := m.Transactions[id]; ok && tx.UserID == userID {
			result = append(result, tx)
		}
	}
	return result, nil
}

// Update replaces a transaction
func (m *MockTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Transactions[transaction.ID]
	if !ok || existing.UserID != transaction.UserID {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Transactions[id]
	if !ok || existing.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	m.Transactions[transaction.ID] = transaction
	m.order = append(m.order, transaction.ID)
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	mu      sync.Mutex
	Budgets map[uuid.UUID]*domain.Budget
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[uuid.UUID]*domain.Budget)}
}

func (m *MockBudgetRepository) monthTaken(userID uuid.UUID, month domain.MonthSelector, except uuid.UUID) bool {
	for _, b := range m.Budgets {
		if b.UserID == userID && b.Month == month && b.ID != except {
			return true
		}
	}
	return false
}

// Create stores a budget, one per month
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.monthTaken(budget.UserID, budget.Month, uuid.Nil) {
		return nil, domain.ErrBudgetAlreadyExists
	}
	budget.ID = uuid.New()
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget
func (m *MockBudgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[id]
	if !ok || b.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return b, nil
}

// GetByMonth retrieves the budget of a month
func (m *MockBudgetRepository) GetByMonth(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.Budgets {
		if b.UserID == userID && b.Month == month {
			return b, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// GetByUserID lists budgets, latest month first
func (m *MockBudgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Budget, 0)
	for _, b := range m.Budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.String() > result[j].Month.String() })
	return result, nil
}

// Update replaces a budget
func (m *MockBudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return nil, domain.ErrBudgetNotFound
	}
	if m.monthTaken(budget.UserID, budget.Month, budget.ID) {
		return nil, domain.ErrBudgetAlreadyExists
	}
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[id]
	if !ok || b.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// MockMonthlyReportRepository is a mock implementation of domain.MonthlyReportRepository
type MockMonthlyReportRepository struct {
	mu      sync.Mutex
	Reports map[uuid.UUID]*domain.MonthlyReport
}

// NewMockMonthlyReportRepository creates a new MockMonthlyReportRepository
func NewMockMonthlyReportRepository() *MockMonthlyReportRepository {
	return &MockMonthlyReportRepository{Reports: make(map[uuid.UUID]*domain.MonthlyReport)}
}

func (m *MockMonthlyReportRepository) monthTaken(userID uuid.UUID, month domain.MonthSelector, except uuid.UUID) bool {
	for _, r := range m.Reports {
		if r.UserID == userID && r.Month == month && r.ID != except {
			return true
		}
	}
	return false
}

// Create stores a report, one per month
func (m *MockMonthlyReportRepository) Create(ctx context.Context, report *domain.MonthlyReport) (*domain.MonthlyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.monthTaken(report.UserID, report.Month, uuid.Nil) {
		return nil, domain.ErrReportAlreadyExists
	}
	report.ID = uuid.New()
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	m.Reports[report.ID] = report
	return report, nil
}

// GetByID retrieves a report
func (m *MockMonthlyReportRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.MonthlyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reports[id]
	if !ok || r.UserID != userID {
		return nil, domain.ErrReportNotFound
	}
	return r, nil
}

// GetByMonth retrieves the report of a month
func (m *MockMonthlyReportRepository) GetByMonth(ctx context.Context, userID uuid.UUID, month domain.MonthSelector) (*domain.MonthlyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Reports {
		if r.UserID == userID && r.Month == month {
			return r, nil
		}
	}
	return nil, domain.ErrReportNotFound
}

// GetByUserID lists reports, latest month first
func (m *MockMonthlyReportRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.MonthlyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.MonthlyReport, 0)
	for _, r := range m.Reports {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.String() > result[j].Month.String() })
	return result, nil
}

// Update replaces a report
func (m *MockMonthlyReportRepository) Update(ctx context.Context, report *domain.MonthlyReport) (*domain.MonthlyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Reports[report.ID]
	if !ok || existing.UserID != report.UserID {
		return nil, domain.ErrReportNotFound
	}
	if m.monthTaken(report.UserID, report.Month, report.ID) {
		return nil, domain.ErrReportAlreadyExists
	}
	report.CreatedAt = existing.CreatedAt
	report.UpdatedAt = time.Now()
	m.Reports[report.ID] = report
	return report, nil
}

// Delete removes a report
func (m *MockMonthlyReportRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reports[id]
	if !ok || r.UserID != userID {
		return domain.ErrReportNotFound
	}
	delete(m.Reports, id)
	return nil
}

// MockIconRepository is an in-memory icon object store
type MockIconRepository struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
}

// NewMockIconRepository creates a new MockIconRepository
func NewMockIconRepository() *MockIconRepository {
	return &MockIconRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes
func (m *MockIconRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	return objectPath, nil
}

// Delete removes the object
func (m *MockIconRepository) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	m.Deleted = append(m.Deleted, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockIconRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// PublishedEvent records one Publish call
type PublishedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
