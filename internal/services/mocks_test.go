package services

import (
	"context"
	"time"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"gorm.io/gorm"
)

// fakeClock pins the engines to a fixed instant. Tests advance it by
// mutating now.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// mockContractRepo is an in-memory ContractRepository seeded with
// fixture contracts.
type mockContractRepo struct {
	contracts []models.Contract
	updateErr map[uint]error
	updated   []models.Contract
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	for i := range m.contracts {
		if m.contracts[i].ID == id {
			contract := m.contracts[i]
			return &contract, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	return m.FindByID(ctx, id)
}

func (m *mockContractRepo) FindByProperty(ctx context.Context, propertyID uint) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.PropertyID == propertyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) FindByTenant(ctx context.Context, tenantID uint) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) FindOverlapping(ctx context.Context, propertyID uint, start, end time.Time, excludeID uint) ([]models.Contract, error) {
	var out []models.Contract
	for i := range m.contracts {
		c := m.contracts[i]
		if c.PropertyID != propertyID || c.ID == excludeID || c.Status == models.ContractStatusCancelled {
			continue
		}
		if c.Overlaps(start, end) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) FindNonTerminal(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.Status == models.ContractStatusReserved || c.Status == models.ContractStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContractRepo) FindBlockingRanges(ctx context.Context, propertyID uint, from time.Time) ([]models.Contract, error) {
	var out []models.Contract
	for _, c := range m.contracts {
		if c.PropertyID != propertyID || c.IsTerminal() || c.EndDate.Before(from) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	contract.ID = uint(len(m.contracts) + 1)
	m.contracts = append(m.contracts, *contract)
	return nil
}

func (m *mockContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	if err, ok := m.updateErr[contract.ID]; ok {
		return err
	}
	for i := range m.contracts {
		if m.contracts[i].ID == contract.ID {
			m.contracts[i] = *contract
		}
	}
	m.updated = append(m.updated, *contract)
	return nil
}

func (m *mockContractRepo) Delete(ctx context.Context, id uint) error {
	return nil
}

func (m *mockContractRepo) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return m.contracts, int64(len(m.contracts)), nil
}

// mockPaymentRepo is an in-memory PaymentRepository.
type mockPaymentRepo struct {
	payments  []models.Payment
	exists    bool
	batches   [][]models.Payment
	updated   []models.Payment
	updateErr map[uint]error
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			payment := m.payments[i]
			return &payment, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.ContractID == contractID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindOutstandingByContract(ctx context.Context, contractID uint, dueBefore time.Time) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.ContractID == contractID && p.IsOutstanding() && !p.IsVoided() && !p.DueDate.After(dueBefore) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindUnpaidDueBefore(ctx context.Context, day time.Time) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.IsOutstanding() && !p.IsVoided() && p.DueDate.Before(day) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindOverdue(ctx context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.Status == models.PaymentStatusOverdue {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) ExistsForContract(ctx context.Context, contractID uint) (bool, error) {
	return m.exists, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = uint(len(m.payments) + 1)
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockPaymentRepo) CreateBatch(ctx context.Context, payments []models.Payment) error {
	m.batches = append(m.batches, payments)
	m.payments = append(m.payments, payments...)
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	if err, ok := m.updateErr[payment.ID]; ok {
		return err
	}
	for i := range m.payments {
		if m.payments[i].ID == payment.ID {
			m.payments[i] = *payment
		}
	}
	m.updated = append(m.updated, *payment)
	return nil
}

func (m *mockPaymentRepo) DeleteByContract(ctx context.Context, contractID uint) error {
	return nil
}

func (m *mockPaymentRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Payment, int64, error) {
	return m.payments, int64(len(m.payments)), nil
}

// mockSettingRepo stores settings in a map and counts reads so cache
// behavior can be asserted.
type mockSettingRepo struct {
	values    map[string]string
	settings  []models.Setting
	findCalls map[string]int
}

func newMockSettingRepo(values map[string]string) *mockSettingRepo {
	if values == nil {
		values = map[string]string{}
	}
	return &mockSettingRepo{values: values, findCalls: map[string]int{}}
}

func (m *mockSettingRepo) FindByKey(ctx context.Context, key string) (*models.Setting, error) {
	m.findCalls[key]++
	value, ok := m.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (m *mockSettingRepo) FindByCategory(ctx context.Context, category string) ([]models.Setting, error) {
	var out []models.Setting
	for _, s := range m.settings {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSettingRepo) FindAll(ctx context.Context) ([]models.Setting, error) {
	return m.settings, nil
}

func (m *mockSettingRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	m.values[setting.Key] = setting.Value
	return nil
}

func (m *mockSettingRepo) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

// mockNotificationRepo records created notifications.
type mockNotificationRepo struct {
	created []models.Notification
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	m.created = append(m.created, *notification)
	return nil
}

func (m *mockNotificationRepo) Update(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, userID uint) error {
	return nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}

// mockUserRepo satisfies UserRepository for services that only need it
// wired, not exercised.
type mockUserRepo struct {
	users []models.User
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			user := m.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			user := m.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByIdentity(ctx context.Context, identity string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].Identity == identity {
			user := m.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uint(len(m.users) + 1)
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id uint) error {
	return nil
}

func (m *mockUserRepo) Restore(ctx context.Context, id uint) error {
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return m.users, int64(len(m.users)), nil
}

func (m *mockUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}
