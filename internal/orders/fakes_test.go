package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/mail"
	"foodorder/internal/models"
	"foodorder/internal/payment"
	"foodorder/internal/store"
)

// memStore backs every store interface of the service with maps.
type memStore struct {
	mu sync.Mutex

	orders     map[primitive.ObjectID]models.Order
	sequences  map[string]int64
	facilities map[string]models.CheckoutFacility
	gateway    *models.PaymentGateway
	items      map[primitive.ObjectID]models.Item
	carts      []models.Cart
	codes      []models.UserDiscountCode
	users      map[primitive.ObjectID]models.User

	insertErr error
	findErr   error
}

func newMemStore() *memStore {
	return &memStore{
		orders:     map[primitive.ObjectID]models.Order{},
		sequences:  map[string]int64{},
		facilities: map[string]models.CheckoutFacility{},
		items:      map[primitive.ObjectID]models.Item{},
		users:      map[primitive.ObjectID]models.User{},
	}
}

func (m *memStore) seedFacility(value float64) {
	m.facilities[models.FacilityOrderNumber] = models.CheckoutFacility{
		ID:    primitive.NewObjectID(),
		Type:  models.FacilityOrderNumber,
		Value: value,
	}
}

func (m *memStore) addUser(name, email string) models.User {
	user := models.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: models.RoleUser}
	m.users[user.ID] = user
	return user
}

func (m *memStore) addItem(name string, categoryID primitive.ObjectID) models.Item {
	item := models.Item{ID: primitive.NewObjectID(), Name: name, CategoryID: categoryID, ItemImages: models.StringList{"https://cdn.example.com/" + name + ".png"}}
	m.items[item.ID] = item
	return item
}

func (m *memStore) putOrder(order models.Order) models.Order {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	m.orders[order.ID] = order
	return order
}

// OrderStore

func (m *memStore) Insert(_ context.Context, order *models.Order, code *models.UserDiscountCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	if code != nil {
		for _, existing := range m.codes {
			if existing.UserID == code.UserID && existing.Code == code.Code {
				return store.ErrDuplicate
			}
		}
	}

	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt, order.UpdatedAt = now, now
	m.orders[order.ID] = *order
	if code != nil {
		code.OrderID = order.ID
		m.codes = append(m.codes, *code)
	}
	return nil
}

func (m *memStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &order, nil
}

func (m *memStore) MaxOrderNumber(context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var highest int64
	found := false
	for _, order := range m.orders {
		if !found || order.OrderNumber > highest {
			highest, found = order.OrderNumber, true
		}
	}
	return highest, found, nil
}

func (m *memStore) Find(_ context.Context, q store.OrderQuery) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}

	rows := make([]models.Order, 0)
	for _, order := range m.orders {
		if matches(order, q) {
			rows = append(rows, order)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })

	if q.Skip > 0 {
		if q.Skip >= int64(len(rows)) {
			return []models.Order{}, nil
		}
		rows = rows[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(rows)) {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func matches(order models.Order, q store.OrderQuery) bool {
	switch {
	case q.UserID != nil && order.UserID != *q.UserID:
		return false
	case q.Status != "" && order.Status != q.Status:
		return false
	case q.OrderType != "" && order.OrderType != q.OrderType:
		return false
	case q.PaymentType != "" && order.PaymentType != q.PaymentType:
		return false
	case q.PanelType != "" && order.PanelType != q.PanelType:
		return false
	case q.CreatedFrom != nil && order.CreatedAt.Before(*q.CreatedFrom):
		return false
	case q.CreatedBefore != nil && !order.CreatedAt.Before(*q.CreatedBefore):
		return false
	}
	if q.ItemIDs != nil {
		for _, line := range order.ItemDetails {
			for _, id := range q.ItemIDs {
				if line.ID == id {
					return true
				}
			}
		}
		return false
	}
	return true
}

func (m *memStore) Patch(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			order.Status = value.(string)
		case "payment_status":
			order.PaymentStatus = value.(string)
		case "payment_type":
			order.PaymentType = value.(string)
		case "panel_type":
			order.PanelType = value.(string)
		default:
			return nil, errors.New("unexpected patch field " + key)
		}
	}
	order.UpdatedAt = time.Now().UTC()
	m.orders[id] = order
	return &order, nil
}

func (m *memStore) Totals(ctx context.Context, q store.OrderQuery) (store.OrderTotals, error) {
	q.Skip, q.Limit = 0, 0
	rows, err := m.Find(ctx, q)
	if err != nil {
		return store.OrderTotals{}, err
	}
	var totals store.OrderTotals
	for _, order := range rows {
		totals.Orders++
		totals.Tips += order.Tips
		totals.Bags += order.Bags
		totals.ServiceCharge += order.ServiceCharge
		totals.DeliveryCharge += order.DeliveryCharge
		totals.OrderTotal += order.OrderTotal
	}
	return totals, nil
}

func (m *memStore) UserIDs(ctx context.Context, q store.OrderQuery) ([]primitive.ObjectID, error) {
	rows, err := m.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	seen := map[primitive.ObjectID]bool{}
	ids := make([]primitive.ObjectID, 0)
	for _, order := range rows {
		if !seen[order.UserID] {
			seen[order.UserID] = true
			ids = append(ids, order.UserID)
		}
	}
	return ids, nil
}

// SequenceStore

func (m *memStore) Increment(_ context.Context, name string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.sequences[name]
	if !ok {
		return 0, false, nil
	}
	value++
	m.sequences[name] = value
	return value, true, nil
}

func (m *memStore) Seed(_ context.Context, name string, value int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sequences[name]; ok {
		return false, nil
	}
	m.sequences[name] = value
	return true, nil
}

// FacilityStore

func (m *memStore) FindByType(_ context.Context, facilityType string) (*models.CheckoutFacility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	facility, ok := m.facilities[facilityType]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &facility, nil
}

// GatewayStore

func (m *memStore) Active(context.Context) (*models.PaymentGateway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gateway == nil {
		return nil, store.ErrNotFound
	}
	gateway := *m.gateway
	return &gateway, nil
}

// ItemStore

func (m *memStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *memStore) IDsByCategory(_ context.Context, categoryID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []primitive.ObjectID
	for _, item := range m.items {
		if item.CategoryID == categoryID {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// CartStore

func (m *memStore) RemoveItems(_ context.Context, userID primitive.ObjectID, itemIDs []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := map[primitive.ObjectID]bool{}
	for _, id := range itemIDs {
		drop[id] = true
	}
	kept := m.carts[:0]
	var removed int64
	for _, entry := range m.carts {
		if entry.UserID == userID && drop[entry.ItemID] {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	m.carts = kept
	return removed, nil
}

func (m *memStore) cartOf(userID primitive.ObjectID) []models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []models.Cart
	for _, entry := range m.carts {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries
}

// DiscountCodeStore

func (m *memStore) Used(_ context.Context, userID primitive.ObjectID, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.codes {
		if existing.UserID == userID && existing.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// UserStore is implemented by memUsers to avoid clashing with the order
// store's FindByID.
type memUsers struct{ m *memStore }

func (u memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	user, ok := u.m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (u memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := u.m.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (u memUsers) FindExcluding(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	skip := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		skip[id] = true
	}
	users := make([]models.User, 0)
	for _, user := range u.m.users {
		if !skip[user.ID] && !user.IsDeleted {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

type fakeCharger struct {
	mu       sync.Mutex
	requests []payment.ChargeRequest
	err      error
}

func (c *fakeCharger) Charge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &payment.ChargeResult{CardID: "pm_card", CustomerID: "cus_1", TransactionID: "pi_1"}, nil
}

type fakePayments struct {
	charger *fakeCharger
	gateway *models.PaymentGateway
}

func (p *fakePayments) For(gateway *models.PaymentGateway) (payment.Charger, error) {
	p.gateway = gateway
	return p.charger, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]mail.Message(nil), r.sent...)
}

type fixture struct {
	store   *memStore
	charger *fakeCharger
	pay     *fakePayments
	mailer  *recordingMailer
	svc     *Service
}

func newFixture() *fixture {
	mem := newMemStore()
	charger := &fakeCharger{}
	pay := &fakePayments{charger: charger}
	mailer := &recordingMailer{}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	svc := NewService(Deps{
		Orders:        mem,
		Sequences:     mem,
		Facilities:    mem,
		Gateways:      mem,
		Items:         mem,
		Carts:         mem,
		DiscountCodes: mem,
		Users:         memUsers{m: mem},
		Payments:      pay,
		Mailer:        mailer,
		Logger:        logger,
	})
	return &fixture{store: mem, charger: charger, pay: pay, mailer: mailer, svc: svc}
}
