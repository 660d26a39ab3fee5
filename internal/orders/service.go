// Package orders implements order placement, the status lifecycle and the
// order reports.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"foodorder/internal/apperr"
	"foodorder/internal/mail"
	"foodorder/internal/models"
	"foodorder/internal/payment"
	"foodorder/internal/store"
)

const mailTimeout = 30 * time.Second

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order, code *models.UserDiscountCode) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	MaxOrderNumber(ctx context.Context) (int64, bool, error)
	Find(ctx context.Context, q store.OrderQuery) ([]models.Order, error)
	Patch(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Order, error)
	Totals(ctx context.Context, q store.OrderQuery) (store.OrderTotals, error)
	UserIDs(ctx context.Context, q store.OrderQuery) ([]primitive.ObjectID, error)
}

type GatewayStore interface {
	Active(ctx context.Context) (*models.PaymentGateway, error)
}

type ItemStore interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error)
	IDsByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type CartStore interface {
	RemoveItems(ctx context.Context, userID primitive.ObjectID, itemIDs []primitive.ObjectID) (int64, error)
}

type DiscountCodeStore interface {
	Used(ctx context.Context, userID primitive.ObjectID, code string) (bool, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindExcluding(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

//go:generate mockgen -destination=mock_charger_test.go -package=orders foodorder/internal/payment Charger

// Payments builds the charger of a stored gateway.
type Payments interface {
	For(gateway *models.PaymentGateway) (payment.Charger, error)
}

type Deps struct {
	Orders        OrderStore
	Sequences     SequenceStore
	Facilities    FacilityStore
	Gateways      GatewayStore
	Items         ItemStore
	Carts         CartStore
	DiscountCodes DiscountCodeStore
	Users         UserStore
	Payments      Payments
	Mailer        mail.Sender
	Logger        logrus.FieldLogger
}

type Service struct {
	orders        OrderStore
	gateways      GatewayStore
	items         ItemStore
	carts         CartStore
	discountCodes DiscountCodeStore
	users         UserStore
	payments      Payments
	mailer        mail.Sender
	allocator     *Allocator
	log           logrus.FieldLogger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		orders:        d.Orders,
		gateways:      d.Gateways,
		items:         d.Items,
		carts:         d.Carts,
		discountCodes: d.DiscountCodes,
		users:         d.Users,
		payments:      d.Payments,
		mailer:        d.Mailer,
		allocator:     NewAllocator(d.Sequences, d.Orders, d.Facilities),
		log:           logger.WithField("component", "orders"),
	}
}

// prepared holds the independent lookups a checkout needs before charging.
type prepared struct {
	number  int64
	gateway *models.PaymentGateway
}

// Create places an order: price, check the discount code, allocate a number,
// charge the card, persist, clear the cart and send the confirmation.
func (s *Service) Create(ctx context.Context, who Identity, req CreateOrderRequest) (*models.Order, error) {
	quote := PriceOrder(&req)
	if quote.Total.IsNegative() {
		return nil, apperr.Validation("The discount must not exceed the order total")
	}
	if req.PaymentType == models.PaymentTypeCard && !quote.Total.IsPositive() {
		return nil, apperr.Validation("The order total must be positive for card payments")
	}

	if err := s.ensureCodeUnused(ctx, who.UserID, req.discountCode()); err != nil {
		return nil, err
	}

	prep, err := s.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}

	charge, err := s.charge(ctx, who, &req, quote, prep)
	if err != nil {
		return nil, err
	}

	order := newOrder(who, &req, quote, prep.number, charge)
	if prep.gateway != nil {
		order.PaymentGateway = prep.gateway.Type
	}
	var code *models.UserDiscountCode
	if c := req.discountCode(); c != "" {
		code = &models.UserDiscountCode{UserID: who.UserID, Code: c}
	}
	if err := s.orders.Insert(ctx, order, code); err != nil {
		if code != nil && errors.Is(err, store.ErrDuplicate) {
			return nil, codeUsedError(code.Code)
		}
		return nil, apperr.Runtime("There was an error while saving the order", err)
	}

	items, err := s.cleanup(ctx, who.UserID, order)
	if err != nil {
		return nil, err
	}

	s.notifyPlaced(ctx, who, order, quote, items)
	return order, nil
}

func (s *Service) prepare(ctx context.Context, req *CreateOrderRequest) (prepared, error) {
	var prep prepared
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		number, err := s.allocator.Next(gctx)
		prep.number = number
		return err
	})
	if req.PaymentType == models.PaymentTypeCard {
		g.Go(func() error {
			gateway, err := s.activeGateway(gctx)
			prep.gateway = gateway
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return prepared{}, err
	}
	return prep, nil
}

func (s *Service) activeGateway(ctx context.Context) (*models.PaymentGateway, error) {
	gateway, err := s.gateways.Active(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("No active payment gateway is configured")
	}
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching the payment gateway", err)
	}
	if !payment.Supported(gateway.Type) {
		return nil, apperr.Validation("The payment gateway stripe or square must be enabled for further process")
	}
	return gateway, nil
}

func (s *Service) charge(ctx context.Context, who Identity, req *CreateOrderRequest, quote Quote, prep prepared) (*payment.ChargeResult, error) {
	if req.PaymentType != models.PaymentTypeCard {
		return nil, nil
	}

	charger, err := s.payments.For(prep.gateway)
	if err != nil {
		return nil, apperr.Runtime("There was an error while preparing the payment", err)
	}

	result, err := charger.Charge(ctx, payment.ChargeRequest{
		Amount:         quote.MinorUnits(),
		Token:          req.TokenID,
		Email:          who.Email,
		OrderNumber:    prep.number,
		IdempotencyKey: fmt.Sprintf("order-%d", prep.number),
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_number": prep.number,
			"gateway":      prep.gateway.Type,
		}).Warn("card charge failed")
		return nil, apperr.Runtime("There was an error while charging the card", err)
	}
	return result, nil
}

func newOrder(who Identity, req *CreateOrderRequest, quote Quote, number int64, charge *payment.ChargeResult) *models.Order {
	lines := make([]models.OrderItem, 0, len(req.ItemDetails))
	for _, line := range req.ItemDetails {
		lines = append(lines, models.OrderItem{ID: line.ID, Quantity: line.Quantity, Price: line.Price})
	}

	order := &models.Order{
		OrderNumber:    number,
		UserID:         who.UserID,
		ItemDetails:    lines,
		OrderType:      req.OrderType,
		Time:           req.Time,
		Address:        req.Address,
		Discount:       req.discount(),
		Tips:           req.Tips,
		Bags:           req.Bags,
		Notes:          req.Notes,
		ServiceCharge:  req.ServiceCharge,
		DeliveryCharge: req.DeliveryCharge,
		OrderTotal:     quote.TotalFloat(),
		Status:         models.StatusInProgress,
		PaymentStatus:  req.PaymentStatus,
		PaymentType:    req.PaymentType,
		PanelType:      req.PanelType,
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusInProgress
	}
	if order.PanelType == "" {
		order.PanelType = models.PanelEcom
	}
	if charge != nil {
		order.CardID = charge.CardID
		order.CustomerID = charge.CustomerID
		order.TransactionID = charge.TransactionID
	}
	return order
}

// cleanup clears the ordered items from the cart and loads the catalog
// entries the confirmation email lists.
func (s *Service) cleanup(ctx context.Context, userID primitive.ObjectID, order *models.Order) ([]models.Item, error) {
	itemIDs := order.ItemIDs()
	var items []models.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.carts.RemoveItems(gctx, userID, itemIDs); err != nil {
			return apperr.Runtime("There was an error while clearing the cart", err)
		}
		return nil
	})
	g.Go(func() error {
		found, err := s.items.FindByIDs(gctx, itemIDs)
		if err != nil {
			return apperr.Runtime("There was an error while fetching the ordered items", err)
		}
		items = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) notifyPlaced(ctx context.Context, who Identity, order *models.Order, quote Quote, items []models.Item) {
	catalog := make(map[primitive.ObjectID]models.Item, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}

	lines := make([]mail.PlacedLine, 0, len(order.ItemDetails))
	for _, line := range order.ItemDetails {
		entry := mail.PlacedLine{Quantity: line.Quantity, Price: formatMoney(lineTotal(line))}
		if item, ok := catalog[line.ID]; ok {
			entry.Name = item.Name
			entry.Image = item.CoverImage()
		} else {
			entry.Name = line.ID.Hex()
		}
		lines = append(lines, entry)
	}

	data := mail.OrderPlaced{
		Name:           who.Name,
		Email:          who.Email,
		OrderNumber:    order.OrderNumber,
		Lines:          lines,
		Subtotal:       quote.ItemTotal.StringFixed(2),
		Discount:       quote.Discount.StringFixed(2),
		Bags:           quote.Bags.StringFixed(2),
		Tips:           quote.Tips.StringFixed(2),
		ServiceCharge:  quote.ServiceCharge.StringFixed(2),
		DeliveryCharge: quote.DeliveryCharge.StringFixed(2),
		Total:          quote.Total.StringFixed(2),
	}
	if order.Address != nil {
		data.Address = order.Address.Address
		data.PostCode = order.Address.PostCode
		data.Mobile = order.Address.Mobile
	}

	msg, err := mail.RenderOrderPlaced(data)
	if err != nil {
		s.log.WithError(err).WithField("order_number", order.OrderNumber).Error("order confirmation not rendered")
		return
	}
	s.send(ctx, msg, order.OrderNumber)
}

// send delivers best-effort: failures are logged and never reach the caller.
func (s *Service) send(ctx context.Context, msg mail.Message, orderNumber int64) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	defer cancel()

	if err := s.mailer.Send(sendCtx, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_number": orderNumber,
			"to":           msg.To,
			"subject":      msg.Subject,
		}).Warn("order email not delivered")
	}
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching the order", err)
	}
	return order, nil
}

// List returns the matching orders with their owners attached.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.OrderWithUser, error) {
	q := store.OrderQuery{
		UserID:      f.UserID,
		Status:      f.Status,
		OrderType:   f.OrderType,
		PaymentType: f.PaymentType,
		PanelType:   f.PanelType,
	}
	if f.Date != "" {
		day, err := parseDay(f.Date, "date")
		if err != nil {
			return nil, err
		}
		next := day.AddDate(0, 0, 1)
		q.CreatedFrom, q.CreatedBefore = &day, &next
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q.Skip = (page - 1) * f.Limit
		q.Limit = f.Limit
	}

	found, err := s.orders.Find(ctx, q)
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching all orders", err)
	}
	if len(found) == 0 {
		return []models.OrderWithUser{}, nil
	}

	owners, err := s.owners(ctx, found)
	if err != nil {
		return nil, err
	}

	result := make([]models.OrderWithUser, 0, len(found))
	for _, order := range found {
		result = append(result, models.OrderWithUser{Order: order, User: owners[order.UserID]})
	}
	return result, nil
}

func (s *Service) owners(ctx context.Context, found []models.Order) (map[primitive.ObjectID]*models.OrderOwner, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(found))
	ids := make([]primitive.ObjectID, 0, len(found))
	for _, order := range found {
		if _, ok := seen[order.UserID]; ok {
			continue
		}
		seen[order.UserID] = struct{}{}
		ids = append(ids, order.UserID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching the order owners", err)
	}

	owners := make(map[primitive.ObjectID]*models.OrderOwner, len(users))
	for _, user := range users {
		owners[user.ID] = &models.OrderOwner{ID: user.ID, Name: user.Name, Email: user.Email}
	}
	return owners, nil
}

// Update applies the fields present in req. A cash order moved to Delivered
// is settled regardless of the supplied payment status.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req UpdateOrderRequest) (*models.Order, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.PaymentStatus != nil {
		fields["payment_status"] = *req.PaymentStatus
	}
	if req.PaymentType != nil {
		fields["payment_type"] = *req.PaymentType
	}
	if req.PanelType != nil {
		fields["panel_type"] = *req.PanelType
	}

	paymentType := existing.PaymentType
	if req.PaymentType != nil {
		paymentType = *req.PaymentType
	}
	if req.Status != nil && *req.Status == models.StatusDelivered && paymentType == models.PaymentTypeCash {
		fields["payment_status"] = models.PaymentStatusDone
	}

	updated, err := s.orders.Patch(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Runtime("There was an error while updating the order", err)
	}

	if req.Status != nil {
		s.notifyStatus(ctx, updated)
	}
	return updated, nil
}

func (s *Service) notifyStatus(ctx context.Context, order *models.Order) {
	if !mail.NotifiesStatus(order.Status) {
		return
	}

	logger := s.log.WithFields(logrus.Fields{"order_number": order.OrderNumber, "status": order.Status})
	owner, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		logger.WithError(err).Warn("order owner not found, status email skipped")
		return
	}

	msg, _, err := mail.RenderOrderStatus(order.Status, owner, order.OrderNumber)
	if err != nil {
		logger.WithError(err).Error("status email not rendered")
		return
	}
	s.send(ctx, msg, order.OrderNumber)
}

// CheckCode succeeds while the user has not spent the discount code.
func (s *Service) CheckCode(ctx context.Context, userID primitive.ObjectID, code string) error {
	if code == "" {
		return apperr.Validation("The discount code is required")
	}
	return s.ensureCodeUnused(ctx, userID, code)
}

func (s *Service) ensureCodeUnused(ctx context.Context, userID primitive.ObjectID, code string) error {
	if code == "" {
		return nil
	}
	used, err := s.discountCodes.Used(ctx, userID, code)
	if err != nil {
		return apperr.Runtime("There was an error while checking the discount code", err)
	}
	if used {
		return codeUsedError(code)
	}
	return nil
}

func codeUsedError(code string) error {
	return apperr.Validation("The discount code %s already used by this user", code)
}
