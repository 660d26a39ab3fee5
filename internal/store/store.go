// Package store implements the document collections on MongoDB.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	OrderCollection            = "Order"
	ItemCollection             = "Item"
	CartCollection             = "Cart"
	UserCollection             = "User"
	UserDiscountCodeCollection = "UserDiscountCode"
	CheckoutFacilityCollection = "CheckoutFacility"
	PaymentGatewayCollection   = "PaymentGateway"
	SequenceCollection         = "Sequence"
	SettingCollection          = "Setting"
)

const callTimeout = 5 * time.Second

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store groups the repositories sharing one database handle.
type Store struct {
	db *mongo.Database

	Orders        *OrderRepository
	Sequences     *SequenceRepository
	Gateways      *GatewayRepository
	Items         *ItemRepository
	Carts         *CartRepository
	Facilities    *FacilityRepository
	DiscountCodes *DiscountCodeRepository
	Users         *UserRepository
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:            db,
		Orders:        &OrderRepository{db: db},
		Sequences:     &SequenceRepository{coll: db.Collection(SequenceCollection)},
		Gateways:      &GatewayRepository{db: db},
		Items:         &ItemRepository{coll: db.Collection(ItemCollection)},
		Carts:         &CartRepository{coll: db.Collection(CartCollection)},
		Facilities:    &FacilityRepository{coll: db.Collection(CheckoutFacilityCollection)},
		DiscountCodes: &DiscountCodeRepository{coll: db.Collection(UserDiscountCodeCollection)},
		Users:         &UserRepository{coll: db.Collection(UserCollection)},
	}
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return s.db.Client().Ping(checkCtx, readpref.Primary())
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
