package orders

import (
	"context"
	"errors"

	"foodorder/internal/apperr"
	"foodorder/internal/models"
	"foodorder/internal/store"
)

const seedAttempts = 3

type SequenceStore interface {
	Increment(ctx context.Context, name string) (int64, bool, error)
	Seed(ctx context.Context, name string, value int64) (bool, error)
}

type FacilityStore interface {
	FindByType(ctx context.Context, facilityType string) (*models.CheckoutFacility, error)
}

type orderNumberSource interface {
	MaxOrderNumber(ctx context.Context) (int64, bool, error)
}

// Allocator hands out order numbers from an atomic counter. The counter is
// seeded lazily from the highest stored order number, or from the
// ORDER_NUMBER checkout facility on an empty database.
type Allocator struct {
	sequences  SequenceStore
	orders     orderNumberSource
	facilities FacilityStore
}

func NewAllocator(sequences SequenceStore, orders orderNumberSource, facilities FacilityStore) *Allocator {
	return &Allocator{sequences: sequences, orders: orders, facilities: facilities}
}

func (a *Allocator) Next(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < seedAttempts; attempt++ {
		number, ok, err := a.sequences.Increment(ctx, store.OrderNumberSequence)
		if err != nil {
			return 0, apperr.Runtime("There was an error while allocating the order number", err)
		}
		if ok {
			return number, nil
		}

		seed, err := a.seed(ctx)
		if err != nil {
			return 0, err
		}
		created, err := a.sequences.Seed(ctx, store.OrderNumberSequence, seed)
		if err != nil {
			return 0, apperr.Runtime("There was an error while seeding the order number", err)
		}
		if created {
			return seed, nil
		}
		// Lost the seeding race; the counter exists now.
	}
	return 0, apperr.Runtime("There was an error while allocating the order number", errors.New("order number counter could not be seeded"))
}

func (a *Allocator) seed(ctx context.Context) (int64, error) {
	highest, found, err := a.orders.MaxOrderNumber(ctx)
	if err != nil {
		return 0, apperr.Runtime("There was an error while fetching the last order number", err)
	}
	if found {
		return highest + 1, nil
	}

	facility, err := a.facilities.FindByType(ctx, models.FacilityOrderNumber)
	if errors.Is(err, store.ErrNotFound) {
		return 0, apperr.NotFound("The %s checkout facility is not configured", models.FacilityOrderNumber)
	}
	if err != nil {
		return 0, apperr.Runtime("There was an error while fetching the order number facility", err)
	}
	return int64(facility.Value), nil
}
