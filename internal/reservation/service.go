package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/common/validation"
	productDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/product"
	reservationDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/reservation"
	"github.com/frahmantamala/star-supla/internal/object"
	"go.mongodb.org/mongo-driver/bson"
)

const Table = "Reservations"

var byDate = bson.D{{Key: "date", Value: 1}}

type RepositoryAPI interface {
	List(ctx context.Context, opts object.ListOptions) (*object.Page[reservationDatamodel.Reservation], error)
	Create(ctx context.Context, data reservationDatamodel.Reservation) (string, error)
	Update(ctx context.Context, id string, data reservationDatamodel.Reservation) error
	Delete(ctx context.Context, id string) error
}

// ProductLookup reads the stock a reservation draws from.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*productDatamodel.Product, error)
}

type Service struct {
	repo     RepositoryAPI
	products ProductLookup
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, products ProductLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// GetAll lists reservations matching filters, oldest date first.
func (s *Service) GetAll(ctx context.Context, filters Filters) ([]Reservation, error) {
	page, err := s.repo.List(ctx, object.ListOptions{Query: filters.Query(), Sort: byDate})
	if err != nil {
		s.logger.Error("failed to list reservations", "error", err)
		return nil, err
	}
	return page.Items, nil
}

// GetByDateRange lists reservations with start <= date <= end.
func (s *Service) GetByDateRange(ctx context.Context, start, end string) ([]Reservation, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, errors.NewValidationFieldError("end", "end date is before start date", errors.ErrCodeInvalidDate)
	}

	query := bson.D{{Key: "date", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lte", Value: end},
	}}}
	page, err := s.repo.List(ctx, object.ListOptions{Query: query, Sort: byDate})
	if err != nil {
		s.logger.Error("failed to list reservations by range", "start", start, "end", end, "error", err)
		return nil, err
	}
	return page.Items, nil
}

// Create stores r as given, without a stock check.
func (s *Service) Create(ctx context.Context, r Reservation) (string, error) {
	r.ID = ""
	if err := validation.ValidateReservation(r); err != nil {
		return "", err
	}
	return s.repo.Create(ctx, r)
}

// Update stores r as given, without a stock check.
func (s *Service) Update(ctx context.Context, r Reservation) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := validation.ValidateReservation(r); err != nil {
		return err
	}
	return s.repo.Update(ctx, r.ID, r)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete reservation", "reservation_id", id, "error", err)
		return err
	}
	return nil
}

// Availability reports how much of productID is still free on date,
// leaving out excludeID.
func (s *Service) Availability(ctx context.Context, date, productID, excludeID string) (*Availability, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetAll(ctx, Filters{Date: date, ProductID: productID})
	if err != nil {
		return nil, err
	}

	a := newAvailability(productID, date, p.Stock, Reserved(existing, date, productID, excludeID))
	return &a, nil
}

// ValidateQuantity checks quantity against a fresh read of the day's
// reservations.
func (s *Service) ValidateQuantity(ctx context.Context, r Reservation) (*Availability, error) {
	a, err := s.Availability(ctx, r.Date, r.ProductID, r.ID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateQuantity(r.Quantity, a.Stock-a.Reserved); err != nil {
		return a, err
	}
	return a, nil
}

// Book creates r when stock allows. The day is read again after the write
// and the booking is withdrawn if a concurrent one pushed the total past
// stock.
func (s *Service) Book(ctx context.Context, r Reservation) (string, error) {
	r.ID = ""
	if err := validation.ValidateReservation(r); err != nil {
		return "", err
	}
	if _, err := s.ValidateQuantity(ctx, r); err != nil {
		return "", err
	}

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		s.logger.Error("failed to create reservation", "product_id", r.ProductID, "date", r.Date, "error", err)
		return "", err
	}

	if err := s.verify(ctx, r.Date, r.ProductID); err != nil {
		if delErr := s.repo.Delete(ctx, id); delErr != nil {
			s.logger.Error("failed to withdraw overbooked reservation", "reservation_id", id, "error", delErr)
		}
		return "", err
	}

	s.logger.Info("reservation booked",
		"reservation_id", id,
		"product_id", r.ProductID,
		"date", r.Date,
		"quantity", r.Quantity)
	return id, nil
}

// Rebook updates r when stock allows, counting everything but r itself.
// The previous values are restored if a concurrent booking overfilled the
// day.
func (s *Service) Rebook(ctx context.Context, r Reservation) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationFieldError("id", "id is required", errors.ErrCodeValidationFailed)
	}
	if err := validation.ValidateReservation(r); err != nil {
		return err
	}

	previous, err := s.find(ctx, r.ID, r.Date, r.ProductID)
	if err != nil {
		return err
	}
	if _, err := s.ValidateQuantity(ctx, r); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, r.ID, r); err != nil {
		s.logger.Error("failed to update reservation", "reservation_id", r.ID, "error", err)
		return err
	}

	if err := s.verify(ctx, r.Date, r.ProductID); err != nil {
		if rbErr := s.repo.Update(ctx, r.ID, *previous); rbErr != nil {
			s.logger.Error("failed to restore reservation", "reservation_id", r.ID, "error", rbErr)
		}
		return err
	}
	return nil
}

func (s *Service) verify(ctx context.Context, date, productID string) error {
	a, err := s.Availability(ctx, date, productID, "")
	if err != nil {
		return err
	}
	if a.Reserved > a.Stock {
		s.logger.Warn("concurrent booking overfilled the day",
			"product_id", productID,
			"date", date,
			"stock", a.Stock,
			"reserved", a.Reserved)
		return errors.NewConflictError(
			fmt.Sprintf("product is overbooked on %s, %d of %d reserved", date, a.Reserved, a.Stock),
			errors.ErrCodeInsufficientStock,
		)
	}
	return nil
}

// find returns the stored copy of id. It looks under the old and new
// coordinates; a reservation moved to another day or product is found
// through a full listing.
func (s *Service) find(ctx context.Context, id, date, productID string) (*Reservation, error) {
	for _, f := range []Filters{{Date: date, ProductID: productID}, {}} {
		items, err := s.GetAll(ctx, f)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].ID == id {
				return &items[i], nil
			}
		}
	}
	return nil, errors.ErrReservationNotFound
}
