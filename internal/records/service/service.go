package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"rpscreen/internal/records/models"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/sentinel"
	"rpscreen/pkg/requestcontext"
)

type CustomerStore interface {
	Create(ctx context.Context, build func(id int) models.Customer) (models.Customer, error)
	List(ctx context.Context) []models.Customer
	Update(ctx context.Context, id int, fn func(*models.Customer)) (models.Customer, error)
	Delete(ctx context.Context, id int) (models.Customer, error)
}

type RestrictedPartyStore interface {
	Create(ctx context.Context, build func(id int) models.RestrictedParty) (models.RestrictedParty, error)
	List(ctx context.Context) []models.RestrictedParty
	Update(ctx context.Context, id int, fn func(*models.RestrictedParty)) (models.RestrictedParty, error)
	Delete(ctx context.Context, id int) (models.RestrictedParty, error)
}

// Service manages the customer and restricted party lists.
type Service struct {
	customers CustomerStore
	parties   RestrictedPartyStore
	validate  *validator.Validate
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(customers CustomerStore, parties RestrictedPartyStore, opts ...Option) *Service {
	s := &Service{
		customers: customers,
		parties:   parties,
		validate:  validator.New(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCustomer trims the input and appends a new customer.
func (s *Service) CreateCustomer(ctx context.Context, in models.NewCustomerInput) (*models.Customer, error) {
	in.Normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	c, err := s.customers.Create(ctx, func(id int) models.Customer {
		return models.Customer{
			ID:          id,
			Name:        in.Name,
			Address:     in.Address,
			Phone:       in.Phone,
			Email:       in.Email,
			Comments:    in.Comments,
			CreatedDate: now,
		}
	})
	if err != nil {
		return nil, translate(err, "failed to create customer")
	}
	s.logger.InfoContext(ctx, "customer created",
		"request_id", requestcontext.RequestID(ctx),
		"customer_id", c.ID,
	)
	return &c, nil
}

// ListCustomers returns all customers in insertion order.
func (s *Service) ListCustomers(ctx context.Context) []models.Customer {
	return s.customers.List(ctx)
}

// UpdateCustomer merges patch into the customer with id.
func (s *Service) UpdateCustomer(ctx context.Context, id int, patch models.CustomerPatch) (*models.Customer, error) {
	now := requestcontext.Now(ctx)
	c, err := s.customers.Update(ctx, id, func(c *models.Customer) {
		patch.Apply(c, now)
	})
	if err != nil {
		return nil, translate(err, "customer not found")
	}
	return &c, nil
}

// DeleteCustomer removes the customer with id and returns it.
func (s *Service) DeleteCustomer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.customers.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "customer not found")
	}
	s.logger.InfoContext(ctx, "customer deleted",
		"request_id", requestcontext.RequestID(ctx),
		"customer_id", c.ID,
	)
	return &c, nil
}

// CreateRestrictedParty trims the input and appends a new restricted party.
func (s *Service) CreateRestrictedParty(ctx context.Context, in models.NewRestrictedPartyInput) (*models.RestrictedParty, error) {
	in.Normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p, err := s.parties.Create(ctx, func(id int) models.RestrictedParty {
		return models.RestrictedParty{
			ID:          id,
			Name:        in.Name,
			Reason:      in.Reason,
			Source:      in.Source,
			Comments:    in.Comments,
			CreatedDate: now,
		}
	})
	if err != nil {
		return nil, translate(err, "failed to create restricted party")
	}
	s.logger.InfoContext(ctx, "restricted party created",
		"request_id", requestcontext.RequestID(ctx),
		"restricted_party_id", p.ID,
	)
	return &p, nil
}

// ListRestrictedParties returns all restricted parties in insertion order.
func (s *Service) ListRestrictedParties(ctx context.Context) []models.RestrictedParty {
	return s.parties.List(ctx)
}

// UpdateRestrictedParty merges patch into the restricted party with id.
func (s *Service) UpdateRestrictedParty(ctx context.Context, id int, patch models.RestrictedPartyPatch) (*models.RestrictedParty, error) {
	now := requestcontext.Now(ctx)
	p, err := s.parties.Update(ctx, id, func(p *models.RestrictedParty) {
		patch.Apply(p, now)
	})
	if err != nil {
		return nil, translate(err, "restricted party not found")
	}
	return &p, nil
}

// DeleteRestrictedParty removes the restricted party with id and returns it.
func (s *Service) DeleteRestrictedParty(ctx context.Context, id int) (*models.RestrictedParty, error) {
	p, err := s.parties.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "restricted party not found")
	}
	s.logger.InfoContext(ctx, "restricted party deleted",
		"request_id", requestcontext.RequestID(ctx),
		"restricted_party_id", p.ID,
	)
	return &p, nil
}

func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return dErrors.New(dErrors.CodeValidation, strings.Join(fields, "; "))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate input")
}

// translate maps store errors onto domain errors. notFoundMsg is used for
// ErrNotFound; anything else is internal.
func translate(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "records are busy, retry shortly")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist records")
	}
}
