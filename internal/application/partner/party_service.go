package partner

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyService manages customers or suppliers, depending on the repository it wraps
type PartyService struct {
	repo partner.PartyRepository
	now  func() time.Time
}

// NewPartyService creates a new PartyService
func NewPartyService(repo partner.PartyRepository) *PartyService {
	return &PartyService{repo: repo, now: time.Now}
}

// SetClock replaces the time source
func (s *PartyService) SetClock(now func() time.Time) {
	s.now = now
}

// Kind returns the kind of party this service manages
func (s *PartyService) Kind() partner.Kind {
	return s.repo.Kind()
}

// Create registers a new party
func (s *PartyService) Create(ctx context.Context, tenantID uuid.UUID, req PartyRequest) (*PartyResponse, error) {
	party, err := partner.NewParty(tenantID, s.repo.Kind(), req.profile(), s.now())
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		party.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.repo.Create(ctx, party); err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// GetByID retrieves a party by ID
func (s *PartyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PartyResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	party, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// List retrieves parties ordered by name
func (s *PartyService) List(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) ([]PartyResponse, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, shared.ErrNoTenantBound
	}
	parties, total, err := s.repo.FindAllForTenant(ctx, tenantID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
	}.Normalized())
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PartyResponse, len(parties))
	for i := range parties {
		responses[i] = ToPartyResponse(&parties[i])
	}
	return responses, total, nil
}

// Update replaces the party's whole profile
func (s *PartyService) Update(ctx context.Context, tenantID, id uuid.UUID, req PartyRequest) (*PartyResponse, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	party, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := party.Replace(req.profile(), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, party); err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}
