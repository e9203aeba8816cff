package partner

import (
	"time"

	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/google/uuid"
)

// PartyRequest carries a customer or supplier profile. Updates replace every field.
type PartyRequest struct {
	Name      string
	Document  string
	Email     string
	Phone     string
	Address   string
	CreatedBy *uuid.UUID
}

func (r PartyRequest) profile() partner.Profile {
	return partner.Profile{
		Name:     r.Name,
		Document: r.Document,
		Email:    r.Email,
		Phone:    r.Phone,
		Address:  r.Address,
	}
}

// PartyListFilter narrows a party listing
type PartyListFilter struct {
	Search   string
	Page     int
	PageSize int
}

// PartyResponse represents a customer or supplier in API responses
type PartyResponse struct {
	ID        uuid.UUID    `json:"id"`
	TenantID  uuid.UUID    `json:"tenant_id"`
	Kind      partner.Kind `json:"kind"`
	Name      string       `json:"name"`
	Document  string       `json:"document"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Address   string       `json:"address"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Version   int          `json:"version"`
}

// ToPartyResponse converts a domain Party to a response
func ToPartyResponse(p *partner.Party) PartyResponse {
	return PartyResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Kind:      p.Kind,
		Name:      p.Name,
		Document:  p.Document,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}
