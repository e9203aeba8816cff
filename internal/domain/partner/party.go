package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind distinguishes customers from suppliers
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// IsValid reports whether the kind is known
func (k Kind) IsValid() bool {
	return k == KindCustomer || k == KindSupplier
}

// Label returns a capitalized label for messages
func (k Kind) Label() string {
	switch k {
	case KindCustomer:
		return "Customer"
	case KindSupplier:
		return "Supplier"
	default:
		return "Party"
	}
}

// Profile holds the contact details shared by customers and suppliers
type Profile struct {
	Name     string
	Document string // tax or personal identification number
	Email    string
	Phone    string
	Address  string
}

// Party is a customer or supplier. It carries no stock or balance;
// other aggregates only reference it by ID.
type Party struct {
	shared.TenantAggregateRoot
	Kind Kind
	Profile
}

// NewParty creates a new customer or supplier
func NewParty(tenantID uuid.UUID, kind Kind, profile Profile, now time.Time) (*Party, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrNoTenantBound
	}
	if !kind.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown party kind")
	}
	profile = profile.normalized()
	if err := profile.validate(kind); err != nil {
		return nil, err
	}

	return &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		Kind:                kind,
		Profile:             profile,
	}, nil
}

// Replace overwrites the whole profile
func (p *Party) Replace(profile Profile, now time.Time) error {
	profile = profile.normalized()
	if err := profile.validate(p.Kind); err != nil {
		return err
	}
	p.Profile = profile
	p.Touch(now)
	p.IncrementVersion()
	return nil
}

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func (p Profile) normalized() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Document = strings.TrimSpace(p.Document)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
	return p
}

func (p Profile) validate(kind Kind) error {
	if p.Name == "" {
		return shared.ErrInvalidInput.WithMessage(kind.Label() + " name cannot be empty")
	}
	if len(p.Name) > 200 {
		return shared.ErrInvalidInput.WithMessage(kind.Label() + " name cannot exceed 200 characters")
	}
	if len(p.Document) > 50 {
		return shared.ErrInvalidInput.WithMessage("Document cannot exceed 50 characters")
	}
	if p.Email != "" {
		if len(p.Email) > 200 {
			return shared.ErrInvalidInput.WithMessage("Email cannot exceed 200 characters")
		}
		if !emailPattern.MatchString(p.Email) {
			return shared.ErrInvalidInput.WithMessage("Invalid email format")
		}
	}
	if p.Phone != "" {
		if len(p.Phone) > 50 {
			return shared.ErrInvalidInput.WithMessage("Phone number cannot exceed 50 characters")
		}
		if !phonePattern.MatchString(p.Phone) {
			return shared.ErrInvalidInput.WithMessage("Invalid phone number format")
		}
	}
	return nil
}
