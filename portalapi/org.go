package portalapi

import (
	"context"
	"net/http"
)

func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := c.getJSON(ctx, "org/organizations/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOrganization(ctx context.Context, org Organization) (*Organization, error) {
	var out Organization
	if err := c.sendJSON(ctx, http.MethodPost, "org/organizations/", nil, org, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrganization patches the organization identified by org.ID.
func (c *Client) UpdateOrganization(ctx context.Context, org Organization) (*Organization, error) {
	var out Organization
	if err := c.sendJSON(ctx, http.MethodPatch, "org/organizations/", nil, org, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrganization(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "org/organizations/", idQuery(id), nil, nil)
}

func (c *Client) Buildings(ctx context.Context) ([]Building, error) {
	var out []Building
	if err := c.getJSON(ctx, "org/buildings/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBuilding(ctx context.Context, b Building) (*Building, error) {
	var out Building
	if err := c.sendJSON(ctx, http.MethodPost, "org/buildings/", nil, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBuilding(ctx context.Context, b Building) (*Building, error) {
	var out Building
	if err := c.sendJSON(ctx, http.MethodPatch, "org/buildings/", nil, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBuilding(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "org/buildings/", idQuery(id), nil, nil)
}

// SpecialtyInput creates or updates a specialty of the admin's organization.
type SpecialtyInput struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Duration     string `json:"duration,omitempty"`
	Requirements string `json:"requirements,omitempty"`
}

func (c *Client) Specialties(ctx context.Context) ([]Specialty, error) {
	var out []Specialty
	if err := c.getJSON(ctx, "org/specialties/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSpecialty(ctx context.Context, in SpecialtyInput) (*Specialty, error) {
	var out Specialty
	if err := c.sendJSON(ctx, http.MethodPost, "org/specialties/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSpecialty(ctx context.Context, in SpecialtyInput) (*Specialty, error) {
	var out Specialty
	if err := c.sendJSON(ctx, http.MethodPatch, "org/specialties/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSpecialty(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "org/specialties/", idQuery(id), nil, nil)
}

// BuildingSpecialtyInput offers a specialty in a building.
type BuildingSpecialtyInput struct {
	BuildingID       int64   `json:"building"`
	SpecialtyID      int64   `json:"specialty"`
	BudgetPlaces     int     `json:"budget_places"`
	CommercialPlaces int     `json:"commercial_places"`
	CommercialPrice  float64 `json:"commercial_price"`
}

func (c *Client) BuildingSpecialties(ctx context.Context) ([]BuildingSpecialty, error) {
	var out []BuildingSpecialty
	if err := c.getJSON(ctx, "org/building-specialties/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBuildingSpecialty(ctx context.Context, in BuildingSpecialtyInput) (*BuildingSpecialty, error) {
	var out BuildingSpecialty
	if err := c.sendJSON(ctx, http.MethodPost, "org/building-specialties/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyOrganization submits an institution's request to join the platform.
func (c *Client) ApplyOrganization(ctx context.Context, in OrganizationApplication) error {
	return c.sendJSON(ctx, http.MethodPost, "org/apply/", nil, in, nil)
}

// InitiatePayment starts the onboarding payment and returns the provider URL.
func (c *Client) InitiatePayment(ctx context.Context, in OrganizationApplication) (*PaymentResponse, error) {
	var out PaymentResponse
	if err := c.sendJSON(ctx, http.MethodPost, "org/payment/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
