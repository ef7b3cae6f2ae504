package portalapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// AvailableOrganizations lists institutions accepting applications, optionally in one city.
func (c *Client) AvailableOrganizations(ctx context.Context, city string) ([]Organization, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	var out []Organization
	if err := c.getJSON(ctx, "applications/available-organizations/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableSpecialties lists open specialties. Zero organizationID and empty city mean no filter.
func (c *Client) AvailableSpecialties(ctx context.Context, organizationID int64, city string) ([]Specialty, error) {
	q := url.Values{}
	if organizationID != 0 {
		q.Set("organization_id", strconv.FormatInt(organizationID, 10))
	}
	if city != "" {
		q.Set("city", city)
	}
	var out []Specialty
	if err := c.getJSON(ctx, "applications/available-specialties/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AvailableCities(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "applications/available-cities/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Applications lists the applicant's own applications.
func (c *Client) Applications(ctx context.Context) ([]Application, error) {
	var out []Application
	if err := c.getJSON(ctx, "applications/applications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateApplication(ctx context.Context, in ApplicationInput) (*Application, error) {
	var out Application
	if err := c.sendJSON(ctx, http.MethodPost, "applications/applications/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApplicationAttempts(ctx context.Context, buildingSpecialtyID int64) (*ApplicationAttempts, error) {
	q := url.Values{"building_specialty_id": {strconv.FormatInt(buildingSpecialtyID, 10)}}
	var out ApplicationAttempts
	if err := c.getJSON(ctx, "applications/application-attempts/", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModeratorApplications lists the applications addressed to the staff member's organization.
func (c *Client) ModeratorApplications(ctx context.Context) ([]Application, error) {
	var out []Application
	if err := c.getJSON(ctx, "applications/moderator/applications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecideApplication accepts or rejects an application.
func (c *Client) DecideApplication(ctx context.Context, d ModeratorDecision) error {
	return c.sendJSON(ctx, http.MethodPatch, "applications/moderator/application-detail/", nil, d, nil)
}

func (c *Client) Leaderboard(ctx context.Context, buildingSpecialtyID int64) ([]LeaderboardEntry, error) {
	q := url.Values{"building_specialty_id": {strconv.FormatInt(buildingSpecialtyID, 10)}}
	var out []LeaderboardEntry
	if err := c.getJSON(ctx, "applications/leaderboard/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
