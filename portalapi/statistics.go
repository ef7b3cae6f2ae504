package portalapi

import (
	"context"
	"fmt"
)

// StatKind names a dashboard statistics endpoint.
type StatKind string

const (
	StatApplications      StatKind = "applications"
	StatSpecialties       StatKind = "specialties"
	StatActivity          StatKind = "activity"
	StatModeratorActivity StatKind = "moderator-activity"
	StatSystem            StatKind = "system"
	StatInstitutions      StatKind = "institutions"
	StatAdminActivity     StatKind = "admin-activity"
)

func (c *Client) Statistics(ctx context.Context, kind StatKind) (Statistics, error) {
	out := Statistics{}
	if err := c.getJSON(ctx, fmt.Sprintf("statistics/%s/", kind), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
