package tracker

import (
	"context"
	"fmt"

	"github.com/gcharanteja/unilogger/domain"
)

// CreateTeam creates a new team.
func (c *Client) CreateTeam(ctx context.Context, name, description string) (*domain.Team, error) {
	req := domain.CreateTeamRequest{Name: name, Description: description}
	var team domain.Team
	if err := c.post(ctx, "/teams", req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns the teams visible to the caller.
func (c *Client) ListTeams(ctx context.Context) ([]domain.Team, error) {
	var teams []domain.Team
	if err := c.get(ctx, "/teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// GetTeam fetches one team by id.
func (c *Client) GetTeam(ctx context.Context, teamID int64) (*domain.Team, error) {
	var team domain.Team
	if err := c.get(ctx, fmt.Sprintf("/teams/%d", teamID), nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}
