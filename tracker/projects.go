package tracker

import (
	"context"
	"fmt"

	"github.com/gcharanteja/unilogger/domain"
)

// CreateProject creates a new project inside a team.
func (c *Client) CreateProject(ctx context.Context, teamID int64, name, description string) (*domain.Project, error) {
	req := domain.CreateProjectRequest{Name: name, Description: description}
	var project domain.Project
	if err := c.post(ctx, fmt.Sprintf("/teams/%d/projects", teamID), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns the projects of one team.
func (c *Client) ListProjects(ctx context.Context, teamID int64) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.get(ctx, fmt.Sprintf("/teams/%d/projects", teamID), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches one project by id.
func (c *Client) GetProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	var project domain.Project
	if err := c.get(ctx, fmt.Sprintf("/projects/%d", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
