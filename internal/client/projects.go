package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ProjectID is a project identifier. The backend sends numbers, the client
// keeps them as strings.
type ProjectID string

func (id *ProjectID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("project id must be a string or number: %w", err)
	}
	*id = ProjectID(n.String())
	return nil
}

type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

type ProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ListProjects returns the projects visible to token
func (c *Client) ListProjects(ctx context.Context, token string) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", token, nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// GetProject returns a single project
func (c *Client) GetProject(ctx context.Context, token, id string) (*Project, error) {
	project := Project{}
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), token, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project owned by the token's user
func (c *Client) CreateProject(ctx context.Context, token string, req ProjectRequest) (*Project, error) {
	project := Project{}
	if err := c.do(ctx, http.MethodPost, "/projects/", token, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and returns the server's confirmation text
func (c *Client) DeleteProject(ctx context.Context, token, id string) (string, error) {
	res := messageResponse{}
	if err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), token, nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}
