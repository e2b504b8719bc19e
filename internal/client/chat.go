package client

import (
	"context"
	"net/http"
)

type ChatRequest struct {
	Message   string `json:"message"`
	ProjectID int64  `json:"project_id"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// SendMessage posts a message to the project's chat and returns the reply
func (c *Client) SendMessage(ctx context.Context, token string, request ChatRequest) (*ChatResponse, error) {
	chatResp := ChatResponse{}
	if err := c.do(ctx, http.MethodPost, "/chat/", token, request, &chatResp); err != nil {
		return nil, err
	}
	return &chatResp, nil
}
