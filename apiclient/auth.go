package apiclient

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-admin/models"
)

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return doJSON[models.Credentials, models.AuthResponse](ctx, c, "", http.MethodPost, "/login", &creds)
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return doJSON[models.RegisterRequest, models.AuthResponse](ctx, c, "", http.MethodPost, "/register", &req)
}

func (c *Client) Refresh(ctx context.Context, token string) (*models.RefreshResponse, error) {
	return doJSON[struct{}, models.RefreshResponse](ctx, c, token, http.MethodPost, "/refresh", nil)
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	rsp, err := doGet[models.MeResponse](ctx, c, token, "/me")
	if err != nil {
		return nil, err
	}
	return rsp.User, nil
}
