package upstream

import (
	"context"
	"net/http"
)

// AuthService is the external credential-verification service. The
// gateway only relays credentials and keeps the issued token.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}

type authService struct {
	client  *Client
	baseURL string
}

func NewAuthService(client *Client, baseURL string) AuthService {
	return &authService{client: client, baseURL: baseURL}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := s.client.do(ctx, "auth", http.MethodPost, s.baseURL+"/auth/login", nil,
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
