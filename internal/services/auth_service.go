package services

import (
	"context"
	"fmt"

	"admin-console/pkg/common"
)

type AuthService struct {
	Client *common.Client
}

func NewAuthService(client *common.Client) *AuthService {
	return &AuthService{Client: client}
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Admin        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"admin"`
}

// Login posts the credentials and stores the returned tokens in the store
// bound to ctx.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := post[LoginResult](ctx, s.Client, s.Client.LoginPath(), map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if env.Data.Token == "" {
		return nil, &common.APIError{Status: 200, Message: "login response carried no token"}
	}
	tokens := common.Tokens{AccessToken: env.Data.Token, RefreshToken: env.Data.RefreshToken}
	if err := s.Client.Store(ctx).Save(ctx, tokens); err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	return &env.Data, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.Client.Store(ctx).Clear(ctx)
}

// LoggedIn reports whether ctx has an access token.
func (s *AuthService) LoggedIn(ctx context.Context) bool {
	_, ok := s.Client.Store(ctx).Tokens(ctx)
	return ok
}
