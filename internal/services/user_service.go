package services

import (
	"context"
	"net/url"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type UserService struct {
	Client *common.Client
}

func NewUserService(client *common.Client) *UserService {
	return &UserService{Client: client}
}

func (s *UserService) List(ctx context.Context, q url.Values) (*common.Page[models.User], error) {
	return list[models.User](ctx, s.Client, "/admin/users", q)
}

func (s *UserService) Get(ctx context.Context, id string) (*common.Envelope[models.User], error) {
	return get[models.User](ctx, s.Client, "/admin/user/"+url.PathEscape(id), nil)
}

func (s *UserService) Block(ctx context.Context, id string) (*common.Envelope[models.User], error) {
	return put[models.User](ctx, s.Client, "/admin/user/"+url.PathEscape(id)+"/block", struct{}{})
}

func (s *UserService) Unblock(ctx context.Context, id string) (*common.Envelope[models.User], error) {
	return put[models.User](ctx, s.Client, "/admin/user/"+url.PathEscape(id)+"/unblock", struct{}{})
}
