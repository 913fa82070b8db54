package services

import (
	"context"
	"net/url"

	"admin-console/pkg/common"
)

// list GETs a paginated endpoint and returns the envelope as sent.
func list[T any](ctx context.Context, c *common.Client, path string, q url.Values) (*common.Page[T], error) {
	var page common.Page[T]
	if err := c.Get(ctx, path, q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func get[T any](ctx context.Context, c *common.Client, path string, q url.Values) (*common.Envelope[T], error) {
	var env common.Envelope[T]
	if err := c.Get(ctx, path, q, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func post[T any](ctx context.Context, c *common.Client, path string, body interface{}) (*common.Envelope[T], error) {
	var env common.Envelope[T]
	if err := c.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func put[T any](ctx context.Context, c *common.Client, path string, body interface{}) (*common.Envelope[T], error) {
	var env common.Envelope[T]
	if err := c.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
