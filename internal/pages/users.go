package pages

import (
	"context"
	"fmt"
	"net/url"

	"admin-console/internal/models"
	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
)

// UsersPage is the users listing plus the block/unblock actions.
type UsersPage struct {
	*ListPage[models.User]
	users    *services.UserService
	notifier notify.Notifier
	audit    *services.AuditService
}

func NewUsersPage(users *services.UserService, pageSize int, n notify.Notifier, audit *services.AuditService) *UsersPage {
	list := NewListPage(ListConfig{
		Name:        "users",
		PageSize:    pageSize,
		AutoRefetch: true,
		Filters:     []string{"search", "status"},
		Sortable:    []string{"createdAt", "uid", "email", "name"},
		DefaultSort: Sort{Column: "createdAt", Order: SortDesc},
	}, users.List, n)
	return &UsersPage{ListPage: list, users: users, notifier: notify.OrDiscard(n), audit: audit}
}

// SetBlocked blocks or unblocks a user and reloads the current page.
func (p *UsersPage) SetBlocked(ctx context.Context, id string, blocked bool) error {
	action, call := "user.unblock", p.users.Unblock
	if blocked {
		action, call = "user.block", p.users.Block
	}
	_, err := call(ctx, id)
	p.audit.Record(ctx, action, id, nil, err)
	if err != nil {
		surface(ctx, p.notifier, "users", action, err)
		return err
	}
	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	p.notifier.Notify(ctx, notify.LevelSuccess, fmt.Sprintf("User %s %s", id, verb))
	return p.Refresh(ctx)
}

// Detail loads one user.
func (p *UsersPage) Detail(ctx context.Context, id string) (*models.User, error) {
	res, err := p.users.Get(ctx, id)
	if err != nil {
		surface(ctx, p.notifier, "users", "detail", err)
		return nil, err
	}
	return &res.Data, nil
}

// NetworkPage lists the referral downline of one user.
type NetworkPage struct {
	*ListPage[models.NetworkMember]
	UID string
}

func NewNetworkPage(network *services.NetworkService, uid string, pageSize int, n notify.Notifier) *NetworkPage {
	fetch := func(ctx context.Context, q url.Values) (*common.Page[models.NetworkMember], error) {
		return network.Downline(ctx, uid, q)
	}
	return &NetworkPage{
		ListPage: NewListPage(ListConfig{
			Name:     "network",
			PageSize: pageSize,
			Filters:  []string{"level"},
		}, fetch, n),
		UID: uid,
	}
}
