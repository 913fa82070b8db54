// Package pages holds the headless view-models behind each console screen.
// A page owns its local state, calls the service layer, and reports outcomes
// through a notify.Notifier. Rendering is left to the caller.
package pages

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"admin-console/internal/notify"
	"admin-console/pkg/common"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// surface reports a failed action once. Auth failures are skipped because
// the client has already logged the operator out and redirected.
func surface(ctx context.Context, n notify.Notifier, page, action string, err error) {
	class := common.Classify(err)
	log.Warn().Err(err).Str("page", page).Str("action", action).Str("class", string(class)).Msg("page action failed")
	if class == common.ClassAuth {
		return
	}
	notify.OrDiscard(n).Notify(ctx, notify.LevelError, common.Message(err))
}

// Lister is the type-independent surface of a ListPage, used by the console
// router to drive any listing by name.
type Lister interface {
	Name() string
	Status() Status
	Mount(ctx context.Context) error
	Refresh(ctx context.Context) error
	SetFilter(ctx context.Context, key, value string) error
	ApplyFilters(ctx context.Context, filters map[string]string) error
	StageFilters(filters map[string]string) error
	Open(ctx context.Context, q ListQuery) error
	ClearFilters(ctx context.Context) error
	GoTo(ctx context.Context, uiPage int) error
	ToggleSort(ctx context.Context, column string) error
	SetSort(ctx context.Context, sort Sort) error
	Export(ctx context.Context, w io.Writer) (int, error)
	Filters() map[string]string
	Snapshot() interface{}
}
