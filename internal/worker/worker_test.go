package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestEnqueueExportAssignsJobID(t *testing.T) {
	q := &fakeQueue{}
	job, err := EnqueueExport(context.Background(), q, ExportJob{Kind: "withdrawals", Trigger: "console"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobID)

	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeHistoryExport, q.tasks[0].Type())
	var got ExportJob
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &got))
	assert.Equal(t, job, got)

	_, err = EnqueueExport(context.Background(), q, ExportJob{Kind: "trades"})
	assert.Error(t, err)
	assert.Len(t, q.tasks, 1)
}

func TestDailyWindow(t *testing.T) {
	now := time.Date(2026, 10, 19, 2, 30, 0, 0, time.UTC)
	w := DailyWindow(now)
	assert.Equal(t, "2026-10-18T00:00:00Z", w["from"])
	assert.Equal(t, "2026-10-19T00:00:00Z", w["to"])
}

func TestScheduleExportsQueuesEveryKind(t *testing.T) {
	q := &fakeQueue{}
	ScheduleExports(context.Background(), q, services.HistoryKinds(), time.Now())
	assert.Len(t, q.tasks, 3)
}

func newExportWorker(t *testing.T, handler http.HandlerFunc) (*Worker, *notify.Toasts, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := common.NewClient(common.ClientConfig{BaseURL: srv.URL})
	toasts := notify.NewToasts(0)
	dir := t.TempDir()
	w := NewWorker(services.NewHistoryService(client), services.NewExportRunService(nil), toasts,
		"service", dir, 2)
	return w, toasts, dir
}

func exportTask(t *testing.T, job ExportJob) *asynq.Task {
	task, err := NewHistoryExportTask(job)
	require.NoError(t, err)
	return task
}

func TestHandleHistoryExportWritesFile(t *testing.T) {
	var auth []string
	w, toasts, dir := newExportWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		assert.Equal(t, "/admin/deposit-history", r.URL.Path)
		assert.Equal(t, "COMPLETED", r.URL.Query().Get("status"))
		if r.URL.Query().Get("page") == "1" {
			rw.Write([]byte(`{"success":true,"data":[{"uid":"U1","amount":"5"},{"uid":"U2","amount":"6"}]}`))
			return
		}
		rw.Write([]byte(`{"success":true,"data":[]}`))
	})

	job := ExportJob{JobID: "0f8fad5b-d9cb-469f-a165-70867728950e", Kind: "deposits",
		Filters: map[string]string{"status": "COMPLETED"}, Trigger: "cron"}
	require.NoError(t, w.HandleHistoryExport(context.Background(), exportTask(t, job)))

	assert.Equal(t, []string{"Bearer service", "Bearer service"}, auth)
	files, err := filepath.Glob(filepath.Join(dir, "deposits-*-0f8fad5b.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	body, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "uid,amount\nU1,5\nU2,6\n", string(body))

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".*"))
	assert.Empty(t, leftovers)
	assert.Equal(t, notify.LevelSuccess, toasts.Drain()[0].Level)
}

func TestHandleHistoryExportFailureLeavesNoFile(t *testing.T) {
	w, toasts, dir := newExportWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
		rw.Write([]byte(`{"success":false,"message":"db timeout"}`))
	})
	err := w.HandleHistoryExport(context.Background(), exportTask(t, ExportJob{JobID: "j1", Kind: "income"}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
	assert.Equal(t, "income export failed: db timeout", toasts.Drain()[0].Message)
}

func TestHandleHistoryExportSkipsRetryOnAuthFailure(t *testing.T) {
	w, _, _ := newExportWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusUnauthorized)
	})
	err := w.HandleHistoryExport(context.Background(), exportTask(t, ExportJob{JobID: "j2", Kind: "income"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAuthFailureDoesNotLeakIntoNextJob(t *testing.T) {
	var mu sync.Mutex
	auth := map[string][]string{}
	w, _, _ := newExportWorker(t, func(rw http.ResponseWriter, r *http.Request) {
		mu.Lock()
		kind := r.URL.Path
		auth[kind] = append(auth[kind], r.Header.Get("Authorization"))
		mu.Unlock()
		if kind == "/admin/income-history" {
			rw.WriteHeader(http.StatusUnauthorized)
			return
		}
		rw.Write([]byte(`{"success":true,"data":[]}`))
	})

	err := w.HandleHistoryExport(context.Background(), exportTask(t, ExportJob{JobID: "j1", Kind: "income"}))
	require.ErrorIs(t, err, asynq.SkipRetry)

	require.NoError(t, w.HandleHistoryExport(context.Background(), exportTask(t, ExportJob{JobID: "j2", Kind: "deposits"})))
	assert.Equal(t, []string{"Bearer service"}, auth["/admin/income-history"])
	assert.Equal(t, []string{"Bearer service"}, auth["/admin/deposit-history"])
}

func TestHandleHistoryExportRejectsBadPayload(t *testing.T) {
	w, _, _ := newExportWorker(t, func(rw http.ResponseWriter, r *http.Request) {})
	err := w.HandleHistoryExport(context.Background(), asynq.NewTask(TypeHistoryExport, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.HandleHistoryExport(context.Background(), exportTask(t, ExportJob{JobID: "j3", Kind: "trades"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
