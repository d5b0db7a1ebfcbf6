package scheduler

import (
	"context"
	"errors"
	"testing"

	"leadrouter/internal/routing/reconcile"
	"leadrouter/internal/routing/service"
	"leadrouter/platform/apperr"
	"leadrouter/platform/logger"
	"leadrouter/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "routing" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

type recordingAssigner struct {
	lastLeadID uuid.UUID
	result     service.AssignResult
	err        error
}

func (a *recordingAssigner) Assign(_ context.Context, leadID uuid.UUID) (service.AssignResult, error) {
	a.lastLeadID = leadID
	return a.result, a.err
}

type stubReconciler struct {
	summary reconcile.Summary
	err     error
	runs    int
}

func (r *stubReconciler) Run(_ context.Context) (reconcile.Summary, error) {
	r.runs++
	return r.summary, r.err
}

func newTestWorker(t *testing.T, assigner Assigner, reconciler Reconciler) *Worker {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr()}
	w, err := NewWorker(cfg, assigner, reconciler, validator.New(), logger.New("development"))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	return w
}

func TestEnqueueLeadAssignWritesToQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := LeadAssignPayload{LeadID: uuid.NewString()}
	if err := client.EnqueueLeadAssign(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueLeadAssign: %v", err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected task persisted to redis")
	}
}

func TestEnqueueRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected error for missing redis url")
	}
}

func TestHandleLeadAssignDrivesCoordinator(t *testing.T) {
	assigner := &recordingAssigner{result: service.AssignResult{Success: true, Reason: service.ReasonAssigned}}
	w := newTestWorker(t, assigner, &stubReconciler{})

	leadID := uuid.New()
	task, err := NewLeadAssignTask(LeadAssignPayload{LeadID: leadID.String()})
	if err != nil {
		t.Fatalf("NewLeadAssignTask: %v", err)
	}

	if err := w.handleLeadAssign(context.Background(), task); err != nil {
		t.Fatalf("handleLeadAssign: %v", err)
	}
	if assigner.lastLeadID != leadID {
		t.Fatalf("expected coordinator called with %s, got %s", leadID, assigner.lastLeadID)
	}
}

func TestHandleLeadAssignSkipsRetryOnBadPayload(t *testing.T) {
	w := newTestWorker(t, &recordingAssigner{}, &stubReconciler{})

	cases := []struct {
		name    string
		payload []byte
	}{
		{"malformed json", []byte("{not json")},
		{"missing lead id", []byte(`{}`)},
		{"invalid uuid", []byte(`{"leadId":"not-a-uuid"}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := asynq.NewTask(TaskLeadAssign, tc.payload)
			err := w.handleLeadAssign(context.Background(), task)
			if !errors.Is(err, asynq.SkipRetry) {
				t.Fatalf("expected SkipRetry, got %v", err)
			}
		})
	}
}

func TestHandleLeadAssignReturnsTransientErrorsForRetry(t *testing.T) {
	assigner := &recordingAssigner{err: apperr.Unavailable("store down")}
	w := newTestWorker(t, assigner, &stubReconciler{})

	task, _ := NewLeadAssignTask(LeadAssignPayload{LeadID: uuid.NewString()})
	err := w.handleLeadAssign(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestHandleReconcileSwallowsOverlapConflict(t *testing.T) {
	reconciler := &stubReconciler{err: apperr.Conflict("reconciliation already running")}
	w := newTestWorker(t, &recordingAssigner{}, reconciler)

	if err := w.handleReconcile(context.Background(), NewReconcileTask()); err != nil {
		t.Fatalf("expected overlapping sweep trigger to be dropped, got %v", err)
	}
	if reconciler.runs != 1 {
		t.Fatalf("expected exactly one run attempt, got %d", reconciler.runs)
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected opt %+v", opt)
	}
	if opt.TLSConfig != nil {
		t.Fatalf("expected no TLS config for plain redis url")
	}

	secure, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("redisClientOpt tls: %v", err)
	}
	if secure.TLSConfig == nil || !secure.TLSConfig.InsecureSkipVerify {
		t.Fatalf("expected insecure TLS config passthrough")
	}
}
