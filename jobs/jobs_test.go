package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/indiepro/indiepro/internal/jobs"
	"github.com/indiepro/indiepro/internal/platform/mail"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (r *recordingEnqueuer) Close() error { return nil }

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendLoginCodeEnqueuesMailTask(t *testing.T) {
	enq := &recordingEnqueuer{}
	client := NewClientWith(enq)
	expires := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)

	require.NoError(t, client.SendLoginCode(context.Background(), "a@example.com", "123456", expires))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskTypeSendEmail, enq.tasks[0].Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "a@example.com", payload.To)
	assert.Equal(t, loginCodeSubject, payload.Subject)
	assert.Contains(t, payload.Body, "123456")
	assert.Contains(t, payload.Body, "12:10 UTC")
}

func TestSendLoginCodeWrapsEnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	client := NewClientWith(&recordingEnqueuer{err: boom})
	err := client.SendLoginCode(context.Background(), "a@example.com", "123456", time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestSendEmailHandlerDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	handler := NewSendEmailHandler(mailer, jobmetrics.NewMetrics(prometheus.NewRegistry()), nil)
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com", Subject: "hi", Body: "body"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@example.com", mailer.sent[0].To)
}

func TestSendEmailHandlerSkipsBadPayload(t *testing.T) {
	handler := NewSendEmailHandler(&recordingMailer{}, jobmetrics.NewMetrics(prometheus.NewRegistry()), nil)
	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailHandlerReturnsDeliveryError(t *testing.T) {
	boom := errors.New("smtp down")
	handler := NewSendEmailHandler(&recordingMailer{err: boom}, nil, nil)
	task, err := NewSendEmailTask(SendEmailPayload{To: "a@example.com"})
	require.NoError(t, err)
	assert.ErrorIs(t, handler(context.Background(), task), boom)
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"retry":0,"failed":0}`, rr.Body.String())
}
