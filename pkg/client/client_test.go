package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkhn/wealth-backend/pkg/fallback"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type server struct {
	*httptest.Server
	hits    int32
	mu      sync.Mutex
	bodies  []map[string]interface{}
	queries []string
	status  int32
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.queries = append(s.queries, r.URL.RawQuery)
		s.mu.Unlock()

		status := int(atomic.LoadInt32(&s.status))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch {
		case status >= 400:
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		case r.URL.Path == "/api/forum/categories":
			_, _ = w.Write([]byte(`[{"id":"000000000000000000000001","name":"Investing","order":1}]`))
		case r.URL.Path == "/api/forum/posts":
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *server) setStatus(code int) { atomic.StoreInt32(&s.status, int32(code)) }
func (s *server) hitCount() int      { return int(atomic.LoadInt32(&s.hits)) }

func newClient(t *testing.T, baseURL string, store fallback.Store) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL, Store: store, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return c
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{BaseURL: "not a url", Store: fallback.NewMemory()})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://localhost:8080"})
	assert.Error(t, err)
}

func TestSubmitFeedbackValidationSkipsNetwork(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL, fallback.NewMemory())
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := c.SubmitFeedback(ctx, FeedbackInput{Feedback: "hi", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
	_, err := c.SubmitFeedback(ctx, FeedbackInput{Feedback: "  ", Rating: 3})
	assert.ErrorIs(t, err, ErrFeedbackRequired)

	assert.Zero(t, srv.hitCount())
}

func TestSubmitFeedbackSuccess(t *testing.T) {
	srv := newServer(t)
	store := fallback.NewMemory()
	c := newClient(t, srv.URL, store)

	res, err := c.SubmitFeedback(context.Background(), FeedbackInput{Feedback: " Great ", Rating: 5, Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, Result{Submitted: true}, res)

	require.Len(t, srv.bodies, 1)
	assert.Equal(t, map[string]interface{}{"feedback": "Great", "rating": float64(5), "email": "a@b.co"}, srv.bodies[0])

	pending, err := c.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSubmitFeedbackFailureQueuesOneEntry(t *testing.T) {
	srv := newServer(t)
	srv.setStatus(http.StatusInternalServerError)
	store := fallback.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, PendingFeedbackKey, PendingFeedback{Feedback: "earlier", Rating: 2}))

	c := newClient(t, srv.URL, store)
	res, err := c.SubmitFeedback(ctx, FeedbackInput{Feedback: "later", Rating: 4})
	require.NoError(t, err, "delivery failures are not surfaced")
	assert.Equal(t, Result{Queued: true}, res)

	pending, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "earlier", pending[0].Feedback)
	assert.Equal(t, PendingFeedback{Feedback: "later", Rating: 4, Timestamp: fixedNow}, pending[1])
}

func TestSubmitFeedbackTransportErrorQueues(t *testing.T) {
	store := fallback.NewMemory()
	c := newClient(t, "http://127.0.0.1:1", store)

	res, err := c.SubmitFeedback(context.Background(), FeedbackInput{Feedback: "offline", Rating: 3})
	require.NoError(t, err)
	assert.True(t, res.Queued)

	pending, err := c.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmitFeedbackQueuesAfterDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	store, err := fallback.OpenSQLite(filepath.Join(t.TempDir(), "fallback.db"))
	require.NoError(t, err)
	defer store.Close()

	c := newClient(t, srv.URL, store)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := c.SubmitFeedback(ctx, FeedbackInput{Feedback: "slow network", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, Result{Queued: true}, res)

	pending, err := c.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "slow network", pending[0].Feedback)
}

func TestSyncPendingDropsRejected(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Rating must be between 1 and 5"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := fallback.NewMemory()
	ctx := context.Background()
	for _, msg := range []string{"bad", "two", "three"} {
		require.NoError(t, store.Append(ctx, PendingFeedbackKey, PendingFeedback{Feedback: msg, Rating: 3}))
	}
	c := newClient(t, srv.URL, store)

	res, err := c.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "bad", res.Rejected[0].Feedback)

	pending, err := c.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncPendingKeepsRateLimited(t *testing.T) {
	srv := newServer(t)
	srv.setStatus(http.StatusTooManyRequests)
	store := fallback.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, PendingFeedbackKey, PendingFeedback{Feedback: "later", Rating: 3}))
	c := newClient(t, srv.URL, store)

	res, err := c.SyncPending(ctx)
	require.Error(t, err)
	assert.Empty(t, res.Rejected)

	pending, err := c.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSyncPending(t *testing.T) {
	srv := newServer(t)
	store := fallback.NewMemory()
	ctx := context.Background()
	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append(ctx, PendingFeedbackKey, PendingFeedback{Feedback: msg, Rating: 3}))
	}
	c := newClient(t, srv.URL, store)

	res, err := c.SyncPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Sent: 3}, res)
	require.Len(t, srv.bodies, 3)
	assert.Equal(t, "one", srv.bodies[0]["feedback"])
	assert.Equal(t, "three", srv.bodies[2]["feedback"])

	pending, err := c.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncPendingStopsAtFirstFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := fallback.NewMemory()
	ctx := context.Background()
	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append(ctx, PendingFeedbackKey, PendingFeedback{Feedback: msg, Rating: 3}))
	}
	c := newClient(t, srv.URL, store)

	res, err := c.SyncPending(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	pending, err := c.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "two", pending[0].Feedback)
	assert.Equal(t, "three", pending[1].Feedback)
}

func TestJoinWaitlist(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL, fallback.NewMemory())
	ctx := context.Background()

	err := c.JoinWaitlist(ctx, WaitlistInput{Email: "ada.example.com", Name: "Ada"})
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	err = c.JoinWaitlist(ctx, WaitlistInput{Email: "ada@example.com", Name: " "})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Zero(t, srv.hitCount())

	require.NoError(t, c.JoinWaitlist(ctx, WaitlistInput{Email: "ada@example.com", Name: "Ada"}))
	assert.Equal(t, 1, srv.hitCount())

	srv.setStatus(http.StatusBadRequest)
	err = c.JoinWaitlist(ctx, WaitlistInput{Email: "ada@example.com", Name: "Ada"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestMarkOffline(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL, fallback.NewMemory())

	assert.ErrorIs(t, c.MarkOffline(context.Background(), "", "web"), ErrUserIDRequired)
	require.NoError(t, c.MarkOffline(context.Background(), "user 1", "web"))
	require.Len(t, srv.queries, 1)
	assert.Equal(t, "userId=user+1", srv.queries[0])
	assert.Equal(t, "web", srv.bodies[0]["device"])
}

func TestForumReads(t *testing.T) {
	srv := newServer(t)
	c := newClient(t, srv.URL, fallback.NewMemory())
	ctx := context.Background()

	cats, err := c.ForumCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Investing", cats[0].Name)

	posts, err := c.ForumPosts(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = c.ForumPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "category=c1", ""}, srv.queries)
}

func TestCallFunction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			Data map[string]interface{} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&env)
		w.Header().Set("Content-Type", "application/json")
		if env.Data["email"] == nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"status":"INVALID_ARGUMENT","message":"Email is required"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"success":true}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, fallback.NewMemory())
	ctx := context.Background()

	var out struct {
		Success bool `json:"success"`
	}
	require.NoError(t, c.CallFunction(ctx, "sendWaitlistConfirmation", map[string]string{"email": "a@b.co"}, &out))
	assert.True(t, out.Success)

	err := c.CallFunction(ctx, "sendWaitlistConfirmation", map[string]string{}, nil)
	var fe *FunctionError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, CodeInvalidArgument, fe.Code)
	assert.Equal(t, "Email is required", fe.Message)
}
