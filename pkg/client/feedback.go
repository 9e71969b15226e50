package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/models"
)

// queueTimeout bounds the fallback write, which runs even when the caller's context is done.
const queueTimeout = 5 * time.Second

var (
	ErrFeedbackRequired = errors.New("feedback is required")
	ErrInvalidRating    = fmt.Errorf("rating must be between %d and %d", models.MinRating, models.MaxRating)
)

type FeedbackInput struct {
	Feedback string
	Rating   int
	Email    string
}

// Result reports what happened to a feedback submission.
type Result struct {
	Submitted bool
	Queued    bool
}

type feedbackPayload struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
	Email    string `json:"email,omitempty"`
}

// PendingFeedback is a queued submission plus the time it was first attempted.
type PendingFeedback struct {
	Feedback  string    `json:"feedback"`
	Rating    int       `json:"rating"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (in FeedbackInput) validate() (feedbackPayload, error) {
	p := feedbackPayload{
		Feedback: strings.TrimSpace(in.Feedback),
		Rating:   in.Rating,
		Email:    strings.TrimSpace(in.Email),
	}
	if p.Feedback == "" {
		return p, ErrFeedbackRequired
	}
	if !models.ValidRating(p.Rating) {
		return p, ErrInvalidRating
	}
	return p, nil
}

// SubmitFeedback validates and sends one feedback. Invalid input returns an error
// without touching the network. A failed delivery is queued under
// PendingFeedbackKey and reported as Result{Queued: true} with a nil error.
func (c *Client) SubmitFeedback(ctx context.Context, in FeedbackInput) (Result, error) {
	payload, err := in.validate()
	if err != nil {
		return Result{}, err
	}

	sendErr := c.sendFeedback(ctx, payload)
	if sendErr == nil {
		return Result{Submitted: true}, nil
	}

	zap.S().Warnw("feedback submission failed; queued locally", "error", sendErr)

	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueTimeout)
	defer cancel()

	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	err = c.store.Append(qctx, PendingFeedbackKey, PendingFeedback{
		Feedback:  payload.Feedback,
		Rating:    payload.Rating,
		Email:     payload.Email,
		Timestamp: c.now().UTC(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("queue feedback: %w", err)
	}
	return Result{Queued: true}, nil
}

func (c *Client) sendFeedback(ctx context.Context, p feedbackPayload) error {
	return c.do(ctx, http.MethodPost, "/api/feedback", nil, p, nil, nil)
}

// Pending returns the queued feedback, oldest first.
func (c *Client) Pending(ctx context.Context) ([]PendingFeedback, error) {
	var pending []PendingFeedback
	if err := c.store.List(ctx, PendingFeedbackKey, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// SyncResult reports one SyncPending run.
type SyncResult struct {
	Sent int
	// Rejected entries got a permanent 4xx and were removed from the queue.
	Rejected []PendingFeedback
}

// rejected reports whether the API refused the request in a way a retry cannot fix.
func rejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// SyncPending resends queued feedback in order. Entries the API rejects with a
// 4xx are dropped and returned in Rejected. Any other failure stops the run,
// leaving that entry and everything after it queued.
func (c *Client) SyncPending(ctx context.Context) (SyncResult, error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	var res SyncResult
	pending, err := c.Pending(ctx)
	if err != nil {
		return res, err
	}

	done := 0
	var sendErr error
	for _, p := range pending {
		sendErr = c.sendFeedback(ctx, feedbackPayload{Feedback: p.Feedback, Rating: p.Rating, Email: p.Email})
		if sendErr != nil && rejected(sendErr) {
			zap.S().Warnw("queued feedback rejected; dropping", "timestamp", p.Timestamp, "error", sendErr)
			res.Rejected = append(res.Rejected, p)
			sendErr = nil
			done++
			continue
		}
		if sendErr != nil {
			break
		}
		res.Sent++
		done++
	}

	if done > 0 {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueTimeout)
		defer cancel()
		if err := c.store.Replace(qctx, PendingFeedbackKey, pending[done:]); err != nil {
			return res, fmt.Errorf("update queue: %w", err)
		}
	}
	if sendErr != nil {
		return res, fmt.Errorf("sync stopped after %d of %d: %w", done, len(pending), sendErr)
	}
	return res, nil
}
