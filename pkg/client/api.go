package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/lkhn/wealth-backend/internal/notify"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

var ErrUserIDRequired = errors.New("user id is required")

type WaitlistInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// JoinWaitlist validates the form and posts it. Failures are returned, never queued.
func (c *Client) JoinWaitlist(ctx context.Context, in WaitlistInput) error {
	if err := utils.ValidateWaitlist(in.Name, in.Email); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return c.do(ctx, http.MethodPost, "/api/waitlist", nil, in, nil, nil)
}

type presenceParams struct {
	UserID string `url:"userId"`
}

type presenceBody struct {
	Device string `json:"device,omitempty"`
}

// MarkOffline records the user as offline.
func (c *Client) MarkOffline(ctx context.Context, userID, device string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	return c.do(ctx, http.MethodPost, "/api/offline-status", presenceParams{UserID: userID}, presenceBody{Device: device}, nil, nil)
}

type postsParams struct {
	Category string `url:"category,omitempty"`
}

func (c *Client) ForumCategories(ctx context.Context) ([]ForumCategory, error) {
	var out []ForumCategory
	err := c.do(ctx, http.MethodGet, "/api/forum/categories", nil, nil, &out, nil)
	return out, err
}

// ForumPosts lists posts in category, or every post when category is empty.
func (c *Client) ForumPosts(ctx context.Context, category string) ([]ForumPost, error) {
	var out []ForumPost
	err := c.do(ctx, http.MethodGet, "/api/forum/posts", postsParams{Category: category}, nil, &out, nil)
	return out, err
}

type callEnvelope struct {
	Data interface{} `json:"data"`
}

type callResult struct {
	Result jsoniter.RawMessage `json:"result"`
}

type callFailure struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// CallFunction invokes a callable function. Structured failures come back as *FunctionError.
func (c *Client) CallFunction(ctx context.Context, name string, data, out interface{}) error {
	var res callResult
	err := c.do(ctx, http.MethodPost, "/functions/"+url.PathEscape(name), nil, callEnvelope{Data: data}, &res, func(status int, body []byte) error {
		var f callFailure
		if json.Unmarshal(body, &f) != nil || f.Error.Status == "" {
			return &APIError{StatusCode: status}
		}
		return &FunctionError{Code: notify.CodeFromStatus(f.Error.Status), Message: f.Error.Message}
	})
	if err != nil {
		return err
	}
	if out != nil && len(res.Result) > 0 {
		return json.Unmarshal(res.Result, out)
	}
	return nil
}
