package notify

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/metrics"
)

// WaitlistConfirmation is the payload of sendWaitlistConfirmation.
type WaitlistConfirmation struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FeedbackMessage is the payload of sendFeedback.
type FeedbackMessage struct {
	Message string `json:"message"`
	Rating  int    `json:"rating"`
	Email   string `json:"email,omitempty"`
}

type Options struct {
	AdminEmail        string
	FeedbackRecipient string
	Metrics           *metrics.Metrics
	Now               func() time.Time
}

// Dispatcher sends templated notification emails. Every call sends synchronously,
// at most once per message; there is no queue and no retry.
type Dispatcher struct {
	mailer    Mailer
	templates Templates
	opts      Options
}

func NewDispatcher(mailer Mailer, opts Options) (*Dispatcher, error) {
	tpl, err := LoadTemplates(templatesYAML)
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{mailer: mailer, templates: tpl, opts: opts}, nil
}

// SendWaitlistConfirmation mails the user a confirmation, then alerts the admin.
// The first failed send ends the call.
func (d *Dispatcher) SendWaitlistConfirmation(ctx context.Context, in WaitlistConfirmation) error {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return invalidArgument("Email is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "there"
	}

	vars := map[string]interface{}{
		"name":  name,
		"email": email,
		"time":  d.opts.Now().UTC().Format(time.RFC1123),
	}

	if err := d.send(ctx, TemplateWaitlistUser, email, vars); err != nil {
		return internal("Failed to send confirmation email", err)
	}
	if err := d.send(ctx, TemplateWaitlistAdmin, d.opts.AdminEmail, vars); err != nil {
		return internal("Failed to send admin notification", err)
	}
	return nil
}

// SendFeedback mails one feedback notification to the configured recipient.
func (d *Dispatcher) SendFeedback(ctx context.Context, in FeedbackMessage) error {
	if strings.TrimSpace(in.Message) == "" {
		return invalidArgument("Feedback message is required")
	}
	from := strings.TrimSpace(in.Email)
	if from == "" {
		from = "Anonymous"
	}

	vars := map[string]interface{}{
		"message": in.Message,
		"rating":  strconv.Itoa(in.Rating),
		"email":   from,
		"time":    d.opts.Now().UTC().Format(time.RFC1123),
	}

	if err := d.send(ctx, TemplateFeedback, d.opts.FeedbackRecipient, vars); err != nil {
		return internal("Failed to send feedback email", err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, template, to string, vars map[string]interface{}) error {
	subject, body, err := d.templates.Render(template, vars)
	if err != nil {
		return err
	}

	err = d.mailer.Send(ctx, Message{To: to, Subject: subject, Body: body})
	if err != nil {
		d.opts.Metrics.Email(template, metrics.ResultError)
		zap.S().Errorw("email send failed", "template", template, "error", err)
		return err
	}
	d.opts.Metrics.Email(template, metrics.ResultOK)
	return nil
}
