package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lkhn"

// Metrics holds the application counters. A nil *Metrics is safe to use and records nothing.
type Metrics struct {
	FeedbackSubmissions *prometheus.CounterVec
	WaitlistSignups     *prometheus.CounterVec
	EmailsSent          *prometheus.CounterVec
	PresenceUpdates     *prometheus.CounterVec
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeedbackSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submissions_total",
			Help:      "Feedback submissions by result.",
		}, []string{"result"}),
		WaitlistSignups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waitlist_signups_total",
			Help:      "Waitlist signups by result.",
		}, []string{"result"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Notification emails by template and result.",
		}, []string{"template", "result"}),
		PresenceUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_updates_total",
			Help:      "Presence upserts by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.FeedbackSubmissions, m.WaitlistSignups, m.EmailsSent, m.PresenceUpdates)
	return m
}

const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

func (m *Metrics) Feedback(result string) {
	if m != nil {
		m.FeedbackSubmissions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Waitlist(result string) {
	if m != nil {
		m.WaitlistSignups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Email(template, result string) {
	if m != nil {
		m.EmailsSent.WithLabelValues(template, result).Inc()
	}
}

func (m *Metrics) Presence(status string) {
	if m != nil {
		m.PresenceUpdates.WithLabelValues(status).Inc()
	}
}
