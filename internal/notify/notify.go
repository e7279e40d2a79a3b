package notify

import (
	"log"
	"net/http"
	"time"

	"github.com/centravo/budget-backend/internal/config"
	pusher "github.com/pusher/pusher-http-go/v5"
)

// Channel and event names pushed after approval-engine transitions.
const (
	ChannelBudgetRequests = "budget-requests"
	ChannelRequisitions   = "requisitions"

	EventNewRequest      = "new-request"
	EventRequestUpdated  = "request-updated"
	EventRequestApproved = "request-approved"
	EventRequestRejected = "request-rejected"
)

// Notifier fires a named event at a channel. Implementations are
// best-effort: Emit never returns an error and must never block a state
// transition beyond its own internal timeout.
type Notifier interface {
	Emit(channel, event string, payload any)
}

// PusherNotifier delivers events through Pusher Channels.
type PusherNotifier struct {
	client pusher.Client
}

func NewPusherNotifier(cfg config.PusherConfig) *PusherNotifier {
	return &PusherNotifier{
		client: pusher.Client{
			AppID:   cfg.AppID,
			Key:     cfg.Key,
			Secret:  cfg.Secret,
			Cluster: cfg.Cluster,
			Secure:  true,
			HTTPClient: &http.Client{
				Timeout: 5 * time.Second,
			},
		},
	}
}

func (n *PusherNotifier) Emit(channel, event string, payload any) {
	start := time.Now()
	if err := n.client.Trigger(channel, event, payload); err != nil {
		log.Printf("[notify] push failed channel=%s event=%s err=%v", channel, event, err)
		return
	}
	log.Printf("[notify] pushed channel=%s event=%s duration=%dms",
		channel, event, time.Since(start).Milliseconds())
}

// LogNotifier is the fallback when Pusher credentials are absent; events
// only hit the server log.
type LogNotifier struct{}

func (LogNotifier) Emit(channel, event string, payload any) {
	log.Printf("[notify] (log only) channel=%s event=%s", channel, event)
}

// FromConfig picks the Pusher transport when credentials are configured,
// the log transport otherwise.
func FromConfig(cfg config.PusherConfig) Notifier {
	if cfg.AppID != "" && cfg.Key != "" && cfg.Secret != "" {
		return NewPusherNotifier(cfg)
	}
	return LogNotifier{}
}
