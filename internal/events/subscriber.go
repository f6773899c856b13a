package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// PermanentError marks a handler failure that retrying cannot fix. The
// message is acked and dropped.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so the router acks the message instead of retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RoleChangedHandler reacts to one identity role change
type RoleChangedHandler func(ctx context.Context, event RoleChangedEvent) error

// Router dispatches consumed topics to handlers
type Router struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     *slog.Logger
}

func NewRouter(bus *Bus, logger *slog.Logger) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, bus.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          bus.logger,
		}.Middleware,
	)

	return &Router{
		router:     router,
		subscriber: bus.Subscriber,
		logger:     logger,
	}, nil
}

// OnRoleChanged registers the consumer of identity.role_changed
func (r *Router) OnRoleChanged(handle RoleChangedHandler) {
	r.router.AddNoPublisherHandler(
		"role_sync",
		TopicRoleChanged,
		r.subscriber,
		NewRoleChangedHandlerFunc(handle, r.logger),
	)
}

// Run blocks until ctx is cancelled or Close is called
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) Close() error {
	return r.router.Close()
}

// NewRoleChangedHandlerFunc decodes role change messages. Payloads may be
// enveloped or bare. Malformed payloads and permanent failures are acked.
func NewRoleChangedHandlerFunc(handle RoleChangedHandler, logger *slog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		event, err := decodeRoleChanged(msg.Payload)
		if err != nil {
			logger.Warn("Dropping malformed role change", "message_id", msg.UUID, "error", err)
			return nil
		}

		err = handle(msg.Context(), event)

		var permanent *PermanentError
		if errors.As(err, &permanent) {
			logger.Warn("Role change rejected",
				"message_id", msg.UUID,
				"user_id", event.UserID,
				"role", event.Role,
				"error", permanent.Err)
			return nil
		}
		if err != nil {
			logger.Error("Role change failed", "message_id", msg.UUID, "user_id", event.UserID, "error", err)
			return err
		}

		logger.Info("Role change applied", "user_id", event.UserID, "role", event.Role, "enabled", event.Enabled)
		return nil
	}
}

func decodeRoleChanged(payload []byte) (RoleChangedEvent, error) {
	var event RoleChangedEvent

	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return event, fmt.Errorf("invalid json: %w", err)
	}

	data := []byte(raw.Data)
	if len(data) == 0 {
		data = payload
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("invalid role change payload: %w", err)
	}

	if event.UserID == "" || event.Role == "" {
		return event, errors.New("user_id and role are required")
	}

	return event, nil
}
