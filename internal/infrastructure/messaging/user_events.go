package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/oksasatya/user-account-service/internal/application"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

type userPayload struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	BirthDate string    `json:"birth_date"`
	Phone     *string   `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type userMessage struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	User       userPayload `json:"user"`
}

// UserEventPublisher forwards committed user changes to the message broker.
type UserEventPublisher struct {
	Pub JSONPublisher
}

func NewUserEventPublisher(pub JSONPublisher) *UserEventPublisher {
	return &UserEventPublisher{Pub: pub}
}

func (p *UserEventPublisher) OnUserEvent(ctx context.Context, ev application.UserEvent) error {
	msg := userMessage{
		Type:       string(ev.Type),
		OccurredAt: ev.OccurredAt,
		User: userPayload{
			ID:        ev.User.ID,
			Name:      ev.User.Name,
			Email:     ev.User.Email,
			BirthDate: ev.User.BirthDate.Format(time.DateOnly),
			Phone:     ev.User.Phone,
			Active:    ev.User.Active,
			CreatedAt: ev.User.CreatedAt,
		},
	}
	if err := p.Pub.PublishJSON(ctx, msg.Type, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Type, err)
	}
	return nil
}

var _ application.UserObserver = (*UserEventPublisher)(nil)
