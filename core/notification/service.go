package notification

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/AcaDesk/acadesk-server/core"
)

var (
	// errors
	ErrNotFound = errors.New("message not found")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		GetMessage(ctx context.Context, orgID, id string) (Message, error)
		FilterMessages(ctx context.Context, orgID string, filter QueryFilter, ordering []core.DBOrdering) ([]Message, error)
		UpdateMessage(ctx context.Context, m Message) (Message, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, log: log}
}

// Queue logs an outbound message and hands email ones to the email service.
// Delivery is fire-and-forget: callers never block on it, and a provider
// failure later only flips the log row, not this call.
func (svc *Service) Queue(ctx context.Context, actor core.Actor, nm NewMessage) (Message, error) {
	if !actor.Valid() {
		return Message{}, core.ErrMissingActor
	}
	now := time.Now().UTC()
	m := Message{
		OrgID:     actor.OrgID,
		StudentID: nm.StudentID,
		Channel:   nm.Channel,
		Recipient: nm.Recipient,
		Subject:   nm.Subject,
		Body:      nm.Body,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m, err := svc.repo.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, err
	}

	if m.Channel == ChannelEmail {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Address: m.Recipient}},
			Subject: m.Subject,
			BodyStr: m.Body,
		})
	}
	// SMS goes through a provider webhook consumer that calls MarkSent/MarkFailed.

	return m, nil
}

func (svc *Service) Get(ctx context.Context, actor core.Actor, id string) (Message, error) {
	if !actor.Valid() {
		return Message{}, core.ErrMissingActor
	}
	return svc.repo.GetMessage(ctx, actor.OrgID, id)
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter, ordering ...core.DBOrdering) ([]Message, error) {
	if !actor.Valid() {
		return nil, core.ErrMissingActor
	}
	return svc.repo.FilterMessages(ctx, actor.OrgID, filter, ordering)
}

// MarkSent flips a queued message to sent.
func (svc *Service) MarkSent(ctx context.Context, actor core.Actor, id string) (Message, error) {
	return svc.setStatus(ctx, actor, id, StatusSent)
}

// MarkFailed flips a queued message to failed.
func (svc *Service) MarkFailed(ctx context.Context, actor core.Actor, id string) (Message, error) {
	return svc.setStatus(ctx, actor, id, StatusFailed)
}

func (svc *Service) setStatus(ctx context.Context, actor core.Actor, id, status string) (Message, error) {
	if !actor.Valid() {
		return Message{}, core.ErrMissingActor
	}
	m, err := svc.repo.GetMessage(ctx, actor.OrgID, id)
	if err != nil {
		return Message{}, err
	}
	now := time.Now().UTC()
	m.Status = status
	m.UpdatedAt = now
	if status == StatusSent {
		m.SentAt = &now
	}
	return svc.repo.UpdateMessage(ctx, m)
}
