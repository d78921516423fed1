package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/notification"
)

type messageRow struct {
	ID        string      `db:"id"`
	OrgID     string      `db:"org_id"`
	StudentID null.String `db:"student_id"`
	Channel   string      `db:"channel"`
	Recipient string      `db:"recipient"`
	Subject   null.String `db:"subject"`
	Body      string      `db:"body"`
	Status    string      `db:"status"`
	SentAt    null.Time   `db:"sent_at"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r messageRow) toMessage() notification.Message {
	return notification.Message{
		ID:        r.ID,
		OrgID:     r.OrgID,
		StudentID: r.StudentID.String,
		Channel:   r.Channel,
		Recipient: r.Recipient,
		Subject:   r.Subject.String,
		Body:      r.Body,
		Status:    r.Status,
		SentAt:    r.SentAt.Ptr(),
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func messageRowFrom(m notification.Message) messageRow {
	return messageRow{
		ID:        m.ID,
		OrgID:     m.OrgID,
		StudentID: null.NewString(m.StudentID, m.StudentID != ""),
		Channel:   m.Channel,
		Recipient: m.Recipient,
		Subject:   null.NewString(m.Subject, m.Subject != ""),
		Body:      m.Body,
		Status:    m.Status,
		SentAt:    null.TimeFromPtr(m.SentAt),
		CreatedAt: null.NewTime(m.CreatedAt.UTC(), !m.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(m.UpdatedAt.UTC(), !m.UpdatedAt.IsZero()),
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return notification.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo notificationRepository) CreateMessage(ctx context.Context, m notification.Message) (notification.Message, error) {
	m.ID = uuid.New().String()
	row := messageRowFrom(m)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO message (id, org_id, student_id, channel, recipient, subject, body, status, sent_at, created_at, updated_at)
		VALUES (:id, :org_id, :student_id, :channel, :recipient, :subject, :body, :status, :sent_at, :created_at, :updated_at)`,
		row)
	if err != nil {
		return notification.Message{}, errors.Wrap(err, "inserting message")
	}
	return m, nil
}

func (repo notificationRepository) GetMessage(ctx context.Context, orgID, id string) (notification.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return notification.Message{}, notification.ErrNotFound
	}
	var row messageRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM message WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return notification.Message{}, repo.trapNoRowsErr(err, "finding message")
	}
	return row.toMessage(), nil
}

func (repo notificationRepository) FilterMessages(ctx context.Context, orgID string, filter notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Message, error) {
	q := `SELECT * FROM message WHERE org_id = $1`
	args := []interface{}{orgID}

	if filter.StudentID != "" {
		q += ` AND student_id = ` + placeholderAt(len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.Channel != "" {
		q += ` AND channel = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Channel)
	}
	if filter.Status != "" {
		q += ` AND status = ` + placeholderAt(len(args)+1)
		args = append(args, filter.Status)
	}
	q += orderClause(ordering)

	var rows []messageRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	messages := make([]notification.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, r.toMessage())
	}
	return messages, nil
}

func (repo notificationRepository) UpdateMessage(ctx context.Context, m notification.Message) (notification.Message, error) {
	row := messageRowFrom(m)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE message SET status = :status, sent_at = :sent_at, updated_at = :updated_at
		WHERE org_id = :org_id AND id = :id`,
		row)
	if err != nil {
		return notification.Message{}, errors.Wrap(err, "updating message")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Message{}, notification.ErrNotFound
	}
	return m, nil
}
