package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/AcaDesk/acadesk-server/core"
	"github.com/AcaDesk/acadesk-server/core/notification"
)

type notificationRepository struct {
	db *messageTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateMessage(ctx context.Context, m notification.Message) (notification.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = uuid.New().String()
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *notificationRepository) GetMessage(ctx context.Context, orgID, id string) (notification.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok && m.OrgID == orgID {
		return *m, nil
	}
	return notification.Message{}, notification.ErrNotFound
}

func (repo *notificationRepository) FilterMessages(ctx context.Context, orgID string, filter notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var messages []notification.Message
	for _, m := range repo.db.table {
		if m.OrgID != orgID {
			continue
		}
		if filter.StudentID != "" && m.StudentID != filter.StudentID {
			continue
		}
		if filter.Channel != "" && m.Channel != filter.Channel {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		messages = append(messages, *m)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	return messages, nil
}

func (repo *notificationRepository) UpdateMessage(ctx context.Context, m notification.Message) (notification.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[m.ID]; ok && orig.OrgID == m.OrgID {
		repo.db.table[m.ID] = &m
		return m, nil
	}
	return notification.Message{}, notification.ErrNotFound
}
