package service

import (
	"testing"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newNotificationTestService(db *gorm.DB) NotificationService {
	// No hub: rows are persisted without a realtime push
	return NewNotificationService(repository.NewNotificationRepository(db), nil)
}

func TestNotificationCreate_Persists(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	svc := newNotificationTestService(db)

	relatedID := uint64(42)
	relatedType := "listing"
	result, err := svc.Create(user.ID, domain.NotificationTypeListingSold, "Sold!", &relatedID, &relatedType)

	assert.NoError(t, err)
	assert.Equal(t, domain.NotificationTypeListingSold, result.Type)
	assert.Equal(t, "Sold!", result.Message)
	assert.Equal(t, uint64(42), *result.RelatedID)
	assert.Equal(t, "listing", *result.RelatedType)
	assert.False(t, result.IsRead)

	unread, err := svc.UnreadCount(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotificationCreate_RejectsUnknownType(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	svc := newNotificationTestService(db)

	result, err := svc.Create(user.ID, "SOMETHING_ELSE", "hi", nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Nil(t, result)

	var count int64
	db.Model(&domain.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestNotificationCreate_RejectsEmptyMessage(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	svc := newNotificationTestService(db)

	result, err := svc.Create(user.ID, domain.NotificationTypeSystemNotice, "", nil, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNotificationGetList_NewestFirstWithUnreadMeta(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	svc := newNotificationTestService(db)

	first, err := svc.Create(user.ID, domain.NotificationTypeSystemNotice, "one", nil, nil)
	assert.NoError(t, err)
	_, err = svc.Create(user.ID, domain.NotificationTypeSystemNotice, "two", nil, nil)
	assert.NoError(t, err)
	_, err = svc.Create(user.ID, domain.NotificationTypeSystemNotice, "three", nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.MarkAsRead(user.ID, first.ID))

	list, meta, err := svc.GetList(user.ID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, int64(2), meta.Unread)

	assert.Equal(t, "three", list[0].Message)
	assert.Equal(t, "two", list[1].Message)
	assert.Equal(t, "one", list[2].Message)
	assert.True(t, list[2].IsRead)
}

func TestNotificationMarkAsRead_Scoping(t *testing.T) {
	db := setupServiceTestDB(t)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	svc := newNotificationTestService(db)

	created, err := svc.Create(owner.ID, domain.NotificationTypeNewMessage, "msg", nil, nil)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.MarkAsRead(other.ID, created.ID), common.ErrForbidden)
	assert.ErrorIs(t, svc.MarkAsRead(owner.ID, 9999), common.ErrNotFound)

	assert.NoError(t, svc.MarkAsRead(owner.ID, created.ID))
	// Marking an already read notification succeeds without effect
	assert.NoError(t, svc.MarkAsRead(owner.ID, created.ID))

	unread, err := svc.UnreadCount(owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestNotificationMarkAllAsRead_Idempotent(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	bystander := createTestUser(t, db, "bystander")
	svc := newNotificationTestService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, domain.NotificationTypeSystemNotice, "n", nil, nil)
		assert.NoError(t, err)
	}
	_, err := svc.Create(bystander.ID, domain.NotificationTypeSystemNotice, "n", nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.MarkAllAsRead(user.ID))

	unread, err := svc.UnreadCount(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// Other users' notifications are untouched
	unread, err = svc.UnreadCount(bystander.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	assert.NoError(t, svc.MarkAllAsRead(user.ID))
}

func TestNotificationDelete_Scoping(t *testing.T) {
	db := setupServiceTestDB(t)
	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	svc := newNotificationTestService(db)

	created, err := svc.Create(owner.ID, domain.NotificationTypeNewMessage, "msg", nil, nil)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(other.ID, created.ID), common.ErrForbidden)
	assert.NoError(t, svc.Delete(owner.ID, created.ID))
	assert.ErrorIs(t, svc.Delete(owner.ID, created.ID), common.ErrNotFound)
}

func TestNotificationClearAll(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "alerted")
	bystander := createTestUser(t, db, "bystander")
	svc := newNotificationTestService(db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(user.ID, domain.NotificationTypeSystemNotice, "n", nil, nil)
		assert.NoError(t, err)
	}
	_, err := svc.Create(bystander.ID, domain.NotificationTypeSystemNotice, "keep", nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, svc.ClearAll(user.ID))

	list, meta, err := svc.GetList(user.ID, 1, 20)
	assert.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), meta.Total)

	_, meta, err = svc.GetList(bystander.ID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
}
