package services

import (
	"testing"
	"time"

	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.db, f.log)
	student := f.student(t, "Student")
	other := f.student(t, "Other")

	notify := func(userID uint, category model.NotificationCategory, title string) *model.UserNotification {
		n, err := svc.CreateNotification(f.ctx, CreateNotificationRequest{
			UserID:   userID,
			Type:     model.NotificationTypeInfo,
			Category: category,
			Title:    title,
			Message:  title,
			Metadata: &model.NotificationMetadata{},
		})
		require.NoError(t, err)
		return n
	}

	first := notify(student.ID, model.NotificationCategoryShortlist, "first")
	notify(student.ID, model.NotificationCategoryAdmission, "second")
	notify(other.ID, model.NotificationCategoryAdmission, "someone else")

	list, total, err := svc.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)

	list, total, err = svc.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID, Category: "admission"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "second", list[0].Title)

	list, _, err = svc.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Title)

	require.NoError(t, svc.MarkAsRead(f.ctx, first.ID, student.ID))
	assert.ErrorIs(t, svc.MarkAsRead(f.ctx, first.ID, other.ID), ErrNotFound)

	unread, err := svc.GetUnreadCount(f.ctx, student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	list, total, err = svc.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID, UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "second", list[0].Title)

	marked, err := svc.MarkAllAsRead(f.ctx, student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)

	unread, err = svc.GetUnreadCount(f.ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestCleanupOldNotifications(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.db, f.log)
	student := f.student(t, "Student")

	old := time.Now().Add(-60 * 24 * time.Hour)
	rows := []model.UserNotification{
		{UserID: student.ID, Type: model.NotificationTypeInfo, Category: model.NotificationCategoryGeneral, Title: "old read", Read: true, CreatedAt: old},
		{UserID: student.ID, Type: model.NotificationTypeInfo, Category: model.NotificationCategoryGeneral, Title: "old unread", CreatedAt: old},
		{UserID: student.ID, Type: model.NotificationTypeInfo, Category: model.NotificationCategoryGeneral, Title: "new read", Read: true},
	}
	require.NoError(t, f.db.Create(&rows).Error)

	removed, err := svc.CleanupOldNotifications(f.ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, total, err := svc.GetNotificationsByUser(f.ctx, ListNotificationsOptions{UserID: student.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
