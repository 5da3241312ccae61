package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/database/testutil"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
)

func TestNotificationServiceCreateAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := createTestUser(t, db, "alice@example.com", "ops")

	svc, err := NewNotificationService(db, realtime.NewHub())
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Create(ctx, CreateNotificationInput{
		UserID:   user.ID,
		Type:     "booking.confirmed",
		Title:    "Booking confirmed",
		Message:  "Casa Azul is booked for June 10-14",
		Severity: "info",
		Metadata: map[string]any{"booking_id": "bk-1"},
	})
	require.NoError(t, err)
	require.Equal(t, "booking.confirmed", dto.Type)
	require.False(t, dto.IsRead)

	items, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, dto.ID, items[0].ID)
	require.Equal(t, "bk-1", items[0].Metadata["booking_id"])
}

func TestNotificationServiceMarkRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := createTestUser(t, db, "bob@example.com", "customer")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  user.ID,
		Type:    "invoice.sent",
		Title:   "Invoice issued",
		Message: "Invoice INV-202406-0001 is due",
	})
	require.NoError(t, err)

	read, err := svc.MarkRead(ctx, user.ID, dto.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	// A different user cannot read someone else's notification.
	other := createTestUser(t, db, "mallory@example.com", "customer")
	_, err = svc.MarkRead(ctx, other.ID, dto.ID)
	require.Error(t, err)
}

func TestNotificationServiceUnreadCountAndMarkAll(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := createTestUser(t, db, "carol@example.com", "ops")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateNotificationInput{
			UserID:  user.ID,
			Type:    "system",
			Title:   "Heads up",
			Message: "Something happened",
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	require.NoError(t, svc.MarkAllRead(ctx, user.ID))

	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	unread, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Empty(t, unread)
}

func TestNotificationServiceCleanupRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := createTestUser(t, db, "dave@example.com", "ops")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  user.ID,
		Type:    "system",
		Title:   "Old news",
		Message: "Read long ago",
	})
	require.NoError(t, err)
	_, err = svc.MarkRead(ctx, user.ID, dto.ID)
	require.NoError(t, err)

	// Age the read timestamp beyond the retention window.
	old := time.Now().AddDate(0, 0, -60)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", dto.ID).
		Update("read_at", old).Error)

	removed, err := svc.CleanupRead(ctx, 30)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = svc.CleanupRead(ctx, 0)
	require.Error(t, err)
}
