package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crewtime.app/crewtime/core"
	otcore "crewtime.app/crewtime/overtime/core"
	"crewtime.app/crewtime/overtime/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreNotifier persists every notification as an inbox row and pushes
// email best-effort on top. The row is the durable record; a push
// failure is logged, never returned.
type StoreNotifier struct {
	dm    *core.DatabaseManager
	email EmailSender
}

func NewStoreNotifier(dm *core.DatabaseManager, email EmailSender) *StoreNotifier {
	return &StoreNotifier{dm: dm, email: email}
}

func (n *StoreNotifier) Send(ctx context.Context, in otcore.NotificationInput) error {
	db, err := n.dm.GetDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	row := model.Notification{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		UserID:         in.UserID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		RelatedID:      in.RelatedID,
		RequiresReview: in.RequiresReview,
		CreatedAt:      time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if n.email != nil {
		n.pushEmail(ctx, db, &row)
	}
	return nil
}

func (n *StoreNotifier) pushEmail(ctx context.Context, db *gorm.DB, row *model.Notification) {
	var user model.OrgUser
	err := db.Where("id = ? AND organization_id = ?", row.UserID, row.OrganizationID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Email == "") {
		return
	}
	if err != nil {
		log.Printf("[WARN] email push skipped, user %s lookup failed: %v", row.UserID, err)
		return
	}

	if err := n.email.Send(ctx, user.Email, row.Title, row.Message); err != nil {
		log.Printf("[WARN] email push to %s failed: %v", user.Email, err)
	}
}

// ListForUser returns the user's inbox, newest first.
func ListForUser(ctx context.Context, db *gorm.DB, organizationID, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var rows []model.Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead stamps read_at once; re-reading is a no-op.
func MarkRead(ctx context.Context, db *gorm.DB, organizationID, userID, notificationID string) error {
	result := db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND organization_id = ? AND user_id = ? AND read_at IS NULL",
			notificationID, organizationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	return nil
}
