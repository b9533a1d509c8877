package core

import (
	"errors"
	"fmt"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/utils"
	"gorm.io/gorm"
)

// Helpers for the payroll ledger the core reads and terminates. The
// ledger is owned upstream; the core never creates entries.

func stampTimecardEntry(tx *gorm.DB, entryID, sessionID string) error {
	result := tx.Model(&model.TimecardEntry{}).
		Where("id = ? AND clock_out_time IS NULL", entryID).
		Update("overtime_session_id", sessionID)
	if result.Error != nil {
		return fmt.Errorf("failed to stamp timecard entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("open timecard entry", entryID)
	}
	return nil
}

// closeTimecardEntry writes the clock-out and totals. Guarded on the
// entry still being open so a racing close is a no-op reported as
// ErrRecordNotFound-like absence.
func closeTimecardEntry(tx *gorm.DB, entry *model.TimecardEntry, endTime time.Time, status string) error {
	total := utils.HoursBetween(entry.ClockInTime, endTime)
	result := tx.Model(&model.TimecardEntry{}).
		Where("id = ? AND clock_out_time IS NULL", entry.ID).
		Updates(map[string]interface{}{
			"clock_out_time": endTime,
			"total_hours":    total,
			"status":         status,
			"updated_at":     endTime,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close timecard entry %s: %w", entry.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("open timecard entry", entry.ID)
	}
	return nil
}

func loadTimecardEntry(tx *gorm.DB, entryID string) (*model.TimecardEntry, error) {
	var entry model.TimecardEntry
	err := tx.Where("id = ?", entryID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("timecard entry", entryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timecard entry: %w", err)
	}
	return &entry, nil
}

// findOpenTimecardEntry locates the worker's most recent entry with no
// clock-out, which is what the auto clock-out terminates.
func findOpenTimecardEntry(tx *gorm.DB, organizationID, userID string) (*model.TimecardEntry, error) {
	var entry model.TimecardEntry
	err := tx.
		Where("organization_id = ? AND user_id = ? AND clock_out_time IS NULL", organizationID, userID).
		Order("clock_in_time DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("open timecard entry for user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open timecard entry: %w", err)
	}
	return &entry, nil
}
