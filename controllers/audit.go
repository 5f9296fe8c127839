package controllers

import (
	"log"

	"gorm.io/gorm"

	"motormart/database"
)

// recordAudit appends an audit trail row for an admin mutation. Written
// inside the caller's transaction so the trail and the change commit
// together.
func recordAudit(tx *gorm.DB, userEmail, action, entityType string, entityID int64, oldValue, newValue string) error {
	entry := database.AuditLog{
		UserEmail:  userEmail,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if err := tx.Create(&entry).Error; err != nil {
		log.Printf("Audit log write failed: %v", err)
		return err
	}
	return nil
}
