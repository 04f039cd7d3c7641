package models

import (
	"log"

	"github.com/mmdatafocus/clinic_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Invoice{}, &InvoiceLineItem{},
		&Asset{}, &Liability{},
		&BillingAdjustment{},
		&AuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := EnsureAuditLogImmutability(); err != nil {
		log.Fatal(err)
	}
}

// EnsureAuditLogImmutability installs BEFORE UPDATE / BEFORE DELETE triggers on
// audit_logs that SIGNAL SQLSTATE 45000. The application never updates or
// deletes audit rows; these triggers make the store reject anything that tries.
func EnsureAuditLogImmutability() error {
	db := config.GetDB()

	statements := []string{
		"DROP TRIGGER IF EXISTS audit_logs_block_update",
		`CREATE TRIGGER audit_logs_block_update
			BEFORE UPDATE ON audit_logs FOR EACH ROW
			SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'audit_logs is append-only'`,
		"DROP TRIGGER IF EXISTS audit_logs_block_delete",
		`CREATE TRIGGER audit_logs_block_delete
			BEFORE DELETE ON audit_logs FOR EACH ROW
			SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'audit_logs is append-only'`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
