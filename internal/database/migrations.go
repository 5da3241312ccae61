package database

import (
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/models"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/permissions"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/crypto"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/logger"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.Invoice{},
		&models.Expense{},
		&models.Document{},
		&models.Notification{},
		&models.Session{},
		&models.AuditLog{},
	)
}

// SeedData creates the initial administrator account when the user table is
// empty. The password comes from PMS_ADMIN_PASSWORD, falling back to a
// generated one that is logged exactly once.
func SeedData(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := strings.TrimSpace(os.Getenv("PMS_ADMIN_PASSWORD"))
	generated := false
	if password == "" {
		token, err := crypto.GenerateToken(18)
		if err != nil {
			return err
		}
		password = token
		generated = true
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:     "admin@mikaza-sukaza.local",
		Password:  hash,
		FirstName: "System",
		LastName:  "Administrator",
		Role:      string(permissions.RoleAdmin),
		IsActive:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if generated {
		logger.WithModule("database").Info("seeded initial admin account",
			zap.String("email", admin.Email),
			zap.String("password", password),
		)
	} else {
		logger.WithModule("database").Info("seeded initial admin account",
			zap.String("email", admin.Email),
		)
	}
	return nil
}
