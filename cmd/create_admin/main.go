package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/domain"
	"stadtwache/internal/logger"
	"stadtwache/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Must(cfg.App.LogLevel, cfg.App.LogJSON)
	defer func() { _ = log.Sync() }()

	username := pflag.String("username", cfg.Auth.AdminUsername, "admin username")
	password := pflag.String("password", cfg.Auth.AdminPassword, "admin password")
	email := pflag.String("email", "", "admin email (defaults to <username>@stadtwache.de)")
	reset := pflag.Bool("reset-password", false, "overwrite the password of an existing admin")
	pflag.Parse()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	created, err := ensureAdmin(db, adminAccount{
		Username: *username,
		Password: *password,
		Email:    *email,
		Reset:    *reset,
	})
	if err != nil {
		log.Fatal("failed to create admin user", zap.Error(err))
	}

	switch {
	case created:
		fmt.Printf("Admin user %q created. Please change the password after first login!\n", *username)
	case *reset:
		fmt.Printf("Password of admin user %q reset.\n", *username)
	default:
		fmt.Printf("Admin user %q already exists.\n", *username)
	}
}

type adminAccount struct {
	Username string
	Password string
	Email    string
	Reset    bool
}

// ensureAdmin creates the admin account unless it exists. With Reset set the
// existing account gets the new password and is reactivated.
func ensureAdmin(db *gorm.DB, acct adminAccount) (bool, error) {
	if acct.Username == "" || acct.Password == "" {
		return false, errors.New("username and password are required")
	}
	hash, err := util.HashPassword(acct.Password)
	if err != nil {
		return false, err
	}

	var existing domain.User
	err = db.Where("username = ?", acct.Username).First(&existing).Error
	switch {
	case err == nil:
		if !acct.Reset {
			return false, nil
		}
		return false, db.Model(&existing).Updates(map[string]any{
			"hashed_password": hash,
			"is_active":       true,
		}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	email := acct.Email
	if email == "" {
		email = acct.Username + "@stadtwache.de"
	}
	fullName := "Systemadministrator"
	user := domain.User{
		Username:       acct.Username,
		Email:          email,
		HashedPassword: hash,
		FullName:       &fullName,
		IsActive:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
