// Command createadmin bootstraps an administrator account. Admin accounts
// cannot be created through the public registration flow and carry no
// tracking identifier.
package main

import (
	"flag"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"colistrack/internal/config"
	"colistrack/internal/db"
	"colistrack/internal/model"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	var existing model.User
	err = gormDB.Where("email = ?", *email).First(&existing).Error
	if err == nil {
		log.Fatalf("account %s already exists (role %s)", existing.Email, existing.Role)
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("check existing account: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 10)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := &model.User{
		ID:           uuid.New(),
		Email:        *email,
		PasswordHash: string(hash),
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         model.RoleAdmin,
	}
	if err := gormDB.Create(admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin account created: %s (%s)", admin.Email, admin.ID)
}
