package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freka11/schoolday/internal/config"
	"github.com/freka11/schoolday/internal/model"
)

func main() {
	// Load config
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all seeded accounts
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// Staff account on the admin mail domain so the role heuristic kicks in
	seedUser(db, model.User{
		ID:     uuid.New(),
		Name:   "Principal Skinner",
		Email:  "principal@admin.com",
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=principal",
	}, string(hashedPassword), password)

	// Students
	log.Println("🌱 Seeding 5 students...")
	for i := 1; i <= 5; i++ {
		seedUser(db, model.User{
			ID:     uuid.New(),
			Name:   fmt.Sprintf("Student Number %d", i),
			Email:  fmt.Sprintf("student%d@school.local", i),
			Avatar: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=student%d", i),
		}, string(hashedPassword), password)
	}

	seedContent(db)

	log.Println("🎉 Seeding completed!")
}

func seedUser(db *gorm.DB, user model.User, hashedPassword, plainPassword string) {
	var existing model.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return
	}

	user.Password = hashedPassword
	if err := db.Create(&user).Error; err != nil {
		log.Printf("❌ Failed to create user %s: %v", user.Email, err)
		return
	}
	log.Printf("✅ Created user: %s | Email: %s | Pass: %s", user.Name, user.Email, plainPassword)
}

func seedContent(db *gorm.DB) {
	var admin model.User
	if err := db.Where("email = ?", "principal@admin.com").First(&admin).Error; err != nil {
		return
	}

	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count > 0 {
		return
	}

	today := model.Today()

	question := model.Question{
		ID:            uuid.New(),
		Text:          "What is one thing you learned today that surprised you?",
		Status:        model.ContentStatusPublished,
		CreatedByID:   admin.ID,
		CreatedByName: admin.Name,
		PublishDate:   today,
	}
	if err := db.Create(&question).Error; err != nil {
		log.Printf("❌ Failed to create question: %v", err)
		return
	}

	thought := model.Thought{
		ID:            uuid.New(),
		Text:          "Small steps every day add up to big results.",
		Status:        model.ContentStatusPublished,
		CreatedByID:   admin.ID,
		CreatedByName: admin.Name,
		PublishDate:   today,
	}
	if err := db.Create(&thought).Error; err != nil {
		log.Printf("❌ Failed to create thought: %v", err)
		return
	}

	log.Println("✅ Created today's demo question and thought")
}
