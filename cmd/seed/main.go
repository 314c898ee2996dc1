package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"ai-chat-be/internal/model"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "demo@example.com", "demo account email")
	password := flag.String("password", "demo-password", "demo account password (min 8 characters)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if len(*password) < 8 {
		log.Fatal("Error: password must be at least 8 characters")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo account...")

	user, err := seedUser(db, strings.ToLower(strings.TrimSpace(*email)), *password)
	if err != nil {
		log.Fatal("Error: ", err)
	}

	if err := seedWelcomeChat(db, user); err != nil {
		log.Fatal("Error: ", err)
	}

	log.Println("Demo seeding completed!")
}

func seedUser(db *gorm.DB, email, password string) (*model.User, error) {
	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("User '%s' already exists, skipping...", email)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	log.Printf("Created user: %s (%s)", user.Email, user.Id)
	return user, nil
}

func seedWelcomeChat(db *gorm.DB, user *model.User) error {
	var count int64
	if err := db.Model(&model.Chat{}).Where("user_id = ?", user.Id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("User '%s' already has %d chat(s), skipping...", user.Email, count)
		return nil
	}

	title := "Welcome"
	chat := &model.Chat{Id: uuid.New(), UserId: user.Id, Title: &title}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		greeting := &model.Message{
			ChatId:  chat.Id,
			UserId:  user.Id,
			Role:    "assistant",
			Content: "Hi! Ask me anything to get started.",
		}
		if err := tx.Create(greeting).Error; err != nil {
			return err
		}
		log.Printf("Created chat: %s (%s)", title, chat.Id)
		return nil
	})
}
