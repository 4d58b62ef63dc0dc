package main

import (
	"log"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/pkg/database"
)

// Prepares the MySQL store: connects, runs migrations and seeds a couple
// of demo chats when the tables are empty. Only useful with
// STORE_DRIVER=mysql.
func main() {
	cfg := environments.Load()

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM chats"); err != nil {
		log.Fatalf("Failed to count chats: %v", err)
	}

	if count > 0 {
		log.Printf("Database already has %d chats, skipping seed", count)
		return
	}

	demoChats := []struct {
		phone string
		name  string
	}{
		{"15551234567", "Demo Contact"},
		{"905551112233", "+905551112233"},
	}

	for _, chat := range demoChats {
		_, err := db.Exec(
			"INSERT INTO chats (phone, name, unread, last_message, last_ts) VALUES (?, ?, 0, '', 0)",
			chat.phone, chat.name,
		)
		if err != nil {
			log.Fatalf("Failed to seed chats: %v", err)
		}
	}

	log.Printf("Seeded %d demo chats", len(demoChats))
}
