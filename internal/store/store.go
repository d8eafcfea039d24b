package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// User is a known chat participant. Admin users may run !forceskip and
// !sethost even when the relay does not flag them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Name      string    `gorm:"uniqueIndex" json:"name"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one chat line seen in a lobby, kept for the web API.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	LobbyCode string    `gorm:"index" json:"lobby_code"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueSnapshot is the comma-joined rotation order for one lobby. It is
// what a restarted process replays as PreviousQueue.
type QueueSnapshot struct {
	LobbyCode string    `gorm:"primaryKey" json:"lobby_code"`
	Queue     string    `json:"queue"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	db *gorm.DB
}

func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Message{}, &QueueSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveMessage(lobbyCode, sender, text string) error {
	return s.db.Create(&Message{LobbyCode: lobbyCode, Sender: sender, Text: text}).Error
}

// ListMessages returns the most recent limit messages for a lobby, newest
// first.
func (s *Store) ListMessages(lobbyCode string, limit int) ([]Message, error) {
	var msgs []Message
	err := s.db.Where("lobby_code = ?", lobbyCode).
		Order("id desc").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (s *Store) UpsertUser(name string, admin bool) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"admin"}),
	}).Create(&User{Name: name, Admin: admin}).Error
}

// GetUser returns nil when the user is unknown.
func (s *Store) GetUser(name string) (*User, error) {
	var u User
	err := s.db.Where("name = ?", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AdminNames loads the configured admin set once at startup.
func (s *Store) AdminNames() (map[string]bool, error) {
	var users []User
	if err := s.db.Where("admin = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	admins := make(map[string]bool, len(users))
	for _, u := range users {
		admins[u.Name] = true
	}
	return admins, nil
}

func (s *Store) SaveQueue(lobbyCode, queue string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lobby_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"queue", "updated_at"}),
	}).Create(&QueueSnapshot{LobbyCode: lobbyCode, Queue: queue, UpdatedAt: time.Now()}).Error
}

// LoadQueue returns "" when no snapshot was ever saved for the lobby.
func (s *Store) LoadQueue(lobbyCode string) (string, error) {
	var snap QueueSnapshot
	err := s.db.Where("lobby_code = ?", lobbyCode).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return snap.Queue, nil
}
