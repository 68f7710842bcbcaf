package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store provides access to persisted users, characters and maps.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Character{}, &GameMap{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an already opened gorm handle. Tests use this with an
// in-memory database.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&User{}, &Character{}, &GameMap{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateUser saves a new account. Duplicate usernames or emails surface
// as the driver's unique-constraint error.
func (s *Store) CreateUser(user *User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByIdentifier looks an account up by username or email.
func (s *Store) FindUserByIdentifier(identifier string) (*User, error) {
	var user User
	err := s.db.First(&user, "username = ? OR email = ?", identifier, identifier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UserExists reports whether an account with the username or email exists.
func (s *Store) UserExists(username, email string) (bool, error) {
	var count int64
	err := s.db.Model(&User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// CreateCharacter saves a new character sheet.
func (s *Store) CreateCharacter(character *Character) error {
	if err := s.db.Create(character).Error; err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// FindCharacter retrieves a character sheet by id.
func (s *Store) FindCharacter(id string) (*Character, error) {
	var character Character
	if err := s.db.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find character: %w", err)
	}
	return &character, nil
}

// ListCharacters returns the characters of a campaign, oldest first.
func (s *Store) ListCharacters(campaignID string) ([]*Character, error) {
	var characters []*Character
	err := s.db.Where("campaign_id = ?", campaignID).
		Order("created_at").
		Find(&characters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// UpdateCharacter overwrites the mutable fields of a character sheet.
func (s *Store) UpdateCharacter(character *Character) error {
	result := s.db.Model(&Character{}).
		Where("id = ?", character.ID).
		Select("name", "health", "mana", "image_url").
		Updates(character)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMap saves an uploaded map.
func (s *Store) CreateMap(m *GameMap) error {
	if err := s.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to create map: %w", err)
	}
	return nil
}

// FindMap retrieves a map with its token layout.
func (s *Store) FindMap(id string) (*GameMap, error) {
	var m GameMap
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find map: %w", err)
	}
	return &m, nil
}

// ListMaps returns the maps of a campaign, newest first.
func (s *Store) ListMaps(campaignID string) ([]*GameMap, error) {
	var maps []*GameMap
	err := s.db.Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Find(&maps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	return maps, nil
}

// SaveMapTokens replaces a map's token layout.
func (s *Store) SaveMapTokens(id string, tokens []Token) (*GameMap, error) {
	m, err := s.FindMap(id)
	if err != nil {
		return nil, err
	}
	m.Tokens = tokens
	if err := s.db.Save(m).Error; err != nil {
		return nil, fmt.Errorf("failed to save map tokens: %w", err)
	}
	return m, nil
}
