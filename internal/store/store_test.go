package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mlegall/tabletop-sync/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	s, err := NewWithDB(db)
	if err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := setupTestStore(t)

	user := &User{
		ID:           uuid.New().String(),
		Username:     "aldara",
		Email:        "aldara@example.com",
		PasswordHash: "hashed",
		Role:         models.RoleGameMaster,
	}
	if err := s.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	exists, err := s.UserExists("aldara", "other@example.com")
	if err != nil || !exists {
		t.Errorf("UserExists() = (%v, %v), want (true, nil)", exists, err)
	}

	byName, err := s.FindUserByIdentifier("aldara")
	if err != nil {
		t.Fatalf("FindUserByIdentifier(username) error = %v", err)
	}
	if byName.ID != user.ID || byName.Role != models.RoleGameMaster {
		t.Errorf("got %+v", byName)
	}

	byEmail, err := s.FindUserByIdentifier("aldara@example.com")
	if err != nil {
		t.Fatalf("FindUserByIdentifier(email) error = %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("lookup by email returned %s, want %s", byEmail.ID, user.ID)
	}

	if _, err := s.FindUserByIdentifier("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindUserByIdentifier(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestCharacterLifecycle(t *testing.T) {
	s := setupTestStore(t)

	ch := &Character{
		ID:         uuid.New().String(),
		Name:       "Nym",
		Health:     24,
		Mana:       10,
		OwnerID:    "u1",
		CampaignID: "default",
	}
	if err := s.CreateCharacter(ch); err != nil {
		t.Fatalf("CreateCharacter() error = %v", err)
	}

	other := &Character{
		ID:         uuid.New().String(),
		Name:       "Goblin",
		CampaignID: "dungeon",
	}
	if err := s.CreateCharacter(other); err != nil {
		t.Fatalf("CreateCharacter() error = %v", err)
	}

	list, err := s.ListCharacters("default")
	if err != nil {
		t.Fatalf("ListCharacters() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "Nym" {
		t.Errorf("ListCharacters(default) = %v", list)
	}

	ch.Health = 12
	ch.Name = "Nym the Bold"
	if err := s.UpdateCharacter(ch); err != nil {
		t.Fatalf("UpdateCharacter() error = %v", err)
	}
	got, err := s.FindCharacter(ch.ID)
	if err != nil {
		t.Fatalf("FindCharacter() error = %v", err)
	}
	if got.Health != 12 || got.Name != "Nym the Bold" {
		t.Errorf("after update got %+v", got)
	}
	if got.OwnerID != "u1" {
		t.Errorf("OwnerID changed to %q", got.OwnerID)
	}

	missing := &Character{ID: uuid.New().String(), Name: "Ghost"}
	if err := s.UpdateCharacter(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCharacter(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMapTokens(t *testing.T) {
	s := setupTestStore(t)

	m := &GameMap{
		ID:         uuid.New().String(),
		Name:       "Crypt",
		ImagePath:  "uploads/crypt.png",
		CampaignID: "default",
		CreatedBy:  "u1",
	}
	if err := s.CreateMap(m); err != nil {
		t.Fatalf("CreateMap() error = %v", err)
	}

	tokens := []Token{
		{ID: "tok-1", Label: "Nym", X: 12.5, Y: 40, OwnerID: "u2", Type: "player"},
		{ID: "tok-2", Label: "Goblin", X: 80, Y: 55, Type: "enemy"},
	}
	saved, err := s.SaveMapTokens(m.ID, tokens)
	if err != nil {
		t.Fatalf("SaveMapTokens() error = %v", err)
	}
	if len(saved.Tokens) != 2 {
		t.Fatalf("saved %d tokens, want 2", len(saved.Tokens))
	}

	got, err := s.FindMap(m.ID)
	if err != nil {
		t.Fatalf("FindMap() error = %v", err)
	}
	if len(got.Tokens) != 2 || got.Tokens[0].Label != "Nym" || got.Tokens[1].Type != "enemy" {
		t.Errorf("tokens round-trip failed: %+v", got.Tokens)
	}

	if _, err := s.SaveMapTokens("missing", tokens); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveMapTokens(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListMapsNewestFirst(t *testing.T) {
	s := setupTestStore(t)

	for _, name := range []string{"First", "Second"} {
		if err := s.CreateMap(&GameMap{
			ID:         uuid.New().String(),
			Name:       name,
			ImagePath:  "uploads/" + name,
			CampaignID: "default",
		}); err != nil {
			t.Fatalf("CreateMap(%s) error = %v", name, err)
		}
	}

	maps, err := s.ListMaps("default")
	if err != nil {
		t.Fatalf("ListMaps() error = %v", err)
	}
	if len(maps) != 2 {
		t.Fatalf("got %d maps, want 2", len(maps))
	}
}
