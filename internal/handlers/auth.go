package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/models"
	"github.com/mlegall/tabletop-sync/internal/store"
)

const bcryptCost = 12

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=64"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	GameMaster bool   `json:"gameMaster"`
}

// LoginRequest is the request body for logging in. Identifier accepts a
// username or an email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResponse carries the session token and the public user record.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

// Register handles account creation and returns a session token.
func Register(users *store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		exists, err := users.UserExists(req.Username, req.Email)
		if err != nil {
			log.Printf("Failed to check existing user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			log.Printf("Failed to hash password: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}

		role := models.RolePlayer
		if req.GameMaster {
			role = models.RoleGameMaster
		}

		user := &store.User{
			ID:           uuid.New().String(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := users.CreateUser(user); err != nil {
			log.Printf("Failed to create user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}

		token, err := middleware.IssueToken(jwtSecret, user.ID, user.Username, user.Role)
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		log.Printf("User registered: %s (%s)", user.Username, user.Role)
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// Login verifies the credentials and returns a session token.
func Login(users *store.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := users.FindUserByIdentifier(req.Identifier)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Printf("Failed to look up user: %v", err)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := middleware.IssueToken(jwtSecret, user.ID, user.Username, user.Role)
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}
