package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mlegall/tabletop-sync/internal/middleware"
	"github.com/mlegall/tabletop-sync/internal/store"
)

var allowedMapExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadMap accepts a multipart map image upload (game master only) and
// persists the map record. The file lands in uploadDir under a generated
// name and is served back under /uploads/.
func UploadMap(db *store.Store, uploadDir string, maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		file, err := c.FormFile("map")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Map file is required"})
			return
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedMapExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image format"})
			return
		}

		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			log.Printf("Failed to create upload directory: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store map"})
			return
		}

		filename := uuid.New().String() + ext
		dest := filepath.Join(uploadDir, filename)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			log.Printf("Failed to save upload: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store map"})
			return
		}

		name := c.PostForm("name")
		if name == "" {
			name = file.Filename
		}

		m := &store.GameMap{
			ID:         uuid.New().String(),
			Name:       name,
			ImagePath:  fmt.Sprintf("/uploads/%s", filename),
			CampaignID: c.DefaultPostForm("campaignId", "default"),
			CreatedBy:  actor.ID,
		}
		if err := db.CreateMap(m); err != nil {
			log.Printf("Failed to create map: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store map"})
			return
		}

		log.Printf("Map uploaded: %s (%s) by user %s", m.Name, m.ID, actor.ID)
		c.JSON(http.StatusCreated, m)
	}
}

// ListMaps returns the maps of a campaign (public).
func ListMaps(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaignID := c.DefaultQuery("campaignId", "default")

		maps, err := db.ListMaps(campaignID)
		if err != nil {
			log.Printf("Failed to list maps: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list maps"})
			return
		}
		c.JSON(http.StatusOK, maps)
	}
}

// GetMap returns one map with its token layout (public).
func GetMap(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := db.FindMap(c.Param("mapId"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
				return
			}
			log.Printf("Failed to find map: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch map"})
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

// SaveMapState stores a map's token layout (game master only). The relay
// never persists token positions; this endpoint is how a session's final
// layout is kept between games.
func SaveMapState(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Tokens []store.Token `json:"tokens" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		m, err := db.SaveMapTokens(c.Param("mapId"), req.Tokens)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
				return
			}
			log.Printf("Failed to save map state: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save map state"})
			return
		}

		c.JSON(http.StatusOK, m)
	}
}
