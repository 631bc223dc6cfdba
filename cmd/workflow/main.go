package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assinei/assinei-backend/internal/database"
	"github.com/assinei/assinei-backend/internal/document/handler"
	"github.com/assinei/assinei-backend/internal/document/repository"
	"github.com/assinei/assinei-backend/internal/document/service"
	"github.com/assinei/assinei-backend/internal/models"
)

// Standalone signing workflow service. Identity comes from the X-User-Id and
// X-User-Role headers, so it must only run behind a gateway that sets them.
func main() {
	port := os.Getenv("WORKFLOW_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	var repo repository.Repository
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed repo", err)
			repo = repository.NewMemoryRepo()
		} else {
			db := client.Database(os.Getenv("MONGODB_DATABASE"))
			repo = repository.NewMongoRepo(db.Collection("documents"), db.Collection("signatures"))
		}
	} else {
		repo = repository.NewMemoryRepo()
	}

	eng := service.NewEngine(repo, nil, nil, nil)

	api := r.Group("/api", func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = models.RoleUser
		}
		c.Set("claims", map[string]interface{}{"sub": userID, "role": role})
		c.Next()
	})
	handler.New(eng, nil).RegisterDocumentRoutes(api)

	log.Printf("signing workflow service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
