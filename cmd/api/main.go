package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendafacil/agenda-api/internal/config"
	dbpkg "github.com/agendafacil/agenda-api/internal/db"
	"github.com/agendafacil/agenda-api/internal/realtime"
	"github.com/agendafacil/agenda-api/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	bus := realtime.NewBus()

	listener := realtime.NewListener(cfg.DBUrl)
	listener.Start(context.Background())
	defer listener.Stop()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, bus, listener)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
