package main

import (
	"log"

	_ "todotrack/docs"
	"todotrack/internal/config"
	"todotrack/internal/server"
)

// @title           TodoTrack API
// @version         1.0
// @description     Personal task tracking API with tags, analytics and activity logging.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
