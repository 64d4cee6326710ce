package main

import (
	"log"

	"github.com/nfrund/relay/internal/server"
)

func main() {
	// Create a new server instance.
	s, err := server.New()
	if err != nil {
		log.Fatalf("Error creating server: %v", err)
	}

	// Register all application routes.
	s.RegisterRoutes()

	// Start the server.
	s.Start()
}
