// Package main StudyBuddy API Server
//
//	@title			StudyBuddy API
//	@version		1.0
//	@description	AI-powered study assistant: PDF upload, document-grounded chat and question paper analysis
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	_ "studybuddy/docs" // This imports the docs package to initialize swagger
	"studybuddy/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; settings fall back to the environment
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	log.Println("Starting StudyBuddy Server...")
	srv, err := server.NewServer()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
