package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is a development convenience; production runs on real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	Serve()
}
