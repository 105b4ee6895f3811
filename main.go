package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/jbony2888/resume-jd-analyzer/cmd"
)

func main() {
	// Best-effort: a missing .env file is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
