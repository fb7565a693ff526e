package main

import (
	"log"

	"github.com/jonesrussell/seo-auditor/internal/bootstrap"
)

func main() {
	if err := bootstrap.Start(); err != nil {
		log.Fatalf("seo-auditor: %v", err)
	}
}
