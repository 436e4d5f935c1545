package main

import (
	"log"

	"go-techmart-analytics/internal/repository"
	"go-techmart-analytics/pkg/database"

	"github.com/joho/godotenv"
)

// Recomputes total_spent for every customer from their COMPLETED
// transactions. Run after bulk imports or manual ledger fixes, when the
// rollup may have drifted from the ledger.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	customerRepo := repository.NewCustomerRepo(db)

	// 3. Walk all customers and rewrite the rollup
	ids, err := customerRepo.FindAllIDs()
	if err != nil {
		log.Fatalf("Failed to list customers: %v", err)
	}

	fixed := 0
	for _, id := range ids {
		total, err := customerRepo.RecomputeTotal(db, id)
		if err != nil {
			log.Fatalf("Failed to recompute total for %s: %v", id, err)
		}
		fixed++
		log.Printf("customer %s total_spent=%.2f", id, total)
	}

	log.Printf("Success! Recomputed totals for %d customers", fixed)
}
