// cmd/tools/quote-estimator/main.go
//
// Developer tool: prints the deterministic local quote for a request so
// pricing table changes can be sanity-checked without running the server.
//
// Usage:
//   go run ./cmd/tools/quote-estimator -industry cnc-machining -material aluminum -quantity 100 -complexity medium
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gendra-backend/internal/industry"
	"gendra-backend/internal/pricing"
)

func main() {
	industryID := flag.String("industry", "", "industry ID (see -list)")
	material := flag.String("material", "", "material ID")
	quantity := flag.Int("quantity", 1, "order quantity")
	complexity := flag.String("complexity", "medium", "low, medium, or high")
	list := flag.Bool("list", false, "list registered industries and exit")
	flag.Parse()

	if *list {
		for _, cfg := range industry.List() {
			fmt.Printf("%-22s base=%-8.0f %s\n", cfg.ID, cfg.BasePrice, cfg.Name)
		}
		return
	}

	if *industryID == "" {
		fmt.Fprintln(os.Stderr, "error: -industry is required (use -list to see options)")
		os.Exit(2)
	}

	result := pricing.Estimate(pricing.QuoteRequest{
		IndustryID: *industryID,
		Material:   *material,
		Quantity:   *quantity,
		Complexity: *complexity,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
