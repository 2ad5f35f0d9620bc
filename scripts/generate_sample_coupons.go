//go:build ignore

package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type seedRecord struct {
	Code           string `yaml:"code"`
	DiscountType   string `yaml:"discount_type"`
	DiscountValue  string `yaml:"discount_value"`
	MinOrderAmount string `yaml:"min_order_amount,omitempty"`
	MaxUses        *int   `yaml:"max_uses,omitempty"`
	Active         *bool  `yaml:"active,omitempty"`
	ExpiresAt      string `yaml:"expires_at,omitempty"`
}

type seedFile struct {
	Coupons []seedRecord `yaml:"coupons"`
}

// Writes sample coupon seed files for local runs. Point COUPON_SEED_FILES at
// them, e.g. COUPON_SEED_FILES=data/coupons/festive.yaml.gz,data/coupons/launch.yaml.gz
//
// launch.yaml.gz redefines WELCOME10, so when both files are imported in that
// order its rules win.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	limit := func(n int) *int { return &n }
	inactive := false
	nextMonth := time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339)
	lastMonth := time.Now().AddDate(0, -1, 0).UTC().Format(time.RFC3339)

	files := map[string][]seedRecord{
		"festive.yaml.gz": {
			{Code: "WELCOME10", DiscountType: "percentage", DiscountValue: "10"},
			{Code: "DIWALI500", DiscountType: "fixed", DiscountValue: "500", MinOrderAmount: "2999", ExpiresAt: nextMonth},
			{Code: "FIRST100", DiscountType: "fixed", DiscountValue: "100", MaxUses: limit(100)},
			{Code: "HOLI15", DiscountType: "percentage", DiscountValue: "15", ExpiresAt: lastMonth},
		},
		"launch.yaml.gz": {
			{Code: "WELCOME10", DiscountType: "percentage", DiscountValue: "10", MinOrderAmount: "499"},
			{Code: "ONETIME", DiscountType: "percentage", DiscountValue: "50", MaxUses: limit(1)},
			{Code: "PAUSED20", DiscountType: "percentage", DiscountValue: "20", Active: &inactive},
		},
	}

	for filename, coupons := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := writeSeedFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d coupons\n", filePath, len(coupons))
	}

	fmt.Println("\nSample coupons:")
	fmt.Println("  - WELCOME10 10% off, min ₹499 once launch.yaml.gz is imported")
	fmt.Println("  - DIWALI500 ₹500 off orders of ₹2999 or more, expires next month")
	fmt.Println("  - FIRST100  ₹100 off, first 100 orders")
	fmt.Println("  - ONETIME   50% off, single use")
	fmt.Println("\nRejected coupons:")
	fmt.Println("  - HOLI15    expired")
	fmt.Println("  - PAUSED20  inactive")
}

func writeSeedFile(filePath string, coupons []seedRecord) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := yaml.NewEncoder(gzipWriter)
	if err := encoder.Encode(seedFile{Coupons: coupons}); err != nil {
		return fmt.Errorf("failed to write coupons: %w", err)
	}
	return encoder.Close()
}
