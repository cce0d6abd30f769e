package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/joho/godotenv"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/sentinel"
)

func main() {
	// Hardcoded test parameters - modify these to test different scenarios
	area := "cauquenes"
	testDate := time.Date(2017, 12, 10, 0, 0, 0, 0, time.UTC)
	resolution := 20

	fmt.Println("=== LandCover Test Scene Download ===")
	fmt.Printf("Area: %s\n", area)
	fmt.Printf("Date: %s\n", testDate.Format("2006-01-02"))
	fmt.Printf("Resolution: %dm\n", resolution)
	fmt.Println()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Make sure you have set the required environment variables:")
		fmt.Println("- COPERNICUS_CLIENT_ID")
		fmt.Println("- COPERNICUS_CLIENT_SECRET")
		fmt.Println("- COPERNICUS_TOKEN_URL")
		fmt.Println("- ROOT_PATH")
		fmt.Println()
	}

	if os.Getenv("ROOT_PATH") == "" {
		wd, _ := os.Getwd()
		os.Setenv("ROOT_PATH", wd)
		fmt.Printf("Setting ROOT_PATH to: %s\n", wd)
	}

	godal.RegisterAll()

	fmt.Printf("Loading boundary for area '%s'...\n", area)
	b, err := boundary.Load(area)
	if err != nil {
		log.Fatalf("Failed to load boundary: %v", err)
	}
	fmt.Println("✓ Boundary loaded successfully")

	lat, lon, err := b.Centroid()
	if err != nil {
		log.Fatalf("Failed to compute centroid: %v", err)
	}
	fmt.Printf("✓ Centroid: %.4f, %.4f\n", lat, lon)

	paths, err := sentinel.DownloadScene(b, testDate, resolution)
	if err != nil {
		log.Fatalf("Failed to download scene: %v", err)
	}

	fmt.Println("✓ Scene downloaded")
	fmt.Printf("  Sentinel-2: %s\n", paths.S2)
	fmt.Printf("  Sentinel-1: %s\n", paths.S1)
	fmt.Printf("  True color: %s\n", paths.TrueColor)
}
