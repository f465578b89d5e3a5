package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"brainix/config"
	"brainix/database"
	"brainix/models"
	"brainix/services/catalog"
)

// Imports course categories from a CSV with the headers name,description.
// Rows are matched by slug, so the import can be re-run safely.
func main() {
	path := flag.String("file", "categories.csv", "CSV file with name,description columns")
	flag.Parse()

	config.LoadConfig()
	database.ConnectDb()

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headerIndex["name"]; !ok {
		log.Fatal("CSV file has no name column")
	}

	inserted, updated, skipped := 0, 0, 0
	db := database.Database.Db

	for _, row := range records[1:] {
		name := getField(row, headerIndex, "name")
		slug := catalog.Slugify(name)
		if slug == "" {
			skipped++
			continue
		}
		description := getField(row, headerIndex, "description")

		var existing models.Category
		if err := db.Where("slug = ?", slug).Limit(1).Find(&existing).Error; err != nil {
			log.Printf("Error looking up category %s: %v", slug, err)
			continue
		}

		if existing.ID == 0 {
			category := models.Category{Name: name, Slug: slug, Description: description}
			if err := db.Create(&category).Error; err != nil {
				log.Printf("Error inserting category %s: %v", slug, err)
				continue
			}
			inserted++
			continue
		}

		if err := db.Model(&existing).Updates(map[string]interface{}{
			"name":        name,
			"description": description,
		}).Error; err != nil {
			log.Printf("Error updating category %s: %v", slug, err)
			continue
		}
		updated++
	}

	log.Printf("Import completed: %d inserted, %d updated, %d skipped", inserted, updated, skipped)
}

func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
