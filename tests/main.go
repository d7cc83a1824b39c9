// Seed utility: wipes and repopulates the doctors and slots collections with
// the deterministic demo dataset. Run with DATABASE_URL pointing at Mongo.
package main

import (
	"context"
	"log"
	"time"

	"medibook/config"
	"medibook/database"
	doctorRepo "medibook/database/repository/doctor"
	scheduleRepo "medibook/database/repository/schedule"

	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	config.LoadConfig()
	if config.AppConfig.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to seed")
	}
	if err := database.InitDB(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	db := database.MongoClient.Database("medibook")
	doctorColl := db.Collection("doctors")
	slotColl := db.Collection("slots")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := doctorColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear doctors collection: %v", err)
	}
	if _, err := slotColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear slots collection: %v", err)
	}

	// Pune city centre.
	doctors := doctorRepo.SeedDoctors(60, 18.5204, 73.8567)
	docs := make([]interface{}, 0, len(doctors))
	ids := make([]string, 0, len(doctors))
	for _, d := range doctors {
		docs = append(docs, d)
		ids = append(ids, d.ID)
	}
	if _, err := doctorColl.InsertMany(ctx, docs); err != nil {
		log.Fatalf("Failed to insert doctors: %v", err)
	}

	slots := scheduleRepo.SeedSlots(ids, time.Now())
	slotDocs := make([]interface{}, 0, len(slots))
	for _, s := range slots {
		slotDocs = append(slotDocs, s)
	}
	if _, err := slotColl.InsertMany(ctx, slotDocs); err != nil {
		log.Fatalf("Failed to insert slots: %v", err)
	}

	log.Printf("Seeded %d doctors and %d slots", len(doctors), len(slots))
}
