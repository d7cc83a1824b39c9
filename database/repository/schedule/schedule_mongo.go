package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/database"
	"medibook/database/repository"
	"medibook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleRepo implements ScheduleRepository using MongoDB.
type MongoScheduleRepo struct {
	slotColl *mongo.Collection
	apptColl *mongo.Collection
}

// NewMongoScheduleRepo creates a new instance of ScheduleRepository using MongoDB.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database("medibook")
	return &MongoScheduleRepo{
		slotColl: db.Collection("slots"),
		apptColl: db.Collection("appointments"),
	}
}

func (r *MongoScheduleRepo) GetSlots(ctx context.Context, doctorID string, window models.TimeWindow) ([]models.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"doctorId": doctorID,
		"start":    bson.M{"$gte": window.From, "$lt": window.To},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := r.slotColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots for doctor %s: %w", doctorID, repository.ErrUnavailable)
	}
	defer cursor.Close(ctx)

	var slots []models.ScheduleSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", repository.ErrUnavailable)
	}
	return slots, nil
}

func (r *MongoScheduleRepo) GetSlot(ctx context.Context, slotID string) (*models.ScheduleSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.ScheduleSlot
	if err := r.slotColl.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch slot %s: %w", slotID, repository.ErrUnavailable)
	}
	return &slot, nil
}

// CasSlotStatus performs the compare-and-set as a single conditional UpdateOne.
// Mongo's per-document atomicity is the only serialization point for
// concurrent booking attempts; no lock is taken anywhere else.
func (r *MongoScheduleRepo) CasSlotStatus(ctx context.Context, slotID string, expected, next models.SlotStatus, opts CasOptions) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "status": expected}
	if opts.ExpectHeldBy != "" {
		filter["heldBy"] = opts.ExpectHeldBy
	}

	set := bson.M{"status": next}
	unset := bson.M{}
	if next == models.SlotHeld {
		set["heldBy"] = opts.HeldBy
		set["holdExpiresAt"] = opts.HoldExpiresAt
	} else {
		unset["heldBy"] = ""
		unset["holdExpiresAt"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.slotColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("slot CAS failed for %s: %w", slotID, repository.ErrUnavailable)
	}
	if res.MatchedCount == 0 {
		// Distinguish "status mismatch" from "no such slot".
		count, cerr := r.slotColl.CountDocuments(ctx, bson.M{"id": slotID})
		if cerr == nil && count == 0 {
			return false, repository.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *MongoScheduleRepo) InsertAppointment(ctx context.Context, appt models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.apptColl.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to archive appointment %s: %w", appt.ID, repository.ErrUnavailable)
	}
	return nil
}
