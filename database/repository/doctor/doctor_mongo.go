package doctorRepo

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

// MongoDoctorRepo implements DoctorRepository using MongoDB.
type MongoDoctorRepo struct {
	coll *mongo.Collection
}

// NewMongoDoctorRepo creates a new instance of DoctorRepository using MongoDB.
func NewMongoDoctorRepo() DoctorRepository {
	// Use the "medibook" database and the "doctors" collection.
	coll := database.MongoClient.Database("medibook").Collection("doctors")
	repo := &MongoDoctorRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		// Index creation is best-effort at startup; queries still work without it.
		fmt.Printf("doctor repo: ensureIndexes failed: %v\n", err)
	}
	return repo
}

func (r *MongoDoctorRepo) GetByID(ctx context.Context, id string) (*models.DoctorRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var doc models.DoctorRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch doctor with id %s: %w", id, repository.ErrUnavailable)
	}
	return &doc, nil
}

// Search narrows the doctor index by hard filters. When a search center is
// supplied, $geoNear must come first in the pipeline so Mongo can filter and
// sort by distance.
func (r *MongoDoctorRepo) Search(ctx context.Context, criteria SearchCriteria) ([]models.DoctorRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var pipeline mongo.Pipeline

	if criteria.MaxDistanceKm > 0 && !criteria.LocationGeo.IsZero() {
		pipeline = append(pipeline, bson.D{
			{Key: "$geoNear", Value: bson.D{
				{Key: "near", Value: bson.D{
					{Key: "type", Value: "Point"},
					{Key: "coordinates", Value: criteria.LocationGeo.Coordinates},
				}},
				{Key: "distanceField", Value: "distance"},
				{Key: "spherical", Value: true},
				{Key: "maxDistance", Value: criteria.MaxDistanceKm * 1000},
			}},
		})
	}

	matchFilter := bson.M{}
	if criteria.Specialty != "" {
		matchFilter["specialty"] = bson.M{"$regex": "^" + criteria.Specialty + "$", "$options": "i"}
	}
	if criteria.Insurance != "" {
		matchFilter["insurances"] = criteria.Insurance
	}
	if criteria.Gender != "" {
		matchFilter["gender"] = criteria.Gender
	}
	if len(matchFilter) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})
	}

	// Stable base order so the ranking layer sees a reproducible candidate set.
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "id", Value: 1}}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("doctor search aggregation failed: %w", repository.ErrUnavailable)
	}
	defer cursor.Close(ctx)

	var doctors []models.DoctorRecord
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode doctors: %w", repository.ErrUnavailable)
	}
	return doctors, nil
}

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoDoctorRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	idIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	specialtyIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "specialty", Value: 1}, {Key: "rating", Value: -1}},
	}
	geoIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "location.geo", Value: "2dsphere"}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{idIdx, specialtyIdx, geoIdx})
	if err != nil {
		return fmt.Errorf("failed to create doctor indexes: %w", err)
	}
	return nil
}
