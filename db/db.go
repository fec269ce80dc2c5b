package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	SchoolCollection       *mongo.Collection
	BookCollection         *mongo.Collection
	CategoryCollection     *mongo.Collection
	OrderCollection        *mongo.Collection
	VisitCollection        *mongo.Collection
	ZoneCollection         *mongo.Collection
	NotificationCollection *mongo.Collection
	AttendanceCollection   *mongo.Collection
	AccountCollection      *mongo.Collection
	Client                 *mongo.Client
)

// Init connects to MongoDB and binds the collection handles.
func Init() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "salesdb"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database(dbName)
	UserCollection = database.Collection("users")
	SchoolCollection = database.Collection("schools")
	BookCollection = database.Collection("books")
	CategoryCollection = database.Collection("categories")
	OrderCollection = database.Collection("orders")
	VisitCollection = database.Collection("visits")
	ZoneCollection = database.Collection("zones")
	NotificationCollection = database.Collection("notifications")
	AttendanceCollection = database.Collection("attendance")
	AccountCollection = database.Collection("accounts")

	ensureIndexes(database)
}

// Close disconnects the Mongo client during shutdown.
func Close(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Println("Mongo disconnect error:", err)
	}
}

func ensureIndexes(database *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		log.Println("user index:", err)
	}

	// one attendance row per user per day
	_, err = database.Collection("attendance").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("attendance index:", err)
	}

	_, err = database.Collection("zones").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("zone index:", err)
	}
}

// IDFilter matches a reference field stored either as a hex string or as a
// native ObjectID. Legacy rows carry both forms, so every userId/schoolId
// lookup has to accept either.
func IDFilter(id string) bson.M {
	vals := []interface{}{id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		vals = append(vals, oid)
	}
	return bson.M{"$in": vals}
}

// IDVariants returns the raw string plus, when parseable, the ObjectID form.
// Useful inside $in clauses built from many ids.
func IDVariants(ids []string) []interface{} {
	out := make([]interface{}, 0, len(ids)*2)
	for _, id := range ids {
		out = append(out, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
