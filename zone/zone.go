package zone

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Zones are a lookup/reporting layer only: schools and users store the
// normalized zone name as a string, so deleting a zone does not cascade.

func CreateZone(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		utils.Fail(w, "Zone name is required")
		return
	}

	now := time.Now()
	zone := models.Zone{
		Name:      utils.NormalizeZone(payload.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := db.ZoneCollection.InsertOne(ctx, zone)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, "Zone already exists")
			return
		}
		log.Println("CreateZone InsertOne error:", err)
		utils.Internal(w, err)
		return
	}
	zone.ID = res.InsertedID.(primitive.ObjectID)

	utils.Success(w, "Zone created successfully", zone)
}

func GetZones(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.ZoneCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	zones := []models.Zone{}
	if err := cursor.All(ctx, &zones); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Zones fetched successfully", zones)
}

type zoneDetails struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	UserCount   int                `json:"userCount"`
	UserList    []bson.M           `json:"userList"`
	SchoolCount int                `json:"schoolCount"`
	SchoolList  []bson.M           `json:"schoolList"`
}

// GetZonesWithDetails attaches the users and schools assigned to each zone,
// matched by normalized name.
func GetZonesWithDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	cursor, err := db.ZoneCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	var zones []models.Zone
	if err := cursor.All(ctx, &zones); err != nil {
		utils.Internal(w, err)
		return
	}

	details := []zoneDetails{}
	for _, z := range zones {
		users, err := findProjected(ctx, db.UserCollection,
			bson.M{"assignedZone": z.Name},
			bson.M{"username": 1, "email": 1, "phoneNumber": 1, "status": 1})
		if err != nil {
			utils.Internal(w, err)
			return
		}
		schools, err := findProjected(ctx, db.SchoolCollection,
			bson.M{"zone": z.Name},
			bson.M{"schoolName": 1, "address": 1, "contactPersonName": 1, "contactNumber": 1})
		if err != nil {
			utils.Internal(w, err)
			return
		}
		details = append(details, zoneDetails{
			ID:          z.ID,
			Name:        z.Name,
			UserCount:   len(users),
			UserList:    users,
			SchoolCount: len(schools),
			SchoolList:  schools,
		})
	}

	utils.Success(w, "Zones with details fetched successfully", details)
}

func findProjected(ctx context.Context, coll *mongo.Collection, filter, projection bson.M) ([]bson.M, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func GetZone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid zone ID")
		return
	}

	var zone models.Zone
	if err := db.ZoneCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&zone); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Zone with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Zone fetched successfully", zone)
}

func UpdateZone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid zone ID")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		utils.Fail(w, "Zone name is required")
		return
	}

	var zone models.Zone
	err = db.ZoneCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"name": utils.NormalizeZone(payload.Name), "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&zone)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Zone with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Zone updated successfully", zone)
}

func DeleteZone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid zone ID")
		return
	}

	res, err := db.ZoneCollection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	if res.DeletedCount == 0 {
		utils.Fail(w, fmt.Sprintf("Zone with ID %s not found", id))
		return
	}

	utils.Success(w, "Zone deleted successfully", nil)
}
