package school

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

type schoolPayload struct {
	SchoolName        string `json:"schoolName"`
	Address           string `json:"address"`
	ContactPersonName string `json:"contactPersonName"`
	ContactNumber     string `json:"contactNumber"`
	EducationLimit    string `json:"educationLimit"`
	ScheduleVisitDate string `json:"scheduleVisitDate"`
	Remark            string `json:"remark"`
	Zone              string `json:"zone"`
}

func CreateSchool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload schoolPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Fail(w, "Invalid JSON payload")
		return
	}
	if payload.SchoolName == "" || payload.Address == "" || payload.Zone == "" {
		utils.Fail(w, "schoolName, address and zone are required")
		return
	}

	visitDate, ok := utils.ParseDate(payload.ScheduleVisitDate)
	if !ok {
		utils.Fail(w, "scheduleVisitDate must be a valid date")
		return
	}

	now := time.Now()
	school := models.School{
		SchoolName:        payload.SchoolName,
		Address:           payload.Address,
		ContactPersonName: payload.ContactPersonName,
		ContactNumber:     payload.ContactNumber,
		EducationLimit:    payload.EducationLimit,
		ScheduleVisitDate: visitDate,
		Remark:            payload.Remark,
		Zone:              utils.NormalizeZone(payload.Zone),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := db.SchoolCollection.InsertOne(ctx, school)
	if err != nil {
		log.Println("CreateSchool InsertOne error:", err)
		utils.Internal(w, err)
		return
	}
	school.ID = res.InsertedID.(primitive.ObjectID)

	utils.Success(w, "School created successfully", school)
}

func GetSchools(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["schoolName"] = bson.M{"$regex": search, "$options": "i"}
	}
	if zone := r.URL.Query().Get("zone"); zone != "" {
		filter["zone"] = utils.NormalizeZone(zone)
	}

	cursor, err := db.SchoolCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"schoolName": 1}))
	if err != nil {
		log.Println("GetSchools Find error:", err)
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	schools := []models.School{}
	if err := cursor.All(ctx, &schools); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Schools fetched successfully", schools)
}

func GetSchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid school ID")
		return
	}

	var school models.School
	if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&school); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("School with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "School fetched successfully", school)
}

func UpdateSchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid school ID")
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Fail(w, "Invalid JSON payload")
		return
	}
	delete(payload, "_id")
	if zone, ok := payload["zone"].(string); ok {
		payload["zone"] = utils.NormalizeZone(zone)
	}
	if sd, ok := payload["scheduleVisitDate"].(string); ok {
		if t, valid := utils.ParseDate(sd); valid {
			payload["scheduleVisitDate"] = t
		} else {
			delete(payload, "scheduleVisitDate")
		}
	}
	payload["updatedAt"] = time.Now()

	var school models.School
	err = db.SchoolCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": payload},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&school)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("School with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "School updated successfully", school)
}

func DeleteSchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid school ID")
		return
	}

	var school models.School
	if err := db.SchoolCollection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&school); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("School with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "School deleted successfully", school)
}

// FindByZone resolves all schools whose normalized zone matches. Used by the
// visit engine for zone-scoped joins.
func FindByZone(ctx context.Context, zone string) ([]models.School, error) {
	cursor, err := db.SchoolCollection.Find(ctx, bson.M{"zone": utils.NormalizeZone(zone)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var schools []models.School
	if err := cursor.All(ctx, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}
