package visit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kitabi/db"
	"kitabi/filemgr"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type visitDetailPayload struct {
	Date          string `json:"date"`
	Particulars   string `json:"particulars"`
	Remarks       string `json:"remarks"`
	NextVisitDate string `json:"nextVisitDate"`
	Location      string `json:"location"`
	Photo         string `json:"photo"`
}

type visitPayload struct {
	UserID       string               `json:"userId"`
	SchoolID     string               `json:"schoolId"`
	ScheduleDate string               `json:"scheduleDate"`
	Status       string               `json:"status"`
	VisitDetails []visitDetailPayload `json:"visitDetails"`
}

func decodeVisitPayload(r *http.Request) (visitPayload, error) {
	var p visitPayload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			return p, fmt.Errorf("Invalid multipart payload")
		}
		p.UserID = r.FormValue("userId")
		p.SchoolID = r.FormValue("schoolId")
		p.ScheduleDate = r.FormValue("scheduleDate")
		p.Status = r.FormValue("status")
		if raw := r.FormValue("visitDetails"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &p.VisitDetails); err != nil {
				return p, fmt.Errorf("Invalid visitDetails JSON")
			}
		}
		// an uploaded photo rides on the first detail of the payload
		photo, err := filemgr.FromForm(r, "photo")
		if err != nil {
			return p, err
		}
		if photo != "" && len(p.VisitDetails) > 0 {
			p.VisitDetails[0].Photo = photo
		}
		return p, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("Invalid JSON payload")
	}
	return p, nil
}

func buildDetails(payload []visitDetailPayload) []models.VisitDetail {
	details := make([]models.VisitDetail, 0, len(payload))
	for _, d := range payload {
		detail := models.VisitDetail{
			Particulars: d.Particulars,
			Remarks:     d.Remarks,
			Location:    d.Location,
			Photo:       d.Photo,
		}
		if t, ok := utils.ParseDate(d.Date); ok {
			detail.Date = t
		} else {
			detail.Date = time.Now()
		}
		if t, ok := utils.ParseDate(d.NextVisitDate); ok {
			detail.NextVisitDate = t
		}
		details = append(details, detail)
	}
	return details
}

// CreateVisit appends to the open visit for the (user, school) pair when one
// exists, instead of piling up parallel documents: new details are appended,
// the schedule date is overwritten and the status re-derived. Only when no
// non-completed visit exists does a fresh document get inserted.
func CreateVisit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, err := decodeVisitPayload(r)
	if err != nil {
		utils.Fail(w, err.Error())
		return
	}
	if payload.UserID == "" || payload.SchoolID == "" {
		utils.Fail(w, "userId and schoolId are required")
		return
	}

	userOID, err := primitive.ObjectIDFromHex(payload.UserID)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}
	schoolOID, err := primitive.ObjectIDFromHex(payload.SchoolID)
	if err != nil {
		utils.Fail(w, "Invalid school ID")
		return
	}

	if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(payload.SchoolID)}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("School with ID %s not found", payload.SchoolID))
			return
		}
		utils.Internal(w, err)
		return
	}

	newDetails := buildDetails(payload.VisitDetails)
	scheduleDate, hasSchedule := utils.ParseDate(payload.ScheduleDate)
	now := time.Now()

	var open *models.Visit
	var existing models.Visit
	err = db.VisitCollection.FindOne(ctx, bson.M{
		"userId":   db.IDFilter(payload.UserID),
		"schoolId": db.IDFilter(payload.SchoolID),
		"status":   bson.M{"$ne": models.VisitCompleted},
	}).Decode(&existing)
	switch err {
	case nil:
		open = &existing
	case mongo.ErrNoDocuments:
	default:
		utils.Internal(w, err)
		return
	}

	appendTo, details, status := planVisitWrite(open, newDetails, payload.Status)
	if appendTo {
		update := bson.M{
			"visitDetails": details,
			"status":       status,
			"updatedAt":    now,
		}
		if hasSchedule {
			update["scheduleDate"] = scheduleDate
		}
		var updated models.Visit
		if err := db.VisitCollection.FindOneAndUpdate(ctx,
			bson.M{"_id": open.ID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated); err != nil {
			utils.Internal(w, err)
			return
		}
		utils.Success(w, "Visit updated successfully", updated)
		return
	}

	visit := models.Visit{
		UserID:       userOID,
		SchoolID:     schoolOID,
		ScheduleDate: scheduleDate,
		Status:       status,
		VisitDetails: details,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := db.VisitCollection.InsertOne(ctx, visit)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	visit.ID = res.InsertedID.(primitive.ObjectID)
	utils.Success(w, "Visit created successfully", visit)
}

// UpdateVisit replaces fields of a visit by ID. A replaced detail log
// re-derives the status unless the request sets one explicitly.
func UpdateVisit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	payload, err := decodeVisitPayload(r)
	if err != nil {
		utils.Fail(w, err.Error())
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if t, ok := utils.ParseDate(payload.ScheduleDate); ok {
		update["scheduleDate"] = t
	}
	if len(payload.VisitDetails) > 0 {
		details := buildDetails(payload.VisitDetails)
		update["visitDetails"] = details
		update["status"] = deriveStatus(details, payload.Status)
	} else if payload.Status != "" {
		update["status"] = payload.Status
	}

	var visit models.Visit
	err = db.VisitCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": db.IDFilter(id)},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&visit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Visit with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Visit updated successfully", visit)
}

// GetVisits lists visits with optional status and school-name filters.
func GetVisits(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		ids, err := schoolIDsByName(ctx, search)
		if err != nil {
			utils.Internal(w, err)
			return
		}
		filter["schoolId"] = bson.M{"$in": ids}
	}

	visits, err := findVisits(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateVisits(ctx, visits)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Visits fetched successfully", views, utils.M{"count": len(views)})
}

func GetVisit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	var visit models.Visit
	if err := db.VisitCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&visit); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Visit with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	views, err := populateVisits(ctx, []models.Visit{visit})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Visit fetched successfully", views[0])
}

func DeleteVisit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	var visit models.Visit
	if err := db.VisitCollection.FindOneAndDelete(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&visit); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Visit with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Visit deleted successfully", visit)
}

func findVisits(ctx context.Context, filter bson.M) ([]models.Visit, error) {
	cursor, err := db.VisitCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"updatedAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	visits := []models.Visit{}
	if err := cursor.All(ctx, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

func schoolIDsByName(ctx context.Context, search string) (bson.A, error) {
	cursor, err := db.SchoolCollection.Find(ctx,
		bson.M{"schoolName": bson.M{"$regex": search, "$options": "i"}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := bson.A{}
	for _, d := range docs {
		ids = append(ids, d.ID, d.ID.Hex())
	}
	return ids, nil
}
