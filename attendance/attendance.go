package attendance

import (
	"context"
	"net/http"
	"strconv"
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

// MarkLogin records today's attendance for a user, once. The unique
// (userId, date) index makes repeat calls no-ops.
func MarkLogin(ctx context.Context, userID primitive.ObjectID, loginTime time.Time) error {
	day := utils.StartOfDay(loginTime)
	_, err := db.AttendanceCollection.UpdateOne(ctx,
		bson.M{"userId": userID, "date": day},
		bson.M{"$setOnInsert": bson.M{
			"userId":    userID,
			"date":      day,
			"status":    "present",
			"loginTime": loginTime,
		}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func MarkAttendance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.Fail(w, "Unauthorized")
		return
	}

	if err := MarkLogin(ctx, oid, time.Now()); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Attendance marked successfully", nil)
}

func GetMyMonthly(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	now := time.Now()
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	cursor, err := db.AttendanceCollection.Find(ctx,
		bson.M{
			"userId": db.IDFilter(userID),
			"date":   bson.M{"$gte": from, "$lt": to},
		},
		options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	records := []models.Attendance{}
	if err := cursor.All(ctx, &records); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Monthly attendance fetched successfully", records, utils.M{
		"count": len(records),
		"year":  year,
		"month": month,
	})
}
