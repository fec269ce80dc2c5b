package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/rdx"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const statsCacheKey = "dashboard:stats"
const statsCacheTTL = 30 * time.Second

type stats struct {
	Users   int64   `json:"users"`
	Schools int64   `json:"schools"`
	Visits  vStats  `json:"visits"`
	Orders  oStats  `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type vStats struct {
	Total       int64 `json:"total"`
	Completed   int64 `json:"completed"`
	Rescheduled int64 `json:"rescheduled"`
	Pending     int64 `json:"pending"`
}

type oStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Partial   int64 `json:"partial"`
	Completed int64 `json:"completed"`
}

// GetStats serves the admin dashboard counters. The counts span five
// collections, so the assembled result is cached briefly in Redis.
func GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if cached, ok := rdx.Get(statsCacheKey); ok {
		var s stats
		if err := json.Unmarshal([]byte(cached), &s); err == nil {
			utils.Success(w, "Dashboard stats fetched successfully", s)
			return
		}
	}

	s, err := collectStats(ctx)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	if raw, err := json.Marshal(s); err == nil {
		rdx.SetTTL(statsCacheKey, string(raw), statsCacheTTL)
	}

	utils.Success(w, "Dashboard stats fetched successfully", s)
}

func collectStats(ctx context.Context) (stats, error) {
	var s stats
	var err error

	if s.Users, err = db.UserCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return s, err
	}
	if s.Schools, err = db.SchoolCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return s, err
	}

	if s.Visits.Total, err = db.VisitCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return s, err
	}
	if s.Visits.Completed, err = db.VisitCollection.CountDocuments(ctx, bson.M{"status": models.VisitCompleted}); err != nil {
		return s, err
	}
	if s.Visits.Rescheduled, err = db.VisitCollection.CountDocuments(ctx, bson.M{"status": models.VisitRescheduled}); err != nil {
		return s, err
	}
	s.Visits.Pending = s.Visits.Total - s.Visits.Completed - s.Visits.Rescheduled

	if s.Orders.Total, err = db.OrderCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return s, err
	}
	if s.Orders.Pending, err = db.OrderCollection.CountDocuments(ctx, bson.M{"status": models.OrderPending}); err != nil {
		return s, err
	}
	if s.Orders.Partial, err = db.OrderCollection.CountDocuments(ctx, bson.M{"status": models.OrderPartial}); err != nil {
		return s, err
	}
	if s.Orders.Completed, err = db.OrderCollection.CountDocuments(ctx, bson.M{"status": models.OrderCompleted}); err != nil {
		return s, err
	}

	s.Revenue, err = completedRevenue(ctx)
	return s, err
}

func completedRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.OrderCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalPayment"},
		}}},
	}
	cursor, err := db.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// GetMyTodayStats gives an agent their own counters for the home screen:
// today's orders, lifetime orders, completed orders and a short recent list.
func GetMyTodayStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	owner := bson.M{"userId": db.IDFilter(userID)}
	today := utils.StartOfDay(time.Now())

	total, err := db.OrderCollection.CountDocuments(ctx, owner)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	todayCount, err := db.OrderCollection.CountDocuments(ctx, bson.M{
		"userId":    db.IDFilter(userID),
		"createdAt": bson.M{"$gte": today},
	})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	completed, err := db.OrderCollection.CountDocuments(ctx, bson.M{
		"userId": db.IDFilter(userID),
		"status": models.OrderCompleted,
	})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	cursor, err := db.OrderCollection.Find(ctx, owner,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(5))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	var recent []models.Order
	if err := cursor.All(ctx, &recent); err != nil {
		utils.Internal(w, err)
		return
	}

	recentViews := []utils.M{}
	for _, o := range recent {
		name := ""
		var school models.School
		if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": o.SchoolID}).Decode(&school); err == nil {
			name = school.SchoolName
		} else if err != mongo.ErrNoDocuments {
			log.Println("GetMyTodayStats school lookup error:", err)
		}
		recentViews = append(recentViews, utils.M{
			"_id":          o.ID,
			"schoolName":   name,
			"totalPayment": o.TotalPayment,
			"status":       o.Status,
			"createdAt":    o.CreatedAt,
		})
	}

	utils.Success(w, "Today stats fetched successfully", utils.M{
		"todayOrders":     todayCount,
		"totalOrders":     total,
		"completedOrders": completed,
		"recentOrders":    recentViews,
	})
}
