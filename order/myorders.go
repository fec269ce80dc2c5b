package order

import (
	"context"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetMyOrders lists the calling agent's own orders, filterable by status and
// a school-name search.
func GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	filter := bson.M{"userId": db.IDFilter(userID)}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		schoolIDs, err := matchingIDs(ctx, db.SchoolCollection,
			bson.M{"schoolName": bson.M{"$regex": search, "$options": "i"}})
		if err != nil {
			utils.Internal(w, err)
			return
		}
		filter["schoolId"] = bson.M{"$in": schoolIDs}
	}

	cursor, err := db.OrderCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateOrders(ctx, orders)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	stats, err := statusStats(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Orders fetched successfully", views, utils.M{
		"count": len(views),
		"stats": stats,
	})
}

// GetOrdersByUser is the admin view of a single agent's orders with the same
// stats block.
func GetOrdersByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := ps.ByName("id")
	filter := bson.M{"userId": db.IDFilter(userID)}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := db.OrderCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateOrders(ctx, orders)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	stats, err := statusStats(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Orders fetched successfully", views, utils.M{
		"count": len(views),
		"stats": stats,
	})
}
