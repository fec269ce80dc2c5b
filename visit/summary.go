package visit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/globals"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// orderStatsFor aggregates what the agent has sold to the school so far:
// order count, total quantity and the distinct books and categories touched.
func orderStatsFor(ctx context.Context, userID, schoolID primitive.ObjectID) (utils.M, error) {
	cursor, err := db.OrderCollection.Find(ctx, bson.M{
		"userId":   bson.M{"$in": bson.A{userID, userID.Hex()}},
		"schoolId": bson.M{"$in": bson.A{schoolID, schoolID.Hex()}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	totalQuantity := 0
	totalPayment := float64(0)
	books := map[primitive.ObjectID]bool{}
	categories := map[primitive.ObjectID]bool{}
	for _, o := range orders {
		totalPayment += o.TotalPayment
		for _, cat := range o.OrderItems {
			categories[cat.CategoryID] = true
			for _, b := range cat.Books {
				books[b.BookID] = true
				totalQuantity += b.Quantity
			}
		}
	}

	return utils.M{
		"totalOrders":      len(orders),
		"totalQuantity":    totalQuantity,
		"totalPayment":     totalPayment,
		"uniqueBooks":      len(books),
		"uniqueCategories": len(categories),
	}, nil
}

// GetVisitSummary combines a visit's history with the school record and the
// agent's order stats at that school. Looked up by visit ID, or by
// userId+schoolId query params when no ID is given. Agents can only open
// their own summaries; admins see all.
func GetVisitSummary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var visit models.Visit
	var err error
	if id := ps.ByName("id"); id != "" {
		err = db.VisitCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&visit)
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Visit with ID %s not found", id))
			return
		}
	} else {
		userID := r.URL.Query().Get("userId")
		schoolID := r.URL.Query().Get("schoolId")
		if userID == "" || schoolID == "" {
			utils.Fail(w, "userId and schoolId are required")
			return
		}
		err = db.VisitCollection.FindOne(ctx, bson.M{
			"userId":   db.IDFilter(userID),
			"schoolId": db.IDFilter(schoolID),
		}).Decode(&visit)
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, "Visit not found for the given user and school")
			return
		}
	}
	if err != nil {
		utils.Internal(w, err)
		return
	}

	if utils.GetRoleFromRequest(r) != globals.RoleAdmin &&
		visit.UserID.Hex() != utils.GetUserIDFromRequest(r) {
		utils.Fail(w, "Forbidden")
		return
	}

	var school models.School
	if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": visit.SchoolID}).Decode(&school); err != nil && err != mongo.ErrNoDocuments {
		utils.Internal(w, err)
		return
	}

	orderStats, err := orderStatsFor(ctx, visit.UserID, visit.SchoolID)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	remarks := []string{}
	var lastVisitDate time.Time
	for _, d := range visit.VisitDetails {
		if d.Remarks != "" {
			remarks = append(remarks, d.Remarks)
		}
		if d.Date.After(lastVisitDate) {
			lastVisitDate = d.Date
		}
	}

	utils.Success(w, "Visit summary fetched successfully", utils.M{
		"visit":  visit,
		"school": school,
		"visitStats": utils.M{
			"detailCount":   len(visit.VisitDetails),
			"lastVisitDate": lastVisitDate,
			"remarks":       remarks,
			"status":        visit.Status,
		},
		"orderStats": orderStats,
	})
}
