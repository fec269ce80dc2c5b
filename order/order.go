package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
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

type orderBookPayload struct {
	BookID   string  `json:"bookId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderItemPayload struct {
	CategoryID string             `json:"categoryId"`
	Books      []orderBookPayload `json:"books"`
}

type createOrderPayload struct {
	UserID       string             `json:"userId"`
	SchoolID     string             `json:"schoolId"`
	OrderType    string             `json:"orderType"`
	Discount     float64            `json:"discount"`
	PaymentTerms string             `json:"paymentTerms"`
	TotalPayment float64            `json:"totalPayment"`
	OrderItems   []orderItemPayload `json:"orderItems"`
}

func decodeCreatePayload(r *http.Request) (createOrderPayload, string, error) {
	var p createOrderPayload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			return p, "", fmt.Errorf("Invalid multipart payload")
		}
		p.UserID = r.FormValue("userId")
		p.SchoolID = r.FormValue("schoolId")
		p.OrderType = r.FormValue("orderType")
		p.PaymentTerms = r.FormValue("paymentTerms")
		p.Discount, _ = strconv.ParseFloat(r.FormValue("discount"), 64)
		p.TotalPayment, _ = strconv.ParseFloat(r.FormValue("totalPayment"), 64)
		if raw := r.FormValue("orderItems"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &p.OrderItems); err != nil {
				return p, "", fmt.Errorf("Invalid orderItems JSON")
			}
		}
		image, err := filemgr.FromForm(r, "image")
		if err != nil {
			return p, "", err
		}
		return p, image, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return p, "", fmt.Errorf("Invalid JSON payload")
	}
	return p, "", nil
}

// buildOrderItems converts the wire payload into stored items and a summed
// per-book quantity map for stock validation.
func buildOrderItems(payload []orderItemPayload) ([]models.OrderCategoryItem, map[string]int, error) {
	items := make([]models.OrderCategoryItem, 0, len(payload))
	requested := map[string]int{}
	for _, cat := range payload {
		catOID, err := primitive.ObjectIDFromHex(cat.CategoryID)
		if err != nil {
			return nil, nil, fmt.Errorf("Invalid category ID %q", cat.CategoryID)
		}
		item := models.OrderCategoryItem{CategoryID: catOID}
		for _, b := range cat.Books {
			bookOID, err := primitive.ObjectIDFromHex(b.BookID)
			if err != nil {
				return nil, nil, fmt.Errorf("Invalid book ID %q", b.BookID)
			}
			if b.Quantity <= 0 {
				return nil, nil, fmt.Errorf("Quantity must be positive for book %s", b.BookID)
			}
			item.Books = append(item.Books, models.OrderBookItem{
				BookID:   bookOID,
				Quantity: b.Quantity,
				Price:    b.Price,
			})
			requested[b.BookID] += b.Quantity
		}
		if len(item.Books) == 0 {
			return nil, nil, fmt.Errorf("Each order item needs at least one book")
		}
		items = append(items, item)
	}
	return items, requested, nil
}

func loadStock(ctx context.Context, requested map[string]int) (map[string]bookStock, error) {
	ids := make([]primitive.ObjectID, 0, len(requested))
	for id := range requested {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("Invalid book ID %q", id)
		}
		ids = append(ids, oid)
	}

	cursor, err := db.BookCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}

	available := make(map[string]bookStock, len(books))
	for _, b := range books {
		available[b.ID.Hex()] = bookStock{Name: b.Name, Stock: b.Stock}
	}
	return available, nil
}

// CreateOrder validates the whole batch against stock first, then runs the
// sequential writes: insert the order, push the payment entry onto the
// owner's summary, decrement stock. A failure after the insert leaves the
// order persisted with the later steps unapplied; those are logged and
// picked up by reconciliation, never hidden behind a rollback we don't have.
func CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	payload, image, err := decodeCreatePayload(r)
	if err != nil {
		utils.Fail(w, err.Error())
		return
	}
	if payload.UserID == "" || payload.SchoolID == "" || payload.OrderType == "" {
		utils.Fail(w, "userId, schoolId and orderType are required")
		return
	}
	if payload.TotalPayment <= 0 {
		utils.Fail(w, "totalPayment must be positive")
		return
	}
	if len(payload.OrderItems) == 0 {
		utils.Fail(w, "orderItems must not be empty")
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

	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": userOID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", payload.UserID))
			return
		}
		utils.Internal(w, err)
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

	items, requested, err := buildOrderItems(payload.OrderItems)
	if err != nil {
		utils.Fail(w, err.Error())
		return
	}

	available, err := loadStock(ctx, requested)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	if err := checkStock(requested, available); err != nil {
		utils.Fail(w, err.Error())
		return
	}

	now := time.Now()
	ord := models.Order{
		UserID:       userOID,
		SchoolID:     schoolOID,
		OrderType:    payload.OrderType,
		Discount:     payload.Discount,
		PaymentTerms: payload.PaymentTerms,
		TotalPayment: payload.TotalPayment,
		Image:        image,
		Status:       models.OrderPending,
		OrderItems:   items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := db.OrderCollection.InsertOne(ctx, ord)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	ord.ID = res.InsertedID.(primitive.ObjectID)

	entry := models.UserOrderItem{
		OrderID:       ord.ID,
		PaymentStatus: models.PaymentPending,
		PaymentAmount: ord.TotalPayment,
		PaidAmount:    0,
		DueAmount:     ord.TotalPayment,
	}
	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": userOID},
		bson.M{
			"$inc": bson.M{
				"orders.totalPayment":    ord.TotalPayment,
				"orders.totalDuePayment": ord.TotalPayment,
			},
			"$push": bson.M{"orders.items": entry},
			"$set":  bson.M{"updatedAt": now},
		}); err != nil {
		log.Printf("CreateOrder: summary push failed for order %s: %v", ord.ID.Hex(), err)
	}

	for bookID, qty := range requested {
		oid, _ := primitive.ObjectIDFromHex(bookID)
		res, err := db.BookCollection.UpdateOne(ctx,
			bson.M{"_id": oid, "stock": bson.M{"$gte": qty}},
			bson.M{"$inc": bson.M{"stock": -qty}, "$set": bson.M{"updatedAt": now}})
		if err != nil || res.MatchedCount == 0 {
			log.Printf("CreateOrder: stock decrement failed for book %s on order %s: %v", bookID, ord.ID.Hex(), err)
		}
	}

	utils.Success(w, "Order created successfully", ord)
}

// GetOrders lists orders with an optional search across school and agent
// names, plus aggregate status counts for the same filter.
func GetOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if search := r.URL.Query().Get("search"); search != "" {
		or, err := searchFilter(ctx, search)
		if err != nil {
			utils.Internal(w, err)
			return
		}
		filter["$or"] = or
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

// searchFilter resolves a free-text search into ID sets: schools matched by
// name and users matched by username. Stored references may be raw strings
// from imported data, so both forms go into the $in lists.
func searchFilter(ctx context.Context, search string) (bson.A, error) {
	regex := bson.M{"$regex": search, "$options": "i"}

	schoolIDs, err := matchingIDs(ctx, db.SchoolCollection, bson.M{"schoolName": regex})
	if err != nil {
		return nil, err
	}
	userIDs, err := matchingIDs(ctx, db.UserCollection, bson.M{"username": regex})
	if err != nil {
		return nil, err
	}

	return bson.A{
		bson.M{"schoolId": bson.M{"$in": schoolIDs}},
		bson.M{"userId": bson.M{"$in": userIDs}},
	}, nil
}

func matchingIDs(ctx context.Context, coll *mongo.Collection, filter bson.M) (bson.A, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
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

// statusStats groups the filtered orders by status and totals the revenue of
// completed ones.
func statusStats(ctx context.Context, filter bson.M) (utils.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$totalPayment"},
		}}},
	}
	cursor, err := db.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string  `bson:"_id"`
		Count  int     `bson:"count"`
		Total  float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := utils.M{
		"total":            0,
		"pending":          0,
		"partial":          0,
		"completed":        0,
		"completedRevenue": float64(0),
	}
	total := 0
	for _, row := range rows {
		total += row.Count
		switch row.Status {
		case models.OrderPending:
			stats["pending"] = row.Count
		case models.OrderPartial:
			stats["partial"] = row.Count
		case models.OrderCompleted:
			stats["completed"] = row.Count
			stats["completedRevenue"] = row.Total
		}
	}
	stats["total"] = total
	return stats, nil
}

func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	var ord models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&ord); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	views, err := populateOrders(ctx, []models.Order{ord})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Order fetched successfully", views[0])
}

// UpdateOrder patches mutable fields, including a replaced orderItems list
// from multipart forms. Stock and the payment summary are not retouched here;
// the nightly reconciliation keeps statuses honest.
func UpdateOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	update := bson.M{"updatedAt": time.Now()}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		for _, k := range []string{"orderType", "paymentTerms", "status"} {
			if v := r.FormValue(k); v != "" {
				update[k] = v
			}
		}
		if v := r.FormValue("discount"); v != "" {
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				update["discount"] = d
			}
		}
		if image, err := filemgr.FromForm(r, "image"); err == nil && image != "" {
			update["image"] = image
		}
		if raw := r.FormValue("orderItems"); raw != "" {
			var payload []orderItemPayload
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				utils.Fail(w, "Invalid orderItems JSON")
				return
			}
			items, _, err := buildOrderItems(payload)
			if err != nil {
				utils.Fail(w, err.Error())
				return
			}
			update["orderItems"] = items
		}
	} else {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		delete(payload, "_id")
		delete(payload, "userId")
		delete(payload, "totalPayment")
		delete(payload, "orderItems")
		for k, v := range payload {
			update[k] = v
		}
	}

	var ord models.Order
	err := db.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": db.IDFilter(id)},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ord)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Order updated successfully", ord)
}

// DeleteOrder removes an order, backs its entry out of the owner's payment
// summary and restores the consumed stock in full.
func DeleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	var ord models.Order
	if err := db.OrderCollection.FindOneAndDelete(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&ord); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	// Back the summary entry out using its recorded amounts, not the order's,
	// so partially paid orders only release the remaining due.
	var owner models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": ord.UserID}).Decode(&owner); err == nil {
		for _, item := range owner.Orders.Items {
			if item.OrderID != ord.ID {
				continue
			}
			if _, err := db.UserCollection.UpdateOne(ctx,
				bson.M{"_id": owner.ID},
				bson.M{
					"$pull": bson.M{"orders.items": bson.M{"orderId": ord.ID}},
					"$inc": bson.M{
						"orders.totalPayment":    -item.PaymentAmount,
						"orders.totalDuePayment": -item.DueAmount,
					},
				}); err != nil {
				log.Printf("DeleteOrder: summary pull failed for order %s: %v", id, err)
			}
			break
		}
	}

	now := time.Now()
	for _, cat := range ord.OrderItems {
		for _, b := range cat.Books {
			if _, err := db.BookCollection.UpdateOne(ctx,
				bson.M{"_id": b.BookID},
				bson.M{"$inc": bson.M{"stock": b.Quantity}, "$set": bson.M{"updatedAt": now}}); err != nil {
				log.Printf("DeleteOrder: stock restore failed for book %s: %v", b.BookID.Hex(), err)
			}
		}
	}

	utils.Success(w, "Order deleted successfully", ord)
}
