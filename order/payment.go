package order

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
)

// applyPayment applies a received amount against an outstanding due.
// Overpayment is absorbed: the applied delta is clamped to the due amount,
// so paidAmount + dueAmount stays equal to paymentAmount and dueAmount
// never goes negative. A zero due yields a zero delta and keeps Paid
// terminal.
func applyPayment(due, received float64) (applied, remaining float64, status string) {
	applied = received
	if applied < 0 {
		applied = 0
	}
	if applied > due {
		applied = due
	}
	remaining = due - applied
	if remaining <= 0 {
		remaining = 0
		status = models.PaymentPaid
	} else {
		status = models.PaymentPartial
	}
	return applied, remaining, status
}

// orderStatusFor mirrors a payment status onto the order document.
func orderStatusFor(paymentStatus string) string {
	if paymentStatus == models.PaymentPaid {
		return models.OrderCompleted
	}
	return models.OrderPartial
}

// acceptsPayment reports whether an order can take another installment.
// Cancelled is terminal; a late payment must not resurrect it.
func acceptsPayment(orderStatus string) bool {
	return orderStatus != models.OrderCancelled
}

// ProcessPayment records an installment against an order: the matched entry
// in the owner's embedded summary is updated atomically (single document),
// then the order's own status is mirrored in a second write.
func ProcessPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		OrderID         string  `json:"orderId"`
		ReceivedAmount  float64 `json:"receivedAmount"`
		RemainingAmount float64 `json:"remainingAmount"`
		Remarks         string  `json:"remarks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Fail(w, "Invalid JSON payload")
		return
	}
	if payload.OrderID == "" || payload.ReceivedAmount <= 0 {
		utils.Fail(w, "orderId and a positive receivedAmount are required")
		return
	}

	orderOID, err := primitive.ObjectIDFromHex(payload.OrderID)
	if err != nil {
		utils.Fail(w, "Invalid order ID")
		return
	}

	var ord models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"_id": orderOID}).Decode(&ord); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Order with ID %s not found", payload.OrderID))
			return
		}
		utils.Internal(w, err)
		return
	}
	if !acceptsPayment(ord.Status) {
		utils.Fail(w, "Cannot record payment on a cancelled order")
		return
	}

	var owner models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": ord.UserID}).Decode(&owner); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", ord.UserID.Hex()))
			return
		}
		utils.Internal(w, err)
		return
	}

	var current *models.UserOrderItem
	for i := range owner.Orders.Items {
		if owner.Orders.Items[i].OrderID == orderOID {
			current = &owner.Orders.Items[i]
			break
		}
	}
	if current == nil {
		utils.Fail(w, "Order link missing from user profile")
		return
	}

	applied, remaining, paymentStatus := applyPayment(current.DueAmount, payload.ReceivedAmount)

	// Single-document update scoped to the matched items entry; the $inc
	// keeps concurrent applications from clobbering paidAmount.
	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": owner.ID, "orders.items.orderId": orderOID},
		bson.M{
			"$set": bson.M{
				"orders.items.$.paymentStatus": paymentStatus,
				"orders.items.$.dueAmount":     remaining,
				"orders.items.$.remarks":       payload.Remarks,
				"updatedAt":                    time.Now(),
			},
			"$inc": bson.M{
				"orders.items.$.paidAmount": applied,
				"orders.totalDuePayment":    -applied,
			},
		})
	if err != nil {
		log.Println("ProcessPayment summary update error:", err)
		utils.Internal(w, err)
		return
	}

	// Mirror onto the order document. Separate write, not atomic with the
	// summary update; ReconcileOrderStatuses repairs any drift.
	newStatus := orderStatusFor(paymentStatus)
	if _, err := db.OrderCollection.UpdateOne(ctx,
		bson.M{"_id": orderOID},
		bson.M{"$set": bson.M{"status": newStatus, "updatedAt": time.Now()}},
	); err != nil {
		log.Println("ProcessPayment order status mirror error:", err)
	}

	utils.Success(w, "Payment recorded successfully", utils.M{
		"orderId":        orderOID,
		"paymentStatus":  paymentStatus,
		"orderStatus":    newStatus,
		"receivedAmount": payload.ReceivedAmount,
		"appliedAmount":  applied,
		"paidAmount":     current.PaidAmount + applied,
		"dueAmount":      remaining,
	})
}

// ReconcileOrderStatuses resyncs Order.status from the user-embedded payment
// summaries. The two are written sequentially without a transaction, so a
// crash between the writes can leave them disagreeing; the summary entry is
// authoritative.
func ReconcileOrderStatuses(ctx context.Context) {
	cursor, err := db.UserCollection.Find(ctx, bson.M{"orders.items.0": bson.M{"$exists": true}})
	if err != nil {
		log.Println("ReconcileOrderStatuses find error:", err)
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		log.Println("ReconcileOrderStatuses decode error:", err)
		return
	}

	for _, u := range users {
		for _, item := range u.Orders.Items {
			if item.PaymentStatus == models.PaymentPending {
				continue
			}
			want := orderStatusFor(item.PaymentStatus)
			res, err := db.OrderCollection.UpdateOne(ctx,
				bson.M{"_id": item.OrderID, "status": bson.M{"$nin": bson.A{want, models.OrderCancelled}}},
				bson.M{"$set": bson.M{"status": want, "updatedAt": time.Now()}})
			if err != nil {
				log.Println("ReconcileOrderStatuses update error:", err)
				continue
			}
			if res.ModifiedCount > 0 {
				log.Printf("Reconciled order %s status to %s", item.OrderID.Hex(), want)
			}
		}
	}
}
