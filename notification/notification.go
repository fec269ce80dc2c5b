package notification

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

// Sender delivers a notification over every channel we have: FCM push when
// the user registered a device token, the websocket hub for open sessions,
// and always a persisted record for the in-app list.
type Sender struct {
	Push *PushClient
	Hub  *Hub
}

func NewSender(push *PushClient, hub *Hub) *Sender {
	return &Sender{Push: push, Hub: hub}
}

// Notify sends and persists one notification. The stored status records the
// push outcome; persistence itself failing is only logged since the message
// may already be on its way to the device.
func (s *Sender) Notify(ctx context.Context, user models.User, title, body string, data map[string]string) models.Notification {
	n := models.Notification{
		UserID:    user.ID,
		Title:     title,
		Body:      body,
		Data:      data,
		Status:    "sent",
		CreatedAt: time.Now(),
	}

	if user.FcmToken == "" {
		n.Status = "skipped"
		n.ErrorMessage = "no device token"
	} else if err := s.Push.Send(ctx, user.FcmToken, title, body, data); err != nil {
		n.Status = "failed"
		n.ErrorMessage = err.Error()
	}

	res, err := db.NotificationCollection.InsertOne(ctx, n)
	if err != nil {
		log.Println("Notify insert error:", err)
	} else if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}

	if s.Hub != nil {
		if raw, err := json.Marshal(n); err == nil {
			s.Hub.Broadcast(user.ID.Hex(), raw)
		}
	}

	return n
}

// SendToUser is the admin endpoint for pushing an ad-hoc notification.
func (s *Sender) SendToUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var payload struct {
		UserID string            `json:"userId"`
		Title  string            `json:"title"`
		Body   string            `json:"body"`
		Data   map[string]string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Fail(w, "Invalid JSON payload")
		return
	}
	if payload.UserID == "" || payload.Title == "" {
		utils.Fail(w, "userId and title are required")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(payload.UserID)}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", payload.UserID))
			return
		}
		utils.Internal(w, err)
		return
	}

	n := s.Notify(ctx, user, payload.Title, payload.Body, payload.Data)
	utils.Success(w, "Notification sent", n)
}

// GetMyNotifications lists the caller's notifications, newest first.
func GetMyNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	filter := bson.M{"userId": db.IDFilter(userID)}
	cursor, err := db.NotificationCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	items := []models.Notification{}
	if err := cursor.All(ctx, &items); err != nil {
		utils.Internal(w, err)
		return
	}

	unread, err := db.NotificationCollection.CountDocuments(ctx, bson.M{
		"userId": db.IDFilter(userID),
		"isRead": false,
	})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Notifications fetched successfully", items, utils.M{
		"count":       len(items),
		"unreadCount": unread,
	})
}

// MarkRead flags one notification as read. Only the owner can flip it.
func MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	userID := utils.GetUserIDFromRequest(r)

	res, err := db.NotificationCollection.UpdateOne(ctx,
		bson.M{"_id": db.IDFilter(id), "userId": db.IDFilter(userID)},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.Fail(w, fmt.Sprintf("Notification with ID %s not found", id))
		return
	}

	utils.Success(w, "Notification marked as read", nil)
}

// MarkAllRead flags every unread notification of the caller as read.
func MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	res, err := db.NotificationCollection.UpdateMany(ctx,
		bson.M{"userId": db.IDFilter(userID), "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "All notifications marked as read", utils.M{"updated": res.ModifiedCount})
}
