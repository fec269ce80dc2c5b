package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"kitabi/auth"
	"kitabi/db"
	"kitabi/filemgr"
	"kitabi/globals"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func duplicateMessage(err error) string {
	// e.g. "E11000 duplicate key error ... index: username_1 ..."
	msg := err.Error()
	for _, field := range []string{"username", "email"} {
		if strings.Contains(msg, field) {
			return strings.ToUpper(field[:1]) + field[1:] + " already exists"
		}
	}
	return "Duplicate value"
}

func CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := models.User{}
	var plainPassword string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		user.Username = r.FormValue("username")
		user.Email = r.FormValue("email")
		plainPassword = r.FormValue("password")
		user.Role = r.FormValue("role")
		user.PhoneNumber = r.FormValue("phoneNumber")
		user.AssignedZone = r.FormValue("assignedZone")

		photo, err := filemgr.FromForm(r, "profilePhoto")
		if err != nil {
			utils.Fail(w, err.Error())
			return
		}
		user.ProfilePhoto = photo
	} else {
		var payload struct {
			models.User
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		user = payload.User
		plainPassword = payload.Password
	}

	if user.Username == "" || user.Email == "" || plainPassword == "" || user.AssignedZone == "" {
		utils.Fail(w, "username, email, password and assignedZone are required")
		return
	}

	hash, err := auth.HashPassword(plainPassword)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	now := time.Now()
	user.ID = primitive.NilObjectID
	user.Password = hash
	if user.Role == "" {
		user.Role = "user"
	}
	user.AssignedZone = utils.NormalizeZone(user.AssignedZone)
	user.Status = "active"
	user.Orders = models.UserOrderSummary{Items: []models.UserOrderItem{}}
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.UserCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, duplicateMessage(err))
			return
		}
		log.Println("CreateUser InsertOne error:", err)
		utils.Internal(w, err)
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	utils.Success(w, "User created successfully", user)
}

func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["username"] = bson.M{"$regex": search, "$options": "i"}
	}
	if zone := r.URL.Query().Get("zone"); zone != "" {
		filter["assignedZone"] = utils.NormalizeZone(zone)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := db.UserCollection.Find(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Users fetched successfully", users)
}

func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fetchOne(w, r, utils.GetUserIDFromRequest(r))
}

func GetUserStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	fetchOne(w, r, ps.ByName("id"))
}

func fetchOne(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "User fetched successfully", user)
}

func UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		for _, k := range []string{"email", "phoneNumber", "role"} {
			if v := r.FormValue(k); v != "" {
				update[k] = v
			}
		}
		if v := r.FormValue("assignedZone"); v != "" {
			update["assignedZone"] = utils.NormalizeZone(v)
		}
		if v := r.FormValue("password"); v != "" {
			hash, err := auth.HashPassword(v)
			if err != nil {
				utils.Internal(w, err)
				return
			}
			update["password"] = hash
		}
		if photo, err := filemgr.FromForm(r, "profilePhoto"); err == nil && photo != "" {
			update["profilePhoto"] = photo
		}
	} else {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		// the embedded payment summary is engine-owned, never patched directly
		delete(payload, "_id")
		delete(payload, "orders")
		if v, ok := payload["assignedZone"].(string); ok {
			payload["assignedZone"] = utils.NormalizeZone(v)
		}
		if v, ok := payload["password"].(string); ok && v != "" {
			hash, err := auth.HashPassword(v)
			if err != nil {
				utils.Internal(w, err)
				return
			}
			payload["password"] = hash
		}
		for k, v := range payload {
			update[k] = v
		}
	}

	var user models.User
	err = db.UserCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", id))
			return
		}
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, duplicateMessage(err))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "User updated successfully", user)
}

func DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "User deleted successfully", user)
}

// ToggleStatus flips a user between active and deactive. Deactivated users
// cannot log in.
func ToggleStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("User with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	next := "active"
	if user.Status == "active" {
		next = "deactive"
	}

	err = db.UserCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": next, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "User status updated successfully", user)
}

func UpdateFcmToken(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid user ID")
		return
	}

	// agents may only register their own device token
	if utils.GetRoleFromRequest(r) != globals.RoleAdmin &&
		utils.GetUserIDFromRequest(r) != id {
		utils.Fail(w, "Forbidden")
		return
	}

	var payload struct {
		FcmToken string `json:"fcmToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FcmToken == "" {
		utils.Fail(w, "fcmToken is required")
		return
	}

	res, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"fcmToken": payload.FcmToken, "updatedAt": time.Now()}})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.Fail(w, fmt.Sprintf("User with ID %s not found", id))
		return
	}

	utils.Success(w, "FCM token updated successfully", nil)
}

// GetUserList returns id/username pairs for dropdowns.
func GetUserList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.UserCollection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1}).SetSort(bson.M{"username": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	list := []bson.M{}
	if err := cursor.All(ctx, &list); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "User list fetched successfully", list)
}
