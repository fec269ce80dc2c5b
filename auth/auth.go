package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kitabi/attendance"
	"kitabi/db"
	"kitabi/globals"
	"kitabi/middleware"
	"kitabi/models"
	"kitabi/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

// GenerateToken signs a bearer token carrying the claims every protected
// endpoint relies on: identity, role and the agent's assigned zone.
func GenerateToken(user models.User) (string, error) {
	claims := middleware.Claims{
		Username:     user.Username,
		UserID:       user.ID.Hex(),
		Role:         user.Role,
		AssignedZone: user.AssignedZone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.Fail(w, "Invalid JSON payload")
		return
	}
	if input.Username == "" || input.Password == "" {
		utils.Fail(w, "Username and password are required")
		return
	}

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"username": input.Username}).Decode(&user); err != nil {
		utils.Fail(w, "Invalid credentials")
		return
	}

	if user.Status == "deactive" {
		utils.Fail(w, "Unauthorized: account is deactivated. Please contact admin")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.Fail(w, "Invalid credentials")
		return
	}

	token, err := GenerateToken(user)
	if err != nil {
		log.Println("Login token error:", err)
		utils.Internal(w, err)
		return
	}

	now := time.Now()
	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastLogin": now}},
	); err != nil {
		log.Println("Login lastLogin update error:", err)
	}

	// Login doubles as the day's attendance check-in.
	if err := attendance.MarkLogin(ctx, user.ID, now); err != nil {
		log.Println("Login attendance mark error:", err)
	}

	utils.Success(w, "Login successful", utils.M{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"assignedZone": user.AssignedZone,
		"token":        token,
	})
}
