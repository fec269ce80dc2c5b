package auth

import (
	"testing"

	"kitabi/middleware"
	"kitabi/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     "ravi",
		Role:         "user",
		AssignedZone: "NORTHZONE",
	}

	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := middleware.ValidateJWT("Bearer " + token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != user.ID.Hex() {
		t.Errorf("userId = %q, want %q", claims.UserID, user.ID.Hex())
	}
	if claims.Username != "ravi" || claims.Role != "user" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.AssignedZone != "NORTHZONE" {
		t.Errorf("assignedZone = %q", claims.AssignedZone)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")); err == nil {
		t.Error("wrong password verified")
	}
}
