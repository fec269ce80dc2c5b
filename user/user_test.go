package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kitabi/globals"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fcmTokenRequest(callerID, role string) *http.Request {
	r := httptest.NewRequest(http.MethodPatch, "/api/user/x/fcm-token",
		strings.NewReader(`{"fcmToken":"device-token"}`))
	ctx := context.WithValue(r.Context(), globals.UserIDKey, callerID)
	ctx = context.WithValue(ctx, globals.RoleKey, role)
	return r.WithContext(ctx)
}

func TestUpdateFcmTokenRejectsOtherUser(t *testing.T) {
	target := primitive.NewObjectID().Hex()
	caller := primitive.NewObjectID().Hex()

	w := httptest.NewRecorder()
	UpdateFcmToken(w, fcmTokenRequest(caller, globals.RoleUser),
		httprouter.Params{{Key: "id", Value: target}})

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}
