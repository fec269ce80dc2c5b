package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserOrderItem is one entry in the user's embedded payment ledger,
// denormalized from the matching Order document.
type UserOrderItem struct {
	OrderID       primitive.ObjectID `bson:"orderId" json:"orderId"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentAmount float64            `bson:"paymentAmount" json:"paymentAmount"`
	PaidAmount    float64            `bson:"paidAmount" json:"paidAmount"`
	DueAmount     float64            `bson:"dueAmount" json:"dueAmount"`
	Remarks       string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// UserOrderSummary is the running payment summary across every order the
// user has placed. paidAmount + dueAmount == paymentAmount holds per item.
type UserOrderSummary struct {
	TotalPayment    float64         `bson:"totalPayment" json:"totalPayment"`
	TotalDuePayment float64         `bson:"totalDuePayment" json:"totalDuePayment"`
	Items           []UserOrderItem `bson:"items" json:"items"`
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	ProfilePhoto string             `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
	AssignedZone string             `bson:"assignedZone" json:"assignedZone"`
	Orders       UserOrderSummary   `bson:"orders" json:"orders"`
	LastLogin    time.Time          `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	Status       string             `bson:"status" json:"status"`
	FcmToken     string             `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// UserRef is the populated projection attached to joined documents.
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}
