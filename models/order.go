package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Transitions are forward only: Pending → Partial → Completed.
const (
	OrderPending   = "Pending"
	OrderPartial   = "Partial"
	OrderCompleted = "Completed"
	OrderCancelled = "Cancelled"
)

// Payment statuses on the user's embedded summary items.
const (
	PaymentPending = "Pending"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

type OrderBookItem struct {
	BookID   primitive.ObjectID `bson:"bookId" json:"bookId"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type OrderCategoryItem struct {
	CategoryID primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Books      []OrderBookItem    `bson:"books" json:"books"`
}

type Order struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	SchoolID     primitive.ObjectID  `bson:"schoolId" json:"schoolId"`
	OrderType    string              `bson:"orderType" json:"orderType"`
	Discount     float64             `bson:"discount" json:"discount"`
	PaymentTerms string              `bson:"paymentTerms,omitempty" json:"paymentTerms,omitempty"`
	TotalPayment float64             `bson:"totalPayment" json:"totalPayment"`
	Image        string              `bson:"image,omitempty" json:"image,omitempty"`
	Status       string              `bson:"status" json:"status"`
	OrderItems   []OrderCategoryItem `bson:"orderItems" json:"orderItems"`
	CreatedAt    time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
