package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Title        string             `bson:"title" json:"title"`
	Body         string             `bson:"body" json:"body"`
	Data         map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ErrorMessage string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	IsRead       bool               `bson:"isRead" json:"isRead"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

type Attendance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      time.Time          `bson:"date" json:"date"` // start of day
	Status    string             `bson:"status" json:"status"`
	LoginTime time.Time          `bson:"loginTime,omitempty" json:"loginTime,omitempty"`
	Remarks   string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// LedgerEntry is one imported row of a school's account ledger.
type LedgerEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SchoolID    primitive.ObjectID `bson:"schoolId" json:"schoolId"`
	StNo        int                `bson:"stNo" json:"stNo"`
	Particulars string             `bson:"particulars" json:"particulars"`
	Date        time.Time          `bson:"date" json:"date"`
	No          string             `bson:"no,omitempty" json:"no,omitempty"`
	Dr          float64            `bson:"dr" json:"dr"`
	Cr          float64            `bson:"cr" json:"cr"`
	Amount      float64            `bson:"amount" json:"amount"`
}
