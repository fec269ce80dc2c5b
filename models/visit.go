package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visit statuses, derived from the latest visit detail unless a request
// supplies one explicitly.
const (
	VisitPending     = "pending"
	VisitRescheduled = "rescheduled"
	VisitCompleted   = "completed"
)

// VisitDetail is one dated entry in a visit's append-only log.
type VisitDetail struct {
	Date          time.Time `bson:"date" json:"date"`
	Particulars   string    `bson:"particulars" json:"particulars"`
	Remarks       string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
	NextVisitDate time.Time `bson:"nextVisitDate,omitempty" json:"nextVisitDate,omitempty"`
	Location      string    `bson:"location" json:"location"`
	Photo         string    `bson:"photo,omitempty" json:"photo,omitempty"`
}

type Visit struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	SchoolID     primitive.ObjectID `bson:"schoolId" json:"schoolId"`
	ScheduleDate time.Time          `bson:"scheduleDate" json:"scheduleDate"`
	Status       string             `bson:"status" json:"status"`
	VisitDetails []VisitDetail      `bson:"visitDetails" json:"visitDetails"`
	CreatedAt    time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
