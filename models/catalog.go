package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type School struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SchoolName        string             `bson:"schoolName" json:"schoolName"`
	Address           string             `bson:"address" json:"address"`
	ContactPersonName string             `bson:"contactPersonName" json:"contactPersonName"`
	ContactNumber     string             `bson:"contactNumber" json:"contactNumber"`
	EducationLimit    string             `bson:"educationLimit" json:"educationLimit"`
	ScheduleVisitDate time.Time          `bson:"scheduleVisitDate" json:"scheduleVisitDate"`
	Remark            string             `bson:"remark,omitempty" json:"remark,omitempty"`
	Zone              string             `bson:"zone" json:"zone"`
	CreatedAt         time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt         time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SchoolRef is the populated projection attached to joined documents.
type SchoolRef struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	SchoolName string             `bson:"schoolName" json:"schoolName"`
	Address    string             `bson:"address" json:"address"`
	Zone       string             `bson:"zone,omitempty" json:"zone,omitempty"`
}

type Book struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Class       string             `bson:"class" json:"class"`
	Pages       int                `bson:"pages,omitempty" json:"pages,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Video       string             `bson:"video,omitempty" json:"video,omitempty"`
	CoverImage  string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	PDF         string             `bson:"pdf,omitempty" json:"pdf,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	Author      string             `bson:"author,omitempty" json:"author,omitempty"`
	ISBN        string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CategoryStats is a Category plus its live book count, derived on read.
type CategoryStats struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	TotalBooks  int                `bson:"totalBooks" json:"totalBooks"`
}

type Zone struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
