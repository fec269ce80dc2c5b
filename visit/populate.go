package visit

import (
	"context"

	"kitabi/db"
	"kitabi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type visitView struct {
	models.Visit `bson:",inline"`
	User         *models.UserRef   `json:"user,omitempty"`
	School       *models.SchoolRef `json:"school,omitempty"`
}

// populateVisits attaches user and school projections with two batched
// lookups.
func populateVisits(ctx context.Context, visits []models.Visit) ([]visitView, error) {
	userIDs := make([]primitive.ObjectID, 0, len(visits))
	schoolIDs := make([]primitive.ObjectID, 0, len(visits))
	for _, v := range visits {
		userIDs = append(userIDs, v.UserID)
		schoolIDs = append(schoolIDs, v.SchoolID)
	}

	users := map[primitive.ObjectID]models.UserRef{}
	if len(userIDs) > 0 {
		cursor, err := db.UserCollection.Find(ctx,
			bson.M{"_id": bson.M{"$in": userIDs}},
			options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "email": 1}))
		if err != nil {
			return nil, err
		}
		var refs []models.UserRef
		if err := cursor.All(ctx, &refs); err != nil {
			return nil, err
		}
		for _, u := range refs {
			users[u.ID] = u
		}
	}

	schools := map[primitive.ObjectID]models.SchoolRef{}
	if len(schoolIDs) > 0 {
		cursor, err := db.SchoolCollection.Find(ctx,
			bson.M{"_id": bson.M{"$in": schoolIDs}},
			options.Find().SetProjection(bson.M{"_id": 1, "schoolName": 1, "address": 1, "zone": 1}))
		if err != nil {
			return nil, err
		}
		var refs []models.SchoolRef
		if err := cursor.All(ctx, &refs); err != nil {
			return nil, err
		}
		for _, s := range refs {
			schools[s.ID] = s
		}
	}

	views := make([]visitView, 0, len(visits))
	for _, v := range visits {
		view := visitView{Visit: v}
		if u, ok := users[v.UserID]; ok {
			view.User = &u
		}
		if s, ok := schools[v.SchoolID]; ok {
			view.School = &s
		}
		views = append(views, view)
	}
	return views, nil
}
