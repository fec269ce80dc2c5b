package order

import (
	"context"

	"kitabi/db"
	"kitabi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderBookView struct {
	models.OrderBookItem `bson:",inline"`
	Name                 string `json:"name,omitempty"`
}

type orderLineView struct {
	CategoryID   primitive.ObjectID `json:"categoryId"`
	CategoryName string             `json:"categoryName,omitempty"`
	Books        []orderBookView    `json:"books"`
}

type orderView struct {
	models.Order `bson:",inline"`
	User         *models.UserRef   `json:"user,omitempty"`
	School       *models.SchoolRef `json:"school,omitempty"`
	Items        []orderLineView   `json:"items,omitempty"`
}

// populateOrders attaches user, school, category and book projections with
// four batched lookups instead of per-order queries.
func populateOrders(ctx context.Context, orders []models.Order) ([]orderView, error) {
	userIDs := map[primitive.ObjectID]bool{}
	schoolIDs := map[primitive.ObjectID]bool{}
	categoryIDs := map[primitive.ObjectID]bool{}
	bookIDs := map[primitive.ObjectID]bool{}
	for _, o := range orders {
		userIDs[o.UserID] = true
		schoolIDs[o.SchoolID] = true
		for _, cat := range o.OrderItems {
			categoryIDs[cat.CategoryID] = true
			for _, b := range cat.Books {
				bookIDs[b.BookID] = true
			}
		}
	}

	users := map[primitive.ObjectID]models.UserRef{}
	if err := fetchInto(ctx, db.UserCollection, userIDs,
		bson.M{"_id": 1, "username": 1, "email": 1},
		func(raw bson.Raw) error {
			var u models.UserRef
			if err := bson.Unmarshal(raw, &u); err != nil {
				return err
			}
			users[u.ID] = u
			return nil
		}); err != nil {
		return nil, err
	}

	schools := map[primitive.ObjectID]models.SchoolRef{}
	if err := fetchInto(ctx, db.SchoolCollection, schoolIDs,
		bson.M{"_id": 1, "schoolName": 1, "address": 1, "zone": 1},
		func(raw bson.Raw) error {
			var s models.SchoolRef
			if err := bson.Unmarshal(raw, &s); err != nil {
				return err
			}
			schools[s.ID] = s
			return nil
		}); err != nil {
		return nil, err
	}

	categories := map[primitive.ObjectID]string{}
	if err := fetchInto(ctx, db.CategoryCollection, categoryIDs,
		bson.M{"_id": 1, "name": 1},
		func(raw bson.Raw) error {
			var c struct {
				ID   primitive.ObjectID `bson:"_id"`
				Name string             `bson:"name"`
			}
			if err := bson.Unmarshal(raw, &c); err != nil {
				return err
			}
			categories[c.ID] = c.Name
			return nil
		}); err != nil {
		return nil, err
	}

	books := map[primitive.ObjectID]string{}
	if err := fetchInto(ctx, db.BookCollection, bookIDs,
		bson.M{"_id": 1, "name": 1},
		func(raw bson.Raw) error {
			var b struct {
				ID   primitive.ObjectID `bson:"_id"`
				Name string             `bson:"name"`
			}
			if err := bson.Unmarshal(raw, &b); err != nil {
				return err
			}
			books[b.ID] = b.Name
			return nil
		}); err != nil {
		return nil, err
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		v := orderView{Order: o}
		if u, ok := users[o.UserID]; ok {
			v.User = &u
		}
		if s, ok := schools[o.SchoolID]; ok {
			v.School = &s
		}
		for _, cat := range o.OrderItems {
			line := orderLineView{
				CategoryID:   cat.CategoryID,
				CategoryName: categories[cat.CategoryID],
			}
			for _, b := range cat.Books {
				line.Books = append(line.Books, orderBookView{
					OrderBookItem: b,
					Name:          books[b.BookID],
				})
			}
			v.Items = append(v.Items, line)
		}
		views = append(views, v)
	}
	return views, nil
}

func fetchInto(ctx context.Context, coll *mongo.Collection, idSet map[primitive.ObjectID]bool, projection bson.M, decode func(bson.Raw) error) error {
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(projection))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		if err := decode(cursor.Current); err != nil {
			return err
		}
	}
	return cursor.Err()
}
