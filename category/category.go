package category

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"kitabi/db"
	"kitabi/filemgr"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var name, description, imagePath string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		name = r.FormValue("name")
		description = r.FormValue("description")
		saved, err := filemgr.FromForm(r, "image")
		if err != nil {
			utils.Fail(w, err.Error())
			return
		}
		imagePath = saved
	} else {
		var payload struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Image       string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		name, description, imagePath = payload.Name, payload.Description, payload.Image
	}

	if name == "" {
		utils.Fail(w, "Category name is required")
		return
	}

	now := time.Now()
	cat := models.Category{
		Name:        name,
		Description: description,
		Image:       imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := db.CategoryCollection.InsertOne(ctx, cat)
	if err != nil {
		log.Println("CreateCategory InsertOne error:", err)
		utils.Internal(w, err)
		return
	}
	cat.ID = res.InsertedID.(primitive.ObjectID)

	utils.Success(w, "Category created successfully", cat)
}

func GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	cursor, err := db.CategoryCollection.Find(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Categories fetched successfully", categories)
}

// GetCategoriesWithStats attaches live book counts per category. The count
// is always derived, never stored. The $lookup matches both ObjectID and
// string category references because legacy books stored either form.
func GetCategoriesWithStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	match := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		match["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from": "books",
			"let":  bson.M{"categoryId": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$or": bson.A{
					bson.M{"$eq": bson.A{"$category", "$$categoryId"}},
					bson.M{"$eq": bson.A{"$category", bson.M{"$toString": "$$categoryId"}}},
				}}}},
			},
			"as": "books",
		}}},
		{{Key: "$project", Value: bson.M{
			"name":        1,
			"image":       1,
			"description": 1,
			"totalBooks":  bson.M{"$size": "$books"},
		}}},
	}

	cursor, err := db.CategoryCollection.Aggregate(ctx, pipeline)
	if err != nil {
		log.Println("GetCategoriesWithStats aggregate error:", err)
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	stats := []models.CategoryStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Categories with stats fetched successfully", stats)
}

// GetCategoryList returns id/name pairs for dropdowns.
func GetCategoryList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.CategoryCollection.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "name": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	list := []bson.M{}
	if err := cursor.All(ctx, &list); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Category list fetched successfully", list)
}

func GetCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid category ID")
		return
	}

	var cat models.Category
	if err := db.CategoryCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&cat); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Category fetched successfully", cat)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid category ID")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		if v := r.FormValue("name"); v != "" {
			update["name"] = v
		}
		if v := r.FormValue("description"); v != "" {
			update["description"] = v
		}
		saved, err := filemgr.FromForm(r, "image")
		if err != nil {
			utils.Fail(w, err.Error())
			return
		}
		if saved != "" {
			update["image"] = saved
		}
	} else {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		for _, k := range []string{"name", "description", "image"} {
			if v, ok := payload[k].(string); ok && v != "" {
				update[k] = v
			}
		}
	}

	var cat models.Category
	err = db.CategoryCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Category updated successfully", cat)
}

func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid category ID")
		return
	}

	var cat models.Category
	if err := db.CategoryCollection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&cat); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Category with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Category deleted successfully", cat)
}
