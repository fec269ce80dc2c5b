package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
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

// bookView is a Book with its category populated for responses.
type bookView struct {
	models.Book `bson:",inline"`
	CategoryRef *bson.M `json:"categoryRef,omitempty"`
}

func CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	book := models.Book{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(2 * filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		book.Name = r.FormValue("name")
		book.Description = r.FormValue("description")
		book.Class = r.FormValue("class")
		book.Author = r.FormValue("author")
		book.ISBN = r.FormValue("isbn")
		book.Pages, _ = strconv.Atoi(r.FormValue("pages"))
		book.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
		book.Stock, _ = strconv.Atoi(r.FormValue("stock"))
		if oid, err := primitive.ObjectIDFromHex(r.FormValue("category")); err == nil {
			book.Category = oid
		}

		cover, err := filemgr.FromForm(r, "coverImage")
		if err != nil {
			utils.Fail(w, err.Error())
			return
		}
		pdf, err := filemgr.FromForm(r, "pdf")
		if err != nil {
			utils.Fail(w, err.Error())
			return
		}
		book.CoverImage = cover
		book.PDF = pdf
	} else {
		if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
	}

	if book.Name == "" || book.Class == "" || book.Price <= 0 || book.Category.IsZero() {
		utils.Fail(w, "name, class, price and category are required")
		return
	}
	if book.Stock < 0 {
		utils.Fail(w, "stock cannot be negative")
		return
	}

	now := time.Now()
	book.ID = primitive.NilObjectID
	book.CreatedAt = now
	book.UpdatedAt = now

	res, err := db.BookCollection.InsertOne(ctx, book)
	if err != nil {
		log.Println("CreateBook InsertOne error:", err)
		utils.Internal(w, err)
		return
	}
	book.ID = res.InsertedID.(primitive.ObjectID)

	utils.Success(w, "Book created successfully", book)
}

func GetBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	books, err := findPopulated(ctx, filter)
	if err != nil {
		log.Println("GetBooks error:", err)
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Books fetched successfully", books)
}

func GetBooksByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"category": db.IDFilter(ps.ByName("categoryId"))}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	books, err := findPopulated(ctx, filter)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Books fetched by category successfully", books)
}

func findPopulated(ctx context.Context, filter bson.M) ([]bookView, error) {
	cursor, err := db.BookCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}

	// batch-fetch categories for population
	catIDs := make([]primitive.ObjectID, 0, len(books))
	seen := map[primitive.ObjectID]bool{}
	for _, b := range books {
		if !b.Category.IsZero() && !seen[b.Category] {
			catIDs = append(catIDs, b.Category)
			seen[b.Category] = true
		}
	}
	catsByID := map[primitive.ObjectID]bson.M{}
	if len(catIDs) > 0 {
		catCursor, err := db.CategoryCollection.Find(ctx,
			bson.M{"_id": bson.M{"$in": catIDs}},
			options.Find().SetProjection(bson.M{"name": 1}))
		if err != nil {
			return nil, err
		}
		defer catCursor.Close(ctx)
		var cats []bson.M
		if err := catCursor.All(ctx, &cats); err != nil {
			return nil, err
		}
		for _, c := range cats {
			if id, ok := c["_id"].(primitive.ObjectID); ok {
				catsByID[id] = c
			}
		}
	}

	views := make([]bookView, 0, len(books))
	for _, b := range books {
		v := bookView{Book: b}
		if c, ok := catsByID[b.Category]; ok {
			cc := c
			v.CategoryRef = &cc
		}
		views = append(views, v)
	}
	return views, nil
}

func GetBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid book ID")
		return
	}

	var book models.Book
	if err := db.BookCollection.FindOne(ctx, bson.M{"_id": oid}).Decode(&book); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Book with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Book fetched successfully", book)
}

func UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid book ID")
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(2 * filemgr.MaxFileSize); err != nil {
			utils.Fail(w, "Invalid multipart payload")
			return
		}
		for _, k := range []string{"name", "description", "class", "author", "isbn"} {
			if v := r.FormValue(k); v != "" {
				update[k] = v
			}
		}
		if v := r.FormValue("pages"); v != "" {
			update["pages"], _ = strconv.Atoi(v)
		}
		if v := r.FormValue("price"); v != "" {
			update["price"], _ = strconv.ParseFloat(v, 64)
		}
		if v := r.FormValue("stock"); v != "" {
			update["stock"], _ = strconv.Atoi(v)
		}
		if v := r.FormValue("category"); v != "" {
			if catID, err := primitive.ObjectIDFromHex(v); err == nil {
				update["category"] = catID
			}
		}
		if cover, err := filemgr.FromForm(r, "coverImage"); err == nil && cover != "" {
			update["coverImage"] = cover
		}
		if pdf, err := filemgr.FromForm(r, "pdf"); err == nil && pdf != "" {
			update["pdf"] = pdf
		}
	} else {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.Fail(w, "Invalid JSON payload")
			return
		}
		delete(payload, "_id")
		if v, ok := payload["category"].(string); ok {
			if catID, err := primitive.ObjectIDFromHex(v); err == nil {
				payload["category"] = catID
			}
		}
		for k, v := range payload {
			update[k] = v
		}
	}

	var book models.Book
	err = db.BookCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&book)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Book with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Book updated successfully", book)
}

func DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.Fail(w, "Invalid book ID")
		return
	}

	var book models.Book
	if err := db.BookCollection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&book); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Book with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	utils.Success(w, "Book deleted successfully", book)
}
