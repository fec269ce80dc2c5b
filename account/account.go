package account

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// parseLedgerRows converts spreadsheet rows into ledger entries. The first
// row is the header; rows without particulars are skipped. Expected columns:
// SI No., Particulars, Date, NO., Dr, Cr, Amount.
func parseLedgerRows(rows [][]string, schoolID primitive.ObjectID) []models.LedgerEntry {
	entries := []models.LedgerEntry{}
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		particulars := strings.TrimSpace(cell(row, 1))
		if particulars == "" {
			continue
		}

		entry := models.LedgerEntry{
			SchoolID:    schoolID,
			Particulars: particulars,
			No:          strings.TrimSpace(cell(row, 3)),
		}
		entry.StNo, _ = strconv.Atoi(strings.TrimSpace(cell(row, 0)))
		if t, ok := parseLedgerDate(cell(row, 2)); ok {
			entry.Date = t
		}
		entry.Dr = parseAmount(cell(row, 4))
		entry.Cr = parseAmount(cell(row, 5))
		entry.Amount = parseAmount(cell(row, 6))
		entries = append(entries, entry)
	}
	return entries
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// parseLedgerDate tries the formats that show up in exported ledgers.
func parseLedgerDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006", "01-02-06", "2/1/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BulkImport reads an uploaded xlsx ledger and replaces the school's stored
// entries with its rows.
func BulkImport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	schoolID := ps.ByName("schoolId")
	schoolOID, err := primitive.ObjectIDFromHex(schoolID)
	if err != nil {
		utils.Fail(w, "Invalid school ID")
		return
	}
	if err := db.SchoolCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(schoolID)}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("School with ID %s not found", schoolID))
			return
		}
		utils.Internal(w, err)
		return
	}

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		utils.Fail(w, "Invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		utils.Fail(w, "An xlsx file is required")
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		utils.Fail(w, "Could not read the spreadsheet")
		return
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		utils.Fail(w, "The spreadsheet has no sheets")
		return
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		utils.Fail(w, "Could not read the spreadsheet")
		return
	}

	entries := parseLedgerRows(rows, schoolOID)
	if len(entries) == 0 {
		utils.Fail(w, "No ledger rows found in the spreadsheet")
		return
	}

	// re-import replaces, so repeated uploads stay idempotent
	if _, err := db.AccountCollection.DeleteMany(ctx, bson.M{"schoolId": db.IDFilter(schoolID)}); err != nil {
		utils.Internal(w, err)
		return
	}

	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = e
	}
	if _, err := db.AccountCollection.InsertMany(ctx, docs); err != nil {
		utils.Internal(w, err)
		return
	}

	utils.SuccessExtra(w, "Ledger imported successfully", entries, utils.M{"count": len(entries)})
}

// GetBySchool lists a school's ledger entries in statement order.
func GetBySchool(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	schoolID := ps.ByName("schoolId")
	cursor, err := db.AccountCollection.Find(ctx,
		bson.M{"schoolId": db.IDFilter(schoolID)},
		options.Find().SetSort(bson.M{"stNo": 1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	entries := []models.LedgerEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		utils.Internal(w, err)
		return
	}

	var dr, cr float64
	for _, e := range entries {
		dr += e.Dr
		cr += e.Cr
	}

	utils.SuccessExtra(w, "Ledger fetched successfully", entries, utils.M{
		"count":   len(entries),
		"totalDr": dr,
		"totalCr": cr,
	})
}

func DeleteEntry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id := ps.ByName("id")
	res, err := db.AccountCollection.DeleteOne(ctx, bson.M{"_id": db.IDFilter(id)})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	if res.DeletedCount == 0 {
		utils.Fail(w, fmt.Sprintf("Ledger entry with ID %s not found", id))
		return
	}

	utils.Success(w, "Ledger entry deleted successfully", nil)
}
