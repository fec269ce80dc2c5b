package order

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var exportHeader = []string{
	"Order ID", "Date", "School", "Agent", "Category", "Book",
	"Quantity", "Unit Price", "Line Total", "Order Total", "Status",
}

// exportRows flattens populated orders into one spreadsheet row per
// (order, book) pair.
func exportRows(views []orderView) [][]interface{} {
	rows := [][]interface{}{}
	for _, v := range views {
		school, agent := "", ""
		if v.School != nil {
			school = v.School.SchoolName
		}
		if v.User != nil {
			agent = v.User.Username
		}
		for _, line := range v.Items {
			for _, b := range line.Books {
				rows = append(rows, []interface{}{
					v.Order.ID.Hex(),
					v.Order.CreatedAt.Format("2006-01-02"),
					school,
					agent,
					line.CategoryName,
					b.Name,
					b.Quantity,
					b.Price,
					float64(b.Quantity) * b.Price,
					v.Order.TotalPayment,
					v.Order.Status,
				})
			}
		}
	}
	return rows
}

// ExportMyOrders streams the calling agent's orders as an xlsx attachment.
func ExportMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.Fail(w, "Unauthorized")
		return
	}

	writeExport(ctx, w, bson.M{"userId": db.IDFilter(userID)}, "my-orders.xlsx")
}

// ExportOrders streams every order, admin only by route policy.
func ExportOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	writeExport(ctx, w, filter, "orders.xlsx")
}

func writeExport(ctx context.Context, w http.ResponseWriter, filter bson.M, filename string) {
	cursor, err := db.OrderCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		utils.Internal(w, err)
		return
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		utils.Internal(w, err)
		return
	}

	views, err := populateOrders(ctx, orders)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)
	for col, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, row := range exportRows(views) {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Println("order export write error:", err)
	}
}
