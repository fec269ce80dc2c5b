package order

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"kitabi/db"
	"kitabi/models"
	"kitabi/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetInvoice renders an order as a PDF invoice with a QR code carrying the
// order reference.
func GetInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	id := ps.ByName("id")
	var ord models.Order
	if err := db.OrderCollection.FindOne(ctx, bson.M{"_id": db.IDFilter(id)}).Decode(&ord); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.Fail(w, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		utils.Internal(w, err)
		return
	}

	views, err := populateOrders(ctx, []models.Order{ord})
	if err != nil {
		utils.Internal(w, err)
		return
	}
	view := views[0]

	qrPNG, err := qrcode.Encode("order:"+ord.ID.Hex(), qrcode.Medium, 256)
	if err != nil {
		utils.Internal(w, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order ID: %s", ord.ID.Hex()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", ord.CreatedAt.Format("2006-01-02")))
	pdf.Ln(7)
	if view.School != nil {
		pdf.Cell(0, 8, fmt.Sprintf("School: %s, %s", view.School.SchoolName, view.School.Address))
		pdf.Ln(7)
	}
	if view.User != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Agent: %s", view.User.Username))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", ord.Status))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(70, 8, "Book", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Category", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, line := range view.Items {
		for _, b := range line.Books {
			pdf.CellFormat(70, 8, b.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 8, line.CategoryName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 8, fmt.Sprintf("%d", b.Quantity), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", b.Price), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", float64(b.Quantity)*b.Price), "1", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	if ord.Discount > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Discount: %.2f%%", ord.Discount))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Total Payment: %.2f", ord.TotalPayment))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 20, 35, 35, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.Internal(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+ord.ID.Hex()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
