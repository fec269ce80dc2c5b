package order

import "fmt"

// bookStock is what the validator needs to know about a book.
type bookStock struct {
	Name  string
	Stock int
}

// checkStock validates every requested quantity against available stock.
// The whole batch is checked before any write happens: a single shortfall
// rejects the order with zero side effects. The error names the book and
// the available vs requested quantities.
func checkStock(requested map[string]int, available map[string]bookStock) error {
	for bookID, want := range requested {
		b, ok := available[bookID]
		if !ok {
			return fmt.Errorf("Book with ID %s not found", bookID)
		}
		if b.Stock < want {
			return fmt.Errorf("Insufficient stock for %q: requested %d, available %d", b.Name, want, b.Stock)
		}
	}
	return nil
}
