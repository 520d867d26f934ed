package inventory

import (
	"fmt"
	"strings"

	"github.com/five82/pantry/internal/docstore"
)

// Collection is the store collection inventory documents live in.
const Collection = "inventory"

const (
	fieldQuantity     = "quantity"
	fieldSerialNumber = "serialNumber"
	fieldCategory     = "category"
)

// Record is one inventory line. Name is the document key.
type Record struct {
	Name         string
	Quantity     int
	SerialNumber string
	Category     string
}

// DisplayName upper-cases the first letter of the name.
func (r Record) DisplayName() string {
	if r.Name == "" {
		return ""
	}
	runes := []rune(r.Name)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// Fields returns the document body for r. The name is the key and is not
// part of the body.
func (r Record) Fields() docstore.Fields {
	return docstore.Fields{
		fieldQuantity:     int64(r.Quantity),
		fieldSerialNumber: r.SerialNumber,
		fieldCategory:     r.Category,
	}
}

// FromDocument decodes a stored document. Missing metadata reads as empty; a
// missing or non-positive quantity is an error.
func FromDocument(doc docstore.Document) (Record, error) {
	qty, ok := doc.Fields.Int(fieldQuantity)
	if !ok {
		return Record{}, fmt.Errorf("document %q: quantity missing or not an integer", doc.Key)
	}
	if qty <= 0 {
		return Record{}, fmt.Errorf("document %q: quantity %d is not positive", doc.Key, qty)
	}
	serial, _ := doc.Fields.String(fieldSerialNumber)
	category, _ := doc.Fields.String(fieldCategory)
	return Record{
		Name:         doc.Key,
		Quantity:     int(qty),
		SerialNumber: serial,
		Category:     category,
	}, nil
}

// TotalUnits sums the quantity of every record.
func TotalUnits(records []Record) int {
	total := 0
	for _, r := range records {
		total += r.Quantity
	}
	return total
}
