// Package catalog holds the CatalogRecord that travels from the file parser
// to the batch processor, plus its row coercion and queue wire format.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ElenaCherpakova/e-store-aws-backend/services/common/errors"
)

// CSV header names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCount       = "count"
)

// SQS message attributes set by the file parser to identify a source row.
const (
	AttrSourceKey = "source_key"
	AttrSourceRow = "source_row"
)

// Record is one product to be created, before it has an id.
type Record struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Count       int     `json:"count" validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the record invariants: non-empty title, finite
// non-negative price, non-negative count.
func (r Record) Validate() error {
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return apperrors.ErrInvalidRecord.Wrap(fmt.Errorf("price must be a finite number"))
	}
	if err := validate.Struct(r); err != nil {
		return apperrors.ErrInvalidRecord.Wrap(err)
	}
	return nil
}

// FromRow converts a parsed CSV row (header -> raw value) into a validated
// Record. Numeric fields are coerced explicitly.
func FromRow(fields map[string]string) (Record, error) {
	rec := Record{
		Title:       strings.TrimSpace(fields[FieldTitle]),
		Description: strings.TrimSpace(fields[FieldDescription]),
	}

	rawPrice := strings.TrimSpace(fields[FieldPrice])
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return Record{}, apperrors.ErrInvalidRecord.Wrap(fmt.Errorf("price %q is not a number", rawPrice))
	}
	rec.Price = price

	rawCount := strings.TrimSpace(fields[FieldCount])
	count, err := strconv.Atoi(rawCount)
	if err != nil {
		return Record{}, apperrors.ErrInvalidRecord.Wrap(fmt.Errorf("count %q is not an integer", rawCount))
	}
	rec.Count = count

	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Encode serialises a single record as a queue message body.
func Encode(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal catalog record: %w", err)
	}
	return string(b), nil
}

// Decode parses a queue message body. A JSON array yields one record per
// element; any other JSON value is decoded as a single record.
// Records are not validated here.
func Decode(body string) ([]Record, error) {
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty message body")
	}

	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode catalog record array: %w", err)
		}
		return records, nil
	}

	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, fmt.Errorf("decode catalog record: %w", err)
	}
	return []Record{rec}, nil
}

// Summary is the human-readable notification text for a created product.
func (r Record) Summary() string {
	return fmt.Sprintf("Title: %s, Description: %s, Price: %s, Count: %d",
		r.Title, r.Description, FormatPrice(r.Price), r.Count)
}

// FormatPrice renders a price with the shortest exact representation.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
