package provider

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateBasket checks that the basket is non-empty and every item is well-formed
func ValidateBasket(items []BasketItem) error {
	if len(items) == 0 {
		return ErrEmptyBasket
	}

	for i, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d (%s) has quantity %d", ErrInvalidBasketItem, i, item.Name, item.Quantity)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: item %d (%s) has negative price", ErrInvalidBasketItem, i, item.Name)
		}
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidBasketItem, i)
		}
	}

	return nil
}

// BasketTotal sums price times quantity over all items
func BasketTotal(items []BasketItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// BasketTuples returns the basket as [name, "12.34", quantity] rows in basket order
func BasketTuples(items []BasketItem) [][]any {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{item.Name, FormatPrice(item.Price), item.Quantity})
	}
	return rows
}

// EncodeBasket serializes the basket tuples to JSON and base64-encodes the bytes.
// HTML escaping is off so names like "Çay & Kahve" keep their literal bytes.
func EncodeBasket(items []BasketItem) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(BasketTuples(items)); err != nil {
		return "", fmt.Errorf("encoding basket: %w", err)
	}

	// Encoder appends a newline
	raw := bytes.TrimRight(buf.Bytes(), "\n")

	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeBasket reverses EncodeBasket
func DecodeBasket(encoded string) ([][]any, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding basket: %w", err)
	}

	var rows [][]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parsing basket: %w", err)
	}

	return rows, nil
}
