package cart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fjod/matcha-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// storedLine mirrors domain.CartLine but keeps every field optional so broken
// entries can be told apart from zero values.
type storedLine struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  json.RawMessage  `json:"quantity"`
	Image     string           `json:"image"`
}

func encodeLines(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// decodeLines parses a stored cart. Lines missing productId, name, price or quantity
// are skipped and counted in dropped. A quantity that is not an integer decodes to 0.
func decodeLines(data []byte) (lines []domain.CartLine, dropped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	lines = make([]domain.CartLine, 0, len(raw))
	for _, item := range raw {
		var s storedLine
		if err := json.Unmarshal(item, &s); err != nil {
			dropped++
			continue
		}
		if s.ProductID == "" || s.Name == "" || s.Price == nil || isMissing(s.Quantity) {
			dropped++
			continue
		}
		lines = append(lines, domain.CartLine{
			ProductID: s.ProductID,
			Name:      s.Name,
			Price:     *s.Price,
			Quantity:  parseQuantity(s.Quantity),
			Image:     s.Image,
		})
	}
	return lines, dropped, nil
}

func isMissing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func parseQuantity(raw json.RawMessage) int {
	f, err := strconv.ParseFloat(strings.Trim(string(raw), `"`), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}
