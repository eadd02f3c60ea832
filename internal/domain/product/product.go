package product

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// NotFoundError indicates a catalog lookup miss for a specific product.
type NotFoundError struct {
	Product Product
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.Product)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Unit is the unit a product is sold in.
type Unit int

const (
	// Each is sold by the piece.
	Each Unit = iota
	// Kilo is sold by weight.
	Kilo
)

func (u Unit) String() string {
	switch u {
	case Each:
		return "each"
	case Kilo:
		return "kilo"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// ParseUnit parses "each" or "kilo", ignoring case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "each":
		return Each, nil
	case "kilo":
		return Kilo, nil
	default:
		return 0, errors.Errorf("unknown product unit %q", s)
	}
}

// Product identifies an article by name and unit. It is comparable and used
// as a map key.
type Product struct {
	Name string
	Unit Unit
}

func (p Product) String() string {
	return fmt.Sprintf("%q (%s)", p.Name, p.Unit)
}

// Catalog resolves the unit price of a product. Implementations return a
// *NotFoundError for unknown products.
type Catalog interface {
	UnitPrice(p Product) (decimal.Decimal, error)
}

// Format renders an amount in this unit: three decimals by weight, a whole
// count by the piece.
func (u Unit) Format(amount decimal.Decimal) string {
	if u == Kilo {
		return amount.StringFixed(3)
	}
	return amount.Truncate(0).String()
}
