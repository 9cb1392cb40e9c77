package payment

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	registerIDLen = 2
	cashierIDLen  = 5
	sequenceLen   = 6
)

var (
	hundred       = decimal.NewFromInt(100)
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// PaymentRequest asks the terminal to charge Amount for one till.
type PaymentRequest struct {
	Amount     decimal.Decimal
	RegisterID string
	CashierID  string
	// Sequence is optional; the client generates one when empty.
	Sequence string
}

// Validate checks request shape before any network activity.
func (r PaymentRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return validationError("amount must be greater than zero, got %s", r.Amount.String())
	}
	minor := r.minor()
	if minor.LessThan(decimal.NewFromInt(1)) {
		return validationError("amount %s is below one minor unit", r.Amount.String())
	}
	if minor.GreaterThan(maxMinorUnits) {
		return validationError("amount %s exceeds the largest supported amount", r.Amount.String())
	}
	if !isDigitsLen(r.RegisterID, registerIDLen) {
		return validationError("register id must be exactly %d digits, got %q", registerIDLen, r.RegisterID)
	}
	if !isDigitsLen(r.CashierID, cashierIDLen) {
		return validationError("cashier id must be exactly %d digits, got %q", cashierIDLen, r.CashierID)
	}
	if r.Sequence != "" && !isDigitsLen(r.Sequence, sequenceLen) {
		return validationError("sequence must be exactly %d digits, got %q", sequenceLen, r.Sequence)
	}
	return nil
}

// NCAI identifies the requesting till: register id followed by cashier id.
func (r PaymentRequest) NCAI() string {
	return r.RegisterID + r.CashierID
}

// MinorUnits converts Amount to centimes, rounding half away from zero.
// It is only exact for amounts that pass Validate.
func (r PaymentRequest) MinorUnits() int64 {
	return r.minor().IntPart()
}

// MinorUnitsString is the decimal rendering of the centime amount sent on the wire.
func (r PaymentRequest) MinorUnitsString() string {
	return r.minor().BigInt().String()
}

func (r PaymentRequest) minor() decimal.Decimal {
	return r.Amount.Mul(hundred).Round(0)
}

func isDigitsLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
