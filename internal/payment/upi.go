package payment

import (
	"fmt"
	"strconv"
	"strings"

	internal "github.com/saswatsusmoy/aarogyaai-backend/internal"
)

// Instruction is the payer-presentable artifact for one payment intent:
// the upi:// deep link and the payload a QR renderer encodes.
type Instruction struct {
	URI       string `json:"upi_url"`
	QRPayload string `json:"qr_code"`
}

// GenerateInstruction deterministically builds the UPI pay instruction for
// an amount and transaction identifier. Pure function, no I/O. The key
// order is fixed and load-bearing (pa, pn, am, cu, tn, tr): payer apps and
// the tests both depend on it, so the query string is assembled by hand
// rather than through url.Values (which sorts keys and escapes the note).
func GenerateInstruction(merchant internal.MerchantConfig, amount float64, transactionID string) (Instruction, error) {
	if amount <= 0 {
		return Instruction{}, internal.NewValidationError("amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if transactionID == "" {
		return Instruction{}, internal.NewValidationError("transaction id is required", internal.ErrCodeMissingIdentifier)
	}

	currency := merchant.Currency
	if currency == "" {
		currency = "INR"
	}

	note := fmt.Sprintf("%s Consultation - %s", merchant.Name, transactionID)

	params := []string{
		"pa=" + merchant.UPIID,
		"pn=" + merchant.Name,
		"am=" + FormatAmount(amount),
		"cu=" + currency,
		"tn=" + note,
		"tr=" + transactionID,
	}

	uri := "upi://pay?" + strings.Join(params, "&")

	return Instruction{URI: uri, QRPayload: uri}, nil
}

// FormatAmount renders a decimal amount the way the instruction format
// expects: shortest exact representation, but whole rupees always carry a
// trailing ".0" (500 → "500.0", 499.99 → "499.99").
func FormatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
