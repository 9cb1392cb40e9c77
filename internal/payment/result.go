package payment

import (
	"fmt"

	"github.com/danmuck/tkpay/internal/protocol"
	"github.com/danmuck/tkpay/internal/protocol/receipt"
)

// Terminal response codes with a dedicated meaning.
const (
	ResponseApproved            = protocol.ResponseApproved
	ResponseTransactionNotFound = "302"
	ResponseCancelled           = "480"
	ResponseAlreadyCancelled    = "482"
	ResponseTerminalDown        = "909"
)

// PaymentResult is the outcome of one completed transaction.
type PaymentResult struct {
	Success       bool   `json:"success"`
	ResponseCode  string `json:"response_code"`
	TransactionID string `json:"transaction_id"`
	NCAI          string `json:"ncai"`
	Sequence      string `json:"sequence"`
	STAN          string `json:"stan,omitempty"`

	// CardNumber is always masked.
	CardNumber      string           `json:"card_number,omitempty"`
	CardExpiry      string           `json:"card_expiry,omitempty"`
	EntryMode       string           `json:"entry_mode,omitempty"`
	AuthNumber      string           `json:"auth_number,omitempty"`
	CardholderName  string           `json:"cardholder_name,omitempty"`
	MerchantReceipt *receipt.Receipt `json:"merchant_receipt,omitempty"`
	CustomerReceipt *receipt.Receipt `json:"customer_receipt,omitempty"`

	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// DeclineMessage maps a non-approved response code to a readable message.
func DeclineMessage(code string) string {
	switch code {
	case ResponseTerminalDown:
		return "terminal or server is down"
	case ResponseTransactionNotFound:
		return "transaction not found"
	case ResponseAlreadyCancelled:
		return "transaction already cancelled"
	case ResponseCancelled:
		return "transaction cancelled"
	default:
		return fmt.Sprintf("payment declined with code %s", code)
	}
}

// DeclineErrorCode maps a non-approved response code to the error taxonomy.
func DeclineErrorCode(code string) ErrorCode {
	switch code {
	case ResponseTerminalDown:
		return CodeTerminalDown
	case ResponseTransactionNotFound:
		return CodeTransactionNotFound
	case ResponseAlreadyCancelled:
		return CodeAlreadyCancelled
	default:
		return CodePaymentDeclined
	}
}

func (r *PaymentResult) decline(code string) {
	r.Success = false
	r.ResponseCode = code
	r.ErrorCode = DeclineErrorCode(code)
	r.ErrorMessage = DeclineMessage(code)
}

// applyConfirmation copies card, authorization, and receipt data from the
// confirmation response.
func (r *PaymentResult) applyConfirmation(f protocol.Fields) {
	if stan := f.Value(protocol.TagSTAN); stan != "" {
		r.STAN = stan
	}
	r.CardNumber = f.Value(protocol.TagCardNumber)
	r.CardExpiry = f.Value(protocol.TagCardExpiry)
	r.EntryMode = f.Value(protocol.TagEntryMode)
	r.AuthNumber = f.Value(protocol.TagAuthNumber)
	r.CardholderName = f.Value(protocol.TagCardholderName)
	if data, ok := f.Get(protocol.TagPrintData); ok && data != "" {
		merchant := receipt.Parse(data, receipt.Merchant)
		customer := receipt.Parse(data, receipt.Customer)
		r.MerchantReceipt = &merchant
		r.CustomerReceipt = &customer
	}
}
