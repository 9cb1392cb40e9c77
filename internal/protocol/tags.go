package protocol

// Top-level field tags.
const (
	TagMessageType    = "001"
	TagAmount         = "002"
	TagNCAI           = "003"
	TagSequence       = "004"
	TagDate           = "005"
	TagTime           = "006"
	TagCardNumber     = "007"
	TagSTAN           = "008"
	TagAuthNumber     = "009"
	TagPrintData      = "010"
	TagCurrency       = "011"
	TagCardholderName = "012"
	TagResponseCode   = "013"
	TagCardExpiry     = "014"
	TagEntryMode      = "015"
)

// Message type codes carried in TagMessageType.
const (
	MsgPaymentRequest      = "001"
	MsgConfirmationRequest = "002"
)

const (
	// CurrencyMAD is the ISO 4217 numeric code for the Moroccan dirham.
	CurrencyMAD = "504"

	ResponseApproved = "000"

	DateLayout = "02012006"
	TimeLayout = "150405"
)

var tagNames = map[string]string{
	TagMessageType:    "message_type",
	TagAmount:         "amount",
	TagNCAI:           "ncai",
	TagSequence:       "sequence",
	TagDate:           "date",
	TagTime:           "time",
	TagCardNumber:     "card_number",
	TagSTAN:           "stan",
	TagAuthNumber:     "auth_number",
	TagPrintData:      "print_data",
	TagCurrency:       "currency",
	TagCardholderName: "cardholder_name",
	TagResponseCode:   "response_code",
	TagCardExpiry:     "card_expiry",
	TagEntryMode:      "entry_mode",
}

// TagName returns a stable log-friendly name for tag, or the tag itself.
func TagName(tag string) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return tag
}
