package extraction

// Invoice is the structured record produced from the OCR text of one invoice.
// Every field is independently nullable; the JSON names are the field-name
// contract shared with the compliance checker and downstream exporters.
type Invoice struct {
	Total         *float64        `json:"total"`
	TotalHT       *float64        `json:"total_ht"`
	TotalTTC      *float64        `json:"total_ttc"`
	TVA           *float64        `json:"tva"` // derived from total_ttc - total_ht, never extracted
	Currency      string          `json:"currency"`
	Date          *string         `json:"date"`
	InvoiceNumber *string         `json:"invoice_number"`
	Vendor        *string         `json:"vendor"`
	Client        *string         `json:"client"`
	Items         []LineItem      `json:"items"`
	Tables        []DetectedTable `json:"tables"`
	BankingInfo   *BankingInfo    `json:"banking_info"`
	Text          string          `json:"text"`
	Lines         Lines           `json:"lines"`
}

// LineItem is one billed row of the invoice body.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	Total       *float64 `json:"total"`
}

// DetectedTable is a tabular region recognised from a header line.
type DetectedTable struct {
	Header []string            `json:"header"`
	Rows   []map[string]string `json:"rows"`
}

// BankingInfo holds payment coordinates found on the invoice. Swift and BIC
// always carry the same value.
type BankingInfo struct {
	IBAN          *string `json:"iban"`
	Swift         *string `json:"swift"`
	BIC           *string `json:"bic"`
	RIB           *string `json:"rib"`
	AccountNumber *string `json:"account_number"`
	BankName      *string `json:"bank_name"`
}

// Found returns the number of distinct banking sub-fields that were detected.
func (b *BankingInfo) Found() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, v := range []*string{b.IBAN, b.BIC, b.RIB, b.AccountNumber, b.BankName} {
		if v != nil {
			n++
		}
	}
	return n
}

// Token is a word recognised by the OCR engine with its bounding box.
type Token struct {
	Text       string  `json:"text"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Input is what the OCR engine hands to the extractor.
type Input struct {
	Text   string
	Tokens []Token
}

// Field names used as confidence keys.
const (
	FieldTotal         = "total"
	FieldTotalHT       = "total_ht"
	FieldTotalTTC      = "total_ttc"
	FieldTVA           = "tva"
	FieldDate          = "date"
	FieldInvoiceNumber = "invoice_number"
	FieldVendor        = "vendor"
	FieldClient        = "client"
	FieldItems         = "items"
	FieldTables        = "tables"
	FieldBankingInfo   = "banking_info"
)

// ConfidenceMap maps a field name to a score in [0,1]. A zero score means the
// field was not found.
type ConfidenceMap map[string]float64

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
