package model

import "github.com/shopspring/decimal"

// DefaultTitle is used when the form leaves custom_title blank.
const DefaultTitle = "Estimate"

var hundred = decimal.NewFromInt(100)

// LineItem is one priced row of the estimate.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Total returns quantity * rate, unrounded.
func (li LineItem) Total() decimal.Decimal {
	return li.Rate.Mul(decimal.NewFromInt(li.Quantity))
}

// Business holds the optional header block. Every field is independent.
type Business struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// Branding contém título, nota de rodapé e logo opcionais
type Branding struct {
	CustomTitle string `json:"custom_title"`
	FooterNote  string `json:"footer_note,omitempty"`
	Logo        []byte `json:"-"`
}

// Signature is either a TypedSignature or a DrawnSignature. A nil Signature
// means none was supplied.
type Signature interface {
	signature()
}

// TypedSignature is a name rendered in italics.
type TypedSignature struct {
	Name string
}

// DrawnSignature carries the hand-drawn image as a data URI. Decoding happens
// at render time so a broken payload only omits the signature block.
type DrawnSignature struct {
	DataURI string
}

func (TypedSignature) signature() {}
func (DrawnSignature) signature() {}

// EstimateRequest is the parsed, typed form submission.
type EstimateRequest struct {
	CustomerName   string
	CustomerPhone  string
	RequesterEmail string
	Date           string
	TaxPercent     decimal.Decimal
	Discount       decimal.Decimal
	LineItems      []LineItem
	Business       Business
	Branding       Branding
	Signature      Signature
	ShowPhone      bool
	ShowSignature  bool
	ShowThanks     bool
	Format         Format
}

// TaxRate returns the tax percent as a fraction.
func (r EstimateRequest) TaxRate() decimal.Decimal {
	return r.TaxPercent.Div(hundred)
}

// EstimateResult holds the derived totals for one submission.
type EstimateResult struct {
	EstimateID string          `json:"estimate_id"`
	LineItems  []LineItem      `json:"line_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Format is the document type returned to the requester.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used in the download response.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}
