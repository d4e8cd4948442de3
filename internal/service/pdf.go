package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/go-pdf/fpdf"
)

// Block names, in the order they appear on the page.
const (
	BlockLogo      = "logo"
	BlockBusiness  = "business"
	BlockHeader    = "header"
	BlockCustomer  = "customer"
	BlockDate      = "date"
	BlockPhone     = "phone"
	BlockItems     = "items"
	BlockTotals    = "totals"
	BlockFooter    = "footer"
	BlockSignature = "signature"
	BlockThanks    = "thanks"
)

// ThanksMessage closes the document when show_thanks is set.
const ThanksMessage = "Thank you for your business!"

// Outcome records what happened to a block during rendering.
type Outcome string

const (
	OutcomeRendered Outcome = "rendered"
	// OutcomeSkipped: the block's condition was false.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeOmitted: the block was wanted but its image could not be placed.
	OutcomeOmitted Outcome = "omitted"
)

// ErrImagePlacement wraps fpdf failures while registering or drawing an image.
var ErrImagePlacement = errors.New("falha ao posicionar imagem")

// page geometry, millimetres on A4
const (
	logoX          = 80.0
	logoWidth      = 50.0
	signatureX     = 10.0
	signatureWidth = 60.0
)

// BlockOutcome is the result of one layout block.
type BlockOutcome struct {
	Block  string
	Status Outcome
	Err    error
}

// TextLine is a line of text written to the page.
type TextLine struct {
	Block string
	Text  string
	Align string
	Style string
	Size  float64
}

// Document is a rendered estimate.
type Document struct {
	Data     []byte
	Outcomes []BlockOutcome
	Lines    []TextLine
}

// Outcome returns the status recorded for block, or "" if the block is unknown.
func (d *Document) Outcome(block string) Outcome {
	for _, o := range d.Outcomes {
		if o.Block == block {
			return o.Status
		}
	}
	return ""
}

// Omitted lists blocks whose image was dropped.
func (d *Document) Omitted() []BlockOutcome {
	var out []BlockOutcome
	for _, o := range d.Outcomes {
		if o.Status == OutcomeOmitted {
			out = append(out, o)
		}
	}
	return out
}

// PDFAssembler monta o documento PDF do orçamento
type PDFAssembler struct {
	compress bool
	creation time.Time
}

// NewPDFAssembler cria um novo montador de PDF
func NewPDFAssembler() *PDFAssembler {
	return &PDFAssembler{compress: true}
}

// Assemble lays out one A4 portrait page for req and res.
// Image failures never abort the document: the affected block is reported as
// omitted and the remaining blocks are still drawn.
func (a *PDFAssembler) Assemble(req model.EstimateRequest, res model.EstimateResult) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(a.compress)
	pdf.SetCreator("QuickQuote", true)
	pdf.SetTitle(fmt.Sprintf("%s #%s", req.Branding.CustomTitle, res.EstimateID), true)
	if !a.creation.IsZero() {
		pdf.SetCreationDate(a.creation)
	}
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	w := &pageWriter{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		doc: &Document{},
	}

	steps := []struct {
		block string
		draw  func() (Outcome, error)
	}{
		{BlockLogo, func() (Outcome, error) { return w.logo(req.Branding.Logo, res.EstimateID) }},
		{BlockBusiness, func() (Outcome, error) { return w.business(req.Business) }},
		{BlockHeader, func() (Outcome, error) { return w.header(req.Branding.CustomTitle, res.EstimateID) }},
		{BlockCustomer, func() (Outcome, error) { return w.field(BlockCustomer, "Customer: ", req.CustomerName, true) }},
		{BlockDate, func() (Outcome, error) { return w.field(BlockDate, "Date: ", req.Date, true) }},
		{BlockPhone, func() (Outcome, error) {
			return w.field(BlockPhone, "Phone: ", req.CustomerPhone, req.ShowPhone && req.CustomerPhone != "")
		}},
		{BlockItems, func() (Outcome, error) { return w.items(res.LineItems) }},
		{BlockTotals, func() (Outcome, error) { return w.totals(res) }},
		{BlockFooter, func() (Outcome, error) { return w.footer(req.Branding.FooterNote) }},
		{BlockSignature, func() (Outcome, error) { return w.signature(req.Signature, req.ShowSignature, res.EstimateID) }},
		{BlockThanks, func() (Outcome, error) { return w.thanks(req.ShowThanks) }},
	}

	for _, step := range steps {
		status, err := step.draw()
		w.doc.Outcomes = append(w.doc.Outcomes, BlockOutcome{Block: step.block, Status: status, Err: err})
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("bloco %s: %w", step.block, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("gerar PDF: %w", err)
	}
	w.doc.Data = buf.Bytes()

	return w.doc, nil
}

type pageWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	doc *Document

	style string
	size  float64
}

func (w *pageWriter) font(style string, size float64) {
	w.style, w.size = style, size
	w.pdf.SetFont("Arial", style, size)
}

// cell writes one full-width line and moves to the next.
func (w *pageWriter) cell(block string, h float64, text, align string) {
	w.pdf.CellFormat(0, h, w.tr(text), "", 1, align, false, 0, "")
	w.record(block, text, align)
}

func (w *pageWriter) multi(block string, h float64, text string) {
	w.pdf.MultiCell(0, h, w.tr(text), "", "L", false)
	w.record(block, text, "L")
}

func (w *pageWriter) record(block, text, align string) {
	w.doc.Lines = append(w.doc.Lines, TextLine{
		Block: block,
		Text:  text,
		Align: align,
		Style: w.style,
		Size:  w.size,
	})
}

// registerImage loads data into the document under name. A failure leaves the
// page untouched and clears the fpdf error state. fpdf panics on some truncated
// bodies whose header still sniffs as an image; that panic becomes an error.
func (w *pageWriter) registerImage(name string, data []byte) (opts fpdf.ImageOptions, err error) {
	kind, err := imageType(data)
	if err != nil {
		return fpdf.ImageOptions{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			w.pdf.ClearError()
			err = fmt.Errorf("%w: %v", ErrImagePlacement, r)
		}
	}()

	opts = fpdf.ImageOptions{ImageType: kind}
	info := w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !w.pdf.Ok() || info == nil {
		cause := w.pdf.Error()
		w.pdf.ClearError()
		return opts, fmt.Errorf("%w: %v", ErrImagePlacement, cause)
	}
	return opts, nil
}

func (w *pageWriter) placeImage(name string, opts fpdf.ImageOptions, x, width float64) error {
	w.pdf.ImageOptions(name, x, 0, width, 0, true, opts, 0, "")
	if !w.pdf.Ok() {
		cause := w.pdf.Error()
		w.pdf.ClearError()
		return fmt.Errorf("%w: %v", ErrImagePlacement, cause)
	}
	return nil
}

func (w *pageWriter) logo(data []byte, id string) (Outcome, error) {
	if len(data) == 0 {
		return OutcomeSkipped, nil
	}

	name := "logo_" + id
	opts, err := w.registerImage(name, data)
	if err != nil {
		return OutcomeOmitted, err
	}
	if err := w.placeImage(name, opts, logoX, logoWidth); err != nil {
		return OutcomeOmitted, err
	}
	return OutcomeRendered, nil
}

func (w *pageWriter) business(b model.Business) (Outcome, error) {
	if b == (model.Business{}) {
		return OutcomeSkipped, nil
	}

	if b.Name != "" {
		w.font("B", 12)
		w.cell(BlockBusiness, 10, b.Name, "L")
	}

	w.font("", 10)
	if b.Address != "" {
		w.multi(BlockBusiness, 8, b.Address)
	}
	if b.Phone != "" {
		w.cell(BlockBusiness, 8, "Phone: "+b.Phone, "L")
	}
	if b.Email != "" {
		w.cell(BlockBusiness, 8, "Email: "+b.Email, "L")
	}
	if b.Website != "" {
		w.cell(BlockBusiness, 8, "Website: "+b.Website, "L")
	}
	return OutcomeRendered, nil
}

func (w *pageWriter) header(title, id string) (Outcome, error) {
	w.pdf.Ln(5)
	w.font("", 12)
	w.cell(BlockHeader, 10, fmt.Sprintf("%s #%s", title, id), "C")
	return OutcomeRendered, nil
}

func (w *pageWriter) field(block, label, value string, show bool) (Outcome, error) {
	if !show {
		return OutcomeSkipped, nil
	}
	w.cell(block, 10, label+value, "L")
	return OutcomeRendered, nil
}

func (w *pageWriter) items(items []model.LineItem) (Outcome, error) {
	w.pdf.Ln(10)
	if len(items) == 0 {
		return OutcomeSkipped, nil
	}
	for _, item := range items {
		w.cell(BlockItems, 10, FormatLineItem(item), "L")
	}
	return OutcomeRendered, nil
}

func (w *pageWriter) totals(res model.EstimateResult) (Outcome, error) {
	w.pdf.Ln(5)
	for _, line := range TotalsLines(res) {
		w.cell(BlockTotals, 10, line, "L")
	}
	return OutcomeRendered, nil
}

func (w *pageWriter) footer(note string) (Outcome, error) {
	if note == "" {
		return OutcomeSkipped, nil
	}
	w.pdf.Ln(10)
	w.multi(BlockFooter, 10, "Note: "+note)
	return OutcomeRendered, nil
}

func (w *pageWriter) signature(sig model.Signature, show bool, id string) (Outcome, error) {
	if !show || sig == nil {
		return OutcomeSkipped, nil
	}

	switch s := sig.(type) {
	case model.TypedSignature:
		w.pdf.Ln(15)
		w.font("I", 16)
		w.cell(BlockSignature, 10, "Signed: "+s.Name, "L")
		return OutcomeRendered, nil

	case model.DrawnSignature:
		data, err := decodeDataURI(s.DataURI)
		if err != nil {
			return OutcomeOmitted, err
		}
		name := "signature_" + id
		opts, err := w.registerImage(name, data)
		if err != nil {
			return OutcomeOmitted, err
		}
		w.pdf.Ln(15)
		if err := w.placeImage(name, opts, signatureX, signatureWidth); err != nil {
			return OutcomeOmitted, err
		}
		return OutcomeRendered, nil
	}

	return OutcomeSkipped, nil
}

func (w *pageWriter) thanks(show bool) (Outcome, error) {
	if !show {
		return OutcomeSkipped, nil
	}
	w.pdf.Ln(10)
	w.font("B", 12)
	w.cell(BlockThanks, 10, ThanksMessage, "C")
	return OutcomeRendered, nil
}
