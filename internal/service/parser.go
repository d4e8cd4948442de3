package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
	"github.com/vincent-petithory/dataurl"
)

// DateLayout is the format used when the form leaves the date blank.
const DateLayout = "2006-01-02"

// ParseForm converte o formulário bruto em uma requisição tipada.
// Apenas os primeiros capacity slots são lidos. Cliente ausente e números
// malformados são fatais; slots parcialmente preenchidos são descartados.
func ParseForm(form model.EstimateForm, capacity int, now time.Time) (model.EstimateRequest, error) {
	customer := strings.TrimSpace(form.Customer)
	if customer == "" {
		return model.EstimateRequest{}, model.ErrMissingCustomer
	}

	format, err := ParseFormat(form.Format)
	if err != nil {
		return model.EstimateRequest{}, err
	}

	items, err := ParseLineItems(form.Slots, capacity)
	if err != nil {
		return model.EstimateRequest{}, err
	}

	tax, err := parseOptionalDecimal(form.Tax)
	if err != nil {
		return model.EstimateRequest{}, fmt.Errorf("%w: %q", model.ErrInvalidTax, form.Tax)
	}

	discount, err := parseOptionalDecimal(form.Discount)
	if err != nil {
		return model.EstimateRequest{}, fmt.Errorf("%w: %q", model.ErrInvalidDiscount, form.Discount)
	}

	date := strings.TrimSpace(form.Date)
	if date == "" {
		date = now.Format(DateLayout)
	}

	title := strings.TrimSpace(form.CustomTitle)
	if title == "" {
		title = model.DefaultTitle
	}

	return model.EstimateRequest{
		CustomerName:   customer,
		CustomerPhone:  strings.TrimSpace(form.Phone),
		RequesterEmail: strings.TrimSpace(form.Email),
		Date:           date,
		TaxPercent:     tax,
		Discount:       discount,
		LineItems:      items,
		Business: model.Business{
			Name:    strings.TrimSpace(form.BizName),
			Address: strings.TrimSpace(form.BizAddress),
			Phone:   strings.TrimSpace(form.BizPhone),
			Email:   strings.TrimSpace(form.BizEmail),
			Website: strings.TrimSpace(form.BizWebsite),
		},
		Branding: model.Branding{
			CustomTitle: title,
			FooterNote:  strings.TrimSpace(form.FooterNote),
			Logo:        form.Logo,
		},
		Signature:     resolveSignature(form),
		ShowPhone:     ParseToggle(form.ShowPhone),
		ShowSignature: ParseToggle(form.ShowSignature),
		ShowThanks:    ParseToggle(form.ShowThanks),
		Format:        format,
	}, nil
}

// ParseLineItems keeps every slot whose description, quantity and rate are
// all present, in input order.
func ParseLineItems(slots []model.SlotInput, capacity int) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(slots))

	for i, slot := range slots {
		if i >= capacity {
			break
		}

		desc := strings.TrimSpace(slot.Description)
		qty := strings.TrimSpace(slot.Quantity)
		rate := strings.TrimSpace(slot.Rate)
		if desc == "" || qty == "" || rate == "" {
			continue
		}

		q, err := strconv.ParseInt(qty, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %q", model.ErrInvalidQuantity, i+1, qty)
		}

		r, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %q", model.ErrInvalidRate, i+1, rate)
		}

		items = append(items, model.LineItem{
			Description: desc,
			Quantity:    q,
			Rate:        r,
		})
	}

	return items, nil
}

// ParseFormat resolves the requested output type. Blank means PDF.
func ParseFormat(v string) (model.Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(model.FormatPDF):
		return model.FormatPDF, nil
	case string(model.FormatXLSX):
		return model.FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnsupportedFormat, v)
	}
}

// ParseToggle interprets a checkbox value. Browsers send "on" for checked
// boxes and omit unchecked ones.
func ParseToggle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

func parseOptionalDecimal(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v)
}

// resolveSignature picks the signature variant once: drawn data URI, then an
// uploaded image, then a typed name.
func resolveSignature(form model.EstimateForm) model.Signature {
	if drawn := strings.TrimSpace(form.DrawnSignature); drawn != "" {
		return model.DrawnSignature{DataURI: drawn}
	}

	if len(form.SignatureImage) > 0 {
		mediaType := strings.SplitN(mimetype.Detect(form.SignatureImage).String(), ";", 2)[0]
		return model.DrawnSignature{DataURI: dataurl.New(form.SignatureImage, mediaType).String()}
	}

	if typed := strings.TrimSpace(form.TypedSignature); typed != "" {
		return model.TypedSignature{Name: typed}
	}

	return nil
}
