package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Estimate"

var itemHeaders = []string{"Description", "Qty", "Rate", "Total"}

// ExcelGenerator gera a planilha do orçamento
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate writes the estimate as a single-sheet workbook. The sheet mirrors
// the PDF: header, customer block, one row per item, totals.
func (g *ExcelGenerator) Generate(req model.EstimateRequest, res model.EstimateResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilos: %w", err)
	}

	row := 1
	put := func(col int, value interface{}, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(sheetName, cell, cell, style)
		}
		return nil
	}

	// Cabeçalho
	if err := put(1, fmt.Sprintf("%s #%s", req.Branding.CustomTitle, res.EstimateID), styles.title); err != nil {
		return nil, fmt.Errorf("escrever título: %w", err)
	}
	row++

	if req.Business.Name != "" {
		if err := put(1, req.Business.Name, styles.bold); err != nil {
			return nil, err
		}
		row++
	}

	meta := [][2]string{
		{"Customer", req.CustomerName},
		{"Date", req.Date},
	}
	if req.ShowPhone && req.CustomerPhone != "" {
		meta = append(meta, [2]string{"Phone", req.CustomerPhone})
	}
	for _, kv := range meta {
		if err := put(1, kv[0], styles.bold); err != nil {
			return nil, err
		}
		if err := put(2, kv[1], 0); err != nil {
			return nil, err
		}
		row++
	}
	row++

	// Itens
	for col, header := range itemHeaders {
		if err := put(col+1, header, styles.header); err != nil {
			return nil, fmt.Errorf("escrever headers: %w", err)
		}
	}
	row++

	for i, item := range res.LineItems {
		style := styles.even
		if i%2 == 1 {
			style = styles.odd
		}
		values := []interface{}{
			item.Description,
			item.Quantity,
			item.Rate.InexactFloat64(),
			item.Total().InexactFloat64(),
		}
		for col, v := range values {
			if err := put(col+1, v, style); err != nil {
				return nil, fmt.Errorf("escrever item %d: %w", i+1, err)
			}
		}
		row++
	}
	row++

	// Totais
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", res.Subtotal.InexactFloat64()},
		{"Tax", res.TaxAmount.InexactFloat64()},
		{"Discount", res.Discount.Neg().InexactFloat64()},
		{"Grand Total", res.GrandTotal.InexactFloat64()},
	}
	for _, t := range totals {
		if err := put(3, t.label, styles.bold); err != nil {
			return nil, err
		}
		if err := put(4, t.value, styles.money); err != nil {
			return nil, err
		}
		row++
	}

	if req.Branding.FooterNote != "" {
		row++
		if err := put(1, "Note: "+req.Branding.FooterNote, 0); err != nil {
			return nil, err
		}
		row++
	}

	if typed, ok := req.Signature.(model.TypedSignature); ok && req.ShowSignature {
		row++
		if err := put(1, "Signed: "+typed.Name, styles.italic); err != nil {
			return nil, err
		}
		row++
	}

	if req.ShowThanks {
		row++
		if err := put(1, ThanksMessage, styles.bold); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "D", 16); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}

	return buf, nil
}

type sheetStyles struct {
	title, header, bold, italic, money, odd, even int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	thin := func(color string) []excelize.Border {
		return []excelize.Border{
			{Type: "left", Color: color, Style: 1},
			{Type: "top", Color: color, Style: 1},
			{Type: "bottom", Color: color, Style: 1},
			{Type: "right", Color: color, Style: 1},
		}
	}

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin("000000"),
	}); err != nil {
		return s, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.italic, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Size: 14}}); err != nil {
		return s, err
	}
	// 2 = "0.00"
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		return s, err
	}
	if s.odd, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: thin("D9D9D9"),
	}); err != nil {
		return s, err
	}
	if s.even, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Border: thin("D9D9D9"),
	}); err != nil {
		return s, err
	}
	return s, nil
}
