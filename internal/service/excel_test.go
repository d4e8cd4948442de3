package service

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExcelGenerator_Generate(t *testing.T) {
	req := fullRequest()
	res := Calculate(req)
	res.EstimateID = "abc12345"

	buf, err := NewExcelGenerator().Generate(req, res)
	if err != nil {
		t.Fatalf("Generate falhou: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Planilha ilegível: %v", err)
	}
	defer f.Close()

	if f.GetSheetName(0) != sheetName {
		t.Errorf("Sheet = %q, esperado %q", f.GetSheetName(0), sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}

	find := func(col int, text string) int {
		for i, row := range rows {
			if len(row) > col && row[col] == text {
				return i
			}
		}
		return -1
	}

	if rows[0][0] != "Estimate #abc12345" {
		t.Errorf("Título = %q", rows[0][0])
	}
	if find(0, "Design") < 0 || find(0, "Hosting") < 0 {
		t.Error("Itens ausentes na planilha")
	}
	if find(0, ThanksMessage) < 0 {
		t.Error("Agradecimento ausente na planilha")
	}
	if find(0, "Signed: Jane Doe") < 0 {
		t.Error("Assinatura digitada ausente na planilha")
	}

	grand := find(2, "Grand Total")
	if grand < 0 || len(rows[grand]) < 4 {
		t.Fatal("Linha de total ausente")
	}
	v, err := strconv.ParseFloat(rows[grand][3], 64)
	if err != nil || v != 127 {
		t.Errorf("Grand total = %q, esperado 127", rows[grand][3])
	}

	if find(0, "Phone") < 0 {
		t.Error("Telefone deveria aparecer com show_phone")
	}
}

func TestExcelGenerator_RespectsToggles(t *testing.T) {
	req := fullRequest()
	req.ShowPhone = false
	req.ShowThanks = false
	req.ShowSignature = false
	res := Calculate(req)

	buf, err := NewExcelGenerator().Generate(req, res)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, _ := f.GetRows(sheetName)
	for _, row := range rows {
		for _, cell := range row {
			switch cell {
			case "Phone", ThanksMessage, "Signed: Jane Doe":
				t.Errorf("Célula %q não deveria aparecer", cell)
			}
		}
	}
}
