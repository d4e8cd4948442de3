package service

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/cleberrangel/quickquote-api/internal/repository"
	"github.com/shopspring/decimal"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	return img
}

func tinyPNG() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func tinyJPEG() []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

var tinyPNGBase64 = base64.StdEncoding.EncodeToString(tinyPNG())

// fullRequest returns a request with every optional block enabled.
func fullRequest() model.EstimateRequest {
	return model.EstimateRequest{
		CustomerName:  "Acme Corp",
		CustomerPhone: "555-0100",
		Date:          "2024-03-09",
		TaxPercent:    decimal.NewFromInt(10),
		Discount:      decimal.NewFromInt(5),
		LineItems: []model.LineItem{
			item("Design", 2, "50.00"),
			item("Hosting", 1, "20.00"),
		},
		Business: model.Business{
			Name:    "Quick Builders",
			Address: "1 Main St\nSpringfield",
			Phone:   "555-0199",
			Email:   "hello@quick.test",
			Website: "quick.test",
		},
		Branding: model.Branding{
			CustomTitle: "Estimate",
			FooterNote:  "Valid for 30 days",
			Logo:        tinyPNG(),
		},
		Signature:     model.TypedSignature{Name: "Jane Doe"},
		ShowPhone:     true,
		ShowSignature: true,
		ShowThanks:    true,
		Format:        model.FormatPDF,
	}
}

func newTestService(t *testing.T) (*EstimateService, *repository.DocumentStore) {
	t.Helper()

	store, err := repository.NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("Erro ao criar store: %v", err)
	}

	svc := NewEstimateService(store, 10)
	svc.pdf = &PDFAssembler{compress: false, creation: fixedNow}
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "abc12345" }
	return svc, store
}
