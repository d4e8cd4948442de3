package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/cleberrangel/quickquote-api/internal/service"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// maxInputSize limits estimate files read from disk.
const maxInputSize = 1 << 20

var (
	ErrEmptyInput    = errors.New("arquivo de orçamento vazio")
	ErrInputTooLarge = errors.New("arquivo de orçamento excede o tamanho máximo")
)

// scalar accepts any YAML scalar and keeps its text, so numbers and booleans
// reach the form parser the same way a browser would send them. Floats keep
// their literal digits instead of passing through float64.
type scalar string

func (s *scalar) UnmarshalYAML(b []byte) error {
	file, err := parser.ParseBytes(b, 0)
	if err != nil {
		return err
	}
	if len(file.Docs) == 1 {
		if n, ok := file.Docs[0].Body.(*ast.FloatNode); ok {
			*s = scalar(n.GetToken().Value)
			return nil
		}
	}

	var v interface{}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case time.Time:
		*s = scalar(t.Format(service.DateLayout))
	case map[string]interface{}, []interface{}:
		return fmt.Errorf("valor escalar esperado, recebido %T", t)
	default:
		*s = scalar(fmt.Sprint(t))
	}
	return nil
}

type itemEntry struct {
	Description scalar `yaml:"description"`
	Quantity    scalar `yaml:"qty"`
	Rate        scalar `yaml:"rate"`
}

type businessEntry struct {
	Name    scalar `yaml:"name"`
	Address scalar `yaml:"address"`
	Phone   scalar `yaml:"phone"`
	Email   scalar `yaml:"email"`
	Website scalar `yaml:"website"`
}

// estimateFile is the on-disk shape of an estimate for the render command.
type estimateFile struct {
	Customer scalar      `yaml:"customer"`
	Email    scalar      `yaml:"email"`
	Phone    scalar      `yaml:"phone"`
	Date     scalar      `yaml:"date"`
	Tax      scalar      `yaml:"tax"`
	Discount scalar      `yaml:"discount"`
	Items    []itemEntry `yaml:"items"`

	Business   businessEntry `yaml:"business"`
	Title      scalar        `yaml:"title"`
	FooterNote scalar        `yaml:"footer_note"`
	LogoPath   string        `yaml:"logo_path"`

	ShowPhone     scalar `yaml:"show_phone"`
	ShowSignature scalar `yaml:"show_signature"`
	ShowThanks    scalar `yaml:"show_thanks"`

	TypedSignature     scalar `yaml:"typed_signature"`
	DrawnSignature     scalar `yaml:"drawn_signature"`
	SignatureImagePath string `yaml:"signature_image_path"`

	Format scalar `yaml:"format"`
}

// loadEstimateFile reads path and converts it into the same raw form the
// web handler produces. Image paths are resolved against the file's directory.
func loadEstimateFile(path string) (model.EstimateForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EstimateForm{}, fmt.Errorf("ler %s: %w", path, err)
	}
	if len(data) == 0 {
		return model.EstimateForm{}, ErrEmptyInput
	}
	if len(data) > maxInputSize {
		return model.EstimateForm{}, fmt.Errorf("%w: %d bytes (máx %d)", ErrInputTooLarge, len(data), maxInputSize)
	}

	var in estimateFile
	if err := yaml.UnmarshalWithOptions(data, &in, yaml.Strict()); err != nil {
		return model.EstimateForm{}, fmt.Errorf("%w: %v", model.ErrInvalidForm, err)
	}

	form := in.toForm()

	base := filepath.Dir(path)
	if form.Logo, err = readImage(base, in.LogoPath); err != nil {
		return model.EstimateForm{}, err
	}
	if form.SignatureImage, err = readImage(base, in.SignatureImagePath); err != nil {
		return model.EstimateForm{}, err
	}

	return form, nil
}

func (in estimateFile) toForm() model.EstimateForm {
	form := model.EstimateForm{
		Customer: string(in.Customer),
		Email:    string(in.Email),
		Phone:    string(in.Phone),
		Date:     string(in.Date),
		Tax:      string(in.Tax),
		Discount: string(in.Discount),

		BizName:    string(in.Business.Name),
		BizAddress: string(in.Business.Address),
		BizPhone:   string(in.Business.Phone),
		BizEmail:   string(in.Business.Email),
		BizWebsite: string(in.Business.Website),

		CustomTitle: string(in.Title),
		FooterNote:  string(in.FooterNote),

		ShowPhone:     string(in.ShowPhone),
		ShowSignature: string(in.ShowSignature),
		ShowThanks:    string(in.ShowThanks),

		TypedSignature: string(in.TypedSignature),
		DrawnSignature: string(in.DrawnSignature),

		Format: string(in.Format),
	}

	form.Slots = make([]model.SlotInput, len(in.Items))
	for i, item := range in.Items {
		form.Slots[i] = model.SlotInput{
			Description: string(item.Description),
			Quantity:    string(item.Quantity),
			Rate:        string(item.Rate),
		}
	}
	return form
}

func readImage(base, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ler imagem %s: %w", path, err)
	}
	return data, nil
}
