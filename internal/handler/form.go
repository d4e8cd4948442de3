package handler

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cleberrangel/quickquote-api/internal/middleware"
	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/gin-gonic/gin"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

//go:embed templates/form.html
var formHTML string

// FormTemplate parses the embedded estimate form.
func FormTemplate() *template.Template {
	return template.Must(template.New("form.html").Parse(formHTML))
}

// bindEstimateForm reads every estimate field from the request body.
// The body is capped at maxBytes; exceeding it yields model.ErrUploadTooLarge.
func bindEstimateForm(c *gin.Context, capacity int, maxBytes int64) (model.EstimateForm, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			return model.EstimateForm{}, model.ErrUploadTooLarge
		}
		return model.EstimateForm{}, fmt.Errorf("%w: %v", model.ErrInvalidForm, err)
	}

	line := middleware.DefaultSanitizeConfig()
	multi := middleware.MultilineSanitizeConfig()
	field := func(name string) string {
		return middleware.SanitizeString(c.PostForm(name), line)
	}

	form := model.EstimateForm{
		Customer: field("customer"),
		Email:    field("email"),
		Phone:    field("phone"),
		Date:     field("date"),
		Tax:      field("tax"),
		Discount: field("discount"),

		BizName:    field("biz_name"),
		BizAddress: middleware.SanitizeString(c.PostForm("biz_address"), multi),
		BizPhone:   field("biz_phone"),
		BizEmail:   field("biz_email"),
		BizWebsite: field("biz_website"),

		CustomTitle: field("custom_title"),
		FooterNote:  middleware.SanitizeString(c.PostForm("footer_note"), multi),

		ShowPhone:     field("show_phone"),
		ShowSignature: field("show_signature"),
		ShowThanks:    field("show_thanks"),

		TypedSignature: field("typed_signature"),
		// data URIs are long and carry no control characters worth keeping
		DrawnSignature: strings.TrimSpace(c.PostForm("drawn_signature")),

		Format: field("format"),
	}

	form.Slots = make([]model.SlotInput, capacity)
	for i := 1; i <= capacity; i++ {
		n := strconv.Itoa(i)
		form.Slots[i-1] = model.SlotInput{
			Description: field("desc" + n),
			Quantity:    field("qty" + n),
			Rate:        field("rate" + n),
		}
	}

	var err error
	if form.Logo, err = readUpload(c, "logo"); err != nil {
		return model.EstimateForm{}, err
	}
	if form.SignatureImage, err = readUpload(c, "signature_image"); err != nil {
		return model.EstimateForm{}, err
	}

	return form, nil
}

// readUpload returns the bytes of an optional file field. A missing or empty
// file is not an error.
func readUpload(c *gin.Context, name string) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		if isTooLarge(err) {
			return nil, model.ErrUploadTooLarge
		}
		return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidForm, name, err)
	}
	if fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir upload %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("ler upload %s: %w", name, err)
	}
	return data, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// mime/multipart does not always wrap the reader error
	return strings.Contains(err.Error(), "request body too large")
}
