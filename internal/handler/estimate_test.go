package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/cleberrangel/quickquote-api/internal/repository"
	"github.com/cleberrangel/quickquote-api/internal/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMaxUpload = 1 << 20

func setupRouter(t *testing.T, capacity int) (*gin.Engine, *repository.DocumentStore) {
	t.Helper()

	store, err := repository.NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("Erro ao criar store: %v", err)
	}

	r := NewRouter(Routes{
		Estimate: NewEstimateHandler(service.NewEstimateService(store, capacity), testMaxUpload),
		Health:   NewHealthHandler(store, "test"),
	})
	return r, store
}

func pngBytes(size int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func validValues() url.Values {
	return url.Values{
		"customer":    {"Acme Corp"},
		"date":        {"2024-03-09"},
		"desc1":       {"Design"},
		"qty1":        {"2"},
		"rate1":       {"50"},
		"desc2":       {"Hosting"},
		"qty2":        {"1"},
		"rate2":       {"20"},
		"tax":         {"10"},
		"discount":    {"5"},
		"show_thanks": {"on"},
	}
}

func postForm(r *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, r *gin.Engine, values url.Values, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Resposta de erro não é JSON: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestForm_RendersSlots(t *testing.T) {
	for _, capacity := range []int{4, 10} {
		r, _ := setupRouter(t, capacity)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Status esperado 200, obtido %d", w.Code)
		}
		body := w.Body.String()
		if got := strings.Count(body, `name="desc`); got != capacity {
			t.Errorf("capacity %d: %d campos de descrição renderizados", capacity, got)
		}
		last := fmt.Sprintf(`name="rate%d"`, capacity)
		if !strings.Contains(body, last) {
			t.Errorf("capacity %d: campo %s ausente", capacity, last)
		}
		for _, field := range []string{`name="customer"`, `name="logo"`, `name="drawn_signature"`, `name="format"`} {
			if !strings.Contains(body, field) {
				t.Errorf("Campo %s ausente do formulário", field)
			}
		}
		for _, toggle := range []string{`name="show_signature" checked`, `name="show_thanks" checked`} {
			if !strings.Contains(body, toggle) {
				t.Errorf("Toggle %s deveria vir marcado", toggle)
			}
		}
	}
}

func TestSubmit_URLEncodedReturnsPDF(t *testing.T) {
	r, store := setupRouter(t, 10)

	w := postForm(r, validValues())

	if w.Code != http.StatusOK {
		t.Fatalf("Status esperado 200, obtido %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type inesperado: %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("Corpo não é um PDF")
	}
	if got := w.Header().Get(HeaderGrandTotal); got != "127.00" {
		t.Errorf("Grand total esperado 127.00, obtido %q", got)
	}

	id := w.Header().Get(HeaderEstimateID)
	if len(id) != service.EstimateIDLength {
		t.Fatalf("Estimate ID inválido: %q", id)
	}
	want := "attachment; filename=" + id + ".pdf"
	if got := w.Header().Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition esperado %q, obtido %q", want, got)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), id+".pdf")); err != nil {
		t.Errorf("Documento não salvo: %v", err)
	}
}

func TestSubmit_MultipartWithLogo(t *testing.T) {
	r, store := setupRouter(t, 4)

	w := postMultipart(t, r, validValues(), map[string][]byte{"logo": pngBytes(8)})

	if w.Code != http.StatusOK {
		t.Fatalf("Status esperado 200, obtido %d: %s", w.Code, w.Body.String())
	}
	id := w.Header().Get(HeaderEstimateID)
	if _, err := os.Stat(filepath.Join(store.Dir(), "logo_"+id+".png")); err != nil {
		t.Errorf("Logo não salvo: %v", err)
	}
}

func TestSubmit_InvalidLogoStillGenerates(t *testing.T) {
	r, _ := setupRouter(t, 4)

	w := postMultipart(t, r, validValues(), map[string][]byte{"logo": []byte("not an image at all")})

	if w.Code != http.StatusOK {
		t.Fatalf("Logo inválido não deveria falhar o pedido, obtido %d", w.Code)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("Corpo não é um PDF")
	}
}

func TestSubmit_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"missing customer", func(v url.Values) { v.Del("customer") }},
		{"blank customer", func(v url.Values) { v.Set("customer", "   ") }},
		{"non-integer quantity", func(v url.Values) { v.Set("qty1", "1.5") }},
		{"non-numeric rate", func(v url.Values) { v.Set("rate2", "abc") }},
		{"non-numeric tax", func(v url.Values) { v.Set("tax", "ten") }},
		{"unknown format", func(v url.Values) { v.Set("format", "docx") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := setupRouter(t, 10)
			values := validValues()
			tt.mutate(values)

			w := postForm(r, values)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Status esperado 400, obtido %d", w.Code)
			}
			if resp := decodeError(t, w); resp.Success || resp.Details == "" {
				t.Errorf("Resposta de erro inesperada: %+v", resp)
			}
			entries, _ := os.ReadDir(store.Dir())
			if len(entries) != 0 {
				t.Errorf("Nenhum arquivo deveria ser escrito, encontrados %d", len(entries))
			}
		})
	}
}

func TestSubmit_UploadTooLarge(t *testing.T) {
	r, _ := setupRouter(t, 4)

	big := bytes.Repeat([]byte{0x89}, testMaxUpload+1024)
	w := postMultipart(t, r, validValues(), map[string][]byte{"logo": big})

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Status esperado 413, obtido %d", w.Code)
	}
}

func TestSubmit_XLSX(t *testing.T) {
	r, _ := setupRouter(t, 10)
	values := validValues()
	values.Set("format", "xlsx")

	w := postForm(r, values)

	if w.Code != http.StatusOK {
		t.Fatalf("Status esperado 200, obtido %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != model.FormatXLSX.ContentType() {
		t.Errorf("Content-Type inesperado: %q", ct)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("Corpo não é um arquivo xlsx")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasSuffix(cd, ".xlsx") {
		t.Errorf("Content-Disposition inesperado: %q", cd)
	}
}

func TestDownload_RoundTrip(t *testing.T) {
	r, _ := setupRouter(t, 10)

	submitted := postForm(r, validValues())
	if submitted.Code != http.StatusOK {
		t.Fatalf("Falha ao gerar: %d", submitted.Code)
	}
	id := submitted.Header().Get(HeaderEstimateID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/estimates/"+id+"/download", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Status esperado 200, obtido %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), submitted.Body.Bytes()) {
		t.Error("Download difere do documento gerado")
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename="+id+".pdf" {
		t.Errorf("Content-Disposition inesperado: %q", cd)
	}
}

func TestDownload_Errors(t *testing.T) {
	r, _ := setupRouter(t, 10)

	tests := []struct {
		id   string
		want int
	}{
		{"deadbeef", http.StatusNotFound},
		{"DEADBEEF", http.StatusBadRequest},
		{"abc", http.StatusBadRequest},
		{"abc1234g", http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/estimates/"+tt.id+"/download", nil))
		if w.Code != tt.want {
			t.Errorf("id %q: status esperado %d, obtido %d", tt.id, tt.want, w.Code)
		}
	}
}
