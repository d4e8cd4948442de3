package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if id := w.Header().Get(HeaderRequestID); len(id) != 8 {
		t.Errorf("Request ID gerado inválido: %q", id)
	}
	if w.Header().Get(HeaderTraceID) == "" {
		t.Error("Trace ID ausente")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "client-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if id := w.Header().Get(HeaderRequestID); id != "client-42" {
		t.Errorf("Request ID do cliente não preservado: %q", id)
	}
}

func TestRequestID_ReplacesOversizedHeader(t *testing.T) {
	long := bytes.Repeat([]byte("a"), maxRequestIDLen+1)
	if got := incomingID(string(long), maxRequestIDLen, shortID); len(got) != 8 {
		t.Errorf("ID longo deveria ser substituído, obtido %q", got)
	}
	if got := incomingID(" abc\x00 ", maxRequestIDLen, shortID); got != "abc" {
		t.Errorf("ID deveria ser sanitizado, obtido %q", got)
	}
}

func TestRequestID_AccessLogCarriesEstimateID(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("debug", true, &buf)
	defer logger.InitWithWriter("info", true, io.Discard)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/submit", func(c *gin.Context) {
		c.Header(headerEstimateID, "abc12345")
		c.Status(http.StatusOK)
	})
	router.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	if !bytes.Contains(buf.Bytes(), []byte(`"estimate_id":"abc12345"`)) {
		t.Errorf("Log de acesso sem estimate_id: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if bytes.Contains(buf.Bytes(), []byte(`"level":"info"`)) {
		t.Errorf("Sonda de health deveria logar em debug: %s", buf.String())
	}
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	defer limiter.Stop()

	router := gin.New()
	router.Use(limiter.Middleware())
	router.POST("/submit", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := metrics.Get().Snapshot().Requests.RateLimited

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Códigos inesperados: %v", codes)
	}
	if metrics.Get().Snapshot().Requests.RateLimited <= before {
		t.Error("Métrica de rate limit não incrementada")
	}

	// outro IP tem seu próprio bucket
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("IP distinto deveria passar, obtido %d", w.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatal("Limiter desativado não deveria rejeitar")
		}
	}
}

func TestMetricsMiddleware_TracksRoutePattern(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/estimates/:id/download", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"aaaaaaaa", "bbbbbbbb"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/estimates/"+id+"/download", nil))
	}

	em, ok := metrics.Get().GetEndpointMetrics()["GET /estimates/:id/download"]
	if !ok || em.Requests < 2 || em.Errors < 2 {
		t.Errorf("Métricas do endpoint inesperadas: %+v (encontrado=%v)", em, ok)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		cfg  SanitizeConfig
		want string
	}{
		{"Acme\x00 Corp", DefaultSanitizeConfig(), "Acme Corp"},
		{"line1\r\nline2", DefaultSanitizeConfig(), "line1line2"},
		{"line1\r\nline2", MultilineSanitizeConfig(), "line1\nline2"},
		{"Café", DefaultSanitizeConfig(), "Café"},
		{"abcdef", SanitizeConfig{MaxStringLength: 3}, "abc"},
		{"  keep  ", DefaultSanitizeConfig(), "  keep  "},
	}

	for _, c := range cases {
		if got := SanitizeString(c.in, c.cfg); got != c.want {
			t.Errorf("SanitizeString(%q) = %q, esperado %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeStringProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output has no control characters and respects the limit", prop.ForAll(
		func(s string, limit int) bool {
			out := SanitizeString(s, SanitizeConfig{MaxStringLength: limit})
			if len([]rune(out)) > limit {
				return false
			}
			for _, r := range out {
				if unicode.IsControl(r) && r != '\t' {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestValidateEstimateID(t *testing.T) {
	valid := []string{"abc12345", "00000000", "deadbeef"}
	invalid := []string{"", "abc1234", "abc123456", "ABC12345", "../../x", "abc1234g", "abc-1234"}

	for _, id := range valid {
		if !ValidateEstimateID(id) {
			t.Errorf("%q deveria ser válido", id)
		}
	}
	for _, id := range invalid {
		if ValidateEstimateID(id) {
			t.Errorf("%q deveria ser inválido", id)
		}
	}

	properties := gopter.NewProperties(nil)
	properties.Property("ids from uuid prefixes are accepted", prop.ForAll(
		func(n uint32) bool {
			return ValidateEstimateID(fmt.Sprintf("%08x", n))
		},
		gen.UInt32(),
	))
	properties.Property("ids with a slash are rejected", prop.ForAll(
		func(s string) bool {
			return !ValidateEstimateID(s + "/" + s)
		},
		gen.AlphaString(),
	))
	properties.TestingRun(t)
}
