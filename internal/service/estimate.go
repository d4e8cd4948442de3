package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/cleberrangel/quickquote-api/internal/repository"
	"github.com/google/uuid"
)

// EstimateIDLength is the number of characters in an estimate id.
const EstimateIDLength = 8

// NewEstimateID returns a short random token taken from a UUID.
func NewEstimateID() string {
	return uuid.New().String()[:EstimateIDLength]
}

// EstimateOutput descreve um documento gerado e salvo
type EstimateOutput struct {
	EstimateID  string
	FileName    string
	FilePath    string
	ContentType string
	Format      model.Format
	Size        int64
	Data        []byte
	Request     model.EstimateRequest
	Result      model.EstimateResult
	Outcomes    []BlockOutcome
}

// EstimateService orquestra parse, cálculo, renderização e armazenamento
type EstimateService struct {
	store    *repository.DocumentStore
	pdf      *PDFAssembler
	excel    *ExcelGenerator
	capacity int
	now      func() time.Time
	newID    func() string
}

// NewEstimateService cria o serviço. capacity é o número de slots de itens
// que o formulário expõe.
func NewEstimateService(store *repository.DocumentStore, capacity int) *EstimateService {
	return &EstimateService{
		store:    store,
		pdf:      NewPDFAssembler(),
		excel:    NewExcelGenerator(),
		capacity: capacity,
		now:      time.Now,
		newID:    NewEstimateID,
	}
}

// Capacity returns the configured number of line-item slots.
func (s *EstimateService) Capacity() int {
	return s.capacity
}

// Generate runs one submission end to end. Input errors are returned before
// anything touches the disk.
func (s *EstimateService) Generate(ctx context.Context, form model.EstimateForm) (*EstimateOutput, error) {
	start := time.Now()
	m := metrics.Get()

	req, err := ParseForm(form, s.capacity, s.now())
	if err != nil {
		m.IncrementEstimate(false, time.Since(start).Milliseconds(), 0)
		logger.Get(ctx).Warn().Err(err).Msg("Formulário rejeitado")
		return nil, err
	}

	id := s.newID()
	ctx = logger.WithEstimateID(ctx, id)
	log := logger.Get(ctx)

	res := Calculate(req)
	res.EstimateID = id

	log.Debug().
		Int("items", len(res.LineItems)).
		Str("subtotal", res.Subtotal.String()).
		Str("grand_total", res.GrandTotal.String()).
		Str("format", string(req.Format)).
		Msg("Totais calculados")

	s.keepUploads(ctx, id, req)

	var data []byte
	var outcomes []BlockOutcome

	switch req.Format {
	case model.FormatXLSX:
		buf, err := s.excel.Generate(req, res)
		if err != nil {
			return nil, s.fail(ctx, start, fmt.Errorf("gerar planilha: %w", err))
		}
		data = buf.Bytes()
	default:
		doc, err := s.pdf.Assemble(req, res)
		if err != nil {
			return nil, s.fail(ctx, start, fmt.Errorf("gerar PDF: %w", err))
		}
		data = doc.Data
		outcomes = doc.Outcomes

		for _, o := range doc.Omitted() {
			m.IncrementImageOmitted()
			log.Warn().Str("block", o.Block).Err(o.Err).Msg("Imagem omitida do documento")
		}
	}

	name := id + req.Format.Extension()
	path, err := s.store.Save(name, data)
	if err != nil {
		return nil, s.fail(ctx, start, fmt.Errorf("salvar documento: %w", err))
	}

	elapsed := time.Since(start).Milliseconds()
	m.IncrementEstimate(true, elapsed, int64(len(data)))

	log.Info().
		Str("file", name).
		Int("bytes", len(data)).
		Int64("duration_ms", elapsed).
		Msg("Orçamento gerado")

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionEstimateGenerate,
		Resource: "estimate",
		Success:  true,
		Duration: elapsed,
		Details: map[string]interface{}{
			"format":      string(req.Format),
			"items":       len(res.LineItems),
			"grand_total": res.GrandTotal.StringFixed(2),
		},
	})

	return &EstimateOutput{
		EstimateID:  id,
		FileName:    name,
		FilePath:    path,
		ContentType: req.Format.ContentType(),
		Format:      req.Format,
		Size:        int64(len(data)),
		Data:        data,
		Request:     req,
		Result:      res,
		Outcomes:    outcomes,
	}, nil
}

// keepUploads stores the raw logo next to the document so both expire
// together. A failed write is logged and the render continues from memory.
func (s *EstimateService) keepUploads(ctx context.Context, id string, req model.EstimateRequest) {
	logo := req.Branding.Logo
	if len(logo) == 0 {
		return
	}

	name := "logo_" + id + imageExtension(logo)
	if _, err := s.store.Save(name, logo); err != nil {
		logger.Get(ctx).Warn().Err(err).Str("file", name).Msg("Falha ao salvar logo")
		return
	}

	metrics.Get().IncrementFileUpload(int64(len(logo)))
	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionFileUpload,
		Resource: "logo",
		Success:  true,
		Details:  map[string]interface{}{"file": name, "bytes": len(logo)},
	})
}

func (s *EstimateService) fail(ctx context.Context, start time.Time, err error) error {
	elapsed := time.Since(start).Milliseconds()
	metrics.Get().IncrementEstimate(false, elapsed, 0)
	logger.Get(ctx).Error().Err(err).Msg("Falha ao gerar orçamento")
	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionEstimateGenerate,
		Resource: "estimate",
		Success:  false,
		Error:    err.Error(),
		Duration: elapsed,
	})
	return err
}

// OpenDocument looks up a stored document by estimate id, trying each format.
func (s *EstimateService) OpenDocument(id string) (*StoredDocument, error) {
	for _, format := range []model.Format{model.FormatPDF, model.FormatXLSX} {
		f, info, err := s.store.Open(id + format.Extension())
		if err == nil {
			return &StoredDocument{
				File:        f,
				Name:        info.Name(),
				Size:        info.Size(),
				ModTime:     info.ModTime(),
				ContentType: format.ContentType(),
			}, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrDocumentNotFound, id)
}

// StoredDocument is an open handle on a previously generated document.
type StoredDocument struct {
	File        *os.File
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Close releases the file handle.
func (d *StoredDocument) Close() error {
	return d.File.Close()
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrDocumentNotFound)
}
