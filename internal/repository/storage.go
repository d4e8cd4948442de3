package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/model"
)

// tempPrefix marca arquivos ainda em escrita
const tempPrefix = ".tmp_"

// ErrInvalidDocumentName rejeita nomes com separadores de caminho
var ErrInvalidDocumentName = errors.New("nome de documento inválido")

// DocumentStore guarda documentos gerados e uploads em um diretório local.
// Arquivos são publicados com rename, então leitores nunca veem escrita parcial.
type DocumentStore struct {
	dir string
}

// NewDocumentStore cria o diretório de saída se necessário
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: diretório vazio", ErrInvalidDocumentName)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("criar diretório %s: %w", dir, err)
	}

	logger.Global().Debug().Str("dir", dir).Msg("Document store inicializado")
	return &DocumentStore{dir: dir}, nil
}

// Dir retorna o diretório base
func (s *DocumentStore) Dir() string {
	return s.dir
}

// Save grava data sob name e retorna o caminho final.
func (s *DocumentStore) Save(name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("criar arquivo temporário: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("escrever %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("fechar %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("publicar %s: %w", name, err)
	}

	return path, nil
}

// Open abre um documento salvo. O chamador fecha o arquivo.
func (s *DocumentStore) Open(name string) (*os.File, os.FileInfo, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", model.ErrDocumentNotFound, name)
		}
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return f, info, nil
}

// Sweep remove arquivos modificados antes de cutoff e retorna os nomes removidos.
// Subdirectories are left alone.
func (s *DocumentStore) Sweep(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", s.dir, err)
	}

	var removed []string
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removido entre ReadDir e Info
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, entry.Name())
	}

	return removed, errors.Join(errs...)
}

// CheckWritable confirma que o diretório aceita novos arquivos
func (s *DocumentStore) CheckWritable() error {
	f, err := os.CreateTemp(s.dir, tempPrefix+"health_*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidDocumentName, name)
	}
	return nil
}
