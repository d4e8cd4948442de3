package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
)

var (
	// ErrUnsupportedImage indica conteúdo que não é PNG, JPEG ou GIF
	ErrUnsupportedImage = errors.New("formato de imagem não suportado")

	// ErrInvalidDataURI indica assinatura desenhada ilegível
	ErrInvalidDataURI = errors.New("data URI inválida")
)

// imageType sniffs data and returns the fpdf image type name.
func imageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: vazio", ErrUnsupportedImage)
	}

	m := mimetype.Detect(data)
	switch {
	case m.Is("image/png"):
		return "PNG", nil
	case m.Is("image/jpeg"):
		return "JPG", nil
	case m.Is("image/gif"):
		return "GIF", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, m.String())
}

// imageExtension devolve a extensão usada ao salvar uploads
func imageExtension(data []byte) string {
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}

// decodeDataURI extracts the image bytes from a data: URI.
func decodeDataURI(uri string) ([]byte, error) {
	du, err := dataurl.DecodeString(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if du.MediaType.Type != "image" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, du.MediaType.ContentType())
	}
	if len(du.Data) == 0 {
		return nil, fmt.Errorf("%w: sem conteúdo", ErrInvalidDataURI)
	}
	return du.Data, nil
}
