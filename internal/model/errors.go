package model

import "errors"

var (
	// ErrMissingCustomer indica que o nome do cliente não foi informado
	ErrMissingCustomer = errors.New("nome do cliente é obrigatório")

	// ErrInvalidQuantity indica quantidade que não é um inteiro
	ErrInvalidQuantity = errors.New("quantidade inválida")

	// ErrInvalidRate indica valor unitário que não é decimal
	ErrInvalidRate = errors.New("valor unitário inválido")

	// ErrInvalidTax indica percentual de imposto inválido
	ErrInvalidTax = errors.New("percentual de imposto inválido")

	// ErrInvalidDiscount indica desconto inválido
	ErrInvalidDiscount = errors.New("desconto inválido")

	// ErrUnsupportedFormat indica formato de saída desconhecido
	ErrUnsupportedFormat = errors.New("formato de documento não suportado")

	// ErrUploadTooLarge indica upload acima do limite configurado
	ErrUploadTooLarge = errors.New("upload excede o limite permitido")

	// ErrInvalidForm indica corpo de formulário ilegível
	ErrInvalidForm = errors.New("formulário inválido")

	// ErrDocumentNotFound indica documento expirado ou inexistente
	ErrDocumentNotFound = errors.New("documento não encontrado")
)

// IsInputError reports whether err is a fatal input error that should be
// answered with 400 rather than 500.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrMissingCustomer, ErrInvalidQuantity, ErrInvalidRate,
		ErrInvalidTax, ErrInvalidDiscount, ErrUnsupportedFormat, ErrInvalidForm,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
