package model

// SlotInput is one raw line-item slot as submitted.
type SlotInput struct {
	Description string
	Quantity    string
	Rate        string
}

// EstimateForm representa os campos brutos do formulário de orçamento.
// O formulário web e o carregador YAML da CLI produzem este formato, então
// todo input passa pelo mesmo parse.
type EstimateForm struct {
	Customer string
	Email    string
	Phone    string
	Date     string
	Tax      string
	Discount string
	Slots    []SlotInput

	BizName    string
	BizAddress string
	BizPhone   string
	BizEmail   string
	BizWebsite string

	CustomTitle string
	FooterNote  string
	Logo        []byte

	ShowPhone     string
	ShowSignature string
	ShowThanks    string

	TypedSignature string
	DrawnSignature string
	SignatureImage []byte

	Format string
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
