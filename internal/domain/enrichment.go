package domain

type CNPJInfo struct {
	CNPJ      string `json:"cnpj"`
	LegalName string `json:"legal_name"`
	TradeName string `json:"trade_name"`
	Status    string `json:"status"`
	CEP       string `json:"cep"`
	Street    string `json:"street"`
	Number    string `json:"number"`
	District  string `json:"district"`
	City      string `json:"city"`
	State     string `json:"state"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	MainCNAE  string `json:"main_cnae"`
}

type Address struct {
	CEP      string `json:"cep"`
	Street   string `json:"street"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	IBGECode string `json:"ibge_code"`
}

type Municipality struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
