package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
)

// BrasilAPIClient looks up companies by CNPJ
type BrasilAPIClient struct {
	http *resty.Client
}

func NewBrasilAPIClient(baseURL string, timeout time.Duration) *BrasilAPIClient {
	return &BrasilAPIClient{http: newRestClient(baseURL, timeout)}
}

type brasilAPICNPJ struct {
	CNPJ                string `json:"cnpj"`
	RazaoSocial         string `json:"razao_social"`
	NomeFantasia        string `json:"nome_fantasia"`
	SituacaoCadastral   string `json:"descricao_situacao_cadastral"`
	CEP                 string `json:"cep"`
	Logradouro          string `json:"logradouro"`
	Numero              string `json:"numero"`
	Bairro              string `json:"bairro"`
	Municipio           string `json:"municipio"`
	UF                  string `json:"uf"`
	Telefone            string `json:"ddd_telefone_1"`
	Email               string `json:"email"`
	CNAEFiscalDescricao string `json:"cnae_fiscal_descricao"`
}

// LookupCNPJ expects 14 digits
func (c *BrasilAPIClient) LookupCNPJ(ctx context.Context, cnpj string) (*domain.CNPJInfo, error) {
	logger.ExternalServiceCall("brasilapi", "lookup_cnpj", "cnpj", cnpj)

	var out brasilAPICNPJ
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("cnpj", cnpj).
		SetResult(&out).
		Get("/api/cnpj/v1/{cnpj}")
	if err := checkResponse("brasilapi", "lookup_cnpj", resp, err); err != nil {
		return nil, err
	}

	return &domain.CNPJInfo{
		CNPJ:      out.CNPJ,
		LegalName: out.RazaoSocial,
		TradeName: out.NomeFantasia,
		Status:    out.SituacaoCadastral,
		CEP:       out.CEP,
		Street:    strings.TrimSpace(out.Logradouro),
		Number:    out.Numero,
		District:  out.Bairro,
		City:      out.Municipio,
		State:     out.UF,
		Phone:     out.Telefone,
		Email:     strings.ToLower(out.Email),
		MainCNAE:  out.CNAEFiscalDescricao,
	}, nil
}

// ViaCEPClient resolves postal codes to addresses
type ViaCEPClient struct {
	http *resty.Client
}

func NewViaCEPClient(baseURL string, timeout time.Duration) *ViaCEPClient {
	return &ViaCEPClient{http: newRestClient(baseURL, timeout)}
}

type viaCEPAddress struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	IBGE       string `json:"ibge"`
	Erro       any    `json:"erro"`
}

// LookupCEP expects 8 digits. ViaCEP answers 200 with {"erro": true} for unknown codes.
func (c *ViaCEPClient) LookupCEP(ctx context.Context, cep string) (*domain.Address, error) {
	logger.ExternalServiceCall("viacep", "lookup_cep", "cep", cep)

	var out viaCEPAddress
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("cep", cep).
		SetResult(&out).
		Get("/ws/{cep}/json/")
	if err := checkResponse("viacep", "lookup_cep", resp, err); err != nil {
		return nil, err
	}
	switch v := out.Erro.(type) {
	case bool:
		if v {
			return nil, fmt.Errorf("%w: viacep cep %s", ErrNotFound, cep)
		}
	case string:
		if v == "true" {
			return nil, fmt.Errorf("%w: viacep cep %s", ErrNotFound, cep)
		}
	}

	return &domain.Address{
		CEP:      out.CEP,
		Street:   out.Logradouro,
		District: out.Bairro,
		City:     out.Localidade,
		State:    out.UF,
		IBGECode: out.IBGE,
	}, nil
}

// IBGEClient lists municipalities per state
type IBGEClient struct {
	http *resty.Client
}

func NewIBGEClient(baseURL string, timeout time.Duration) *IBGEClient {
	return &IBGEClient{http: newRestClient(baseURL, timeout)}
}

type ibgeMunicipality struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
}

func (c *IBGEClient) ListMunicipalities(ctx context.Context, uf string) ([]domain.Municipality, error) {
	logger.ExternalServiceCall("ibge", "list_municipalities", "uf", uf)

	var out []ibgeMunicipality
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("uf", uf).
		SetQueryParam("orderBy", "nome").
		SetResult(&out).
		Get("/api/v1/localidades/estados/{uf}/municipios")
	if err := checkResponse("ibge", "list_municipalities", resp, err); err != nil {
		return nil, err
	}

	municipalities := make([]domain.Municipality, 0, len(out))
	for _, m := range out {
		municipalities = append(municipalities, domain.Municipality{ID: m.ID, Name: m.Nome})
	}
	return municipalities, nil
}
