package utils

import (
	"fmt"
	"net/mail"
	"strings"
)

// UFs lists the 27 Brazilian federative units
var UFs = map[string]string{
	"AC": "Acre", "AL": "Alagoas", "AP": "Amapá", "AM": "Amazonas", "BA": "Bahia", "CE": "Ceará",
	"DF": "Distrito Federal", "ES": "Espírito Santo", "GO": "Goiás", "MA": "Maranhão", "MT": "Mato Grosso",
	"MS": "Mato Grosso do Sul", "MG": "Minas Gerais", "PA": "Pará", "PB": "Paraíba", "PR": "Paraná",
	"PE": "Pernambuco", "PI": "Piauí", "RJ": "Rio de Janeiro", "RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul", "RO": "Rondônia", "RR": "Roraima", "SC": "Santa Catarina",
	"SP": "São Paulo", "SE": "Sergipe", "TO": "Tocantins",
}

// OnlyDigits strips every non-digit rune
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// onlyAllowed reports whether s holds nothing but digits and runes from extra.
func onlyAllowed(s, extra string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && !strings.ContainsRune(extra, r) {
			return false
		}
	}
	return true
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCNPJ checks length and both check digits. The dots, slash and dash of the
// printed form are allowed; any other character is rejected.
func ValidateCNPJ(cnpj string) error {
	cnpj = strings.TrimSpace(cnpj)
	if !onlyAllowed(cnpj, "./-") {
		return fmt.Errorf("CNPJ may only contain digits and . / -")
	}
	digits := OnlyDigits(cnpj)
	if len(digits) != 14 {
		return fmt.Errorf("CNPJ must have 14 digits")
	}
	if strings.Count(digits, digits[:1]) == 14 {
		return fmt.Errorf("CNPJ must not repeat a single digit")
	}

	d := make([]int, 14)
	for i, r := range digits {
		d[i] = int(r - '0')
	}
	if cnpjCheckDigit(d[:12], cnpjWeights1) != d[12] || cnpjCheckDigit(d[:13], cnpjWeights2) != d[13] {
		return fmt.Errorf("CNPJ check digits do not match")
	}
	return nil
}

func cnpjCheckDigit(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00
func FormatCNPJ(cnpj string) string {
	d := OnlyDigits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// ValidateCEP requires exactly 8 digits, optionally separated by dots, dashes or spaces
func ValidateCEP(cep string) error {
	if !onlyAllowed(cep, ".- ") {
		return fmt.Errorf("CEP may only contain digits and . - or spaces")
	}
	if len(OnlyDigits(cep)) != 8 {
		return fmt.Errorf("CEP must have 8 digits")
	}
	return nil
}

// FormatCEP renders 8 digits as 00000-000
func FormatCEP(cep string) string {
	d := OnlyDigits(cep)
	if len(d) != 8 {
		return cep
	}
	return d[:5] + "-" + d[5:]
}

// ValidateUF accepts a two-letter state code in any case
func ValidateUF(uf string) error {
	if _, ok := UFs[strings.ToUpper(strings.TrimSpace(uf))]; !ok {
		return fmt.Errorf("invalid state %q", uf)
	}
	return nil
}

// ValidateEmail accepts a bare address (no display name)
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
