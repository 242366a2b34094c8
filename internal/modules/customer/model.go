package customer

import (
	"strings"
	"time"
	"unicode"
)

// Customer is a registered buyer, identified by CPF.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CustomerRequest struct {
	Name  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

// NormalizeCPF strips punctuation, so "360.635.210-70" becomes "36063521070".
func NormalizeCPF(cpf string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cpf)
}
