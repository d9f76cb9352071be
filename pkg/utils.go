package pkg

import (
	"fmt"
	"strings"
)

// NormalizeMethod приводит код способа оплаты к верхнему регистру
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// ValidateEmail грубо проверяет адрес почты для отправки квитанций
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
