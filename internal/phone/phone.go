package phone

import "strings"

const countryCode = "55"

// Normalize reduz um telefone digitado em qualquer formato
// ("(11) 99999-8888", "011999998888", "+55 11 99999-8888") a uma
// chave canônica só com dígitos, prefixada com o DDI 55.
// Nunca falha: entrada vazia vira string vazia e formatos
// irreconhecíveis passam adiante como vieram (só dígitos).
func Normalize(raw string) string {
	digits := onlyDigits(raw)
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		// zero de tronco ("0 11 9xxxx-xxxx")
		digits = digits[1:]
	case (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, countryCode):
		digits = digits[2:]
	}

	// número nacional (DDD + 8 ou 9 dígitos) recebe o DDI de volta
	if len(digits) == 10 || len(digits) == 11 {
		return countryCode + digits
	}

	return digits
}

// Equal compara dois telefones pela forma canônica. Exige ao menos
// 10 dígitos para que duas entradas vazias ou lixo não "batam".
func Equal(a, b string) bool {
	na := Normalize(a)
	if len(na) < 10 {
		return false
	}
	return na == Normalize(b)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
