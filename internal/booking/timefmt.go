package booking

import "strings"

// NormalizeHHMM trunca/preenche um horário para precisão HH:MM.
// Aceita "14:30:00", "14:30" e "9:30"; todas as comparações de
// conflito acontecem nessa granularidade.
func NormalizeHHMM(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}

	parts := strings.SplitN(t, ":", 3)
	hh := parts[0]
	mm := "00"
	if len(parts) > 1 && parts[1] != "" {
		mm = parts[1]
	}

	if len(hh) == 1 {
		hh = "0" + hh
	}
	if len(mm) == 1 {
		mm = "0" + mm
	}
	if len(mm) > 2 {
		mm = mm[:2]
	}

	return hh + ":" + mm
}
