package booking

// Policy decide o que fazer quando o backend falha no meio de uma
// checagem. O padrão do produto é FailOpen: bloquear um agendamento
// legítimo por um soluço de rede é pior do que deixar passar uma
// contagem — a consistência real vem da constraint de unicidade no
// banco, não destas checagens (elas são pré-filtro de UX).
type Policy int

const (
	FailOpen Policy = iota
	FailClosed
)

func (p Policy) String() string {
	if p == FailClosed {
		return "closed"
	}
	return "open"
}

// ParsePolicy aceita "open"/"closed"; qualquer outra coisa cai no
// padrão fail-open.
func ParsePolicy(s string) Policy {
	if s == "closed" {
		return FailClosed
	}
	return FailOpen
}
