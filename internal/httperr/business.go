package httperr

import "errors"

// BusinessError é uma recusa de regra de negócio — resultado normal,
// não falha de sistema. Message, quando presente, já vem no tom do
// usuário final e deve ser mostrada como está.
type BusinessError struct {
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessMessage(code, message string) error {
	return BusinessError{Code: code, Message: message}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessMessage devolve a mensagem embutida no erro, se houver.
func BusinessMessage(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
