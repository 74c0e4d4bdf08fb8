package realtime

import (
	"log"
	"reflect"
	"sync"
)

// Handler recebe o payload do evento.
type Handler func(payload any)

// Bus é um publish/subscribe em processo para coordenação na mesma
// instância (ex.: "agendamento concluído" dispara refresh de
// faturamento). Entrega síncrona, na ordem de registro, sem garantia
// além disso. Pânico em um listener é engolido para não quebrar o
// dispatch dos demais.
//
// Construído e injetado explicitamente — nada de singleton de pacote.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) On(event string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// Off remove um handler registrado. Quem registra é responsável por
// desregistrar o mesmo valor de função.
func (b *Bus) Off(event string, h Handler) {
	if h == nil {
		return
	}
	target := reflect.ValueOf(h).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[event]
	for i, registered := range list {
		if reflect.ValueOf(registered).Pointer() == target {
			b.handlers[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (b *Bus) Dispatch(event string, payload any) {
	b.mu.Lock()
	list := make([]Handler, len(b.handlers[event]))
	copy(list, b.handlers[event])
	b.mu.Unlock()

	for _, h := range list {
		invoke(event, h, payload)
	}
}

func invoke(event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("realtime: listener panic on %q: %v", event, r)
		}
	}()
	h(payload)
}
