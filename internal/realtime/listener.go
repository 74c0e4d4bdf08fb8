package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Canal do Postgres alimentado pelo trigger criado na migração.
const notifyChannel = "appointments_changed"

// ChangeEvent é o payload do pg_notify emitido pelo trigger da
// tabela appointments.
type ChangeEvent struct {
	Event           string `json:"event"` // insert | update | delete
	CompanyID       uint   `json:"company_id"`
	AppointmentDate string `json:"appointment_date"`
}

type subscription struct {
	companyID uint
	date      string
	onChange  func()
}

// Listener assina o change-feed de agendamentos via LISTEN/NOTIFY e
// repassa para assinaturas por (empresa, dia). Uma assinatura por
// tela de slot-picker; o unsubscribe devolvido PRECISA ser chamado
// no teardown para não vazar.
type Listener struct {
	dsn string

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]subscription
	cancel context.CancelFunc
}

func NewListener(dsn string) *Listener {
	return &Listener{
		dsn:  dsn,
		subs: make(map[uint64]subscription),
	}
}

// Subscribe registra interesse nos agendamentos de uma empresa em um
// dia específico. Notificações de outros dias são ignoradas.
func (l *Listener) Subscribe(companyID uint, date string, onChange func()) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs[id] = subscription{
		companyID: companyID,
		date:      date,
		onChange:  onChange,
	}
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Start abre a conexão dedicada e fica em loop de WaitForNotification
// até o contexto ser cancelado. Reconecta com backoff simples em caso
// de queda.
func (l *Listener) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	go l.run(ctx)
}

func (l *Listener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (l *Listener) run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			log.Printf("realtime: listen loop error: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch([]byte(notification.Payload))
	}
}

// dispatch filtra a notificação pelas assinaturas ativas. Separado do
// loop de rede para ser testável sem Postgres.
func (l *Listener) dispatch(payload []byte) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("realtime: bad notify payload: %v", err)
		return
	}

	l.mu.Lock()
	var matched []func()
	for _, sub := range l.subs {
		if sub.companyID == ev.CompanyID && sub.date == ev.AppointmentDate {
			matched = append(matched, sub.onChange)
		}
	}
	l.mu.Unlock()

	for _, fn := range matched {
		fn()
	}
}
