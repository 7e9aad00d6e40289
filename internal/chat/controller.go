package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/domain"
	"github.com/ahmadsanny2/chat-ai/internal/llm"
	"github.com/ahmadsanny2/chat-ai/internal/store"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrSessionBusy    = errors.New("session busy")
	ErrEmptyMessage   = errors.New("empty message")
)

// ControllerOptions ajusta extensiones opcionales del turno.
type ControllerOptions struct {
	// HistoryLimit acota cuantos mensajes del final del historial viajan al
	// gateway; 0 envia todo (comportamiento base).
	HistoryLimit int
	// TurnTimeout limita un turno completo; 0 no impone deadline
	// (comportamiento base).
	TurnTimeout time.Duration
}

// Controller es el dueño del conjunto de sesiones en memoria y orquesta cada
// turno: append optimista, persistencia, llamada al gateway y merge de la
// respuesta. El busy flag por sesion serializa turnos de una misma sesion;
// turnos de sesiones distintas corren en paralelo.
type Controller struct {
	mu       sync.Mutex
	sessions []domain.Session
	active   string
	busy     map[string]bool

	store   store.Store
	gateway llm.Gateway
	logger  *zap.Logger
	opts    ControllerOptions
}

func NewController(st store.Store, gw llm.Gateway, logger *zap.Logger, initial []domain.Session, opts ControllerOptions) *Controller {
	sessions := make([]domain.Session, len(initial))
	for i, s := range initial {
		sessions[i] = s.Clone()
	}
	active := ""
	if len(sessions) > 0 {
		active = sessions[0].ID
	}
	return &Controller{
		sessions: sessions,
		active:   active,
		busy:     make(map[string]bool),
		store:    st,
		gateway:  gw,
		logger:   logger,
		opts:     opts,
	}
}

// Sessions devuelve una copia del conjunto, en orden.
func (c *Controller) Sessions() []domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Session, len(c.sessions))
	for i, s := range c.sessions {
		out[i] = s.Clone()
	}
	return out
}

// ActiveID devuelve el id de la sesion activa, o "" si no queda ninguna.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Busy informa si la sesion tiene un turno en vuelo.
func (c *Controller) Busy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[id]
}

// Select valida el id contra el conjunto conocido y lo vuelve activo.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := Find(c.sessions, id); !ok {
		return ErrUnknownSession
	}
	c.active = id
	return nil
}

// Create agrega una sesion nueva al frente y la vuelve activa. La copia en
// memoria queda aunque la escritura durable falle; el error se reporta igual.
func (c *Controller) Create(ctx context.Context) (domain.Session, error) {
	fresh := NewSession(time.Now())

	c.mu.Lock()
	c.sessions = Prepend(c.sessions, fresh)
	c.active = fresh.ID
	c.mu.Unlock()

	if err := c.persistCurrent(ctx, fresh.ID); err != nil {
		c.logger.Error("persist new session failed", zap.Error(err), zap.String("session_id", fresh.ID))
		return fresh, err
	}
	return fresh, nil
}

// Rename fija el titulo explicito. Permitido aun con turno en vuelo.
func (c *Controller) Rename(ctx context.Context, id, title string) error {
	c.mu.Lock()
	if _, ok := Find(c.sessions, id); !ok {
		c.mu.Unlock()
		return nil
	}
	set := Rename(c.sessions, id, title)
	set = bumpRevision(set, id)
	c.sessions = set
	c.mu.Unlock()

	if err := c.persistCurrent(ctx, id); err != nil {
		c.logger.Error("persist rename failed", zap.Error(err), zap.String("session_id", id))
		return err
	}
	return nil
}

// Delete quita la sesion de memoria y del espejo durable en la misma
// operacion. Si era la activa pasa a la primera restante. Permitido aun con
// turno en vuelo: el merge de ese turno quedara en no-op.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	set, removed := Delete(c.sessions, id)
	if !removed {
		c.mu.Unlock()
		return nil
	}
	c.sessions = set
	delete(c.busy, id)
	if c.active == id {
		c.active = NextActive(set)
	}
	c.mu.Unlock()

	if err := c.store.Remove(ctx, id); err != nil {
		c.logger.Error("remove session failed", zap.Error(err), zap.String("session_id", id))
		return err
	}
	return nil
}

// Submit corre un turno completo sobre la sesion indicada: append optimista
// del mensaje del usuario (con derivacion de titulo si es el primero),
// escritura durable pre-llamada, gateway, merge de la respuesta y segunda
// escritura. Un fallo del gateway deja el mensaje del usuario en su lugar,
// sin rollback. Un fallo de la escritura pre-llamada aborta el turno.
func (c *Controller) Submit(ctx context.Context, id, text string) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	sess, ok := Find(c.sessions, id)
	if !ok {
		c.mu.Unlock()
		return domain.Message{}, ErrUnknownSession
	}
	if c.busy[id] {
		c.mu.Unlock()
		return domain.Message{}, ErrSessionBusy
	}

	firstMessage := len(sess.Messages) == 0
	set, _ := Append(c.sessions, id, domain.Message{Role: domain.RoleUser, Content: text})
	if firstMessage {
		// Unica derivacion automatica de titulo por sesion.
		set = Rename(set, id, DeriveTitle(text))
	}
	set = bumpRevision(set, id)
	c.sessions = set
	c.busy[id] = true
	snapshot, _ := Find(set, id)
	snapshot = snapshot.Clone()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.busy, id)
		c.mu.Unlock()
	}()

	if c.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.TurnTimeout)
		defer cancel()
	}

	if err := c.persistCurrent(ctx, id); err != nil {
		c.logger.Error("pre-send persist failed", zap.Error(err), zap.String("session_id", id))
		return domain.Message{}, err
	}

	history := snapshot.Messages
	if c.opts.HistoryLimit > 0 && len(history) > c.opts.HistoryLimit {
		history = history[len(history)-c.opts.HistoryLimit:]
	}

	reply, err := c.gateway.Send(ctx, history)
	if err != nil {
		c.logger.Warn("completion failed", zap.Error(err), zap.String("session_id", id))
		return domain.Message{}, err
	}

	c.mu.Lock()
	set, appended := Append(c.sessions, id, reply)
	if !appended {
		// La sesion fue borrada con el turno en vuelo: el merge y la
		// escritura durable son no-ops.
		c.mu.Unlock()
		c.logger.Info("session deleted mid-turn, reply dropped", zap.String("session_id", id))
		return reply, nil
	}
	set = bumpRevision(set, id)
	c.sessions = set
	c.mu.Unlock()

	if err := c.persistCurrent(ctx, id); err != nil {
		// La respuesta ya esta en memoria; se reporta sin rollback.
		c.logger.Error("post-reply persist failed", zap.Error(err), zap.String("session_id", id))
	}
	return reply, nil
}

// persistCurrent escribe el estado vigente de la sesion al espejo durable.
// Sesion ausente al tomar el snapshot es un no-op. Un ErrStaleWrite se
// reintenta una sola vez con revision nueva: la escritura concurrente que
// gano partio del mismo estado en memoria. Si un delete aterrizo con la
// escritura en vuelo, el registro durable no debe reaparecer y se borra de
// nuevo antes de devolver.
func (c *Controller) persistCurrent(ctx context.Context, id string) error {
	c.mu.Lock()
	snapshot, ok := Find(c.sessions, id)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	snapshot = snapshot.Clone()
	c.mu.Unlock()

	err := c.store.Upsert(ctx, snapshot)
	if errors.Is(err, store.ErrStaleWrite) {
		c.mu.Lock()
		c.sessions = bumpRevision(c.sessions, id)
		retry, ok := Find(c.sessions, id)
		if ok {
			retry = retry.Clone()
		}
		c.mu.Unlock()
		if !ok {
			err = nil
		} else {
			err = c.store.Upsert(ctx, retry)
		}
	}

	c.mu.Lock()
	_, exists := Find(c.sessions, id)
	c.mu.Unlock()
	if !exists {
		if rmErr := c.store.Remove(ctx, id); rmErr != nil {
			c.logger.Error("undo write for deleted session failed", zap.Error(rmErr), zap.String("session_id", id))
		}
	}
	return err
}

func bumpRevision(set []domain.Session, id string) []domain.Session {
	out := make([]domain.Session, len(set))
	copy(out, set)
	for i, s := range out {
		if s.ID == id {
			s.Revision++
			out[i] = s
			break
		}
	}
	return out
}
