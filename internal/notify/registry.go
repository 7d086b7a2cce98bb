// Package notify хранит стримы push-уведомлений по пользователям.
// Стрим живёт в памяти: у каждого пользователя монотонно растущий номер
// события и ограниченное окно повтора для догрузки после переподключения.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Event событие стрима. ID растёт монотонно в рамках одного пользователя,
// между пользователями номера независимы.
type Event struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DefaultWindowSize размер окна повтора по умолчанию
const DefaultWindowSize = 256

// stream состояние одного пользователя
type stream struct {
	lastID int64   // Номер последнего выданного события
	buffer []Event // Окно повтора, старые события вытесняются
	sub    chan Event
}

// Registry реестр стримов. Все операции под одним мьютексом:
// Send зовётся из любых горутин запросов, Subscribe - из push-соединений.
type Registry struct {
	mu      sync.Mutex
	window  int
	streams map[string]*stream
	logger  *zap.Logger
}

// NewRegistry создаёт новый реестр стримов
func NewRegistry(window int, logger *zap.Logger) *Registry {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &Registry{
		window:  window,
		streams: make(map[string]*stream),
		logger:  logger,
	}
}

func (r *Registry) stream(userKey string) *stream {
	st, ok := r.streams[userKey]
	if !ok {
		st = &stream{}
		r.streams[userKey] = st
	}
	return st
}

// Send назначает событию следующий номер в стриме пользователя, кладёт его
// в окно повтора и отдаёт в открытое соединение, если оно есть.
// Отправка никогда не блокирует: медленное соединение отключается,
// клиент дочитает пропущенное из окна при переподключении.
func (r *Registry) Send(userKey, eventType, message string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stream(userKey)
	st.lastID++
	event := Event{ID: st.lastID, Type: eventType, Message: message}

	st.buffer = append(st.buffer, event)
	if len(st.buffer) > r.window {
		st.buffer = st.buffer[len(st.buffer)-r.window:]
	}

	if st.sub != nil {
		select {
		case st.sub <- event:
		default:
			close(st.sub)
			st.sub = nil
			r.logger.Warn("Push subscriber too slow, dropping connection",
				zap.String("user_key", userKey),
				zap.Int64("event_id", event.ID),
			)
		}
	}

	return event.ID
}

// Subscribe подключает пользователя к его стриму. Сначала в канал попадают
// события окна с номером больше lastEventID строго по порядку, дальше живые.
// lastEventID = 0 означает "с начала окна". Повторная подписка вытесняет
// предыдущее соединение пользователя.
// Возвращает канал событий и функцию отписки.
func (r *Registry) Subscribe(userKey string, lastEventID int64) (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stream(userKey)

	if st.sub != nil {
		close(st.sub)
		st.sub = nil
	}

	// Ёмкости канала хватает на всё окно плюс запас живых событий,
	// поэтому повтор под мьютексом не блокируется
	ch := make(chan Event, r.window+16)
	for _, event := range st.buffer {
		if event.ID > lastEventID {
			ch <- event
		}
	}
	st.sub = ch

	unsubscribe := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if st.sub == ch {
			close(st.sub)
			st.sub = nil
		}
	}

	return ch, unsubscribe
}

// LastEventID возвращает номер последнего события пользователя
func (r *Registry) LastEventID(userKey string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.streams[userKey]
	if !ok {
		return 0
	}
	return st.lastID
}
