// Package pubsub раздаёт снимки состояния подписчикам по топикам (заказ, курьер).
//
// Семантика: публикация с версией меньше последней для топика отбрасывается;
// у каждого подписчика не больше одного ожидающего снимка на топик, новый
// заменяет старый. Медленный подписчик не блокирует публикацию и всё равно
// доходит до последнего состояния.
package pubsub

import (
	"context"
	"sync"
)

// retiredLimit - сколько версий вытесненных топиков хаб помнит, чтобы отбрасывать
// запоздавшие публикации по ним.
const retiredLimit = 4096

type topicState[T any] struct {
	version int64
	latest  T
	has     bool
	subs    map[*subscriber[T]]struct{}
}

type Hub[T any] struct {
	mu       sync.Mutex
	buffer   int
	topics   map[string]*topicState[T]
	firehose map[*subscriber[T]]struct{}

	final        func(T) bool
	retired      map[string]int64
	retiredOrder []string
}

type Option[T any] func(*Hub[T])

// WithRetire - топик, последний снимок которого final, удаляется, как только у него
// не остаётся подписчиков. Без опции опубликованные топики живут всё время работы процесса.
func WithRetire[T any](final func(T) bool) Option[T] {
	return func(h *Hub[T]) {
		h.final = final
	}
}

func New[T any](buffer int, opts ...Option[T]) *Hub[T] {
	if buffer <= 0 {
		buffer = 1
	}
	h := &Hub[T]{
		buffer:   buffer,
		topics:   make(map[string]*topicState[T]),
		firehose: make(map[*subscriber[T]]struct{}),
		retired:  make(map[string]int64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish возвращает false, если снимок устарел относительно уже опубликованного.
// Версии начинаются с 1; равная версия принимается (обновление координаты без смены статуса).
func (h *Hub[T]) Publish(topic string, version int64, value T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := h.topic(topic)
	if version < state.version {
		return false
	}
	state.version = version
	state.latest = value
	state.has = true

	for sub := range state.subs {
		sub.offer(topic, value)
	}
	for sub := range h.firehose {
		sub.offer(topic, value)
	}
	h.retireIdle(topic, state)
	return true
}

// Latest - последний опубликованный снимок топика.
func (h *Hub[T]) Latest(topic string) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.topics[topic]
	if !ok || !state.has {
		var zero T
		return zero, false
	}
	return state.latest, true
}

// Subscribe подписывает на один топик. Если по топику уже есть снимок, он приходит первым.
// Канал закрывается после отмены ctx.
func (h *Hub[T]) Subscribe(ctx context.Context, topic string) <-chan T {
	sub := newSubscriber[T](h.buffer)

	h.mu.Lock()
	state := h.topic(topic)
	state.subs[sub] = struct{}{}
	if state.has {
		sub.offer(topic, state.latest)
	}
	h.mu.Unlock()

	go func() {
		sub.pump(ctx)
		h.mu.Lock()
		delete(state.subs, sub)
		h.retireIdle(topic, state)
		h.mu.Unlock()
	}()

	return sub.out
}

// SubscribeAll получает публикации всех топиков. Начальное состояние вызывающий собирает сам.
func (h *Hub[T]) SubscribeAll(ctx context.Context) <-chan T {
	sub := newSubscriber[T](h.buffer)

	h.mu.Lock()
	h.firehose[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		sub.pump(ctx)
		h.mu.Lock()
		delete(h.firehose, sub)
		h.mu.Unlock()
	}()

	return sub.out
}

// Subscribers - число активных подписок, для метрик и тестов.
func (h *Hub[T]) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.firehose)
	for _, state := range h.topics {
		n += len(state.subs)
	}
	return n
}

// Topics - число топиков в памяти.
func (h *Hub[T]) Topics() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics)
}

// topic восстанавливает версию вытесненного топика: запоздавшая публикация
// со старой версией по нему отбрасывается.
func (h *Hub[T]) topic(name string) *topicState[T] {
	state, ok := h.topics[name]
	if !ok {
		state = &topicState[T]{
			version: h.retired[name],
			subs:    make(map[*subscriber[T]]struct{}),
		}
		delete(h.retired, name)
		h.topics[name] = state
	}
	return state
}

// retireIdle вызывается под h.mu. Топик без подписчиков удаляется, если по нему
// ещё ничего не публиковали или его последний снимок финальный.
func (h *Hub[T]) retireIdle(name string, state *topicState[T]) {
	if len(state.subs) > 0 || h.topics[name] != state {
		return
	}
	if state.has && (h.final == nil || !h.final(state.latest)) {
		return
	}
	delete(h.topics, name)
	if state.version == 0 {
		return
	}

	if _, ok := h.retired[name]; !ok {
		h.retiredOrder = append(h.retiredOrder, name)
	}
	h.retired[name] = state.version

	for len(h.retiredOrder) > retiredLimit {
		oldest := h.retiredOrder[0]
		h.retiredOrder = h.retiredOrder[1:]
		delete(h.retired, oldest)
	}
}

type subscriber[T any] struct {
	mu      sync.Mutex
	pending map[string]T
	queue   []string

	wake chan struct{}
	out  chan T
}

func newSubscriber[T any](buffer int) *subscriber[T] {
	return &subscriber[T]{
		pending: make(map[string]T),
		wake:    make(chan struct{}, 1),
		out:     make(chan T, buffer),
	}
}

func (s *subscriber[T]) offer(topic string, value T) {
	s.mu.Lock()
	if _, queued := s.pending[topic]; !queued {
		s.queue = append(s.queue, topic)
	}
	s.pending[topic] = value
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		var zero T
		return zero, false
	}
	topic := s.queue[0]
	s.queue = s.queue[1:]
	value := s.pending[topic]
	delete(s.pending, topic)
	return value, true
}

func (s *subscriber[T]) pump(ctx context.Context) {
	defer close(s.out)

	for {
		value, ok := s.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}

		select {
		case s.out <- value:
		case <-ctx.Done():
			return
		}
	}
}
