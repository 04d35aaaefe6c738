package mapping

import (
	"sort"
	"time"

	"tg-relay-bot/internal/domain"
	"tg-relay-bot/internal/infra/metrics"
)

// DefaultTTL задаёт время жизни маппинга.
const DefaultTTL = 24 * time.Hour

// Key адресует пересланное сообщение: чат админа и номер сообщения в нём.
type Key struct {
	ChatID    int64
	MessageID int
}

// Store хранит соответствие пересланных админам сообщений и их авторов.
// Не потокобезопасен: апдейты обрабатываются строго по одному.
type Store struct {
	entries   map[Key]domain.MappingEntry
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithTTL задаёт время жизни записей.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore создаёт пустое хранилище.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[Key]domain.MappingEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put сохраняет маппинг сообщения outboundID в чате админа chatID и удаляет устаревшие записи.
func (s *Store) Put(chatID int64, outboundID int, userID int64) {
	now := s.now()
	s.entries[Key{ChatID: chatID, MessageID: outboundID}] = domain.MappingEntry{
		AdminChatID:       chatID,
		OutboundMessageID: outboundID,
		UserID:            userID,
		CreatedAt:         now,
	}
	if s.nextSweep.IsZero() {
		s.nextSweep = now.Add(s.ttl)
	}
	s.SweepExpired(now)
	metrics.MappingsActive.Set(float64(len(s.entries)))
}

// Get возвращает автора сообщения. Устаревшая запись считается отсутствующей.
func (s *Store) Get(chatID int64, outboundID int) (int64, bool) {
	entry, ok := s.entries[Key{ChatID: chatID, MessageID: outboundID}]
	if !ok || s.expired(entry, s.now()) {
		return 0, false
	}
	return entry.UserID, true
}

// SweepExpired удаляет записи старше TTL относительно now.
// Обход таблицы выполняется только когда истёк срок самой старой записи.
func (s *Store) SweepExpired(now time.Time) {
	if s.nextSweep.IsZero() || !now.After(s.nextSweep) {
		return
	}
	var oldest time.Time
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
			continue
		}
		if oldest.IsZero() || entry.CreatedAt.Before(oldest) {
			oldest = entry.CreatedAt
		}
	}
	if oldest.IsZero() {
		s.nextSweep = time.Time{}
		return
	}
	s.nextSweep = oldest.Add(s.ttl)
}

// Len возвращает количество живых маппингов.
func (s *Store) Len() int {
	now := s.now()
	n := 0
	for _, entry := range s.entries {
		if !s.expired(entry, now) {
			n++
		}
	}
	return n
}

// Users возвращает отсортированный список уникальных авторов живых маппингов.
func (s *Store) Users() []int64 {
	now := s.now()
	seen := make(map[int64]struct{})
	users := make([]int64, 0)
	for _, entry := range s.entries {
		if s.expired(entry, now) {
			continue
		}
		if _, ok := seen[entry.UserID]; ok {
			continue
		}
		seen[entry.UserID] = struct{}{}
		users = append(users, entry.UserID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

func (s *Store) expired(entry domain.MappingEntry, now time.Time) bool {
	return entry.CreatedAt.Before(now.Add(-s.ttl))
}
