package access

import (
	"errors"
	"sort"
)

var (
	// ErrProtectedAdmin возвращается при попытке удалить главного админа.
	ErrProtectedAdmin = errors.New("primary admin is protected")
	// ErrNotAdmin возвращается, если пользователь не является админом.
	ErrNotAdmin = errors.New("user is not an admin")
	// ErrCannotBlockAdmin возвращается при попытке заблокировать админа.
	ErrCannotBlockAdmin = errors.New("admin cannot be blocked")
	// ErrNotBlocked возвращается, если пользователь не заблокирован.
	ErrNotBlocked = errors.New("user is not blocked")
	// ErrAdminBlocked возвращается при попытке назначить админом заблокированного пользователя.
	ErrAdminBlocked = errors.New("blocked user cannot become admin")
)

// Control хранит списки админов и заблокированных пользователей.
// Пересечение списков всегда пусто: операции, нарушающие это, отклоняются.
type Control struct {
	primary int64
	admins  map[int64]struct{}
	blocked map[int64]struct{}
}

// NewControl создаёт списки с единственным главным админом.
func NewControl(primary int64) *Control {
	return &Control{
		primary: primary,
		admins:  map[int64]struct{}{primary: {}},
		blocked: make(map[int64]struct{}),
	}
}

// Primary возвращает идентификатор главного админа.
func (c *Control) Primary() int64 { return c.primary }

func (c *Control) IsAdmin(id int64) bool {
	_, ok := c.admins[id]
	return ok
}

func (c *Control) IsBlocked(id int64) bool {
	_, ok := c.blocked[id]
	return ok
}

// AddAdmin назначает админа. Повторное назначение не считается ошибкой.
func (c *Control) AddAdmin(id int64) error {
	if c.IsBlocked(id) {
		return ErrAdminBlocked
	}
	c.admins[id] = struct{}{}
	return nil
}

// RemoveAdmin снимает права админа.
func (c *Control) RemoveAdmin(id int64) error {
	if id == c.primary {
		return ErrProtectedAdmin
	}
	if !c.IsAdmin(id) {
		return ErrNotAdmin
	}
	delete(c.admins, id)
	return nil
}

// Block блокирует пользователя.
func (c *Control) Block(id int64) error {
	if c.IsAdmin(id) {
		return ErrCannotBlockAdmin
	}
	c.blocked[id] = struct{}{}
	return nil
}

// Unblock снимает блокировку.
func (c *Control) Unblock(id int64) error {
	if !c.IsBlocked(id) {
		return ErrNotBlocked
	}
	delete(c.blocked, id)
	return nil
}

// Admins возвращает снимок списка админов: главный первым, остальные по возрастанию.
func (c *Control) Admins() []int64 {
	rest := make([]int64, 0, len(c.admins))
	for id := range c.admins {
		if id != c.primary {
			rest = append(rest, id)
		}
	}
	sortIDs(rest)
	return append([]int64{c.primary}, rest...)
}

// Blocked возвращает снимок заблокированных по возрастанию.
func (c *Control) Blocked() []int64 {
	ids := make([]int64, 0, len(c.blocked))
	for id := range c.blocked {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
