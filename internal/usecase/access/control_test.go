package access

import (
	"errors"
	"testing"
)

const primaryID int64 = 999

func TestRemovePrimaryAdminIsProtected(t *testing.T) {
	tests := []struct {
		name  string
		extra []int64
	}{
		{name: "only primary"},
		{name: "with other admins", extra: []int64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewControl(primaryID)
			for _, id := range tt.extra {
				if err := c.AddAdmin(id); err != nil {
					t.Fatalf("не ожидали ошибку: %v", err)
				}
			}
			if err := c.RemoveAdmin(primaryID); !errors.Is(err, ErrProtectedAdmin) {
				t.Fatalf("ожидали ErrProtectedAdmin, получили %v", err)
			}
			if !c.IsAdmin(primaryID) {
				t.Fatal("главный админ должен остаться")
			}
		})
	}
}

func TestRemoveAdmin(t *testing.T) {
	c := NewControl(primaryID)
	if err := c.RemoveAdmin(5); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("ожидали ErrNotAdmin, получили %v", err)
	}
	_ = c.AddAdmin(5)
	_ = c.AddAdmin(5)
	if err := c.RemoveAdmin(5); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if c.IsAdmin(5) {
		t.Fatal("пользователь 5 больше не админ")
	}
}

func TestBlockOnlyNonAdmins(t *testing.T) {
	c := NewControl(primaryID)
	_ = c.AddAdmin(7)

	tests := []struct {
		id      int64
		wantErr error
	}{
		{id: primaryID, wantErr: ErrCannotBlockAdmin},
		{id: 7, wantErr: ErrCannotBlockAdmin},
		{id: 111, wantErr: nil},
	}
	for _, tt := range tests {
		err := c.Block(tt.id)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("Block(%d) = %v, ожидали %v", tt.id, err, tt.wantErr)
		}
		if c.IsAdmin(tt.id) && c.IsBlocked(tt.id) {
			t.Fatalf("пользователь %d одновременно админ и заблокирован", tt.id)
		}
	}

	if err := c.RemoveAdmin(7); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if err := c.Block(7); err != nil {
		t.Fatalf("после снятия прав блокировка должна проходить: %v", err)
	}
}

func TestAddBlockedAdminRejected(t *testing.T) {
	c := NewControl(primaryID)
	_ = c.Block(111)
	if err := c.AddAdmin(111); !errors.Is(err, ErrAdminBlocked) {
		t.Fatalf("ожидали ErrAdminBlocked, получили %v", err)
	}
	if c.IsAdmin(111) {
		t.Fatal("заблокированный пользователь не должен стать админом")
	}
}

func TestUnblock(t *testing.T) {
	c := NewControl(primaryID)
	if err := c.Unblock(111); !errors.Is(err, ErrNotBlocked) {
		t.Fatalf("ожидали ErrNotBlocked, получили %v", err)
	}
	_ = c.Block(111)
	if err := c.Unblock(111); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if c.IsBlocked(111) {
		t.Fatal("пользователь 111 должен быть разблокирован")
	}
}

func TestSnapshotsAreOrdered(t *testing.T) {
	c := NewControl(primaryID)
	for _, id := range []int64{30, 10, 20} {
		_ = c.AddAdmin(id)
		_ = c.Block(id + 1)
	}
	admins := c.Admins()
	wantAdmins := []int64{primaryID, 10, 20, 30}
	for i, id := range wantAdmins {
		if admins[i] != id {
			t.Fatalf("ожидали %v, получили %v", wantAdmins, admins)
		}
	}
	blocked := c.Blocked()
	wantBlocked := []int64{11, 21, 31}
	for i, id := range wantBlocked {
		if blocked[i] != id {
			t.Fatalf("ожидали %v, получили %v", wantBlocked, blocked)
		}
	}
}
