package model

import (
	"errors"
	"testing"
)

func TestComputeStats(t *testing.T) {
	// Arrange
	lists := []ShoppingList{
		{ID: "l1", UserID: "u1"},
		{ID: "l2", UserID: "u1"},
	}
	items := []ShoppingItem{
		{ID: "a", ListID: "l1", Quantity: 2, Price: 1.25, IsCompleted: true},
		{ID: "b", ListID: "l1", Quantity: 1, Price: 4},
		{ID: "c", ListID: "l2", Quantity: 3, Price: 2},
		{ID: "d", ListID: "other", Quantity: 10, Price: 100},
	}

	// Act
	stats := ComputeStats(lists, items)

	// Assert
	want := ShoppingStats{TotalItems: 3, CompletedItems: 1, TotalLists: 2, CompletedLists: 0, TotalValue: 12.5}
	if stats != want {
		t.Errorf("ComputeStats() = %+v, want %+v", stats, want)
	}
}

func TestComputeStats_ListCompletionIndependentOfItems(t *testing.T) {
	lists := []ShoppingList{{ID: "l1", IsCompleted: true}}

	stats := ComputeStats(lists, nil)

	if stats.CompletedLists != 1 || stats.TotalItems != 0 {
		t.Errorf("ComputeStats() = %+v", stats)
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"a.b@c.co.za", true},
		{"jane@example", false},
		{"jane example@x.com", false},
		{"@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestCreateUserDto_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dto     CreateUserDto
		wantErr error
	}{
		{"valid", CreateUserDto{Name: "Jane", Surname: "Doe", Email: "jane@example.com", Password: "pw"}, nil},
		{"missing surname", CreateUserDto{Name: "Jane", Email: "jane@example.com", Password: "pw"}, ErrEmptyUserName},
		{"bad email", CreateUserDto{Name: "Jane", Surname: "Doe", Email: "jane", Password: "pw"}, ErrInvalidEmail},
		{"missing password", CreateUserDto{Name: "Jane", Surname: "Doe", Email: "jane@example.com"}, ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.dto.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateUserDto_UserNormalizesEmail(t *testing.T) {
	dto := CreateUserDto{Name: "Jane", Surname: "Doe", Email: "  Jane@Example.COM "}

	if got := dto.User().Email; got != "jane@example.com" {
		t.Errorf("Email = %q, want %q", got, "jane@example.com")
	}
}

func TestFindCategory(t *testing.T) {
	categories := []Category{
		{ID: "1", Name: "Dairy"},
		{ID: "2", Name: "Drinks"},
	}

	tests := []struct {
		name   string
		id     string
		cat    string
		wantID string
		wantOK bool
	}{
		{"by id", "2", "Dairy", "2", true},
		{"by name fallback", "", "drinks", "2", true},
		{"unknown id falls back to name", "9", "Dairy", "1", true},
		{"no match", "", "Frozen", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindCategory(categories, tt.id, tt.cat)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("FindCategory() = (%+v, %v), want id %q ok %v", got, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestUpdateShoppingListDto_Apply(t *testing.T) {
	list := ShoppingList{ID: "l1", UserID: "u1", Name: "Weekly"}
	done := true

	patch := UpdateShoppingListDto{IsCompleted: &done}
	if err := patch.Apply(&list); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !list.IsCompleted || list.Name != "Weekly" {
		t.Errorf("list = %+v", list)
	}

	blank := "  "
	bad := UpdateShoppingListDto{Name: &blank}
	if err := bad.Apply(&list); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Apply() error = %v, want %v", err, ErrEmptyName)
	}
}

func TestNewChangeEvent(t *testing.T) {
	ev := NewChangeEvent(EntityItem, ActionDeleted, "i1", "l1")

	if ev.Type != "item_deleted" {
		t.Errorf("Type = %q, want %q", ev.Type, "item_deleted")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}
