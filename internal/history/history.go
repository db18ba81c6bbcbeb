// Package history keeps the CLI's append-only log of item activity and
// summarizes it per day.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vyrodovalexey/shoplist/internal/localstore"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Key is the local store key holding the log.
const Key = "shoppingHistory"

// DateLayout is the format of Entry.Date.
const DateLayout = "2006-01-02"

// Action is what happened to an item.
type Action string

// Recorded actions.
const (
	ActionAdded     Action = "added"
	ActionPurchased Action = "purchased"
	ActionRemoved   Action = "removed"
)

// ErrInvalidAction is returned for an action outside the known set.
var ErrInvalidAction = errors.New("action must be one of: added, purchased, removed")

// Valid reports whether a is a recorded action.
func (a Action) Valid() bool {
	switch a {
	case ActionAdded, ActionPurchased, ActionRemoved:
		return true
	}
	return false
}

// Entry is one logged event. Item fields are copied at the time of the event.
type Entry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	Quantity  int            `json:"quantity"`
	Unit      model.Unit     `json:"unit"`
	Category  string         `json:"category"`
	Priority  model.Priority `json:"priority"`
	Action    Action         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Date      string         `json:"date"`
}

// Day summarizes the entries of one date.
type Day struct {
	Date           string
	Entries        []Entry
	ItemsAdded     int
	ItemsPurchased int
	ItemsRemoved   int
	// TotalSpent is the sum of price x quantity over purchased entries.
	TotalSpent float64
}

// Filter narrows Daily results. Zero fields match everything.
type Filter struct {
	Date   string
	Action Action
	// Search matches entry names and categories case-insensitively.
	Search string
}

// Log appends to and reads the history entry of a local store.
type Log struct {
	store *localstore.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewLog creates a Log backed by store.
func NewLog(store *localstore.Store) *Log {
	return &Log{store: store, now: time.Now}
}

// Append records action for item and returns the new entry.
func (l *Log) Append(ctx context.Context, item model.ShoppingItem, action Action) (Entry, error) {
	if !action.Valid() {
		return Entry{}, ErrInvalidAction
	}

	now := l.now().UTC()
	entry := Entry{
		ID:        uuid.NewString(),
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Unit:      item.Unit,
		Category:  item.Category,
		Priority:  item.Priority,
		Action:    action,
		Timestamp: now,
		Date:      now.Format(DateLayout),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.entries(ctx)
	if err != nil {
		return Entry{}, err
	}
	entries = append(entries, entry)
	if err := l.store.Set(ctx, Key, entries); err != nil {
		return Entry{}, fmt.Errorf("append history: %w", err)
	}
	return entry, nil
}

// Entries returns every entry in the order it was appended.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries(ctx)
}

func (l *Log) entries(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	err := l.store.Get(ctx, Key, &entries)
	if errors.Is(err, localstore.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Daily groups entries by date, newest first, then applies f. Day counters
// describe the whole day regardless of the action and search filters;
// days left without entries are dropped.
func (l *Log) Daily(ctx context.Context, f Filter) ([]Day, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(entries, f), nil
}

// Summarize is Daily over an in-memory slice of entries.
func Summarize(entries []Entry, f Filter) []Day {
	byDate := make(map[string][]Entry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	days := make([]Day, 0, len(byDate))
	for date, dayEntries := range byDate {
		if f.Date != "" && date != f.Date {
			continue
		}

		day := summarizeDay(date, dayEntries)
		day.Entries = filterEntries(dayEntries, f)
		if len(day.Entries) == 0 {
			continue
		}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}

func summarizeDay(date string, entries []Entry) Day {
	day := Day{Date: date}
	spent := decimal.Zero
	for _, e := range entries {
		switch e.Action {
		case ActionAdded:
			day.ItemsAdded++
		case ActionPurchased:
			day.ItemsPurchased++
			spent = spent.Add(decimal.NewFromFloat(e.Price).Mul(decimal.NewFromInt(int64(e.Quantity))))
		case ActionRemoved:
			day.ItemsRemoved++
		}
	}
	day.TotalSpent = spent.Round(2).InexactFloat64()
	return day
}

func filterEntries(entries []Entry, f Filter) []Entry {
	search := strings.ToLower(f.Search)
	out := []Entry{}
	for _, e := range entries {
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Category), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}
