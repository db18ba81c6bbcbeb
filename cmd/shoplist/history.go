package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vyrodovalexey/shoplist/internal/history"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

func (a *app) historyCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("history")
	date := fs.String("date", "", "Only this day (YYYY-MM-DD)")
	action := fs.String("action", "all", "Filter: all, added, purchased, removed")
	search := fs.String("search", "", "Match item name or category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := history.Filter{Date: *date, Search: *search}
	if *action != "all" {
		filter.Action = history.Action(*action)
		if !filter.Action.Valid() {
			return history.ErrInvalidAction
		}
	}
	if *date != "" {
		if _, err := time.Parse(history.DateLayout, *date); err != nil {
			return fmt.Errorf("invalid -date %q: want YYYY-MM-DD", *date)
		}
	}

	days, err := a.history.Daily(ctx, filter)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		a.printf("No history found.\n")
		return nil
	}

	for _, day := range days {
		a.printf("%s  added %d  purchased %d  removed %d  spent %.2f\n",
			dayLabel(day.Date, time.Now()), day.ItemsAdded, day.ItemsPurchased, day.ItemsRemoved, day.TotalSpent)
		for _, e := range day.Entries {
			total := (&model.ShoppingItem{Price: e.Price, Quantity: e.Quantity}).LineTotal()
			a.printf("  %s  %-9s  %s x%d %s  %s  %s\n",
				e.Timestamp.Local().Format("15:04"), e.Action,
				e.Name, e.Quantity, e.Unit, total.StringFixed(2), e.Category)
		}
	}
	return nil
}

// dayLabel names today and yesterday; other dates are spelled out.
func dayLabel(date string, now time.Time) string {
	now = now.UTC()
	switch date {
	case now.Format(history.DateLayout):
		return "Today"
	case now.AddDate(0, 0, -1).Format(history.DateLayout):
		return "Yesterday"
	}
	if t, err := time.Parse(history.DateLayout, date); err == nil {
		return t.Format("Monday, 2 January 2006")
	}
	return date
}
