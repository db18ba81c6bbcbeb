package main

import (
	"context"
	"flag"
)

func (a *app) registry() *CommandRegistry {
	r := NewCommandRegistry(a.stdout)
	a.commands = r

	r.Register(&Command{
		Name:        "register",
		Description: "Create an account and log in",
		Usage:       "shoplist register -name NAME -surname SURNAME -email EMAIL -password PASSWORD [-cell NUMBER]",
		Examples:    []string{"shoplist register -name Jane -surname Doe -email jane@example.com -password s3cret"},
		Run:         a.registerCommand,
	})
	r.Register(&Command{
		Name:        "login",
		Description: "Log in with email and password",
		Usage:       "shoplist login -email EMAIL -password PASSWORD",
		Examples:    []string{"shoplist login -email jane@example.com -password s3cret"},
		Run:         a.loginCommand,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Forget the logged-in user",
		Usage:       "shoplist logout",
		Run:         a.logoutCommand,
	})
	r.Register(&Command{
		Name:        "whoami",
		Description: "Show the logged-in user",
		Usage:       "shoplist whoami",
		Run:         a.whoamiCommand,
	})
	r.Register(&Command{
		Name:        "profile",
		Description: "Show or edit your profile",
		Usage:       "shoplist profile [-name NAME] [-surname SURNAME] [-email EMAIL] [-cell NUMBER]",
		Examples:    []string{"shoplist profile", "shoplist profile -cell 0821234567"},
		Run:         a.profileCommand,
	})
	r.Register(&Command{
		Name:        "lists",
		Description: "Show your shopping lists",
		Usage:       "shoplist lists",
		Run:         a.listsCommand,
	})
	r.Register(&Command{
		Name:        "create-list",
		Description: "Create a shopping list",
		Usage:       "shoplist create-list -name NAME",
		Examples:    []string{"shoplist create-list -name \"Weekly groceries\""},
		Run:         a.createListCommand,
	})
	r.Register(&Command{
		Name:        "items",
		Description: "Show items on a list, or on all your lists",
		Usage:       "shoplist items [-list ID] [-status all|pending|completed|favorite] [-by-category]",
		Examples:    []string{"shoplist items -list 3f2a...", "shoplist items -status pending -by-category"},
		Run:         a.itemsCommand,
	})
	r.Register(&Command{
		Name:        "add",
		Description: "Add an item to a list",
		Usage:       "shoplist add -list ID -name NAME [-qty N] [-unit UNIT] [-price P] [-category C] [-priority low|medium|high] [-notes TEXT]",
		Examples:    []string{"shoplist add -list 3f2a... -name Milk -qty 2 -unit liters -price 25.50"},
		Run:         a.addCommand,
	})
	r.Register(&Command{
		Name:        "update",
		Description: "Change fields of an item",
		Usage:       "shoplist update -id ID [-name NAME] [-qty N] [-unit UNIT] [-price P] [-category C] [-priority P] [-notes TEXT]",
		Examples:    []string{"shoplist update -id 9c1e... -qty 3"},
		Run:         a.updateCommand,
	})
	r.Register(&Command{
		Name:        "toggle",
		Description: "Mark an item bought or not bought",
		Usage:       "shoplist toggle -id ID",
		Run:         a.toggleCommand,
	})
	r.Register(&Command{
		Name:        "favorite",
		Description: "Mark or unmark an item as favorite",
		Usage:       "shoplist favorite -id ID",
		Run:         a.favoriteCommand,
	})
	r.Register(&Command{
		Name:        "delete",
		Description: "Remove an item",
		Usage:       "shoplist delete -id ID",
		Run:         a.deleteCommand,
	})
	r.Register(&Command{
		Name:        "watch",
		Description: "Follow live changes to a list",
		Usage:       "shoplist watch -list ID",
		Run:         a.watchCommand,
	})
	r.Register(&Command{
		Name:        "stats",
		Description: "Show totals across your lists",
		Usage:       "shoplist stats",
		Run:         a.statsCommand,
	})
	r.Register(&Command{
		Name:        "categories",
		Description: "Show the category catalog",
		Usage:       "shoplist categories",
		Run:         a.categoriesCommand,
	})
	r.Register(&Command{
		Name:        "history",
		Description: "Show your shopping history by day",
		Usage:       "shoplist history [-date YYYY-MM-DD] [-action added|purchased|removed] [-search TEXT]",
		Examples:    []string{"shoplist history -action purchased", "shoplist history -search milk"},
		Run:         a.historyCommand,
	})
	r.Register(&Command{
		Name:        "help",
		Description: "Show help information",
		Usage:       "shoplist help [command]",
		Run: func(context.Context, []string) error {
			r.PrintHelp(a.stdout)
			return nil
		},
	})

	return r
}

// flagSet returns the flag set for the named registered command.
func (a *app) flagSet(name string) *flag.FlagSet {
	if cmd, ok := a.commands.commands[name]; ok {
		return cmd.NewFlagSet(a.stderr)
	}
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
