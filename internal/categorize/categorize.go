// Package categorize guesses a category name for a shopping item from its name.
package categorize

import "strings"

// Category names produced by Categorize. They match the seeded backend categories.
const (
	Produce      = "Fruits & Vegetables"
	Dairy        = "Dairy"
	Meat         = "Meat & Seafood"
	Bakery       = "Bakery"
	Pantry       = "Pantry"
	Frozen       = "Frozen"
	Drinks       = "Drinks"
	Snacks       = "Snacks"
	Household    = "Household"
	PersonalCare = "Personal Care"
	Other        = "Other"
)

// Names lists every category Categorize can return, in seed order.
var Names = []string{Produce, Dairy, Meat, Bakery, Pantry, Frozen, Drinks, Snacks, Household, PersonalCare, Other}

// Categorize returns the category for the given item name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to Other if no match is found.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return Other
}

var exactMatch = map[string]string{
	"apples":   Produce,
	"bananas":  Produce,
	"oranges":  Produce,
	"lemons":   Produce,
	"avocado":  Produce,
	"tomatoes": Produce,
	"potatoes": Produce,
	"onions":   Produce,
	"garlic":   Produce,
	"lettuce":  Produce,
	"spinach":  Produce,
	"carrots":  Produce,
	"grapes":   Produce,

	"milk":    Dairy,
	"eggs":    Dairy,
	"butter":  Dairy,
	"cheese":  Dairy,
	"yogurt":  Dairy,
	"yoghurt": Dairy,

	"chicken": Meat,
	"beef":    Meat,
	"pork":    Meat,
	"bacon":   Meat,
	"sausage": Meat,
	"mince":   Meat,
	"salmon":  Meat,
	"tuna":    Meat,
	"fish":    Meat,

	"bread":     Bakery,
	"rolls":     Bakery,
	"buns":      Bakery,
	"muffins":   Bakery,
	"tortillas": Bakery,

	"rice":   Pantry,
	"pasta":  Pantry,
	"flour":  Pantry,
	"sugar":  Pantry,
	"salt":   Pantry,
	"oil":    Pantry,
	"cereal": Pantry,
	"honey":  Pantry,
	"beans":  Pantry,

	"ice cream":    Frozen,
	"frozen pizza": Frozen,
	"frozen peas":  Frozen,

	"water":  Drinks,
	"juice":  Drinks,
	"coffee": Drinks,
	"tea":    Drinks,
	"soda":   Drinks,
	"beer":   Drinks,
	"wine":   Drinks,

	"chips":     Snacks,
	"crisps":    Snacks,
	"crackers":  Snacks,
	"cookies":   Snacks,
	"biscuits":  Snacks,
	"popcorn":   Snacks,
	"chocolate": Snacks,

	"paper towels":  Household,
	"toilet paper":  Household,
	"dish soap":     Household,
	"trash bags":    Household,
	"batteries":     Household,
	"light bulbs":   Household,
	"aluminum foil": Household,

	"shampoo":    PersonalCare,
	"soap":       PersonalCare,
	"toothpaste": PersonalCare,
	"deodorant":  PersonalCare,
	"sunscreen":  PersonalCare,
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	{"ice cream", Frozen},
	{"frozen", Frozen},

	{"peanut butter", Pantry},
	{"olive oil", Pantry},
	{"tomato sauce", Pantry},
	{"canned", Pantry},

	{"chicken breast", Meat},
	{"ground beef", Meat},
	{"pork chop", Meat},

	{"almond milk", Dairy},
	{"oat milk", Dairy},
	{"cream cheese", Dairy},
	{"yogurt", Dairy},
	{"cheese", Dairy},
	{"milk", Dairy},
	{"butter", Dairy},
	{"egg", Dairy},

	{"sparkling water", Drinks},
	{"juice", Drinks},
	{"coffee", Drinks},
	{"soda", Drinks},
	{"water", Drinks},
	{"drink", Drinks},

	{"paper towel", Household},
	{"toilet paper", Household},
	{"detergent", Household},
	{"cleaner", Household},
	{"sponge", Household},

	{"body wash", PersonalCare},
	{"toothbrush", PersonalCare},
	{"shampoo", PersonalCare},
	{"razor", PersonalCare},

	{"bread", Bakery},
	{"bagel", Bakery},
	{"croissant", Bakery},
	{"bun", Bakery},

	{"chip", Snacks},
	{"cookie", Snacks},
	{"cracker", Snacks},
	{"snack", Snacks},

	{"pasta", Pantry},
	{"rice", Pantry},
	{"noodle", Pantry},
	{"sauce", Pantry},
	{"soup", Pantry},

	{"berries", Produce},
	{"apple", Produce},
	{"banana", Produce},
	{"tomato", Produce},
	{"potato", Produce},
	{"onion", Produce},
	{"pepper", Produce},
	{"carrot", Produce},
	{"lettuce", Produce},
	{"fruit", Produce},
}
