// Package dispatcher interprets inbound messages as commands and builds the
// reply. It is the single conversion boundary for errors: whatever the
// directory or the scraper fails with, the user gets a localized apology
// and the transport layer never sees an internal error for an accepted job.
package dispatcher

import "strings"

// CommandKind tags the classified command.
type CommandKind string

// The command set, in classification priority order.
const (
	KindFavoritesDigest CommandKind = "favorites"
	KindAddFavorite     CommandKind = "add_favorite"
	KindListBeaches     CommandKind = "list_beaches"
	KindHelp            CommandKind = "help"
	KindForecast        CommandKind = "forecast"
)

// Command is the tagged result of classifying one message.
type Command struct {
	Kind CommandKind
	// Query is the beach query for add_favorite and forecast commands.
	Query string
}

// Phrase sets are matched against the lower-cased, trimmed input. Hebrew and
// English forms are both accepted.
var (
	favoritesPhrases = []string{"מועדפים", "המועדפים שלי", "favorites", "my favorites"}
	listPhrases      = []string{"חופים", "רשימת חופים", "beaches", "list"}
	helpPhrases      = []string{"עזרה", "help", "?"}
	addPrefixes      = []string{"הוסף ", "add "}
)

// Classify maps free text to a Command. Evaluation order is fixed: exact
// digest phrases, then the add prefix, then list and help phrases; anything
// else is treated as a beach-name query.
func Classify(text string) Command {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)

	if matchesPhrase(lowered, favoritesPhrases) {
		return Command{Kind: KindFavoritesDigest}
	}
	for _, prefix := range addPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return Command{
				Kind:  KindAddFavorite,
				Query: strings.TrimSpace(trimmed[len(prefix):]),
			}
		}
	}
	if matchesPhrase(lowered, listPhrases) {
		return Command{Kind: KindListBeaches}
	}
	if matchesPhrase(lowered, helpPhrases) {
		return Command{Kind: KindHelp}
	}
	return Command{Kind: KindForecast, Query: trimmed}
}

func matchesPhrase(lowered string, phrases []string) bool {
	for _, phrase := range phrases {
		if lowered == phrase {
			return true
		}
	}
	return false
}
