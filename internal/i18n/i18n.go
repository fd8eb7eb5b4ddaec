// Package i18n holds the chat languages and their message catalogs.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLanguage is used for chats that never picked one.
var DefaultLanguage = language.English

var supportedTags = []language.Tag{
	language.English,
	language.Italian,
}

var tagMatcher = language.NewMatcher(supportedTags)

var nativeNames = map[language.Tag]string{
	language.English: "English",
	language.Italian: "Italiano",
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Parse resolves a language code to one of the supported tags.
// Regional variants match their base language ("it-CH" is Italian).
func Parse(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return language.Tag{}, false
	}
	parsed, err := language.Parse(code)
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, conf := tagMatcher.Match(parsed)
	if conf < language.High {
		return language.Tag{}, false
	}
	return supportedTags[idx], true
}

// Match picks the best supported tag for a Telegram client language code,
// falling back to DefaultLanguage.
func Match(code string) language.Tag {
	if tag, ok := Parse(code); ok {
		return tag
	}
	return DefaultLanguage
}

// Name returns the language's own name.
func Name(tag language.Tag) string {
	if n, ok := nativeNames[tag]; ok {
		return n
	}
	return tag.String()
}

// Printer returns a message printer for a stored language code.
func Printer(code string) *message.Printer {
	return message.NewPrinter(Match(code))
}
