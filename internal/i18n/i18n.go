// Package i18n provides message translation for user-facing text. Messages
// are looked up by key against per-locale catalogs with BCP 47 matching;
// when no translation exists the source-language template is used, and a
// missing key falls back to the key itself so a lookup can never fail.
//
// Templates use $placeholder substitution with pass-through of unknown
// placeholders (see utils.Substitute), so translators cannot break a
// message by omitting or misspelling a variable.
package i18n

import (
	"sync"

	"golang.org/x/text/language"

	"github.com/ticketbird/ticketbird/internal/utils"
)

// Catalog holds per-locale message tables. The zero value is not usable;
// construct with New. Safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	source   language.Tag
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

// New constructs a Catalog preloaded with the built-in en-US messages.
func New() *Catalog {
	c := &Catalog{
		source:   language.AmericanEnglish,
		messages: make(map[language.Tag]map[string]string),
	}
	c.Add(language.AmericanEnglish, sourceMessages)
	return c
}

// Add registers (or extends) the message table for a locale.
func (c *Catalog) Add(tag language.Tag, messages map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.messages[tag]
	if !ok {
		table = make(map[string]string, len(messages))
		c.messages[tag] = table
		c.tags = append(c.tags, tag)
		c.matcher = language.NewMatcher(c.tags)
	}
	for k, v := range messages {
		table[k] = v
	}
}

// Translate renders the message for key in the closest registered locale,
// substituting data into the template. Unknown locales fall back to the
// source language; unknown keys return the key verbatim.
func (c *Catalog) Translate(locale, key string, data map[string]string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tag := c.source
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			matched, _, conf := c.matcher.Match(parsed)
			if conf > language.No {
				tag = matched
			}
		}
	}

	template, ok := c.lookup(tag, key)
	if !ok {
		template, ok = c.lookup(c.source, key)
	}
	if !ok {
		template = key
	}

	if len(data) == 0 {
		return template
	}
	return utils.Substitute(template, data)
}

func (c *Catalog) lookup(tag language.Tag, key string) (string, bool) {
	// Matcher results carry extensions; strip to the registered base tags.
	for t, table := range c.messages {
		if t == tag {
			s, ok := table[key]
			return s, ok
		}
	}
	base, _ := tag.Base()
	for t, table := range c.messages {
		if b, _ := t.Base(); b == base {
			s, ok := table[key]
			return s, ok
		}
	}
	return "", false
}
