package model

import (
	"sort"

	"golang.org/x/text/language"
)

// LocalizedString maps language tags (e.g. "en", "de-DE") to text.
type LocalizedString map[string]string

// LocalizedOf creates a localized string with one entry.
func LocalizedOf(lang, text string) LocalizedString {
	return LocalizedString{lang: text}
}

// Get returns the text for an exact language tag.
func (l LocalizedString) Get(lang string) string {
	return l[lang]
}

// Add sets the text for a language and returns l for chaining.
func (l LocalizedString) Add(lang, text string) LocalizedString {
	if l == nil {
		l = LocalizedString{}
	}
	l[lang] = text
	return l
}

// Languages returns the language tags present, sorted.
func (l LocalizedString) Languages() []string {
	langs := make([]string, 0, len(l))
	for k := range l {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

// Localized picks the text best matching the context's locale and
// languages. Without any preference the alphabetically first language is
// used.
func (l LocalizedString) Localized(ctx *Context) (string, bool) {
	if len(l) == 0 {
		return "", false
	}
	langs := l.Languages()

	prefs := ctx.preferred()
	if len(prefs) == 0 {
		return l[langs[0]], true
	}

	supported := make([]language.Tag, 0, len(langs))
	keys := make([]string, 0, len(langs))
	for _, k := range langs {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
		keys = append(keys, k)
	}
	if len(supported) == 0 {
		return l[langs[0]], true
	}

	_, index, confidence := language.NewMatcher(supported).Match(prefs...)
	if confidence == language.No {
		return l[langs[0]], true
	}
	return l[keys[index]], true
}

func (l LocalizedString) clone() LocalizedString {
	if l == nil {
		return nil
	}
	cp := make(LocalizedString, len(l))
	for k, v := range l {
		cp[k] = v
	}
	return cp
}

func localizedFromRaw(raw any) (LocalizedString, bool) {
	switch m := raw.(type) {
	case nil:
		return LocalizedString{}, true
	case map[string]string:
		return LocalizedString(m).clone(), true
	case map[string]any:
		ls := make(LocalizedString, len(m))
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			ls[k] = s
		}
		return ls, true
	}
	return nil, false
}
