package songs

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language selects which localized config overlay the parser reads. The
// value doubles as the suffix the game uses in localized bundle and
// object names, so LanguageNone means no overlay at all.
type Language string

const (
	LanguageNone               Language = ""
	LanguageChineseSimplified  Language = "ChineseS"
	LanguageChineseTraditional Language = "ChineseT"
	LanguageEnglish            Language = "English"
	LanguageJapanese           Language = "Japanese"
	LanguageKorean             Language = "Korean"
)

// Languages lists every selectable language, including LanguageNone.
func Languages() []Language {
	return []Language{
		LanguageNone,
		LanguageChineseSimplified,
		LanguageChineseTraditional,
		LanguageEnglish,
		LanguageJapanese,
		LanguageKorean,
	}
}

var languageTags = []language.Tag{
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.English,
	language.Japanese,
	language.Korean,
}

var languageByTag = []Language{
	LanguageChineseSimplified,
	LanguageChineseTraditional,
	LanguageEnglish,
	LanguageJapanese,
	LanguageKorean,
}

var languageMatcher = language.NewMatcher(languageTags)

// ParseLanguage maps a user-facing language name to a Language. It
// accepts the spelled-out names used in configuration files, the game's
// internal suffixes, and BCP 47 tags such as "en" or "zh-Hans".
func ParseLanguage(value string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return LanguageNone, nil
	case "chineses", "chinese-s", "chinese-simplified", "chinese simplified":
		return LanguageChineseSimplified, nil
	case "chineset", "chinese-t", "chinese-traditional", "chinese traditional":
		return LanguageChineseTraditional, nil
	case "english":
		return LanguageEnglish, nil
	case "japanese":
		return LanguageJapanese, nil
	case "korean":
		return LanguageKorean, nil
	}
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return LanguageNone, fmt.Errorf("unknown language %q", value)
	}
	if _, index, confidence := languageMatcher.Match(tag); confidence >= language.High {
		return languageByTag[index], nil
	}
	return LanguageNone, fmt.Errorf("unsupported language %q", value)
}

func (l Language) String() string {
	if l == LanguageNone {
		return "none"
	}
	return string(l)
}

// code is the lowercase form the game uses inside bundle file names.
func (l Language) code() string {
	return strings.ToLower(string(l))
}

func (l Language) albumsPrefix() string {
	return "config_" + l.code() + "_assets_albums_" + l.code() + "_"
}

func (l Language) albumsObject() string {
	return "albums_" + string(l)
}

func (l Language) tracksPrefix(jsonName string) string {
	return "config_" + l.code() + "_assets_" + strings.ToLower(jsonName) + "_" + l.code() + "_"
}

func (l Language) tracksObject(jsonName string) string {
	return jsonName + "_" + string(l)
}
