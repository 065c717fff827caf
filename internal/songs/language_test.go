package songs

import "testing"

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  Language
	}{
		{"", LanguageNone},
		{"none", LanguageNone},
		{"english", LanguageEnglish},
		{"English", LanguageEnglish},
		{"ChineseS", LanguageChineseSimplified},
		{"chinese-s", LanguageChineseSimplified},
		{"chinese-simplified", LanguageChineseSimplified},
		{"Chinese Simplified", LanguageChineseSimplified},
		{"chineset", LanguageChineseTraditional},
		{"chinese-t", LanguageChineseTraditional},
		{"chinese-traditional", LanguageChineseTraditional},
		{"japanese", LanguageJapanese},
		{"korean", LanguageKorean},
		{"en-US", LanguageEnglish},
		{"zh-Hans", LanguageChineseSimplified},
		{"zh-CN", LanguageChineseSimplified},
		{"zh-Hant", LanguageChineseTraditional},
		{"zh-TW", LanguageChineseTraditional},
		{"ja", LanguageJapanese},
		{"ko", LanguageKorean},
		{" english ", LanguageEnglish},
	}
	for _, tc := range cases {
		got, err := ParseLanguage(tc.input)
		if err != nil {
			t.Fatalf("ParseLanguage(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseLanguageRejectsUnknown(t *testing.T) {
	for _, input := range []string{"de", "klingon", "zz!!"} {
		if _, err := ParseLanguage(input); err == nil {
			t.Fatalf("ParseLanguage(%q) accepted an unsupported language", input)
		}
	}
}

func TestLanguageString(t *testing.T) {
	if got := LanguageNone.String(); got != "none" {
		t.Fatalf("LanguageNone.String() = %q", got)
	}
	if got := LanguageChineseTraditional.String(); got != "ChineseT" {
		t.Fatalf("LanguageChineseTraditional.String() = %q", got)
	}
}

func TestLanguageNaming(t *testing.T) {
	l := LanguageChineseSimplified
	if got := l.albumsPrefix(); got != "config_chineses_assets_albums_chineses_" {
		t.Fatalf("albumsPrefix = %q", got)
	}
	if got := l.albumsObject(); got != "albums_ChineseS" {
		t.Fatalf("albumsObject = %q", got)
	}
	if got := l.tracksPrefix("ALBUM43"); got != "config_chineses_assets_album43_chineses_" {
		t.Fatalf("tracksPrefix = %q", got)
	}
	if got := l.tracksObject("ALBUM43"); got != "ALBUM43_ChineseS" {
		t.Fatalf("tracksObject = %q", got)
	}
}
