package services

import (
	"strings"
	"unicode"
)

// ContentFilter 在任何写入之前检查标题、正文、选项文本
type ContentFilter interface {
	Check(fields ...string) error
}

// 默认词表，可通过 PROFANITY_WORDS 追加
var defaultBadWords = []string{
	"arse", "asshole", "bastard", "bitch", "bollocks", "bullshit", "crap", "cunt",
	"damn", "dick", "douche", "fag", "fuck", "fucker", "fucking", "motherfucker",
	"piss", "prick", "pussy", "shit", "slut", "twat", "wanker", "whore",
	// Filipino
	"bobo", "gago", "gaga", "putangina", "tangina", "pakyu", "ulol", "tarantado", "punyeta", "leche",
}

const leetSymbols = "@$!"

var leetReplacer = strings.NewReplacer(
	"0", "o", "1", "i", "3", "e", "4", "a", "5", "s", "7", "t", "@", "a", "$", "s", "!", "i",
)

// WordFilter 整词匹配、忽略大小写，能识别常见的 leet 替换（sh1t、@ss）
type WordFilter struct {
	words map[string]struct{}
}

func NewWordFilter(extra ...string) *WordFilter {
	f := &WordFilter{words: make(map[string]struct{}, len(defaultBadWords)+len(extra))}
	for _, w := range defaultBadWords {
		f.words[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words[w] = struct{}{}
		}
	}
	return f
}

// IsProfane reports whether text contains a listed word.
func (f *WordFilter) IsProfane(text string) bool {
	if text == "" {
		return false
	}
	for _, token := range tokenize(strings.ToLower(text)) {
		if f.listed(token) {
			return true
		}
		// 句末标点：shit!、bullshit!!
		if trimmed := strings.Trim(token, leetSymbols); trimmed != "" && trimmed != token && f.listed(trimmed) {
			return true
		}
	}
	return false
}

func (f *WordFilter) listed(token string) bool {
	if _, ok := f.words[token]; ok {
		return true
	}
	_, ok := f.words[leetReplacer.Replace(token)]
	return ok
}

func (f *WordFilter) Check(fields ...string) error {
	for _, field := range fields {
		if f.IsProfane(field) {
			return ErrProfanity
		}
	}
	return nil
}

// tokenize 按非字母数字切分，但保留 leet 常用符号
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		return r != '@' && r != '$' && r != '!'
	})
}
