package ocr

import "testing"

func TestCleanLineText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"latin preserved", "hello world", "hello world"},
		{"hiragana spaces stripped", "こん に ちは", "こんにちは"},
		{"katakana tabs stripped", "マン\tガ", "マンガ"},
		{"kanji with newline", "漫\n画", "漫画"},
		{"mixed script strips all whitespace", "第 1 章 chapter one", "第1章chapterone"},
		{"ideographic space stripped", "あ　い", "あい"},
		{"trailing space stripped", "あ ", "あ"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLineText(tt.in); got != tt.want {
				t.Errorf("CleanLineText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
