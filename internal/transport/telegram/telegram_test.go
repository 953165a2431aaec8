package telegram

import (
	"strings"
	"testing"

	kit "remindbot/internal/transport"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 10)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("line one\n", 5) // 45 runes
	got := splitText(in, 30)
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %q", got)
	}
	for _, c := range got {
		if len([]rune(c)) > 30 {
			t.Fatalf("chunk exceeds limit: %q", c)
		}
		if strings.HasPrefix(c, "\n") || strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk has dangling newline: %q", c)
		}
	}
	if joined := strings.Join(got, "\n") + "\n"; !strings.HasPrefix(in, got[0]) || joined == "" {
		t.Fatalf("content mangled: %q", got)
	}
}

func TestSplitTextHardWrap(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("x", 25)
	got := splitText(in, 10)
	var total int
	for _, c := range got {
		if len(c) > 10 {
			t.Fatalf("chunk exceeds limit: %q", c)
		}
		total += len(c)
	}
	if total != 25 {
		t.Fatalf("lost runes: chunks %q", got)
	}
}

func TestReplyMarkupChoices(t *testing.T) {
	t.Parallel()
	rm := replyMarkup(&kit.SendOptions{Choices: []string{"Daily", "Weekly"}})
	if rm == nil || !rm.OneTimeKeyboard {
		t.Fatalf("expected one-time keyboard, got %+v", rm)
	}
	if len(rm.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(rm.ReplyKeyboard))
	}
	if rm.ReplyKeyboard[0][0].Text != "Daily" {
		t.Fatalf("first button = %q", rm.ReplyKeyboard[0][0].Text)
	}
}

func TestReplyMarkupRemove(t *testing.T) {
	t.Parallel()
	rm := replyMarkup(&kit.SendOptions{RemoveChoices: true})
	if rm == nil || !rm.RemoveKeyboard {
		t.Fatalf("expected keyboard removal, got %+v", rm)
	}
}

func TestReplyMarkupNone(t *testing.T) {
	t.Parallel()
	if rm := replyMarkup(&kit.SendOptions{}); rm != nil {
		t.Fatalf("expected nil markup, got %+v", rm)
	}
}
