package telegram

import (
	"strings"
	"testing"
)

func TestSplitTextRespectsLimit(t *testing.T) {
	var builder strings.Builder
	builder.WriteString(strings.Repeat("a", 3000))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("b", 2000))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("c", 500))

	parts := SplitText(builder.String(), messageLimit)
	if len(parts) != 2 {
		t.Fatalf("ожидали 2 части, получили %d", len(parts))
	}
	for i, part := range parts {
		if length := len([]rune(part)); length > messageLimit {
			t.Fatalf("часть %d превышает лимит: %d", i, length)
		}
	}
	if parts[0] != strings.Repeat("a", 3000) {
		t.Fatal("неожиданное содержимое первой части")
	}
	if !strings.HasPrefix(parts[1], "b") || !strings.HasSuffix(parts[1], strings.Repeat("c", 500)) {
		t.Fatal("вторая часть должна содержать блоки b и c")
	}
}

func TestSplitTextWithoutNewlines(t *testing.T) {
	parts := SplitText(strings.Repeat("я", 10), 4)
	want := []string{"яяяя", "яяяя", "яя"}
	if len(parts) != len(want) {
		t.Fatalf("ожидали %v, получили %v", want, parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("ожидали %v, получили %v", want, parts)
		}
	}
}

func TestSplitTextShortIsVerbatim(t *testing.T) {
	text := "  hello world \n"
	parts := SplitText(text, messageLimit)
	if len(parts) != 1 || parts[0] != text {
		t.Fatalf("короткий текст должен остаться как есть: %q", parts)
	}
}
