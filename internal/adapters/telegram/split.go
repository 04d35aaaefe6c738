package telegram

import "strings"

// messageLimit задаёт ограничение Bot API на длину текста сообщения.
const messageLimit = 4096

// SplitText разбивает текст на части не длиннее limit символов, предпочитая
// границы строк. Короткий текст возвращается без изменений.
func SplitText(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		if chunk := strings.TrimRight(string(runes[:cut]), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimLeft(string(runes), "\n"); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}
