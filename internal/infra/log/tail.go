package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// tailWindow ограничивает объём, читаемый с конца файла.
const tailWindow = 64 * 1024

// FileTail читает последние строки файла журнала.
type FileTail struct {
	path string
}

// NewFileTail создаёт читатель для указанного файла.
func NewFileTail(path string) *FileTail {
	return &FileTail{path: path}
}

// Tail возвращает последние lines строк. Отсутствие файла возвращается как os.ErrNotExist.
func (t *FileTail) Tail(lines int) (string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}
	offset := info.Size() - tailWindow
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}

	all := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if offset > 0 && len(all) > 1 {
		// первая строка окна может быть обрезана
		all = all[1:]
	}
	if len(all) > lines {
		all = all[len(all)-lines:]
	}
	if len(all) == 1 && all[0] == "" {
		return "", nil
	}
	return strings.Join(all, "\n") + "\n", nil
}
