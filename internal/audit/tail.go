package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shaiso/Keeper/internal/domain"
)

const tailChunk = 64 * 1024

// Tail возвращает последние n записей журнала в хронологическом порядке.
//
// Файл читается с конца блоками, поэтому стоимость не зависит от размера
// журнала. Повреждённые строки (например, после внешней обрезки) пропускаются.
func Tail(path string, n int) ([]domain.AuditEntry, error) {
	if n <= 0 {
		return nil, ErrInvalidTail
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat audit log: %w", err)
	}

	lines, err := lastLines(f, info.Size(), n)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuditEntry, 0, len(lines))
	for _, line := range lines {
		var e domain.AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// lastLines читает не более n последних непустых строк.
func lastLines(r io.ReaderAt, size int64, n int) ([][]byte, error) {
	var buf []byte
	offset := size

	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		chunk := int64(tailChunk)
		if chunk > offset {
			chunk = offset
		}
		offset -= chunk

		block := make([]byte, chunk)
		if _, err := r.ReadAt(block, offset); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read audit log: %w", err)
		}
		buf = append(block, buf...)
	}

	var lines [][]byte
	for _, line := range bytes.Split(buf, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	// первая строка может быть обрезана границей блока; она
	// отбрасывается, только если строк больше, чем нужно
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
