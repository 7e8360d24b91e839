package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shaiso/Keeper/internal/domain"
)

// MarkerExt — суффикс маркера успешной загрузки.
const MarkerExt = ".uploaded"

// Marker подтверждает, что дамп загружен в хранилище.
// Лежит рядом с дампом: "<file>.uploaded".
type Marker struct {
	RemoteKey  string    `json:"remote_key"`
	Checksum   string    `json:"checksum"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func markerPath(dumpPath string) string {
	return dumpPath + MarkerExt
}

// writeMarker атомарно записывает маркер: temp файл + rename.
func writeMarker(dumpPath string, m Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}

	tmp := markerPath(dumpPath) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	if err := os.Rename(tmp, markerPath(dumpPath)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename marker: %w", err)
	}
	return nil
}

// readMarker читает маркер. Отсутствие маркера — os.ErrNotExist.
func readMarker(dumpPath string) (Marker, error) {
	var m Marker
	data, err := os.ReadFile(markerPath(dumpPath))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse marker %s: %w", markerPath(dumpPath), err)
	}
	return m, nil
}

func hasMarker(dumpPath string) bool {
	_, err := os.Stat(markerPath(dumpPath))
	return err == nil
}

// localDump — дамп базы в локальном каталоге.
type localDump struct {
	Path      string
	Timestamp time.Time
}

// listDumps возвращает дампы базы db в каталоге dir, от старых к новым.
// Файлы других баз и маркеры пропускаются.
func listDumps(dir, db string) ([]localDump, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dumps []localDump
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ts, ok := domain.ParseDumpFileName(db, e.Name())
		if !ok {
			continue
		}
		dumps = append(dumps, localDump{Path: filepath.Join(dir, e.Name()), Timestamp: ts})
	}

	sort.Slice(dumps, func(i, j int) bool {
		return dumps[i].Timestamp.Before(dumps[j].Timestamp)
	})
	return dumps, nil
}
