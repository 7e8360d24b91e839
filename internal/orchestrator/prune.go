package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// pruneResult — итог очистки.
type pruneResult struct {
	Deleted []string
	// Kept — старые дампы без маркера: их удалять нельзя.
	Kept []string
}

// pruneDumps удаляет локальные дампы базы db старше cutoff.
//
// Удаляется только дамп с маркером загрузки. Сначала удаляется дамп,
// затем маркер: дамп без маркера не может пропасть незагруженным.
// Удалённые копии не трогаются.
func pruneDumps(dir, db string, cutoff time.Time) (pruneResult, error) {
	var res pruneResult

	dumps, err := listDumps(dir, db)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", dir, err)
	}

	var errs []error
	for _, d := range dumps {
		if !d.Timestamp.Before(cutoff) {
			break
		}
		if !hasMarker(d.Path) {
			res.Kept = append(res.Kept, d.Path)
			continue
		}
		if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", d.Path, err))
			continue
		}
		if err := os.Remove(markerPath(d.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove marker %s: %w", markerPath(d.Path), err))
		}
		res.Deleted = append(res.Deleted, d.Path)
	}

	return res, errors.Join(errs...)
}
