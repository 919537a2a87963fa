package bank

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"quizrun/internal/model"
)

// ImportRecord is one entry in a questions JSON file: a question record plus
// the level it belongs to.
type ImportRecord struct {
	Level model.Level `json:"level"`
	model.RawQuestionRecord
}

// ImportFile loads questions from a JSON file into the bank. Files already
// imported with the same content are skipped; files whose content changed
// since import are also skipped, with a warning, so the bank stays stable
// across restarts. Returns the number of questions imported.
func (s *Store) ImportFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	hash := sha256sum(data)
	storedHash, err := s.GetImportedFileHash(path)
	if err != nil {
		return 0, fmt.Errorf("check import status for %s: %w", path, err)
	}

	if storedHash == hash {
		slog.Info("questions file unchanged, skipping", "path", path)
		return 0, nil
	}
	if storedHash != "" {
		slog.Warn("questions file changed since last import, skipping", "path", path)
		return 0, nil
	}

	var records []ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	imported := 0
	for i, rec := range records {
		if rec.Level == "" || !rec.Valid() {
			slog.Warn("skipping incomplete question in import", "path", path, "index", i)
			continue
		}
		if _, err := s.InsertQuestion(rec.Level, rec.RawQuestionRecord); err != nil {
			return imported, fmt.Errorf("insert question from %s: %w", path, err)
		}
		imported++
	}

	if err := s.SetImportedFileHash(path, hash); err != nil {
		return imported, fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported questions", "path", path, "count", imported)

	return imported, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
