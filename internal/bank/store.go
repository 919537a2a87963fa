package bank

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"quizrun/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed question bank behind the development server.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the bank database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		question TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		wrong_answers TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		sha256 TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertQuestion stores one question under a level. The distractor list is
// kept as a JSON array in a single column; the bank never queries into it.
func (s *Store) InsertQuestion(level model.Level, rec model.RawQuestionRecord) (int64, error) {
	wrong, err := json.Marshal(rec.WrongAnswers)
	if err != nil {
		return 0, fmt.Errorf("marshal wrong answers: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO questions (level, question, correct_answer, wrong_answers, explanation)
		 VALUES (?, ?, ?, ?, ?)`,
		level, rec.Question, rec.CorrectAnswer, string(wrong), rec.Explanation,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuestions returns all records for a level, in the exact payload shape
// the client consumes. An empty level returns everything.
func (s *Store) ListQuestions(level model.Level) ([]model.RawQuestionRecord, error) {
	query := `SELECT question, correct_answer, wrong_answers, explanation FROM questions`
	var args []any
	if level != "" {
		query += ` WHERE level = ?`
		args = append(args, level)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.RawQuestionRecord, 0)
	for rows.Next() {
		var rec model.RawQuestionRecord
		var wrong string
		if err := rows.Scan(&rec.Question, &rec.CorrectAnswer, &wrong, &rec.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(wrong), &rec.WrongAnswers); err != nil {
			return nil, fmt.Errorf("decode wrong answers: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListDistinctLevels returns all levels present in the bank, alphabetically.
func (s *Store) ListDistinctLevels() ([]model.Level, error) {
	rows, err := s.db.Query(`SELECT DISTINCT level FROM questions ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []model.Level
	for rows.Next() {
		var l model.Level
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// QuestionCount returns the number of questions in the bank.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// GetImportedFileHash returns the recorded content hash for a questions file.
// Returns empty string and nil error when the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT sha256 FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash for a questions file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, sha256) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET sha256 = ?`,
		path, hash, hash,
	)
	return err
}
