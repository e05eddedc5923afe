package readingquiz

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB records raw generator output and how much of it parsed, so format drift
// in the model's replies can be inspected later. It stores no user answers.
type DB struct {
	db *sql.DB
}

// DBGeneration is one generation event in the audit table
type DBGeneration struct {
	ID              string    `json:"id"`
	Work            string    `json:"work"`
	Section         string    `json:"section"`
	RawText         string    `json:"raw_text"`
	NumQuestions    int       `json:"num_questions"`
	NumAnswers      int       `json:"num_answers"`
	NumExplanations int       `json:"num_explanations"`
	Attempts        int       `json:"attempts"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewDBGeneration builds the audit row for a generated quiz
func NewDBGeneration(quiz *Quiz) *DBGeneration {
	return &DBGeneration{
		ID:              quiz.ID,
		Work:            quiz.Request.Work,
		Section:         quiz.Request.Section,
		RawText:         quiz.Raw,
		NumQuestions:    len(quiz.Parsed.Questions),
		NumAnswers:      len(quiz.Parsed.Answers),
		NumExplanations: len(quiz.Parsed.Explanations),
		Attempts:        quiz.Attempts,
		CreatedAt:       quiz.CreatedAt,
	}
}

// Mismatched reports whether fewer answers or explanations than questions were found
func (g *DBGeneration) Mismatched() bool {
	return g.NumAnswers != g.NumQuestions || g.NumExplanations != g.NumQuestions
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			work TEXT NOT NULL,
			section TEXT,
			raw_text TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			num_answers INTEGER NOT NULL,
			num_explanations INTEGER NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordGeneration stores one generation event
func (db *DB) RecordGeneration(g *DBGeneration) error {
	_, err := db.db.Exec(
		`INSERT INTO generations (id, work, section, raw_text, num_questions, num_answers, num_explanations, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Work, g.Section, g.RawText, g.NumQuestions, g.NumAnswers, g.NumExplanations, g.Attempts, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

const generationColumns = "id, work, section, raw_text, num_questions, num_answers, num_explanations, attempts, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*DBGeneration, error) {
	var g DBGeneration
	var section sql.NullString
	err := row.Scan(&g.ID, &g.Work, &section, &g.RawText, &g.NumQuestions, &g.NumAnswers, &g.NumExplanations, &g.Attempts, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Section = section.String
	return &g, nil
}

// GetGeneration retrieves a generation by ID
func (db *DB) GetGeneration(id string) (*DBGeneration, error) {
	row := db.db.QueryRow("SELECT "+generationColumns+" FROM generations WHERE id = ?", id)
	g, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("generation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return g, nil
}

// GetGenerations retrieves generations newest first, optionally limited by count
func (db *DB) GetGenerations(limit int) ([]DBGeneration, error) {
	return db.queryGenerations("", limit)
}

// MismatchedGenerations retrieves generations whose answer key did not line up
// with the question list, newest first
func (db *DB) MismatchedGenerations(limit int) ([]DBGeneration, error) {
	return db.queryGenerations("WHERE num_answers != num_questions OR num_explanations != num_questions", limit)
}

func (db *DB) queryGenerations(where string, limit int) ([]DBGeneration, error) {
	query := "SELECT " + generationColumns + " FROM generations " + where + " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get generations: %w", err)
	}
	defer rows.Close()

	var generations []DBGeneration
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		generations = append(generations, *g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return generations, nil
}
