// Package sqlite provides a Storage backed by an SQLite database.
package sqlite

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/internal/logging"
)

const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		content_type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS node_attributes (
		node_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (node_id, key),
		FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS node_payloads (
		node_id TEXT NOT NULL,
		name TEXT NOT NULL,
		seq INTEGER NOT NULL,
		md5 TEXT NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (node_id, name),
		FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS notebook_attributes (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// Storage keeps nodes in an SQLite database.
type Storage struct {
	db *sql.DB
}

// Open opens or creates the database file at path.
func Open(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps the pragmas and in-memory databases intact
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Debug("Opened sqlite storage %v", path)
	return s, nil
}

func (s *Storage) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func hasNode(q querier, id string) (bool, error) {
	var count int
	err := q.QueryRow("SELECT COUNT(*) FROM nodes WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check node: %w", err)
	}
	return count > 0, nil
}

func hasPayload(q querier, id, name string) (bool, error) {
	var count int
	err := q.QueryRow("SELECT COUNT(*) FROM node_payloads WHERE node_id = ? AND name = ?", id, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check payload: %w", err)
	}
	return count > 0, nil
}

func insertPayload(tx *sql.Tx, id, name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	var seq int
	err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM node_payloads WHERE node_id = ?", id).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to get payload sequence: %w", err)
	}
	_, err = tx.Exec("INSERT INTO node_payloads (node_id, name, seq, md5, data) VALUES (?, ?, ?, ?, ?)",
		id, name, seq, nb.HashPayload(data), data)
	if err != nil {
		return fmt.Errorf("failed to insert payload: %w", err)
	}
	return nil
}

func insertAttributes(tx *sql.Tx, id string, attrs map[string]string) error {
	for key, value := range attrs {
		_, err := tx.Exec("INSERT INTO node_attributes (node_id, key, value) VALUES (?, ?, ?)", id, key, value)
		if err != nil {
			return fmt.Errorf("failed to insert node attribute: %w", err)
		}
	}
	return nil
}

func (s *Storage) AddNode(id, contentType string, attributes map[string]string, payloads []nb.PayloadData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	has, err := hasNode(tx, id)
	if err != nil {
		return err
	}
	if has {
		return nb.NewNodeAlreadyExistsError(id)
	}

	_, err = tx.Exec("INSERT INTO nodes (id, content_type) VALUES (?, ?)", id, contentType)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}
	err = insertAttributes(tx, id, attributes)
	if err != nil {
		return err
	}
	for _, p := range payloads {
		has, err = hasPayload(tx, id, p.Name)
		if err != nil {
			return err
		}
		if has {
			return nb.NewPayloadAlreadyExistsError(id, p.Name)
		}
		err = insertPayload(tx, id, p.Name, p.Data)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Storage) AddNodePayload(id, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	has, err := hasNode(tx, id)
	if err != nil {
		return err
	}
	if !has {
		return nb.NewNodeDoesNotExistError(id)
	}
	has, err = hasPayload(tx, id, name)
	if err != nil {
		return err
	}
	if has {
		return nb.NewPayloadAlreadyExistsError(id, name)
	}

	err = insertPayload(tx, id, name, data)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func readNode(q querier, id, contentType string) (nb.StoredNode, error) {
	sn := nb.StoredNode{
		ID:          id,
		ContentType: contentType,
		Attributes:  make(map[string]string),
		Payloads:    make([]nb.StoredPayload, 0),
	}

	rows, err := q.Query("SELECT key, value FROM node_attributes WHERE node_id = ?", id)
	if err != nil {
		return sn, fmt.Errorf("failed to get node attributes: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return sn, fmt.Errorf("failed to scan node attribute: %w", err)
		}
		sn.Attributes[key] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return sn, err
	}

	rows, err = q.Query("SELECT name, md5 FROM node_payloads WHERE node_id = ? ORDER BY seq", id)
	if err != nil {
		return sn, fmt.Errorf("failed to get payloads: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p nb.StoredPayload
		if err := rows.Scan(&p.Name, &p.MD5); err != nil {
			return sn, fmt.Errorf("failed to scan payload: %w", err)
		}
		sn.Payloads = append(sn.Payloads, p)
	}
	return sn, rows.Err()
}

// GetAllNodes returns the nodes ordered by id.
func (s *Storage) GetAllNodes() ([]nb.StoredNode, error) {
	rows, err := s.db.Query("SELECT id, content_type FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}

	type header struct{ id, contentType string }
	headers := make([]header, 0)
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.contentType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nodes := make([]nb.StoredNode, 0, len(headers))
	for _, h := range headers {
		sn, err := readNode(s.db, h.id, h.contentType)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sn)
	}
	return nodes, nil
}

func (s *Storage) GetNode(id string) (nb.StoredNode, error) {
	var contentType string
	err := s.db.QueryRow("SELECT content_type FROM nodes WHERE id = ?", id).Scan(&contentType)
	if err == sql.ErrNoRows {
		return nb.StoredNode{}, nb.NewNodeDoesNotExistError(id)
	} else if err != nil {
		return nb.StoredNode{}, fmt.Errorf("failed to get node: %w", err)
	}
	return readNode(s.db, id, contentType)
}

// GetNodePayload reads the payload into memory and returns a reader for it.
func (s *Storage) GetNodePayload(id, name string) (io.ReadCloser, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM node_payloads WHERE node_id = ? AND name = ?", id, name).Scan(&data)
	if err == sql.ErrNoRows {
		has, err := hasNode(s.db, id)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, nb.NewNodeDoesNotExistError(id)
		}
		return nil, nb.NewPayloadDoesNotExistError(id, name)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) GetNotebook() (nb.StoredNotebook, error) {
	rows, err := s.db.Query("SELECT key, value FROM notebook_attributes")
	if err != nil {
		return nb.StoredNotebook{}, fmt.Errorf("failed to get notebook attributes: %w", err)
	}
	defer rows.Close()

	attrs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nb.StoredNotebook{}, fmt.Errorf("failed to scan notebook attribute: %w", err)
		}
		attrs[key] = value
	}
	return nb.StoredNotebook{Attributes: attrs}, rows.Err()
}

func (s *Storage) HasNode(id string) (bool, error) {
	return hasNode(s.db, id)
}

func (s *Storage) HasNodePayload(id, name string) (bool, error) {
	return hasPayload(s.db, id, name)
}

func (s *Storage) RemoveNode(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	has, err := hasNode(tx, id)
	if err != nil {
		return err
	}
	if !has {
		return nb.NewNodeDoesNotExistError(id)
	}

	for _, stmt := range []string{
		"DELETE FROM node_payloads WHERE node_id = ?",
		"DELETE FROM node_attributes WHERE node_id = ?",
		"DELETE FROM nodes WHERE id = ?",
	} {
		_, err = tx.Exec(stmt, id)
		if err != nil {
			return fmt.Errorf("failed to delete node: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Storage) RemoveNodePayload(id, name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	has, err := hasNode(tx, id)
	if err != nil {
		return err
	}
	if !has {
		return nb.NewNodeDoesNotExistError(id)
	}

	res, err := tx.Exec("DELETE FROM node_payloads WHERE node_id = ? AND name = ?", id, name)
	if err != nil {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nb.NewPayloadDoesNotExistError(id, name)
	}
	return tx.Commit()
}

func (s *Storage) SetNodeAttributes(id string, attributes map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	has, err := hasNode(tx, id)
	if err != nil {
		return err
	}
	if !has {
		return nb.NewNodeDoesNotExistError(id)
	}

	_, err = tx.Exec("DELETE FROM node_attributes WHERE node_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete node attributes: %w", err)
	}
	err = insertAttributes(tx, id, attributes)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) SetNotebookAttributes(attributes map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM notebook_attributes")
	if err != nil {
		return fmt.Errorf("failed to delete notebook attributes: %w", err)
	}
	for key, value := range attributes {
		_, err = tx.Exec("INSERT INTO notebook_attributes (key, value) VALUES (?, ?)", key, value)
		if err != nil {
			return fmt.Errorf("failed to insert notebook attribute: %w", err)
		}
	}
	return tx.Commit()
}
