package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in the meta table.
const SchemaVersion = 1

// CreateSchema creates all tables, indexes and views in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createViews(db); err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	return nil
}

// createCoreTables creates one table per entity of the data set.
func createCoreTables(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"categories", `
			CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				icon TEXT,
				description TEXT,
				position INTEGER NOT NULL,
				is_tests INTEGER NOT NULL DEFAULT 0
			)`},
		{"sections", `
			CREATE TABLE IF NOT EXISTS sections (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				category_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				title TEXT NOT NULL,
				type TEXT NOT NULL,
				description TEXT,
				citation_source TEXT,
				citation_page TEXT,
				table_citation_source TEXT,
				table_citation_page TEXT,
				FOREIGN KEY (category_id) REFERENCES categories(id)
			)`},
		{"steps", `
			CREATE TABLE IF NOT EXISTS steps (
				section_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				step_id INTEGER NOT NULL,
				title TEXT NOT NULL,
				responsible TEXT NOT NULL,
				description TEXT,
				duration TEXT,
				PRIMARY KEY (section_id, position),
				FOREIGN KEY (section_id) REFERENCES sections(id)
			)`},
		{"info_items", `
			CREATE TABLE IF NOT EXISTS info_items (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				section_id INTEGER NOT NULL,
				parent_id INTEGER,
				position INTEGER NOT NULL,
				title TEXT,
				description TEXT,
				details TEXT,
				citation_source TEXT,
				citation_page TEXT,
				FOREIGN KEY (section_id) REFERENCES sections(id),
				FOREIGN KEY (parent_id) REFERENCES info_items(id)
			)`},
		{"table_cells", `
			CREATE TABLE IF NOT EXISTS table_cells (
				section_id INTEGER NOT NULL,
				row_index INTEGER NOT NULL,
				col_index INTEGER NOT NULL,
				header TEXT NOT NULL,
				value TEXT NOT NULL,
				PRIMARY KEY (section_id, row_index, col_index),
				FOREIGN KEY (section_id) REFERENCES sections(id)
			)`},
		{"citations", `
			CREATE TABLE IF NOT EXISTS citations (
				id TEXT PRIMARY KEY,
				apa TEXT NOT NULL,
				url TEXT NOT NULL,
				position INTEGER NOT NULL
			)`},
		{"meta", `
			CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sections_category ON sections(category_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_items_section ON info_items(section_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_items_parent ON info_items(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_citation ON sections(citation_source)`,
		`CREATE INDEX IF NOT EXISTS idx_items_citation ON info_items(citation_source)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createViews adds query helpers: every citation reference in one place, and
// the references whose source has no record.
func createViews(db *sql.DB) error {
	views := []string{
		`CREATE VIEW IF NOT EXISTS citation_refs AS
			SELECT s.category_id, s.title AS section, NULL AS item, s.citation_source AS source, s.citation_page AS page
			FROM sections s WHERE s.citation_source IS NOT NULL
			UNION ALL
			SELECT s.category_id, s.title, 'table', s.table_citation_source, s.table_citation_page
			FROM sections s WHERE s.table_citation_source IS NOT NULL
			UNION ALL
			SELECT s.category_id, s.title, i.title, i.citation_source, i.citation_page
			FROM info_items i JOIN sections s ON s.id = i.section_id
			WHERE i.citation_source IS NOT NULL`,
		`CREATE VIEW IF NOT EXISTS dangling_citations AS
			SELECT r.* FROM citation_refs r
			LEFT JOIN citations c ON c.id = r.source
			WHERE c.id IS NULL`,
	}
	for _, v := range views {
		if _, err := db.Exec(v); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}
	return nil
}
