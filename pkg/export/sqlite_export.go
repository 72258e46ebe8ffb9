package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
	"github.com/vanderheijden86/permitflow/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a data set to a SQLite database.
type SQLiteExporter struct {
	Dataset *loader.Dataset
}

// NewSQLiteExporter creates an exporter for ds.
func NewSQLiteExporter(ds *loader.Dataset) *SQLiteExporter {
	return &SQLiteExporter{Dataset: ds}
}

// Export writes the database to dbPath, replacing any existing file.
func (e *SQLiteExporter) Export(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertCitations(db); err != nil {
		return fmt.Errorf("insert citations: %w", err)
	}
	if err := e.insertCategories(db); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertCitations(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO citations (id, apa, url, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range e.Dataset.Citations.All() {
		if _, err := stmt.Exec(rec.ID, rec.APA, rec.URL, i); err != nil {
			return fmt.Errorf("insert citation %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// insertCategories writes every category with its sections in a single
// transaction.
func (e *SQLiteExporter) insertCategories(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ins, err := prepareInserts(tx)
	if err != nil {
		return err
	}
	defer ins.close()

	for i, c := range e.Dataset.Workflows {
		if err := ins.category(c, i, false); err != nil {
			return err
		}
	}
	if err := ins.category(e.Dataset.Tests, len(e.Dataset.Workflows), true); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	meta := map[string]string{
		"schema_version": fmt.Sprint(SchemaVersion),
		"app_version":    version.Version,
		"source":         e.Dataset.Source,
		"workflow_count": fmt.Sprint(len(e.Dataset.Workflows)),
	}
	for k, v := range meta {
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return nil
}

// inserts holds the prepared statements used while walking a category.
type inserts struct {
	cat, section, step, item, cell *sql.Stmt
}

func prepareInserts(tx *sql.Tx) (*inserts, error) {
	ins := &inserts{}
	var err error
	prep := func(q string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var s *sql.Stmt
		s, err = tx.Prepare(q)
		return s
	}
	ins.cat = prep(`INSERT INTO categories (id, title, icon, description, position, is_tests) VALUES (?, ?, ?, ?, ?, ?)`)
	ins.section = prep(`INSERT INTO sections (category_id, position, title, type, description, citation_source, citation_page, table_citation_source, table_citation_page) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	ins.step = prep(`INSERT INTO steps (section_id, position, step_id, title, responsible, description, duration) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	ins.item = prep(`INSERT INTO info_items (section_id, parent_id, position, title, description, details, citation_source, citation_page) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	ins.cell = prep(`INSERT INTO table_cells (section_id, row_index, col_index, header, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		ins.close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return ins, nil
}

func (ins *inserts) close() {
	for _, s := range []*sql.Stmt{ins.cat, ins.section, ins.step, ins.item, ins.cell} {
		if s != nil {
			s.Close()
		}
	}
}

func (ins *inserts) category(c model.Category, pos int, tests bool) error {
	isTests := 0
	if tests {
		isTests = 1
	}
	if _, err := ins.cat.Exec(c.ID, c.Title, c.Icon, c.Description, pos, isTests); err != nil {
		return fmt.Errorf("insert category %s: %w", c.ID, err)
	}
	for i, s := range c.Sections {
		if s.Content == nil {
			continue
		}
		if err := ins.sectionRows(c.ID, i, s); err != nil {
			return fmt.Errorf("insert section %s/%d: %w", c.ID, i, err)
		}
	}
	return nil
}

func (ins *inserts) sectionRows(categoryID string, pos int, s model.Section) error {
	src, page := citationCols(s.Citation)
	var tableSrc, tablePage *string
	if t, ok := s.Content.(model.TableContent); ok {
		tableSrc, tablePage = citationCols(t.Table.Citation)
	}
	res, err := ins.section.Exec(categoryID, pos, s.Title, string(s.Kind()), s.Description, src, page, tableSrc, tablePage)
	if err != nil {
		return err
	}
	sectionID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	switch c := s.Content.(type) {
	case model.StepsContent:
		for i, st := range c.Steps {
			if _, err := ins.step.Exec(sectionID, i, st.ID, st.Title, string(st.Responsible), st.Description, st.Duration); err != nil {
				return err
			}
		}
	case model.InfoContent:
		for i, item := range c.Items {
			parentID, err := ins.infoItem(sectionID, nil, i, item)
			if err != nil {
				return err
			}
			for j, sub := range item.SubItems {
				if _, err := ins.infoItem(sectionID, &parentID, j, sub); err != nil {
					return err
				}
			}
		}
	case model.TableContent:
		for r, row := range c.Table.NormalizedRows() {
			for col, v := range row {
				if _, err := ins.cell.Exec(sectionID, r, col, c.Table.Headers[col], v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (ins *inserts) infoItem(sectionID int64, parentID *int64, pos int, item model.InfoItem) (int64, error) {
	src, page := citationCols(item.Citation)
	res, err := ins.item.Exec(sectionID, parentID, pos, item.Title, item.Description, item.Details, src, page)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// citationCols returns the nullable source and page columns for c.
func citationCols(c *model.Citation) (source, page *string) {
	if c == nil {
		return nil, nil
	}
	s, p := c.Source, c.Page
	return &s, &p
}
