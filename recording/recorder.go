// Package recording optionally persists benchmark results into a SQLite
// database so that runs can be compared after the fact.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// SQLite driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// A Recorder stores result rows into named tables.
type Recorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry of the table's row type for writing.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries into the database.
	Flush()
}

// NewSQLiteRecorder creates a Recorder backed by a SQLite database file at
// path (without extension). An empty path picks a unique run-scoped name.
// A final flush is registered to run at process exit.
func NewSQLiteRecorder(path string) Recorder {
	w := &sqliteRecorder{
		dbName: path,
		tables: make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	rowType reflect.Type
	rows    []any
}

type sqliteRecorder struct {
	*sql.DB

	dbName string
	tables map[string]*table
}

func (r *sqliteRecorder) init() {
	if r.dbName == "" {
		r.dbName = "membench_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("recording: file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Recording results into: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
}

func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	mustHaveFlatFields(sampleEntry)

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	r.mustExecute(createTableSQL)

	r.tables[tableName] = &table{
		rowType: reflect.TypeOf(sampleEntry),
		rows:    []any{},
	}
}

func (r *sqliteRecorder) InsertData(tableName string, entry any) {
	t, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("recording: table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.rowType {
		panic(fmt.Sprintf(
			"recording: entry type %T does not match table %s",
			entry, tableName))
	}

	t.rows = append(t.rows, entry)
}

func (r *sqliteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *sqliteRecorder) Flush() {
	pending := false
	for _, t := range r.tables {
		if len(t.rows) > 0 {
			pending = true
		}
	}

	if !pending {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		if len(t.rows) == 0 {
			continue
		}

		stmt := r.prepareInsert(tableName, t.rows[0])

		for _, row := range t.rows {
			v := []any{}

			value := reflect.ValueOf(row)
			for i := 0; i < value.NumField(); i++ {
				v = append(v, value.Field(i).Interface())
			}

			_, err := stmt.Exec(v...)
			if err != nil {
				panic(err)
			}
		}

		t.rows = nil

		stmt.Close()
	}
}

func (r *sqliteRecorder) prepareInsert(tableName string, sample any) *sql.Stmt {
	n := structs.Names(sample)
	for i := range n {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := r.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.Exec(query)
	if err != nil {
		panic(fmt.Errorf("recording: failed to execute %q: %w", query, err))
	}

	return res
}

func mustHaveFlatFields(entry any) {
	types := reflect.TypeOf(entry)

	for i := 0; i < types.NumField(); i++ {
		switch types.Field(i).Type.Kind() {
		case reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64,
			reflect.String:
			// Storable as a SQLite scalar.
		default:
			panic(fmt.Sprintf(
				"recording: field %s has unsupported kind %s",
				types.Field(i).Name, types.Field(i).Type.Kind()))
		}
	}
}
