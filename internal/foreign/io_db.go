package foreign

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"crowbar/internal/diag"
	"crowbar/internal/evaluator"
	"crowbar/internal/object"
)

// DBPointerInfo tags native pointers that wrap a database handle.
var DBPointerInfo = &object.NativePointerInfo{Name: "crowbar.db"}

// normalizeDSN checks a data source name against its driver's own parser
// before the connection is attempted.
func normalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case "sqlite3":
		return dsn, nil
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", err
		}
		return cfg.FormatDSN(), nil
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return pq.ParseURL(dsn)
		}
		return dsn, nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}

func dbError(ctx *evaluator.NativeContext, err error) error {
	return ctx.Errorf(diag.DBOperationErr, diag.Str("name", ctx.Name), diag.Str("message", err.Error()))
}

func dbArgumentError(ctx *evaluator.NativeContext) error {
	return ctx.Errorf(diag.DBArgumentTypeErr, diag.Str("name", ctx.Name))
}

func (r *resources) fnDbOpen(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 2); err != nil {
		return nil, err
	}
	driver, ok := unpackString(ctx, args[0])
	if !ok {
		return nil, dbArgumentError(ctx)
	}
	dsn, ok := unpackString(ctx, args[1])
	if !ok {
		return nil, dbArgumentError(ctx)
	}

	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, dbError(ctx, err)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, dbError(ctx, err)
	}
	if driver == "sqlite3" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dbError(ctx, err)
	}

	r.addDB(db)
	return object.NativePointer{Info: DBPointerInfo, Pointer: db}, nil
}

// unpackStatement reads the handle, the SQL text and the bind parameters
// shared by db_exec and db_query.
func (r *resources) unpackStatement(ctx *evaluator.NativeContext, args []object.Value) (*sql.DB, string, []any, error) {
	if len(args) < 2 {
		return nil, "", nil, ctx.Errorf(diag.ArgumentTooFewErr, diag.Str("name", ctx.Name))
	}
	ptr, ok := unpackPointer(args[0], DBPointerInfo)
	if !ok {
		return nil, "", nil, dbArgumentError(ctx)
	}
	db := ptr.(*sql.DB)
	if !r.openDB(db) {
		return nil, "", nil, dbError(ctx, sql.ErrConnDone)
	}
	query, ok := unpackString(ctx, args[1])
	if !ok {
		return nil, "", nil, dbArgumentError(ctx)
	}

	params := make([]any, len(args)-2)
	for i, arg := range args[2:] {
		switch v := arg.(type) {
		case object.Int:
			params[i] = int64(v)
		case object.Double:
			params[i] = float64(v)
		case object.Boolean:
			params[i] = bool(v)
		case object.StringRef:
			params[i] = ctx.StringOf(v)
		case object.Null:
			params[i] = nil
		default:
			return nil, "", nil, dbArgumentError(ctx)
		}
	}
	return db, query, params, nil
}

// fnDbExec returns the number of affected rows.
func (r *resources) fnDbExec(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	db, query, params, err := r.unpackStatement(ctx, args)
	if err != nil {
		return nil, err
	}

	result, err := db.Exec(query, params...)
	if err != nil {
		return nil, dbError(ctx, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, dbError(ctx, err)
	}
	return object.Int(affected), nil
}

// fnDbQuery returns an array with one array of column values per row.
func (r *resources) fnDbQuery(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	db, query, params, err := r.unpackStatement(ctx, args)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, dbError(ctx, err)
	}
	defer rows.Close()

	result, err := renderRows(ctx, rows)
	if err != nil {
		return nil, dbError(ctx, err)
	}
	return result, nil
}

func (r *resources) fnDbClose(ctx *evaluator.NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 1); err != nil {
		return nil, err
	}
	ptr, ok := unpackPointer(args[0], DBPointerInfo)
	if !ok {
		return nil, dbArgumentError(ctx)
	}
	if err := r.closeDB(ptr.(*sql.DB)); err != nil {
		return nil, dbError(ctx, err)
	}
	return object.Null{}, nil
}

func renderRows(ctx *evaluator.NativeContext, rows *sql.Rows) (object.ArrayRef, error) {
	columns, err := rows.Columns()
	if err != nil {
		return object.ArrayRef{}, err
	}
	types, _ := rows.ColumnTypes()

	result := ctx.NewArray(0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return object.ArrayRef{}, err
		}

		row := ctx.NewArray(len(columns))
		for i := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			ctx.Heap().ArraySet(row, i, mapValue(ctx, values[i], typeName))
		}
		ctx.Heap().ArrayAdd(result, row)
	}
	return result, rows.Err()
}

func mapValue(ctx *evaluator.NativeContext, v any, dbType string) object.Value {
	if v == nil {
		return object.Null{}
	}
	switch x := v.(type) {
	case int64:
		if dbType == "BOOLEAN" || dbType == "BOOL" {
			return object.Boolean(x != 0)
		}
		return object.Int(x)
	case float64:
		return object.Double(x)
	case bool:
		return object.Boolean(x)
	case []byte:
		return ctx.NewString(string(x))
	case string:
		return ctx.NewString(x)
	case time.Time:
		return ctx.NewString(x.Format(time.RFC3339))
	default:
		return ctx.NewString(fmt.Sprintf("%v", v))
	}
}
