package foreign

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crowbar/internal/diag"
	"crowbar/internal/evaluator"
	"crowbar/internal/object"
	"crowbar/internal/util"
)

func newInterpreter(t *testing.T, opts ...evaluator.Option) (*evaluator.Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]evaluator.Option{evaluator.WithOutput(&out)}, opts...)
	in := evaluator.New(util.DefaultConfiguration(), opts...)
	Register(in)
	t.Cleanup(func() { _ = in.Dispose() })
	return in, &out
}

func run(t *testing.T, in *evaluator.Interpreter, src string) error {
	t.Helper()
	_, err := in.Compile(src)
	require.NoError(t, err)
	return in.Run()
}

func globalValue(t *testing.T, in *evaluator.Interpreter, name string) object.Value {
	t.Helper()
	v, ok := in.Global(name)
	require.Truef(t, ok, "global %s not defined", name)
	return v
}

func globalString(t *testing.T, in *evaluator.Interpreter, name string) string {
	t.Helper()
	s, ok := globalValue(t, in, name).(object.StringRef)
	require.Truef(t, ok, "global %s is not a string", name)
	return in.Heap().StringOf(s)
}

func TestPrint(t *testing.T) {
	in, out := newInterpreter(t)
	require.NoError(t, run(t, in, `print("n = " + 3); print(null); print([true, 1.5]);`))

	require.Equal(t, "n = 3null(true, 1.500000)", out.String())
}

func TestNewArray(t *testing.T) {
	in, out := newInterpreter(t)
	require.NoError(t, run(t, in, `
a = new_array(2, 3);
print(a);
b = new_array(3, 3, 3);
n = b[2][2].size();
`))

	require.Equal(t, "((null, null, null), (null, null, null))", out.String())
	require.Equal(t, object.Int(3), globalValue(t, in, "n"))
}

func TestNewArraySurvivesCollection(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.HeapThreshold = 64
	cfg.HeapIncrement = 64

	in := evaluator.New(cfg, evaluator.WithOutput(&bytes.Buffer{}))
	Register(in)
	defer in.Dispose()

	require.NoError(t, run(t, in, `a = new_array(4, 4, 4);`))
	require.Greater(t, in.Heap().Stats().Collections, 0)

	in.Heap().Collect()
	// 1 + 4 + 16 arrays
	require.Equal(t, 21, in.Heap().Len())
}

func TestFileNatives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	in, _ := newInterpreter(t)
	require.NoError(t, run(t, in, fmt.Sprintf(`
fp = fopen(%q, "w");
fputs("hello\n", fp);
fputs("world\n", fp);
fclose(fp);
fclose(fp);

fp = fopen(%q, "r");
first = fgets(fp);
second = fgets(fp);
third = fgets(fp);
fclose(fp);

missing = fopen(%q, "r");
badmode = fopen(%q, "rw");
`, path, path, filepath.Join(dir, "nope", "x.txt"), path)))

	require.Equal(t, "hello\n", globalString(t, in, "first"))
	require.Equal(t, "world\n", globalString(t, in, "second"))
	require.True(t, object.IsNull(globalValue(t, in, "third")))
	require.True(t, object.IsNull(globalValue(t, in, "missing")))
	require.True(t, object.IsNull(globalValue(t, in, "badmode")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\n", string(data))
}

func TestFputsAfterFgets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	in, _ := newInterpreter(t)
	require.NoError(t, run(t, in, fmt.Sprintf(`
fp = fopen(%q, "r+");
first = fgets(fp);
fputs("TWO\n", fp);
fclose(fp);
`, path)))

	require.Equal(t, "one\n", globalString(t, in, "first"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "one\nTWO\n", string(data))
}

func TestStandardStreams(t *testing.T) {
	in, out := newInterpreter(t, evaluator.WithInput(strings.NewReader("line1\nline2")))
	require.NoError(t, run(t, in, `
fputs("hi", STDOUT);
a = fgets(STDIN);
b = fgets(STDIN);
c = fgets(STDIN);
fclose(STDOUT);
fputs("!", STDOUT);
`))

	require.Equal(t, "hi!", out.String())
	require.Equal(t, "line1\n", globalString(t, in, "a"))
	require.Equal(t, "line2", globalString(t, in, "b"))
	require.True(t, object.IsNull(globalValue(t, in, "c")))
}

func TestDisposeClosesOpenFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "left-open.txt")

	in, _ := newInterpreter(t)
	require.NoError(t, run(t, in, fmt.Sprintf(`fp = fopen(%q, "a");`, path)))

	np, ok := globalValue(t, in, "fp").(object.NativePointer)
	require.True(t, ok)
	file := np.Pointer.(*os.File)

	require.NoError(t, in.Dispose())
	_, err := file.Write([]byte("x"))
	require.True(t, errors.Is(err, os.ErrClosed), "got %v", err)
}

func TestNativeArgumentErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.RuntimeErrorKind
	}{
		{`print();`, diag.ArgumentTooFewErr},
		{`new_array();`, diag.ArgumentTooFewErr},
		{`new_array("x");`, diag.NewArrayArgumentTypeErr},
		{`new_array(2, -1);`, diag.NewArrayArgumentTypeErr},
		{`fopen(1, "r");`, diag.FopenArgumentTypeErr},
		{`fopen("x");`, diag.ArgumentTooFewErr},
		{`fclose(1);`, diag.FcloseArgumentTypeErr},
		{`fgets("x");`, diag.FgetsArgumentTypeErr},
		{`fputs(1, STDOUT);`, diag.FputsArgumentTypeErr},
		{`fputs("x", 1);`, diag.FputsArgumentTypeErr},
		{`fputs("x", STDOUT, 1);`, diag.ArgumentTooManyErr},
		{`db_open(1, "x");`, diag.DBArgumentTypeErr},
		{`db_open("oracle", "x");`, diag.DBOperationErr},
		{`db_open("mysql", "not a dsn");`, diag.DBOperationErr},
		{`db_exec(1, "SELECT 1");`, diag.DBArgumentTypeErr},
		{`db_query(STDOUT);`, diag.ArgumentTooFewErr},
		{`db_close("db");`, diag.DBArgumentTypeErr},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in, _ := newInterpreter(t)
			err := run(t, in, tt.src)
			require.Error(t, err)
			require.Truef(t, diag.IsRuntime(err, tt.kind), "expected %s, got %v", tt.kind, err)
		})
	}
}

func TestSqliteRoundTrip(t *testing.T) {
	in, out := newInterpreter(t)
	require.NoError(t, run(t, in, `
db = db_open("sqlite3", ":memory:");
db_exec(db, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL, active BOOLEAN, note TEXT)");
n = db_exec(db, "INSERT INTO users (name, score, active, note) VALUES (?, ?, ?, ?)", "ann", 1.5, true, null);
db_exec(db, "INSERT INTO users (name, score, active, note) VALUES (?, ?, ?, ?)", "bob", 2.0, false, "x");
rows = db_query(db, "SELECT id, name, score, active, note FROM users ORDER BY id");
print(rows);
count = rows.size();
db_close(db);
`))

	require.Equal(t, object.Int(1), globalValue(t, in, "n"))
	require.Equal(t, object.Int(2), globalValue(t, in, "count"))
	require.Equal(t, "((1, ann, 1.500000, true, null), (2, bob, 2.000000, false, x))", out.String())
}

func TestSqliteErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.RuntimeErrorKind
	}{
		{`db_query(db, "SELECT * FROM nope");`, diag.DBOperationErr},
		{`db_exec(db, "SELECT ?", [1]);`, diag.DBArgumentTypeErr},
		{`db_exec(db, 1);`, diag.DBArgumentTypeErr},
		{`db_close(db); db_exec(db, "SELECT 1");`, diag.DBOperationErr},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			in, _ := newInterpreter(t)
			require.NoError(t, run(t, in, `db = db_open("sqlite3", ":memory:");`))

			err := run(t, in, tt.src)
			require.Error(t, err)
			require.Truef(t, diag.IsRuntime(err, tt.kind), "expected %s, got %v", tt.kind, err)
		})
	}
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("postgres", "postgres://u:p@localhost:5432/db")
	require.NoError(t, err)
	require.Equal(t, "dbname=db host=localhost password=p port=5432 user=u", dsn)

	dsn, err = normalizeDSN("postgres", "host=localhost dbname=db")
	require.NoError(t, err)
	require.Equal(t, "host=localhost dbname=db", dsn)

	dsn, err = normalizeDSN("mysql", "user:pw@tcp(localhost:3306)/app")
	require.NoError(t, err)
	require.Contains(t, dsn, "tcp(localhost:3306)/app")

	_, err = normalizeDSN("mysql", "not a dsn")
	require.Error(t, err)

	_, err = normalizeDSN("oracle", "x")
	require.Error(t, err)
}
