package foreign

import (
	"crowbar/internal/evaluator"
)

// GetForeignFunctions returns the native library bound to res.
func GetForeignFunctions(res *resources) map[string]evaluator.NativeFunction {
	return map[string]evaluator.NativeFunction{
		"print":     fnPrint,
		"new_array": fnNewArray,

		"fopen":  res.fnFopen,
		"fclose": res.fnFclose,
		"fgets":  res.fnFgets,
		"fputs":  res.fnFputs,

		"db_open":  res.fnDbOpen,
		"db_exec":  res.fnDbExec,
		"db_query": res.fnDbQuery,
		"db_close": res.fnDbClose,
	}
}

// Register installs the native library into in. Files and databases left
// open by the program are closed when in is disposed.
func Register(in *evaluator.Interpreter) {
	res := newResources()
	for name, fn := range GetForeignFunctions(res) {
		in.RegisterNative(name, fn)
	}
	in.OnDispose(res.Close)
}
