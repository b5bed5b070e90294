package evaluator

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"crowbar/internal/ast"
	"crowbar/internal/diag"
	"crowbar/internal/object"
	"crowbar/internal/util"
)

func printNative(ctx *NativeContext, args []object.Value) (object.Value, error) {
	if err := ctx.CheckArity(args, 1); err != nil {
		return nil, err
	}
	fmt.Fprint(ctx.Out(), ctx.FormatValue(args[0]))
	return object.Null{}, nil
}

func newTestInterpreter(t *testing.T, cfg util.Configuration) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	in := New(cfg, WithOutput(&out))
	in.RegisterNative("print", printNative)
	t.Cleanup(func() { _ = in.Dispose() })
	return in, &out
}

func run(t *testing.T, src string) (*Interpreter, string) {
	t.Helper()
	in, out := newTestInterpreter(t, util.DefaultConfiguration())
	_, err := in.Compile(src)
	require.NoError(t, err)
	require.NoError(t, in.Run())
	return in, out.String()
}

func runError(t *testing.T, src string) error {
	t.Helper()
	in, _ := newTestInterpreter(t, util.DefaultConfiguration())
	_, err := in.Compile(src)
	require.NoError(t, err)
	return in.Run()
}

func requireRuntimeError(t *testing.T, err error, kind diag.RuntimeErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, diag.IsRuntime(err, kind), "expected %s, got %v", kind, err)
}

func global(t *testing.T, in *Interpreter, name string) object.Value {
	t.Helper()
	v, ok := in.Global(name)
	require.Truef(t, ok, "global %s not defined", name)
	return v
}

func globalString(t *testing.T, in *Interpreter, name string) string {
	t.Helper()
	s, ok := global(t, in, name).(object.StringRef)
	require.Truef(t, ok, "global %s is not a string", name)
	return in.Heap().StringOf(s)
}

func TestExpressionValues(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{`1 + 2 * 3`, "7"},
		{`(1 + 2) * 3`, "9"},
		{`7 / 2`, "3"},
		{`7 % 3`, "1"},
		{`-3 + 1`, "-2"},
		{`1 + 2.5`, "3.500000"},
		{`7.0 / 2`, "3.500000"},
		{`7.5 % 2`, "1.500000"},
		{`"a" + 1`, "a1"},
		{`"a" + 1.5`, "a1.500000"},
		{`"x" + true`, "xtrue"},
		{`"x" + null`, "xnull"},
		{`"x" + [1, "y"]`, "x(1, y)"},
		{`1 < 2`, "true"},
		{`2.5 >= 3`, "false"},
		{`2 == 2.0`, "true"},
		{`"abc" < "abd"`, "true"},
		{`"a" == "a"`, "true"},
		{`"a" != "a"`, "false"},
		{`null == null`, "true"},
		{`null != 1`, "true"},
		{`[1] == null`, "false"},
		{`true == false`, "false"},
		{`true != false`, "true"},
		{`true && false || true`, "true"},
		{`[]`, "()"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, out := run(t, "print("+tt.expr+");")
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestNumericPromotion(t *testing.T) {
	in, _ := run(t, `x = 1 + 2.5; y = "a" + 1; z = 1.0 / 0;`)

	require.Equal(t, object.Double(3.5), global(t, in, "x"))
	require.Equal(t, "a1", globalString(t, in, "y"))
	require.True(t, math.IsInf(float64(global(t, in, "z").(object.Double)), 1))
}

func TestArrayAliasing(t *testing.T) {
	in, _ := run(t, `a = [1, 2, 3]; b = a; b.add(4); n = a.size();`)

	require.Equal(t, object.Int(4), global(t, in, "n"))
	require.Equal(t, global(t, in, "a"), global(t, in, "b"))
}

func TestFunctionAssignmentCreatesLocal(t *testing.T) {
	in, _ := run(t, `
x = 1;
function f() {
    x = 2;
    return x;
}
y = f();
`)

	require.Equal(t, object.Int(1), global(t, in, "x"))
	require.Equal(t, object.Int(2), global(t, in, "y"))
}

func TestGlobalImport(t *testing.T) {
	in, _ := run(t, `
x = 1;
function f() {
    global x;
    global x;
    x = 7;
}
f();
`)

	require.Equal(t, object.Int(7), global(t, in, "x"))
}

func TestGlobalStatementErrors(t *testing.T) {
	requireRuntimeError(t, runError(t, `x = 1; global x;`), diag.GlobalStatementInToplevelErr)
	requireRuntimeError(t, runError(t, `function f() { global nope; } f();`), diag.GlobalVariableNotFoundErr)
}

func TestArrayIndexOutOfBounds(t *testing.T) {
	err := runError(t, "a = [1, 2, 3];\nx = a[3];")
	requireRuntimeError(t, err, diag.ArrayIndexOutOfBoundsErr)
	require.Contains(t, err.Error(), "array size: 3, index: [3]")
	require.Contains(t, err.Error(), "[  2]")

	err = runError(t, `a = [1, 2, 3]; a[-1] = 0;`)
	requireRuntimeError(t, err, diag.ArrayIndexOutOfBoundsErr)
	require.Contains(t, err.Error(), "index: [-1]")
}

func TestShortCircuit(t *testing.T) {
	in, _ := run(t, `r = false && undefined_call(); s = true || undefined_call();`)

	require.Equal(t, object.Boolean(false), global(t, in, "r"))
	require.Equal(t, object.Boolean(true), global(t, in, "s"))

	requireRuntimeError(t, runError(t, `false || undefined_call();`), diag.FunctionNotFoundErr)
}

func TestReturnUnwindsNestedStatements(t *testing.T) {
	in, _ := run(t, `
function f() {
    i = 0;
    while (true) {
        if (i > 2) {
            if (true) {
                return i;
            }
        }
        i++;
    }
    return -1;
}
r = f();
`)

	require.Equal(t, object.Int(3), global(t, in, "r"))
	require.Equal(t, 0, in.EnvDepth())
	require.Equal(t, 0, in.Stack().Len())
}

func TestArgumentCount(t *testing.T) {
	src := "function g(a, b) { return a + b; }\n"

	requireRuntimeError(t, runError(t, src+"g(1);"), diag.ArgumentTooFewErr)
	requireRuntimeError(t, runError(t, src+"g(1, 2, 3);"), diag.ArgumentTooManyErr)
	// the surplus argument is never evaluated
	requireRuntimeError(t, runError(t, src+"g(1, 2, undefined_call());"), diag.ArgumentTooManyErr)

	in, _ := run(t, src+"r = g(1, 2);")
	require.Equal(t, object.Int(3), global(t, in, "r"))
}

func TestLoops(t *testing.T) {
	in, _ := run(t, `
s = 0;
for (i = 0; i < 10; i++) {
    if (i == 5) {
        break;
    }
    if (i % 2 == 0) {
        continue;
    }
    s = s + i;
}

n = 0;
for (;;) {
    n++;
    if (n == 3) {
        break;
    }
}

w = 0;
k = 0;
while (k < 6) {
    k++;
    if (k % 3 == 0) {
        continue;
    }
    w = w + k;
}
`)

	require.Equal(t, object.Int(4), global(t, in, "s"))
	require.Equal(t, object.Int(5), global(t, in, "i"))
	require.Equal(t, object.Int(3), global(t, in, "n"))
	require.Equal(t, object.Int(1+2+4+5), global(t, in, "w"))
}

func TestIfElsif(t *testing.T) {
	_, out := run(t, `
function classify(n) {
    if (n < 0) {
        return "neg";
    } elsif (n == 0) {
        return "zero";
    } else {
        return "pos";
    }
}
print(classify(-1));
print(classify(0));
print(classify(3));
`)

	require.Equal(t, "negzeropos", out)
}

func TestRecursion(t *testing.T) {
	in, _ := run(t, `
function fib(n) {
    if (n < 2) {
        return n;
    }
    return fib(n - 1) + fib(n - 2);
}
r = fib(15);
`)

	require.Equal(t, object.Int(610), global(t, in, "r"))
}

func TestMethods(t *testing.T) {
	in, out := run(t, `
a = [];
a.add(1);
a.add("x");
a.resize(4);
a[3] = 9;
n = a.size();
l = "hello".length();
print(a);
`)

	require.Equal(t, "(1, x, null, 9)", out)
	require.Equal(t, object.Int(4), global(t, in, "n"))
	require.Equal(t, object.Int(5), global(t, in, "l"))

	in, _ = run(t, `b = []; b.resize(300); b.resize(900); b[899] = 1; m = b.size();`)
	require.Equal(t, object.Int(900), global(t, in, "m"))
}

func TestMethodErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.RuntimeErrorKind
	}{
		{`a = []; a.size(1);`, diag.ArgumentTooManyErr},
		{`a = []; a.add();`, diag.ArgumentTooFewErr},
		{`a = []; a.push(1);`, diag.NoSuchMethodErr},
		{`x = 1; x.size();`, diag.NoSuchMethodErr},
		{`s = "abc"; s.size();`, diag.NoSuchMethodErr},
		{`a = []; a.resize("n");`, diag.ArrayResizeArgumentErr},
		{`a = []; a.resize(-1);`, diag.ArrayResizeArgumentErr},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			requireRuntimeError(t, runError(t, tt.src), tt.kind)
		})
	}
}

func TestIncrementDecrement(t *testing.T) {
	in, _ := run(t, `
i = 5;
j = i++;
k = i--;
a = [1];
a[0]++;
b = a[0];
`)

	require.Equal(t, object.Int(5), global(t, in, "i"))
	require.Equal(t, object.Int(5), global(t, in, "j"))
	require.Equal(t, object.Int(6), global(t, in, "k"))
	require.Equal(t, object.Int(2), global(t, in, "b"))
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	in, _ := run(t, `a = b = 3;`)

	require.Equal(t, object.Int(3), global(t, in, "a"))
	require.Equal(t, object.Int(3), global(t, in, "b"))
}

func TestRuntimeErrorKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind diag.RuntimeErrorKind
	}{
		{`x = y;`, diag.VariableNotFoundErr},
		{`f();`, diag.FunctionNotFoundErr},
		{`if (1) { x = 1; }`, diag.NotBooleanTypeErr},
		{`while (null) { x = 1; }`, diag.NotBooleanTypeErr},
		{`x = 1 && true;`, diag.NotBooleanTypeErr},
		{`x = false || 1;`, diag.NotBooleanTypeErr},
		{`x = -"a";`, diag.MinusOperandTypeErr},
		{`x = 1 + true;`, diag.BadOperandTypeErr},
		{`x = 1 + "a";`, diag.BadOperandTypeErr},
		{`x = true + false;`, diag.NotBooleanOperatorErr},
		{`x = null + 1;`, diag.NotNullOperatorErr},
		{`x = null < null;`, diag.NotNullOperatorErr},
		{`x = 1 / 0;`, diag.DivisionByZeroErr},
		{`x = 1 % 0;`, diag.DivisionByZeroErr},
		{`x = "a" - "b";`, diag.BadOperatorForStringErr},
		{`x = 1; y = x[0];`, diag.IndexOperandNotArrayErr},
		{`a = [1]; y = a["0"];`, diag.IndexOperandNotIntErr},
		{`1 = 2;`, diag.NotLvalueErr},
		{`s = "x"; s++;`, diag.IncDecOperandTypeErr},
		{`nope++;`, diag.VariableNotFoundErr},
		{`print();`, diag.ArgumentTooFewErr},
		{`print(1, 2);`, diag.ArgumentTooManyErr},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			requireRuntimeError(t, runError(t, tt.src), tt.kind)
		})
	}
}

func TestBreakEscapingFunctionBody(t *testing.T) {
	in, _ := run(t, `function f() { break; } r = f();`)

	require.True(t, object.IsNull(global(t, in, "r")))
}

func TestTopLevelReturnStopsRun(t *testing.T) {
	in, _ := run(t, `x = 1; return; x = 2;`)

	require.Equal(t, object.Int(1), global(t, in, "x"))
}

func TestRuntimeErrorResetsInterpreter(t *testing.T) {
	in, _ := newTestInterpreter(t, util.DefaultConfiguration())

	_, err := in.Compile(`function f(a) { return a + undefined; } x = [f(1)];`)
	require.NoError(t, err)
	requireRuntimeError(t, in.Run(), diag.VariableNotFoundErr)
	require.Equal(t, 0, in.EnvDepth())
	require.Equal(t, 0, in.Stack().Len())

	_, err = in.Compile(`function g() { return 2; } y = g();`)
	require.NoError(t, err)
	require.NoError(t, in.Run())
	require.Equal(t, object.Int(2), global(t, in, "y"))
}

func TestCompileRejectsRedefinition(t *testing.T) {
	in, _ := newTestInterpreter(t, util.DefaultConfiguration())

	_, err := in.Compile(`function f() { return 1; }`)
	require.NoError(t, err)

	_, err = in.Compile(`function f() { return 2; }`)
	require.True(t, diag.IsCompile(err, diag.FunctionMultipleDefineErr), "got %v", err)

	_, err = in.Compile(`function print(v) { return v; }`)
	require.True(t, diag.IsCompile(err, diag.FunctionMultipleDefineErr), "got %v", err)
}

func TestLoadBuiltProgram(t *testing.T) {
	in, _ := newTestInterpreter(t, util.DefaultConfiguration())

	b := ast.NewBuilder()
	b.AddStatement(&ast.ExpressionStatement{
		Expression: &ast.AssignExpression{
			Left: &ast.Identifier{Value: "x"},
			Operand: &ast.BinaryExpression{
				Operator: ast.ADD,
				Left:     &ast.IntegerLiteral{Value: 40},
				Right:    &ast.IntegerLiteral{Value: 2},
			},
		},
	})
	require.NoError(t, in.Load(b.Program()))
	require.NoError(t, in.Run())

	require.Equal(t, object.Int(42), global(t, in, "x"))
}

func TestCollectionDuringRun(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.HeapThreshold = 1024
	cfg.HeapIncrement = 1024
	cfg.ArrayChunk = 8

	in, _ := newTestInterpreter(t, cfg)
	_, err := in.Compile(`
a = [];
for (i = 0; i < 200; i++) {
    s = "item" + i;
    a.add(s);
    t = "garbage" + i;
}
first = a[0];
last = a[199];
`)
	require.NoError(t, err)
	require.NoError(t, in.Run())

	require.Greater(t, in.Heap().Stats().Collections, 0)

	in.Heap().Collect()
	require.Equal(t, "item0", globalString(t, in, "first"))
	require.Equal(t, "item199", globalString(t, in, "last"))

	a := global(t, in, "a").(object.ArrayRef)
	for n := 0; n < 200; n++ {
		s := in.Heap().ArrayGet(a, n).(object.StringRef)
		require.Equal(t, fmt.Sprintf("item%d", n), in.Heap().StringOf(s))
	}
}

func TestNativeTemporariesAreRooted(t *testing.T) {
	in, _ := newTestInterpreter(t, util.DefaultConfiguration())
	in.RegisterNative("make_pair", func(ctx *NativeContext, args []object.Value) (object.Value, error) {
		s := ctx.NewString("kept")
		ctx.Heap().Collect()
		require.True(t, ctx.Heap().Alive(s.Ref))
		arg, ok := args[0].(object.StringRef)
		require.True(t, ok)
		require.True(t, ctx.Heap().Alive(arg.Ref))

		pair := ctx.NewArray(2)
		ctx.Heap().ArraySet(pair, 0, s)
		ctx.Heap().ArraySet(pair, 1, arg)
		return pair, nil
	})

	_, err := in.Compile(`p = make_pair("a" + 1);`)
	require.NoError(t, err)
	require.NoError(t, in.Run())

	in.Heap().Collect()
	require.Equal(t, "(kept, a1)", in.FormatValue(global(t, in, "p")))
}

func TestFormatCyclicArray(t *testing.T) {
	_, out := run(t, `a = [1]; a.add(a); print(a);`)

	require.Equal(t, "(1, (...))", out)
}

func TestStandardStreams(t *testing.T) {
	in, out := newTestInterpreter(t, util.DefaultConfiguration())
	require.NoError(t, in.Run())

	stdout, ok := global(t, in, "STDOUT").(object.NativePointer)
	require.True(t, ok)
	require.True(t, stdout.Is(FilePointerInfo))
	require.Equal(t, out, stdout.Pointer)

	_, ok = in.Global("STDIN")
	require.True(t, ok)
	_, ok = in.Global("STDERR")
	require.True(t, ok)
}

func TestDisposeRunsCleanups(t *testing.T) {
	in := New(util.DefaultConfiguration())

	var order []int
	in.OnDispose(func() error { order = append(order, 1); return nil })
	in.OnDispose(func() error { order = append(order, 2); return fmt.Errorf("close failed") })

	_, err := in.Compile(`x = [1, 2, 3];`)
	require.NoError(t, err)
	require.NoError(t, in.Run())

	require.EqualError(t, in.Dispose(), "close failed")
	require.Equal(t, []int{2, 1}, order)
	require.Equal(t, 0, in.Heap().Len())
}
