package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	builderType = flag.String("type", "evalTestCase", "test case builder type whose methods get wrappers")
	infix       = flag.String("infix", "Eval", "inserted into each wrapper name after its with/expect/exclusive prefix")

	srcName = "eval_test.go"
	out     io.WriteCloser = os.Stdout
)

// wrapPrefixes are the builder method prefixes that get a wrapper function
// usable with the builder's apply method.
var wrapPrefixes = []string{"exclusive", "expect", "with"}

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		srcName = args[0]
		args = args[1:]
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		out = f
	}
}

func main() {
	parseFlags()

	src, err := generate()
	if err != nil {
		log.Fatalln(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := format(ctx, src); err != nil {
		log.Fatalln(err)
	}
}

// format pipes src through goimports into out; goimports fills in the
// import block for whatever parameter types the wrappers mention.
func format(ctx context.Context, src []byte) error {
	eg, ctx := errgroup.WithContext(ctx)

	goimports := exec.CommandContext(ctx, "goimports")
	goimports.Stdout = out
	goimports.Stderr = os.Stderr
	pipe, err := goimports.StdinPipe()
	if err != nil {
		return err
	}

	eg.Go(func() error {
		defer out.Close()
		if err := goimports.Run(); err != nil {
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() (rerr error) {
		defer func() {
			if cerr := pipe.Close(); rerr == nil {
				rerr = cerr
			}
		}()
		_, err := pipe.Write(src)
		return err
	})

	return eg.Wait()
}

func generate() ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, srcName, nil, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("package main\n\n")
	fmt.Fprintf(&buf, "// @generated from %v\n\n", srcName)
	if args := flag.Args(); len(args) >= 2 {
		fmt.Fprintf(&buf, "//go:generate go run scripts/gen_expects.go -- %v\n\n", strings.Join(args, " "))
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isBuilderMethod(fn) {
			continue
		}
		prefix := wrapPrefix(fn.Name.Name)
		if prefix == "" {
			continue
		}
		if err := writeWrapper(&buf, fset, fn, prefix); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// isBuilderMethod reports whether fn is a value method of the builder type
// that returns a single builder.
func isBuilderMethod(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 {
		return false
	}
	if !isBuilderIdent(fn.Recv.List[0].Type) {
		return false
	}
	res := fn.Type.Results
	return res != nil && len(res.List) == 1 && len(res.List[0].Names) <= 1 && isBuilderIdent(res.List[0].Type)
}

func isBuilderIdent(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == *builderType
}

func wrapPrefix(name string) string {
	for _, prefix := range wrapPrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return prefix
		}
	}
	return ""
}

// writeWrapper writes a function that returns a closure calling fn on its
// argument, e.g. withEvalInput(input) for evalTestCase.withInput(input).
func writeWrapper(buf *bytes.Buffer, fset *token.FileSet, fn *ast.FuncDecl, prefix string) error {
	var params, args []string
	for _, field := range fn.Type.Params.List {
		var typ strings.Builder
		if err := printer.Fprint(&typ, fset, field.Type); err != nil {
			return err
		}
		_, variadic := field.Type.(*ast.Ellipsis)
		for _, name := range field.Names {
			params = append(params, name.Name+" "+typ.String())
			if variadic {
				args = append(args, name.Name+"...")
			} else {
				args = append(args, name.Name)
			}
		}
	}

	recv := "b"
	if names := fn.Recv.List[0].Names; len(names) == 1 && names[0].Name != "_" {
		recv = names[0].Name
	}

	name := fn.Name.Name
	wrapType := fmt.Sprintf("func(%[1]v) %[1]v", *builderType)
	fmt.Fprintf(buf, "func %v%v%v(%v) %v {\n", prefix, *infix, name[len(prefix):], strings.Join(params, ", "), wrapType)
	fmt.Fprintf(buf, "\treturn func(%v %v) %v {\n", recv, *builderType, *builderType)
	fmt.Fprintf(buf, "\t\treturn %v.%v(%v)\n", recv, name, strings.Join(args, ", "))
	buf.WriteString("\t}\n")
	buf.WriteString("}\n\n")
	return nil
}
