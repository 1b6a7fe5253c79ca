package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/daveroberts0321/politecode/parser/lexer"
	"github.com/daveroberts0321/politecode/parser/types"
	"github.com/daveroberts0321/politecode/spec/openapi"
)

// zeroValues are the literals a scaffolded function returns.
var zeroValues = map[types.Type]string{
	types.Integer: "0",
	types.Decimal: "0.0",
	types.Boolean: "false",
	types.Text:    `""`,
}

// GenerateFunction appends a function stub named name to dir/name.polite,
// creating the file if needed.
func GenerateFunction(dir, name, returnType string) (string, error) {
	if !lexer.IsIdentifier(name) || lexer.Classify(name) != lexer.Identifier {
		return "", errors.Errorf("invalid function name %q", name)
	}
	if returnType == "" {
		returnType = "void"
	}
	ret, ok := types.Parse(returnType)
	if !ok {
		return "", errors.Errorf("unknown return type %q", returnType)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "please define function %s %s() {\n", ret, name)
	if ret == types.Void {
		fmt.Fprintf(&b, "    thank you for printing \"%s called\"\n", name)
	} else {
		fmt.Fprintf(&b, "    thank you for returning %s\n", zeroValues[ret])
	}
	b.WriteString("}\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	filename := filepath.Join(dir, strings.ToLower(name)+".polite")

	content := b.String()
	if existing, err := os.ReadFile(filename); err == nil {
		content = string(existing) + "\n" + content
	}
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", filename)
	}

	fmt.Printf("Function %s generated at %s\n", name, filename)
	return filename, nil
}

// GenerateProgram writes a runnable program with a main entry point to
// dir/name.polite. An existing file is left untouched.
func GenerateProgram(dir, name string) (string, error) {
	if !lexer.IsIdentifier(name) {
		return "", errors.Errorf("invalid program name %q", name)
	}
	program := fmt.Sprintf(`please define function void main() {
    please create text greeting equals "Hello from %s"
    thank you for printing greeting
}
`, name)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	filename := filepath.Join(dir, strings.ToLower(name)+".polite")
	if _, err := os.Stat(filename); err == nil {
		return "", errors.Errorf("%s already exists", filename)
	}
	if err := os.WriteFile(filename, []byte(program), 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", filename)
	}

	fmt.Printf("Program %s generated at %s\n", name, filename)
	return filename, nil
}

// GenerateOpenAPI writes the translate service description to path.
func GenerateOpenAPI(path, version string) error {
	if err := openapi.WriteFile(path, version); err != nil {
		return err
	}
	fmt.Printf("OpenAPI spec written to %s\n", path)
	return nil
}
