// Command gen_computed generates computed_generated.go. Run with:
//
//	go run codegen/gen_computed.go -w
//
// It builds Computed2..Computed9 with a single generateComputed(n)
// templating function invoked in a loop, writing its output back into the
// arity-generic file it produces.
package main

import (
	"fmt"
	"os"
	"strings"
)

var letters = []string{"A", "B", "C", "D", "E", "F", "G", "H2", "I"}

func generateComputed(n int) string {
	var sb strings.Builder

	names := letters[:n]

	typeParams := append(append([]string{}, names...), "T any")
	for i := range typeParams[:n] {
		typeParams[i] += " any"
	}

	handleParams := make([]string, n)
	lowerNames := make([]string, n)
	for i, name := range names {
		lower := strings.ToLower(name)
		lowerNames[i] = lower
		handleParams[i] = fmt.Sprintf("%s *CellHandle[%s]", lower, name)
	}

	factoryArgs := append([]string{"rc *RuleCtx"}, handleParams...)

	callArgs := append([]string{"rc"}, lowerNames...)

	sb.WriteString(fmt.Sprintf("// Computed%d creates a derived cell from %d dependencies.\n", n, n))
	sb.WriteString(fmt.Sprintf("func Computed%d[%s](\n", n, strings.Join(typeParams, ", ")))
	sb.WriteString(fmt.Sprintf("\t%s,\n", strings.Join(handleParams, ", ")))
	sb.WriteString(fmt.Sprintf("\tfn func(%s) (T, error),\n", strings.Join(factoryArgs, ", ")))
	sb.WriteString(") *CellHandle[T] {\n")
	sb.WriteString("\th := newCell[T](a.c.scope, kindComputed, func(rc *RuleCtx) (T, error) {\n")
	sb.WriteString(fmt.Sprintf("\t\treturn fn(%s)\n", strings.Join(callArgs, ", ")))
	sb.WriteString("\t})\n")
	for _, lower := range lowerNames {
		sb.WriteString(fmt.Sprintf("\ta.c.scope.graph.AddDependency(%s.c.id, h.c.id)\n", lower))
	}
	sb.WriteString("\treturn h\n")
	sb.WriteString("}\n\n")

	return sb.String()
}

func main() {
	var output strings.Builder
	output.WriteString("// Code generated by codegen/gen_computed.go; DO NOT EDIT.\n\n")
	output.WriteString("package reactor\n\n")

	for i := 2; i <= 9; i++ {
		output.WriteString(generateComputed(i))
	}

	fmt.Print(output.String())

	if len(os.Args) > 1 && os.Args[1] == "-w" {
		file, err := os.OpenFile("computed_generated.go", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			panic(err)
		}
		defer file.Close()
		file.WriteString(output.String())
		fmt.Println("Generated computed_generated.go")
	}
}
