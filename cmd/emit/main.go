package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-emit/wasm"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))
)

func main() {
	var (
		demoName    = flag.String("demo", "arith", "Built-in module to generate (see -list)")
		outFile     = flag.String("o", "", "Write the encoded module to this path")
		funcName    = flag.String("func", "", "Exported function to call after generation")
		argsStr     = flag.String("args", "", "Comma-separated numeric arguments for -func")
		list        = flag.Bool("list", false, "List built-in modules and exit")
		interactive = flag.Bool("i", false, "Interactive export runner")
	)
	flag.Parse()

	if *list {
		for _, d := range demos {
			tag := ""
			if !d.runnable {
				tag = " (encode only)"
			}
			fmt.Printf("  %-8s %s%s\n", d.name, d.desc, tag)
		}
		return
	}

	d, ok := findDemo(*demoName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown demo %q, try -list\n", *demoName)
		os.Exit(1)
	}

	if err := run(d, *outFile, *funcName, *argsStr, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(d demo, outFile, funcName, argsStr string, interactive bool) error {
	mod := d.build()
	data := mod.Encode()

	printSummary(d.name, mod, len(data))

	if outFile != "" {
		if err := os.WriteFile(outFile, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outFile, err)
		}
		fmt.Printf("\nWrote %d bytes to %s\n", len(data), outFile)
	}

	if !interactive && funcName == "" {
		return nil
	}
	if !d.runnable {
		return fmt.Errorf("demo %q uses features the bundled engine cannot execute; use -o to inspect the binary", d.name)
	}

	if interactive {
		return runInteractive(d.name, data)
	}
	return callExport(data, funcName, argsStr)
}

func printSummary(name string, mod *wasm.Module, encoded int) {
	fmt.Println(summaryTitleStyle.Render("wasm-emit") + " " + name)
	row := func(label string, v int) {
		if v > 0 {
			fmt.Printf("  %s %s\n",
				labelStyle.Render(fmt.Sprintf("%-10s", label)),
				valueStyle.Render(strconv.Itoa(v)))
		}
	}
	row("types", len(mod.Types))
	row("imports", len(mod.Imports))
	row("funcs", len(mod.Funcs))
	row("globals", len(mod.Globals))
	row("exports", len(mod.Exports))
	row("elements", len(mod.Elements))
	row("data", len(mod.Data))
	if len(mod.Memories) > 0 {
		row("mem pages", int(mod.Memories[0].Min))
	}
	row("bytes", encoded)
}

func callExport(data []byte, funcName, argsStr string) error {
	ctx := context.Background()

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	inst, err := r.Instantiate(ctx, data)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}

	fn := inst.ExportedFunction(funcName)
	if fn == nil {
		return fmt.Errorf("no exported function %q", funcName)
	}

	params := fn.Definition().ParamTypes()
	var raw []string
	if argsStr != "" {
		raw = strings.Split(argsStr, ",")
	}
	if len(raw) != len(params) {
		return fmt.Errorf("%s takes %d arguments, got %d", funcName, len(params), len(raw))
	}

	args := make([]uint64, len(raw))
	for i, s := range raw {
		v, err := parseArg(strings.TrimSpace(s), params[i])
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}

	fmt.Printf("%s(%s) = %s\n", funcName, argsStr,
		formatResults(results, fn.Definition().ResultTypes()))
	return nil
}

func parseArg(s string, t api.ValueType) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		v, err := strconv.ParseInt(s, 10, 32)
		return api.EncodeI32(int32(v)), err
	case api.ValueTypeI64:
		v, err := strconv.ParseInt(s, 10, 64)
		return api.EncodeI64(v), err
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		return api.EncodeF32(float32(v)), err
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(s, 64)
		return api.EncodeF64(v), err
	}
	return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
}

func formatResults(results []uint64, types []api.ValueType) string {
	if len(results) == 0 {
		return "()"
	}
	parts := make([]string, len(results))
	for i, r := range results {
		var t api.ValueType
		if i < len(types) {
			t = types[i]
		}
		parts[i] = formatValue(r, t)
	}
	return strings.Join(parts, ", ")
}

func formatValue(r uint64, t api.ValueType) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(r)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(r), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(r)), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(api.DecodeF64(r), 'g', -1, 64)
	}
	return strconv.FormatUint(r, 10)
}
