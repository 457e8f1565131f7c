package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/contract-sdk/bindgen"
	"github.com/wippyai/contract-sdk/spec"
	"github.com/wippyai/contract-sdk/vm"
)

func main() {
	var (
		specFile    = flag.String("spec", "", "Path to a serialized interface specification")
		wasmFile    = flag.String("wasm", "", "Path to a contract wasm file with an embedded specification")
		list        = flag.Bool("list", false, "List specification entries and exit")
		genOut      = flag.String("gen", "", "Generate Go bindings into this file")
		genPkg      = flag.String("pkg", "bindings", "Package name for generated bindings")
		interactive = flag.Bool("i", false, "Interactive specification browser")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *specFile == "" && *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: spectool -spec <file> | -wasm <file.wasm> [-list] [-gen out.go -pkg name] [-i]")
		os.Exit(1)
	}

	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			vm.SetLogger(l)
		}
	}

	if err := run(*specFile, *wasmFile, *list, *genOut, *genPkg, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(specFile, wasmFile string, list bool, genOut, genPkg string, interactive bool) error {
	s, source, err := loadSpec(specFile, wasmFile)
	if err != nil {
		return err
	}

	if interactive {
		return runInteractive(s, source)
	}
	if genOut != "" {
		src, err := bindgen.Generate(s, bindgen.Options{Package: genPkg})
		if err != nil {
			return err
		}
		if err := os.WriteFile(genOut, src, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d bytes)\n", genOut, len(src))
		return nil
	}
	if list {
		printEntries(s)
		return nil
	}

	fmt.Printf("Specification: %s\n", source)
	fmt.Printf("Entries: %d (%d functions)\n", len(s.Entries()), len(s.Functions()))
	return nil
}

func loadSpec(specFile, wasmFile string) (*spec.Spec, string, error) {
	if specFile != "" {
		data, err := os.ReadFile(specFile)
		if err != nil {
			return nil, "", fmt.Errorf("read spec: %w", err)
		}
		s, err := spec.Decode(data)
		if err != nil {
			return nil, "", err
		}
		return s, specFile, nil
	}

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, "", fmt.Errorf("read wasm: %w", err)
	}
	blob, err := vm.ReadSpecSection(data)
	if err != nil {
		return nil, "", err
	}
	s, err := spec.Decode(blob)
	if err != nil {
		return nil, "", err
	}
	return s, wasmFile, nil
}

func printEntries(s *spec.Spec) {
	for _, e := range s.Entries() {
		switch e := e.(type) {
		case spec.FunctionEntry:
			fmt.Printf("fn      %s\n", spec.Signature(e))
		case spec.StructEntry:
			fmt.Printf("struct  %s (%d fields)\n", e.Name, len(e.Fields))
		case spec.UnionEntry:
			fmt.Printf("union   %s (%d cases)\n", e.Name, len(e.Cases))
		case spec.EnumEntry:
			fmt.Printf("enum    %s (%d cases)\n", e.Name, len(e.Cases))
		case spec.ErrorEnumEntry:
			fmt.Printf("error   %s (%d cases)\n", e.Name, len(e.Cases))
		}
	}
}
