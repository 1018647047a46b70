package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	japi "github.com/reoring/japi"
	"github.com/reoring/japi/manifest"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "validate":
		validateCmd(os.Args[2:])
	case "identifier":
		identifierCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `japi CLI

Usage:
  japi validate -manifest schemas.yaml -type articles [-event post] [-require-id] doc.json
  japi identifier [-manifest schemas.yaml] doc.json
  japi schema -manifest schemas.yaml -type articles

doc.json may be "-" to read standard input. validate prints "ok" or the
JSON:API errors document and exits 1 on invalid input.`)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var manifestPath, typename, event string
	var requireID bool
	fs.StringVar(&manifestPath, "manifest", "", "YAML manifest with the schema declarations")
	fs.StringVar(&typename, "type", "", "resource type to validate against")
	fs.StringVar(&event, "event", "", "request event (get, post, patch, delete)")
	fs.BoolVar(&requireID, "require-id", false, "demand an id member, as PATCH does")
	_ = fs.Parse(args)
	if manifestPath == "" || typename == "" || fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	reg := loadRegistry(manifestPath)
	s, err := reg.Lookup(typename)
	if err != nil {
		fatalf("lookup: %v", err)
	}

	opt := japi.DeserializeOpt{RequireID: requireID}
	if event != "" {
		ev, err := japi.ParseEvent(event)
		if err != nil {
			fatalf("event: %v", err)
		}
		opt.Event = ev
	}

	ctx := japi.WithRegistry(context.Background(), reg)
	if _, _, err := s.Deserialize(ctx, readValue(fs.Arg(0)), opt); err != nil {
		printErrors(err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func identifierCmd(args []string) {
	fs := flag.NewFlagSet("identifier", flag.ExitOnError)
	var manifestPath string
	fs.StringVar(&manifestPath, "manifest", "", "YAML manifest with the schema declarations")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	reg := japi.NewRegistry()
	if manifestPath != "" {
		reg = loadRegistry(manifestPath)
	}
	rid, err := reg.EnsureIdentifier(readValue(fs.Arg(0)))
	if err != nil {
		printErrors(err)
		os.Exit(1)
	}
	out, err := japi.EncodeValue(rid)
	if err != nil {
		fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var manifestPath, typename string
	fs.StringVar(&manifestPath, "manifest", "", "YAML manifest with the schema declarations")
	fs.StringVar(&typename, "type", "", "resource type to export")
	_ = fs.Parse(args)
	if manifestPath == "" || typename == "" || fs.NArg() != 0 {
		fs.Usage()
		os.Exit(2)
	}

	f, err := os.Open(manifestPath)
	if err != nil {
		fatalf("open manifest: %v", err)
	}
	defer f.Close()
	decls, err := manifest.Parse(f)
	if err != nil {
		fatalf("parse manifest: %v", err)
	}
	schemas, err := manifest.Build(decls)
	if err != nil {
		fatalf("build manifest: %v", err)
	}
	for _, s := range schemas {
		if s.Type() != typename {
			continue
		}
		sch, err := s.JSONSchema()
		if err != nil {
			fatalf("export: %v", err)
		}
		out, err := japi.EncodeValueIndent(sch)
		if err != nil {
			fatalf("encode: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	fatalf("no schema for type %q in %s", typename, manifestPath)
}

func loadRegistry(path string) *japi.Registry {
	f, err := os.Open(path)
	if err != nil {
		fatalf("open manifest: %v", err)
	}
	defer f.Close()
	reg, err := manifest.Load(f)
	if err != nil {
		fatalf("load manifest: %v", err)
	}
	return reg
}

func readValue(path string) any {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	if err := japi.DetectDuplicateMembers(data); err != nil {
		printErrors(err)
		os.Exit(1)
	}
	v, err := japi.DecodeValue(data)
	if err != nil {
		fatalf("decode %s: %v", path, err)
	}
	return v
}

func printErrors(err error) {
	el, ok := japi.AsErrorList(err)
	if !ok {
		fatalf("%v", err)
	}
	out, merr := japi.EncodeValueIndent(map[string]any{"errors": el})
	if merr != nil {
		fatalf("encode: %v", merr)
	}
	fmt.Println(string(out))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
