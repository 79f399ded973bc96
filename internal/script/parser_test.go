package script

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseDesugarsMarkup(t *testing.T) {
	prog, err := Parse(`const el = <div className="a" {...rest}><Card.Title /></div>;`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	decl := prog.Body[0].(*VarDecl)
	call, ok := decl.Decls[0].Init.(*CallExpr)
	if !ok {
		t.Fatalf("init = %T, want *CallExpr", decl.Decls[0].Init)
	}
	if id := call.Callee.(*Ident); id.Name != ElementFactory {
		t.Errorf("callee = %s, want %s", id.Name, ElementFactory)
	}
	if tag := call.Args[0].(*StringLit); tag.Value != "div" {
		t.Errorf("tag = %q, want div", tag.Value)
	}
	props := call.Args[1].(*ObjectLit)
	if len(props.Props) != 2 || !props.Props[1].Spread {
		t.Errorf("props = %+v, want className and a spread", props.Props)
	}
	child := call.Args[2].(*CallExpr)
	if _, ok := child.Args[0].(*MemberExpr); !ok {
		t.Errorf("component tag = %T, want *MemberExpr", child.Args[0])
	}
	if _, ok := child.Args[1].(*NullLit); !ok {
		t.Errorf("props of attribute-less element = %T, want *NullLit", child.Args[1])
	}
}

func TestParseComponentNames(t *testing.T) {
	src := `
function helper() {}
function Hero() { return null; }
const Card = ({ title }) => <h2>{title}</h2>;
const Wrapped = memo(function () { return null; });
const LIMIT = 3;
`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := prog.ComponentNames(), []string{"Hero", "Card", "Wrapped"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ComponentNames() = %v, want %v", got, want)
	}
}

func TestParseExportDefault(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{src: `export default function Hero() { return null; }`, want: "Hero"},
		{src: "function Hero() { return null; }\nexport default Hero;", want: "Hero"},
		{src: `export default () => null;`, want: "Component"},
		{src: "const A = () => null;\nexport { A as default };", want: "A"},
	}
	for _, tt := range tests {
		prog, err := Parse(tt.src)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.src, err)
			continue
		}
		if prog.DefaultExport != tt.want {
			t.Errorf("Parse(%q).DefaultExport = %q, want %q", tt.src, prog.DefaultExport, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{name: "unterminated element", src: "function A() {\n  return <div>;\n}", line: 2},
		{name: "mismatched close", src: "const a = <b></i>;", line: 1},
		{name: "class", src: "\n\nclass A {}", line: 3},
		{name: "missing paren", src: "function (", line: 1},
		{name: "bigint", src: "const n = 10n;", line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if syn.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", syn.Line, tt.line, syn)
			}
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	src := "const x = "
	for i := 0; i < maxNesting+10; i++ {
		src += "["
	}
	if _, err := Parse(src); err == nil {
		t.Fatal("expected nesting error")
	}
}

func TestParseImportsAreSkipped(t *testing.T) {
	src := "import React, { useState } from 'react';\nimport './card.css';\nconst a = 1;"
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := prog.Body[len(prog.Body)-1].(*VarDecl); !ok {
		t.Errorf("last statement = %T, want *VarDecl", prog.Body[len(prog.Body)-1])
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "  hello  ", want: "  hello  "},
		{raw: "\n   Hello\n   world\n  ", want: "Hello world"},
		{raw: "\n  \n", want: ""},
		{raw: "Count: ", want: "Count: "},
		{raw: " ", want: " "},
		{raw: "\t", want: " "},
	}
	for _, tt := range tests {
		if got := cleanText(tt.raw); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
