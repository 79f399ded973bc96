package preprocess

import (
	"strings"
	"testing"
)

const cardSource = `import React, { useState } from 'react';
import {
  Button,
  Icon,
} from "@acme/ui";
import './card.css';
import styled from 'styled-components';

const label = "export default nothing";

export default function Card({ title, link }) {
  return (
    <div>
      <a href={link}>{title}</a>
      <a href="/about">About</a>
      <a href="#top">Top</a>
    </div>
  );
}
`

func TestProcess(t *testing.T) {
	res := Process(cardSource)

	if res.ExportName != "Card" || !res.Detected {
		t.Errorf("ExportName = %q, Detected = %v", res.ExportName, res.Detected)
	}

	mustContain := []string{
		"function __studioNavigate(event, to) {",
		"// studio: removed import: import React, { useState } from 'react';",
		`// studio: removed import: import { Button, Icon, } from "@acme/ui";`,
		"import './card.css';",
		"import styled from 'styled-components';",
		"function Card({ title, link }) {",
		`<a href="#" data-href={link} onClick={(event) => __studioNavigate(event, link)}>`,
		`<a href="#" data-href={"/about"} onClick={(event) => __studioNavigate(event, "/about")}>`,
		`<a href="#top">`,
		`const label = "export default nothing";`,
	}
	for _, want := range mustContain {
		if !strings.Contains(res.Text, want) {
			t.Errorf("missing %q in:\n%s", want, res.Text)
		}
	}
	if strings.Contains(res.Text, "export default function") {
		t.Error("export keyword not stripped")
	}

	shimAt := strings.Index(res.Text, "function __studioNavigate")
	labelAt := strings.Index(res.Text, "const label")
	cardAt := strings.Index(res.Text, "function Card")
	if shimAt < labelAt || shimAt > cardAt {
		t.Errorf("shim should sit right before the component declaration")
	}
}

func TestExportForms(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		export   string
		detected bool
		contains string
	}{
		{
			name:     "named at bottom",
			src:      "const Hero = () => <h1>x</h1>;\nexport default Hero;\n",
			export:   "Hero",
			detected: true,
			contains: "const Hero = () =>",
		},
		{
			name:     "anonymous arrow",
			src:      "export default (props) => <p>{props.x}</p>;\n",
			export:   "Component",
			detected: true,
			contains: "const Component = (props) =>",
		},
		{
			name:     "anonymous function",
			src:      "export default function (props) { return null; }\n",
			export:   "Component",
			detected: true,
			contains: "const Component = function (props)",
		},
		{
			name:     "export list alias",
			src:      "function Banner() { return null; }\nexport { Banner as default };\n",
			export:   "Banner",
			detected: true,
			contains: "function Banner()",
		},
		{
			name:     "named exports only",
			src:      "export const Tile = () => null;\nexport function helper() {}\n",
			export:   "Component",
			detected: false,
			contains: "const Tile = () => null;\nfunction helper() {}",
		},
		{
			name:     "nothing",
			src:      "const x = 1;",
			export:   "Component",
			detected: false,
			contains: "const x = 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Process(tt.src)
			if res.ExportName != tt.export || res.Detected != tt.detected {
				t.Errorf("Process() export = %q/%v, want %q/%v", res.ExportName, res.Detected, tt.export, tt.detected)
			}
			if !strings.Contains(res.Text, tt.contains) {
				t.Errorf("missing %q in:\n%s", tt.contains, res.Text)
			}
			if strings.Contains(res.Text, "export ") && !strings.Contains(res.Text, "default export") {
				t.Errorf("export keyword left in:\n%s", res.Text)
			}
		})
	}
}

func TestProcessNoOps(t *testing.T) {
	src := "const x = 1;\n"
	res := Process(src)
	if res.Text != src {
		t.Errorf("Process() changed text without patterns:\n%s", res.Text)
	}
	if len(res.Rewrites) != 0 {
		t.Errorf("Rewrites = %v", res.Rewrites)
	}
}

func TestProcessStable(t *testing.T) {
	once := Process(cardSource).Text
	twice := Process(once).Text
	if once != twice {
		t.Errorf("second pass changed text:\n%s", twice)
	}
}

func TestIsStyleImport(t *testing.T) {
	tests := map[string]bool{
		"./a.css":           true,
		"./a.module.scss":   true,
		"x.less?inline":     true,
		"styled-components": true,
		"@emotion/react":    true,
		"tailwindcss/base":  true,
		"react":             false,
		"./utils.js":        false,
		"./csstools":        false,
	}
	for spec, want := range tests {
		if got := IsStyleImport(spec); got != want {
			t.Errorf("IsStyleImport(%q) = %v, want %v", spec, got, want)
		}
	}
}

func TestSourceLineSkipsShim(t *testing.T) {
	src := "import {\n  a,\n} from 'x';\n\nfunction Card() {\n  return oops;\n}\n"
	res := Process(src)
	if res.ShimLine != 5 {
		t.Fatalf("ShimLine = %d, want 5", res.ShimLine)
	}
	lines := strings.Split(res.Text, "\n")
	var at int
	for i, l := range lines {
		if strings.Contains(l, "return oops") {
			at = i + 1
		}
	}
	if got := res.SourceLine(at); got != 6 {
		t.Errorf("SourceLine(%d) = %d, want 6", at, got)
	}
	if got := res.SourceLine(2); got != 2 {
		t.Errorf("SourceLine(2) = %d, want 2", got)
	}
}
