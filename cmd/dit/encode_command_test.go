package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeCode(t *testing.T) {
	out, err := runCLI(t, []string{"encode", "--code", "SOS", "cq"}, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(out) != "... --- ... / -.-. --.-" {
		t.Fatalf("unexpected code line %q", out)
	}
}

func TestEncodeTerminal(t *testing.T) {
	out, err := runCLI(t, []string{"encode", "e t!"}, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	requireContains(t, lines[0], "e : ▪")
	requireContains(t, lines[1], "(space)")
	requireContains(t, lines[2], "t : ▬")
	requireContains(t, lines[3], "(not supported)")
}

func TestEncodeJSONFromStdin(t *testing.T) {
	out, err := runCLI(t, []string{"encode", "--json"}, "SOS\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var resp struct {
		OK   bool   `json:"ok"`
		Text string `json:"text"`
		Code string `json:"code"`
		Rows []struct {
			Kind string `json:"kind"`
		} `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if !resp.OK || resp.Text != "SOS" || resp.Code != "... --- ..." || len(resp.Rows) != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestEncodeHTMLEscapes(t *testing.T) {
	out, err := runCLI(t, []string{"encode", "--html", "<"}, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	requireContains(t, out, "<b>&lt;</b>")
}

func TestEncodeRejectsMultipleFormats(t *testing.T) {
	if _, err := runCLI(t, []string{"encode", "--html", "--json", "x"}, ""); err == nil {
		t.Fatal("expected error for conflicting flags")
	}
}
