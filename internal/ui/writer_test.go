package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{
			name:   "labelled",
			blocks: []Block{{Label: "Hiragana", Value: "ねこ"}},
			want:   "<p><strong>Hiragana:</strong> ねこ</p>\n",
		},
		{
			name:   "error",
			blocks: []Block{{Label: "Error", Value: "Texto vacío", Error: true}},
			want:   "<p style=\"color: red;\"><strong>Error:</strong> Texto vacío</p>\n",
		},
		{
			name:   "unlabelled error",
			blocks: []Block{{Value: MsgAudioExpired, Error: true}},
			want:   "<p style=\"color: red;\">" + MsgAudioExpired + "</p>\n",
		},
		{
			name:   "escaped",
			blocks: []Block{{Label: "Traducción", Value: "<b>hola</b>"}},
			want:   "<p><strong>Traducción:</strong> &lt;b&gt;hola&lt;/b&gt;</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderHTML(tt.blocks); got != tt.want {
				t.Errorf("RenderHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	got := RenderText([]Block{
		{Label: "Romanji", Value: "neko"},
		{Value: "oops", Error: true},
	})
	want := "Romanji: neko\n! oops\n"
	if got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
}

func TestWriterView(t *testing.T) {
	var out, errOut bytes.Buffer
	v, err := NewWriterView("ねこ", &out, &errOut, "")
	if err != nil {
		t.Fatalf("NewWriterView failed: %v", err)
	}

	if v.Text() != "ねこ" {
		t.Errorf("Text() = %q", v.Text())
	}

	v.Alert(MsgEmptyInput)
	if !strings.Contains(errOut.String(), MsgEmptyInput) {
		t.Errorf("alert not written: %q", errOut.String())
	}

	v.SetOutput([]Block{{Label: "Hiragana", Value: "ねこ"}})
	v.AppendOutput(Block{Value: "extra", Error: true})

	if len(v.Blocks()) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(v.Blocks()))
	}
	if out.String() != "Hiragana: ねこ\n! extra\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNewWriterViewFormat(t *testing.T) {
	var out bytes.Buffer
	if _, err := NewWriterView("", &out, &out, "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}

	v, err := NewWriterView("", &out, &out, FormatHTML)
	if err != nil {
		t.Fatalf("NewWriterView failed: %v", err)
	}
	v.SetOutput([]Block{{Label: "Romanji", Value: "neko"}})
	if out.String() != "<p><strong>Romanji:</strong> neko</p>\n" {
		t.Errorf("unexpected html output %q", out.String())
	}
}
