package extract

import (
	"context"
	"errors"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"report.pdf", true},
		{"notes.txt", true},
		{"data.csv", true},
		{"sheet.xlsx", true},
		{"legacy.xls", true},
		{"scan.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"archive.zip", false},
		{"presentation.pptx", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := Supported(tt.filename); got != tt.want {
				t.Errorf("Supported(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract(context.Background(), "archive.zip", []byte("data"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Extract unsupported: err = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	content := []byte("Hello world.\nSecond line.")

	result, err := Extract(context.Background(), "notes.txt", content)
	if err != nil {
		t.Fatalf("Extract() err = %v", err)
	}
	if result.Text != "Hello world.\nSecond line." {
		t.Errorf("Text = %q, want raw content", result.Text)
	}
	if result.FileType != ".txt" {
		t.Errorf("FileType = %q, want .txt", result.FileType)
	}
	if result.FileSize != int64(len(content)) {
		t.Errorf("FileSize = %d, want %d", result.FileSize, len(content))
	}
	if result.RequiresOCR {
		t.Error("RequiresOCR = true, want false for text")
	}
	if len(result.Hash) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(result.Hash))
	}
}

func TestExtractImageFlagsOCR(t *testing.T) {
	result, err := Extract(context.Background(), "scan.png", []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("Extract() err = %v", err)
	}
	if !result.RequiresOCR {
		t.Error("RequiresOCR = false, want true for images")
	}
	if result.Text != "" {
		t.Errorf("Text = %q, want empty for images", result.Text)
	}
}

func TestExtractHashDeterministic(t *testing.T) {
	content := []byte("identical content")
	first, err := Extract(context.Background(), "a.txt", content)
	if err != nil {
		t.Fatalf("Extract() err = %v", err)
	}
	second, err := Extract(context.Background(), "b.txt", content)
	if err != nil {
		t.Fatalf("Extract() err = %v", err)
	}
	if first.Hash != second.Hash {
		t.Errorf("hashes differ for identical content: %s vs %s", first.Hash, second.Hash)
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "simple rows",
			content: "name,age\nAlice,30\nBob,25\n",
			want:    "name,age\nAlice,30\nBob,25\n",
		},
		{
			name:    "empty rows skipped",
			content: "a,b\n,\n ,  \nc,d\n",
			want:    "a,b\nc,d\n",
		},
		{
			name:    "fields with commas requoted",
			content: "name,address\nAlice,\"1 Main St, Springfield\"\n",
			want:    "name,address\nAlice,\"1 Main St, Springfield\"\n",
		},
		{
			name:    "ragged rows kept",
			content: "a,b,c\nd,e\nf\n",
			want:    "a,b,c\nd,e\nf\n",
		},
		{
			name:    "missing trailing newline added",
			content: "a,b",
			want:    "a,b\n",
		},
		{
			name:    "empty input",
			content: "",
			wantErr: true,
		},
		{
			name:    "only blank rows",
			content: ",\n,,\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV([]byte(tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCSV() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCSV() err = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ParseCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}
