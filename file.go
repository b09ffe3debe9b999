package piston

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Encodings understood by Piston for File.Content.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
	EncodingHex    = "hex"
)

// File is a single source file sent with an execution request.
//
// Name and Encoding are optional; empty values are left out of the request body and
// Piston falls back to its own defaults (a generated name, utf8).
type File struct {
	Name     string `json:"name,omitempty"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

// NewFile returns a File with the given name and content.
func NewFile(name, content string) File {
	return File{Name: name, Content: content}
}

// LoadFile reads the file at path into a File named after its base name.
// Content that is not valid UTF-8 is base64-encoded.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("piston: loading file %s: %w", path, err)
	}

	f := File{Name: filepath.Base(path)}
	if utf8.Valid(data) {
		f.Content = string(data)
		f.Encoding = EncodingUTF8
	} else {
		f.Content = base64.StdEncoding.EncodeToString(data)
		f.Encoding = EncodingBase64
	}
	return f, nil
}

func (f File) SetName(name string) File {
	f.Name = name
	return f
}

func (f File) SetContent(content string) File {
	f.Content = content
	return f
}

func (f File) SetEncoding(encoding string) File {
	f.Encoding = encoding
	return f
}
