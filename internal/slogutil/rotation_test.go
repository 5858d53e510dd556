package slogutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"invalid", 0},
		{"100", 100},
		{"100B", 100},
		{"1kb", 1024},
		{"10KB", 10240},
		{"10MB", 10 * 1024 * 1024},
		{" 1GB ", 1024 * 1024 * 1024},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
		{"inf", 0},
		{"-5MB", 0},
		{"MB", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sebot.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}

	line := append(bytes.Repeat([]byte("a"), 29), '\n')
	for i := 0; i < 7; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("%s should exist: %v", p, err)
		}
		if info.Size() > 50 {
			t.Errorf("%s is %d bytes, over the limit", p, info.Size())
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two backups should be kept")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sebot.log")

	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 3; i++ {
		if _, err := rf.Write([]byte("12345678\n")); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup expected when maxBackups is 0")
	}
}

func TestRotatingFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sebot.log")
	if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rf, err := OpenRotatingFile(path, 1<<20, 1)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	if _, err := rf.Write([]byte("next\n")); err != nil {
		t.Fatal(err)
	}
	rf.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "existing\nnext\n" {
		t.Errorf("content = %q", data)
	}
}

func TestOpenRotatingFile_NeedsLimit(t *testing.T) {
	if _, err := OpenRotatingFile(filepath.Join(t.TempDir(), "sebot.log"), 0, 1); err == nil {
		t.Error("expected an error for a zero size limit")
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := OpenRotatingFile(filepath.Join(t.TempDir(), "sebot.log"), 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	rf.Close()
	if _, err := rf.Write([]byte("late\n")); err == nil {
		t.Error("expected an error writing to a closed file")
	}
}
