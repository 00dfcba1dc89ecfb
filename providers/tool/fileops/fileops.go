// Package fileops provides the file tools: read_file, write_file,
// list_files and append_file. Paths may start with "~", which expands to the
// user's home directory; relative paths resolve against Ops.Root.
package fileops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leofalp/cascade/providers/tool"
)

// Ops resolves tool paths. The zero value resolves relative paths against
// the process working directory.
type Ops struct {
	Root string
}

// PathArgs is the input of read_file.
type PathArgs struct {
	Path string `json:"path"`
}

// WriteArgs is the input of write_file and append_file.
type WriteArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ListArgs is the input of list_files.
type ListArgs struct {
	Path string `json:"path" default:"."`
}

// Tools returns the four file tools bound to o.
func (o *Ops) Tools() []*tool.ToolDef {
	return []*tool.ToolDef{
		tool.MustNew("read_file", o.ReadFile, tool.WithDescription(`Read file contents.

Args:
    path: File to read.`)),
		tool.MustNew("write_file", o.WriteFile, tool.WithDescription(`Write content to a file, creating parent directories and replacing any existing content.

Args:
    path: Destination file.
    content: Text to write.`)),
		tool.MustNew("list_files", o.ListFiles, tool.WithDescription(`List the entries of a directory.

Args:
    path: Directory to list.`)),
		tool.MustNew("append_file", o.AppendFile, tool.WithDescription(`Append content to a file, creating it if needed.

Args:
    path: File to append to.
    content: Text to append.`)),
	}
}

// ReadFile returns the whole file as text.
func (o *Ops) ReadFile(_ context.Context, in PathArgs) (string, error) {
	path, err := o.resolve(in.Path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

// WriteFile replaces the file's content.
func (o *Ops) WriteFile(_ context.Context, in WriteArgs) (bool, error) {
	path, err := o.resolve(in.Path)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("writing file: %w", err)
	}
	if err := os.WriteFile(path, []byte(in.Content), 0o644); err != nil {
		return false, fmt.Errorf("writing file: %w", err)
	}
	return true, nil
}

// AppendFile adds content at the end of the file.
func (o *Ops) AppendFile(_ context.Context, in WriteArgs) (bool, error) {
	path, err := o.resolve(in.Path)
	if err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("appending to file: %w", err)
	}
	if _, err := f.WriteString(in.Content); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("appending to file: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("appending to file: %w", err)
	}
	return true, nil
}

// ListFiles returns the directory entries as paths joined onto in.Path,
// sorted.
func (o *Ops) ListFiles(_ context.Context, in ListArgs) ([]string, error) {
	dir := in.Path
	if dir == "" {
		dir = "."
	}
	path, err := o.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("listing directory: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(dir, e.Name()))
	}
	slices.Sort(out)
	return out, nil
}

func (o *Ops) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) && o.Root != "" {
		path = filepath.Join(o.Root, path)
	}
	return path, nil
}
