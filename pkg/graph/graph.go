package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/netgrid/pkg/netlist"
)

// =============================================================================
// Netlist Serialization API
// =============================================================================

// MarshalNetlist converts a netlist to indented JSON bytes.
func MarshalNetlist(nl *netlist.Netlist) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteNetlist(nl, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteNetlist writes a netlist as JSON to an io.Writer.
func WriteNetlist(nl *netlist.Netlist, w io.Writer) error {
	return encode(w, FromNetlist(nl))
}

// ReadNetlistFile reads a JSON file and returns the validated netlist.
func ReadNetlistFile(path string) (*netlist.Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNetlist(f)
}

// ReadNetlist decodes a JSON netlist and builds it.
func ReadNetlist(r io.Reader) (*netlist.Netlist, error) {
	var data Netlist
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToNetlist(data)
}

// UnmarshalNetlist decodes JSON bytes without building the arena form.
func UnmarshalNetlist(data []byte) (Netlist, error) {
	var n Netlist
	if err := json.Unmarshal(data, &n); err != nil {
		return Netlist{}, fmt.Errorf("decode: %w", err)
	}
	return n, nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout converts a layout to indented JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes JSON bytes into a layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}

// WriteLayout writes a layout as JSON to an io.Writer.
func WriteLayout(l Layout, w io.Writer) error {
	return encode(w, l)
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(l, f)
}

// ReadLayoutFile reads a layout JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
