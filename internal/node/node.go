// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package node implements the escape-stuffed node-tree binary framing shared
// by the OTB item database and the OTBM world map formats.
package node

import (
	"bytes"
	"errors"
	"fmt"
)

// Framing byte values that control node structure on the wire.
const (
	markerEscape byte = 0xFD
	markerStart  byte = 0xFE
	markerEnd    byte = 0xFF
)

// Errors returned by the codec. Writers treat these as programmer bugs
// (the caller built an inconsistent tree); readers treat them as a reason
// to abort the current file and let the pipeline continue with the next one.
var (
	ErrBadFraming     = errors.New("node: truncated stream")
	ErrUnbalancedClose = errors.New("node: unbalanced close marker")
	ErrBadEscape      = errors.New("node: escape byte at end of stream")
)

// Node is one element of the logical node tree: a tag byte, a raw payload,
// and an ordered list of children.
type Node struct {
	Tag      byte
	Payload  []byte
	Children []*Node
}

// New returns a Node with the given tag and payload and no children.
func New(tag byte, payload []byte) *Node {
	return &Node{Tag: tag, Payload: payload}
}

// Add appends a child node and returns the parent for chaining.
func (n *Node) Add(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// Encoder builds an escape-stuffed byte stream from a Node tree.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns a ready-to-use Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated output.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// WriteRaw writes bytes with no escaping, for file-level framing such as the
// OTB 4-byte zero prefix or the OTBM "OTBM" magic.
func (e *Encoder) WriteRaw(b []byte) {
	e.buf.Write(b)
}

// writeByte writes a single payload byte, escaping it per the universal rule:
// any of {0xFD, 0xFE, 0xFF} is preceded by 0xFD.
func (e *Encoder) writeByte(b byte) {
	if b == markerEscape || b == markerStart || b == markerEnd {
		e.buf.WriteByte(markerEscape)
	}
	e.buf.WriteByte(b)
}

// WriteByte writes a single escape-encoded payload byte. Exported for
// callers that need to write a lone tag or flag byte outside of a
// multi-byte field.
func (e *Encoder) WriteByte(b byte) {
	e.writeByte(b)
}

// WriteUint16 writes a little-endian u16, escape-encoded byte by byte.
func (e *Encoder) WriteUint16(v uint16) {
	e.writeByte(byte(v))
	e.writeByte(byte(v >> 8))
}

// WriteUint32 writes a little-endian u32, escape-encoded byte by byte.
func (e *Encoder) WriteUint32(v uint32) {
	e.writeByte(byte(v))
	e.writeByte(byte(v >> 8))
	e.writeByte(byte(v >> 16))
	e.writeByte(byte(v >> 24))
}

// WriteBytes escape-encodes each byte of b in turn, with no length prefix.
func (e *Encoder) WriteBytes(b []byte) {
	for _, c := range b {
		e.writeByte(c)
	}
}

// WriteString writes an unescaped-length-prefixed, escape-encoded string:
// the u16 length is the raw byte count of s, written through the same
// escape rule as everything else, followed by the escape-encoded bytes.
func (e *Encoder) WriteString(s []byte) {
	e.WriteUint16(uint16(len(s)))
	e.WriteBytes(s)
}

// StartNode opens a child node: an unescaped 0xFE marker followed by the
// escape-encoded tag byte (the tag is payload like any other byte — the
// writer does not special-case it).
func (e *Encoder) StartNode(tag byte) {
	e.buf.WriteByte(markerStart)
	e.writeByte(tag)
}

// EndNode closes the currently open node with an unescaped 0xFF marker.
func (e *Encoder) EndNode() {
	e.buf.WriteByte(markerEnd)
}

// Write emits n (and its children, recursively) as nested nodes.
func (e *Encoder) Write(n *Node) {
	e.StartNode(n.Tag)
	e.WriteBytes(n.Payload)
	for _, child := range n.Children {
		e.Write(child)
	}
	e.EndNode()
}

// Decoder parses an escape-stuffed node stream back into a Node tree.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder wraps data for decoding starting at offset pos.
func NewDecoder(data []byte, pos int) *Decoder {
	return &Decoder{data: data, pos: pos}
}

// Pos returns the current read offset.
func (d *Decoder) Pos() int {
	return d.pos
}

// SkipRaw advances the read position by n bytes with no escape handling,
// for reading unescaped file-level framing (magic bytes, zero prefixes).
func (d *Decoder) SkipRaw(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, ErrBadFraming
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readRawByte returns the next byte with escape handling collapsed: 0xFD
// means "the following byte is literal payload, not a marker". Markers
// (0xFE / 0xFF) are returned with isMarker=true plus the marker value.
func (d *Decoder) readRawByte() (b byte, isMarker bool, err error) {
	if d.pos >= len(d.data) {
		return 0, false, ErrBadFraming
	}
	c := d.data[d.pos]
	d.pos++
	switch c {
	case markerEscape:
		if d.pos >= len(d.data) {
			return 0, false, ErrBadEscape
		}
		lit := d.data[d.pos]
		d.pos++
		return lit, false, nil
	case markerStart, markerEnd:
		return c, true, nil
	default:
		return c, false, nil
	}
}

// ReadByte reads one escape-decoded payload byte. It is an error to call
// this when the next token is actually a node marker; use PeekMarker first
// when traversing a tree.
func (d *Decoder) ReadByte() (byte, error) {
	b, isMarker, err := d.readRawByte()
	switch {
	case err != nil:
		return 0, err
	case isMarker:
		return 0, fmt.Errorf("node: expected payload byte, got marker 0x%02X", b)
	}
	return b, nil
}

// ReadUint16 reads a little-endian escape-decoded u16.
func (d *Decoder) ReadUint16() (uint16, error) {
	lo, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	hi, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// ReadUint32 reads a little-endian escape-decoded u32.
func (d *Decoder) ReadUint32() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := d.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * i)
	}
	return v, nil
}

// ReadBytes reads n escape-decoded payload bytes.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		b, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// ReadString reads an unescaped-length-prefixed, escape-decoded string.
func (d *Decoder) ReadString() ([]byte, error) {
	n, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	return d.ReadBytes(int(n))
}

// AtEnd reports whether the decoder has consumed the entire buffer.
func (d *Decoder) AtEnd() bool {
	return d.pos >= len(d.data)
}

// OpenNode expects and consumes a start-of-node marker, returning the
// node's escape-decoded tag byte.
func (d *Decoder) OpenNode() (tag byte, err error) {
	marker, isMarker, err := d.readRawByte()
	switch {
	case err != nil:
		return 0, err
	case !isMarker || marker != markerStart:
		return 0, fmt.Errorf("node: expected start-of-node marker, got 0x%02X", marker)
	}
	return d.ReadByte()
}

// CloseNode expects and consumes an end-of-node marker. It returns
// ErrUnbalancedClose when the next token is not an end-of-node marker. The
// Decoder does not track nesting depth, so an end marker with no node open
// is accepted without error.
func (d *Decoder) CloseNode() error {
	marker, isMarker, err := d.readRawByte()
	switch {
	case err != nil:
		return err
	case !isMarker || marker != markerEnd:
		return ErrUnbalancedClose
	}
	return nil
}

// PeekIsStart reports whether the next token (without consuming it) is a
// start-of-node marker, as opposed to an end-of-node marker or end of input.
// It is used to decide whether to recurse into another child or stop.
func (d *Decoder) PeekIsStart() bool {
	if d.pos >= len(d.data) {
		return false
	}
	return d.data[d.pos] == markerStart
}

// PeekIsEnd reports whether the next token is an end-of-node marker.
func (d *Decoder) PeekIsEnd() bool {
	if d.pos >= len(d.data) {
		return false
	}
	return d.data[d.pos] == markerEnd
}
