// Package riff serializes declaratively described records into the
// tagged-chunk layout used by RIFF files.
package riff

import (
	"errors"
	"fmt"

	"camrec/pkg/avi/bitio"
)

// Errors.
var (
	ErrNoFields         = errors.New("descriptor without field list")
	ErrUnknownFieldType = errors.New("unknown field type")
)

// FieldType selects the encoding of a single field.
type FieldType int

// Field types.
const (
	// FieldByte is a fixed 1-byte value.
	FieldByte FieldType = iota + 1

	// FieldChars is a run of ASCII bytes, length implied by the value.
	FieldChars

	// FieldUint16 is a 2-byte little-endian value.
	FieldUint16

	// FieldUint16BE is a 2-byte big-endian value.
	FieldUint16BE

	// FieldUint32 is a 4-byte little-endian value.
	FieldUint32

	// FieldRaw is a run of opaque bytes appended verbatim.
	FieldRaw

	// FieldNested is a record serialized recursively in place.
	FieldNested

	// FieldArray is a sequence of records serialized without separators.
	FieldArray

	// FieldBorrowed is an externally owned byte slice. The slice is not
	// copied into the descriptor; it is written to the sink exactly once
	// during Marshal.
	FieldBorrowed
)

// Field is a single typed field of a record.
type Field struct {
	Type  FieldType
	Val   uint32
	Chars string
	Bytes []byte
	Desc  *Descriptor
	Descs []*Descriptor
}

// Byte returns a fixed 1-byte field.
func Byte(v byte) Field {
	return Field{Type: FieldByte, Val: uint32(v)}
}

// Chars returns an ASCII character field.
func Chars(v string) Field {
	return Field{Type: FieldChars, Chars: v}
}

// Uint16 returns a 2-byte little-endian field.
func Uint16(v uint16) Field {
	return Field{Type: FieldUint16, Val: uint32(v)}
}

// Uint16BE returns a 2-byte big-endian field.
func Uint16BE(v uint16) Field {
	return Field{Type: FieldUint16BE, Val: uint32(v)}
}

// Uint32 returns a 4-byte little-endian field.
func Uint32(v uint32) Field {
	return Field{Type: FieldUint32, Val: v}
}

// Raw returns an opaque byte field.
func Raw(v []byte) Field {
	return Field{Type: FieldRaw, Bytes: v}
}

// Nested returns a nested record field.
func Nested(d *Descriptor) Field {
	return Field{Type: FieldNested, Desc: d}
}

// Array returns a record sequence field.
func Array(ds ...*Descriptor) Field {
	return Field{Type: FieldArray, Descs: ds}
}

// Borrowed returns a field referencing an externally owned buffer.
func Borrowed(v []byte) Field {
	return Field{Type: FieldBorrowed, Bytes: v}
}

// Descriptor is an ordered list of typed fields describing one record.
type Descriptor struct {
	Fields []Field
}

// Define returns a descriptor with the given field order.
func Define(fields ...Field) *Descriptor {
	return &Descriptor{Fields: fields}
}

// Size returns the exact serialized size in bytes including nested records.
func (d *Descriptor) Size() int {
	var total int
	for _, f := range d.Fields {
		switch f.Type {
		case FieldByte:
			total++
		case FieldUint16, FieldUint16BE:
			total += 2
		case FieldUint32:
			total += 4
		case FieldChars:
			total += len(f.Chars)
		case FieldRaw, FieldBorrowed:
			total += len(f.Bytes)
		case FieldNested:
			total += f.Desc.Size()
		case FieldArray:
			for _, e := range f.Descs {
				total += e.Size()
			}
		}
	}
	return total
}

// Validate checks the whole descriptor tree for malformed fields. A
// failure here is a programming error in the caller, not bad input.
func (d *Descriptor) Validate() error {
	if d.Fields == nil {
		return ErrNoFields
	}
	for i, f := range d.Fields {
		switch f.Type {
		case FieldByte, FieldChars, FieldUint16, FieldUint16BE,
			FieldUint32, FieldRaw, FieldBorrowed:
		case FieldNested:
			if err := f.Desc.Validate(); err != nil {
				return fmt.Errorf("field %d: %w", i, err)
			}
		case FieldArray:
			for j, e := range f.Descs {
				if err := e.Validate(); err != nil {
					return fmt.Errorf("field %d element %d: %w", i, j, err)
				}
			}
		default:
			return fmt.Errorf("field %d: %w: %d", i, ErrUnknownFieldType, f.Type)
		}
	}
	return nil
}

// Marshal record to writer. Serialization is a pure function of the field
// values, borrowed buffers are written without an intermediate copy.
func (d *Descriptor) Marshal(w *bitio.Writer) error {
	if d.Fields == nil {
		return ErrNoFields
	}
	for i, f := range d.Fields {
		switch f.Type {
		case FieldByte:
			w.TryWriteByte(byte(f.Val))
		case FieldChars:
			w.TryWrite([]byte(f.Chars))
		case FieldUint16:
			w.TryWriteUint16(uint16(f.Val))
		case FieldUint16BE:
			w.TryWriteUint16BE(uint16(f.Val))
		case FieldUint32:
			w.TryWriteUint32(f.Val)
		case FieldRaw, FieldBorrowed:
			w.TryWrite(f.Bytes)
		case FieldNested:
			if err := f.Desc.Marshal(w); err != nil {
				return err
			}
		case FieldArray:
			for _, e := range f.Descs {
				if err := e.Marshal(w); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("field %d: %w: %d", i, ErrUnknownFieldType, f.Type)
		}
		if w.TryError != nil {
			return w.TryError
		}
	}
	return nil
}
