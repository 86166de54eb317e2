package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/log"
)

var logger = log.New("loaders")

// ErrInvalidPLY is returned for malformed or unsupported PLY input
var ErrInvalidPLY = errors.New("loaders: invalid PLY data")

const (
	// maxPreallocate caps slice capacity taken from header counts; larger
	// meshes grow by append as their data is actually read
	maxPreallocate = 1 << 16

	// maxListLength bounds the item count of a single list property
	maxListLength = 1 << 12
)

// PLYMesh is the geometry read from a PLY file
type PLYMesh struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    []int       // Triangle indices, 3 per triangle
}

// plyProperty is one property line of an element
type plyProperty struct {
	name     string
	dataType string // scalar type, or the item type of a list
	listType string // count type; empty for scalars
}

func (p plyProperty) isList() bool {
	return p.listType != ""
}

// plyElement is one element block, e.g. "element vertex 8"
type plyElement struct {
	name       string
	count      int
	properties []plyProperty
}

type plyHeader struct {
	format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	elements []plyElement
}

// LoadPLY reads a triangle mesh from a PLY file
func LoadPLY(filename string) (*PLYMesh, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	logger.Infof("loaded %s: %d vertices, %d triangles in %v", filename, len(mesh.Vertices), len(mesh.Faces)/3, time.Since(start))
	return mesh, nil
}

// ReadPLY parses ASCII and binary PLY data. Only vertex positions and face
// vertex lists are kept; polygons are split into triangle fans and every
// other element is skipped.
func ReadPLY(r io.Reader) (*PLYMesh, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, err
	}

	var values valueReader
	switch header.format {
	case "ascii":
		values = &asciiReader{r: reader}
	case "binary_little_endian":
		values = &binaryReader{r: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryReader{r: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPLY, header.format)
	}

	mesh := &PLYMesh{}
	for _, element := range header.elements {
		switch element.name {
		case "vertex":
			err = readVertices(values, element, mesh)
		case "face":
			err = readFaces(values, element, mesh)
		default:
			err = skipElement(values, element)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrInvalidPLY)
	}
	for _, index := range mesh.Faces {
		if index < 0 || index >= len(mesh.Vertices) {
			return nil, fmt.Errorf("%w: face index %d out of range [0, %d)", ErrInvalidPLY, index, len(mesh.Vertices))
		}
	}
	return mesh, nil
}

// parsePLYHeader consumes the header up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	first := true

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header ends before end_header", ErrInvalidPLY)
		}
		parts := strings.Fields(line)

		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: malformed format line", ErrInvalidPLY)
			}
			header.format = parts[1]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: malformed element line", ErrInvalidPLY)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrInvalidPLY, parts[2])
			}
			header.elements = append(header.elements, plyElement{name: parts[1], count: count})
		case "property":
			if len(header.elements) == 0 {
				return nil, fmt.Errorf("%w: property before any element", ErrInvalidPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			current := &header.elements[len(header.elements)-1]
			current.properties = append(current.properties, prop)
		case "end_header":
			if header.format == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidPLY)
			}
			return header, nil
		default:
			return nil, fmt.Errorf("%w: unknown header keyword %q", ErrInvalidPLY, parts[0])
		}
	}
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("%w: malformed list property", ErrInvalidPLY)
		}
		prop := plyProperty{listType: parts[1], dataType: parts[2], name: parts[3]}
		if typeSize(prop.listType) == 0 || typeSize(prop.dataType) == 0 {
			return plyProperty{}, fmt.Errorf("%w: unknown type in list %q", ErrInvalidPLY, prop.name)
		}
		return prop, nil
	}

	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("%w: malformed property", ErrInvalidPLY)
	}
	if typeSize(parts[0]) == 0 {
		return plyProperty{}, fmt.Errorf("%w: unknown type %q", ErrInvalidPLY, parts[0])
	}
	return plyProperty{dataType: parts[0], name: parts[1]}, nil
}

func readVertices(values valueReader, element plyElement, mesh *PLYMesh) error {
	position := [3]int{-1, -1, -1}
	for i, prop := range element.properties {
		switch prop.name {
		case "x":
			position[0] = i
		case "y":
			position[1] = i
		case "z":
			position[2] = i
		}
	}
	for _, index := range position {
		if index < 0 || element.properties[index].isList() {
			return fmt.Errorf("%w: vertex element needs scalar x, y and z", ErrInvalidPLY)
		}
	}

	mesh.Vertices = make([]core.Vec3, 0, min(element.count, maxPreallocate))
	scalars := make([]float64, len(element.properties))
	for v := 0; v < element.count; v++ {
		for i, prop := range element.properties {
			if prop.isList() {
				if err := skipList(values, prop); err != nil {
					return fmt.Errorf("%w: vertex %d: %v", ErrInvalidPLY, v, err)
				}
				continue
			}
			value, err := values.scalar(prop.dataType)
			if err != nil {
				return fmt.Errorf("%w: vertex %d: %v", ErrInvalidPLY, v, err)
			}
			scalars[i] = value
		}
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(scalars[position[0]], scalars[position[1]], scalars[position[2]]))
	}
	return nil
}

func readFaces(values valueReader, element plyElement, mesh *PLYMesh) error {
	mesh.Faces = make([]int, 0, 3*min(element.count, maxPreallocate))

	for f := 0; f < element.count; f++ {
		for _, prop := range element.properties {
			if !prop.isList() || (prop.name != "vertex_indices" && prop.name != "vertex_index") {
				if err := skipProperty(values, prop); err != nil {
					return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, f, err)
				}
				continue
			}

			count, err := listLength(values, prop)
			if err != nil {
				return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, f, err)
			}
			if count < 3 {
				return fmt.Errorf("%w: face %d has %d vertices", ErrInvalidPLY, f, count)
			}

			polygon := make([]int, count)
			for i := range polygon {
				index, err := values.scalar(prop.dataType)
				if err != nil {
					return fmt.Errorf("%w: face %d: %v", ErrInvalidPLY, f, err)
				}
				polygon[i] = int(index)
			}

			// Triangle fan around the first vertex
			for i := 1; i+1 < len(polygon); i++ {
				mesh.Faces = append(mesh.Faces, polygon[0], polygon[i], polygon[i+1])
			}
		}
	}
	return nil
}

func skipElement(values valueReader, element plyElement) error {
	for e := 0; e < element.count; e++ {
		for _, prop := range element.properties {
			if err := skipProperty(values, prop); err != nil {
				return fmt.Errorf("%w: %s %d: %v", ErrInvalidPLY, element.name, e, err)
			}
		}
	}
	return nil
}

func skipProperty(values valueReader, prop plyProperty) error {
	if prop.isList() {
		return skipList(values, prop)
	}
	_, err := values.scalar(prop.dataType)
	return err
}

// listLength reads the item count that prefixes a list property
func listLength(values valueReader, prop plyProperty) (int, error) {
	count, err := values.scalar(prop.listType)
	if err != nil {
		return 0, err
	}
	if count < 0 || count > maxListLength || count != math.Trunc(count) {
		return 0, fmt.Errorf("list %q has invalid length %v", prop.name, count)
	}
	return int(count), nil
}

func skipList(values valueReader, prop plyProperty) error {
	count, err := listLength(values, prop)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if _, err := values.scalar(prop.dataType); err != nil {
			return err
		}
	}
	return nil
}

// typeSize returns the byte size of a PLY scalar type, or 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// valueReader yields successive scalar values of the body
type valueReader interface {
	scalar(dataType string) (float64, error)
}

// asciiReader reads whitespace separated tokens, ignoring line structure
type asciiReader struct {
	r      *bufio.Reader
	fields []string
}

func (a *asciiReader) scalar(string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		a.fields = strings.Fields(line)
	}

	token := a.fields[0]
	a.fields = a.fields[1:]
	return strconv.ParseFloat(token, 64)
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) scalar(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown type %q", dataType)
	}

	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
