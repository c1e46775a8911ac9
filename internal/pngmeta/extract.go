package pngmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// maxInflatedText caps decompressed text chunk payloads.
const maxInflatedText = 4 << 20

// worldIDPattern matches a wrld_ token wrapped in matching single or double quotes.
// RE2 has no backreferences, so each quote style is its own alternative.
var worldIDPattern = regexp.MustCompile(`"(wrld_[a-f0-9-]{36})"|'(wrld_[a-f0-9-]{36})'`)

// ErrNotPNG reports a missing PNG signature.
var ErrNotPNG = errors.New("not a png file")

// ErrTruncated reports a chunk stream that ends mid-chunk.
var ErrTruncated = errors.New("truncated png chunk stream")

// ReadError is returned when a file cannot be read or parsed as a PNG chunk stream.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read png metadata %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// TextEntry is the keyword/value pair carried by a text chunk.
type TextEntry struct {
	ChunkType string `json:"chunkType"`
	Keyword   string `json:"keyword"`
	Text      string `json:"text"`
}

// Result holds what Extract found. An empty WorldID means the file carries no
// world identifier.
type Result struct {
	WorldID string      `json:"worldId,omitempty"`
	Text    []TextEntry `json:"text,omitempty"`
}

// HasWorld reports whether a world identifier was found.
func (r Result) HasWorld() bool {
	return r.WorldID != ""
}

// Chunk is a raw PNG chunk.
type Chunk struct {
	Type string
	Data []byte
}

// Extract reads path and returns the first world identifier found in its text
// chunks, scanning chunks in file order.
func Extract(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &ReadError{Path: path, Err: err}
	}
	chunks, err := SplitChunks(data)
	if err != nil {
		return Result{}, &ReadError{Path: path, Err: err}
	}
	return scanChunks(chunks), nil
}

// SplitChunks validates the PNG signature and splits the remaining bytes into
// chunks, stopping after IEND. A signature followed by nothing is valid and
// yields no chunks. CRCs are not verified.
func SplitChunks(data []byte) ([]Chunk, error) {
	if len(data) < len(signature) || !bytes.Equal(data[:len(signature)], signature) {
		return nil, ErrNotPNG
	}
	rest := data[len(signature):]

	var chunks []Chunk
	for len(rest) > 0 {
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(rest))
		}
		length := binary.BigEndian.Uint32(rest[:4])
		chunkType := string(rest[4:8])
		if uint64(length)+12 > uint64(len(rest)) {
			return nil, fmt.Errorf("%w: %s chunk declares %d bytes, %d available", ErrTruncated, chunkType, length, len(rest)-8)
		}
		chunks = append(chunks, Chunk{Type: chunkType, Data: rest[8 : 8+length]})
		rest = rest[12+length:]
		if chunkType == "IEND" {
			break
		}
	}
	return chunks, nil
}

func scanChunks(chunks []Chunk) Result {
	var result Result
	for _, chunk := range chunks {
		entry, ok := decodeText(chunk)
		if !ok {
			continue
		}
		result.Text = append(result.Text, entry)
		if result.WorldID != "" {
			continue
		}
		if id := matchWorldID(chunk.Data); id != "" {
			result.WorldID = id
			continue
		}
		if id := matchWorldID([]byte(entry.Text)); id != "" {
			result.WorldID = id
		}
	}
	return result
}

func matchWorldID(payload []byte) string {
	m := worldIDPattern.FindSubmatch(payload)
	if m == nil {
		return ""
	}
	if len(m[1]) > 0 {
		return string(m[1])
	}
	return string(m[2])
}

// decodeText splits a text chunk into keyword and text, inflating compressed
// payloads. Inflation failures fall back to the raw bytes.
func decodeText(chunk Chunk) (TextEntry, bool) {
	switch chunk.Type {
	case "tEXt":
		keyword, text, _ := bytes.Cut(chunk.Data, []byte{0})
		return TextEntry{ChunkType: chunk.Type, Keyword: string(keyword), Text: string(text)}, true
	case "zTXt":
		keyword, rest, _ := bytes.Cut(chunk.Data, []byte{0})
		text := rest
		// rest[0] is the compression method; 0 is the only defined value.
		if len(rest) > 1 && rest[0] == 0 {
			if inflated, err := inflate(rest[1:]); err == nil {
				text = inflated
			}
		}
		return TextEntry{ChunkType: chunk.Type, Keyword: string(keyword), Text: string(text)}, true
	case "iTXt":
		keyword, rest, _ := bytes.Cut(chunk.Data, []byte{0})
		if len(rest) < 2 {
			return TextEntry{ChunkType: chunk.Type, Keyword: string(keyword), Text: string(rest)}, true
		}
		compressed := rest[0] == 1
		rest = rest[2:]
		// language tag, then translated keyword, each NUL terminated
		_, rest, _ = bytes.Cut(rest, []byte{0})
		_, text, _ := bytes.Cut(rest, []byte{0})
		if compressed {
			if inflated, err := inflate(text); err == nil {
				text = inflated
			}
		}
		return TextEntry{ChunkType: chunk.Type, Keyword: string(keyword), Text: string(text)}, true
	default:
		return TextEntry{}, false
	}
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, maxInflatedText))
}
