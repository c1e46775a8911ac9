package testsupport

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// PNGChunk is a raw chunk inserted after IHDR by BuildPNG.
type PNGChunk struct {
	Type string
	Data []byte
}

// TextChunk builds an uncompressed tEXt chunk.
func TextChunk(keyword, text string) PNGChunk {
	return PNGChunk{Type: "tEXt", Data: []byte(keyword + "\x00" + text)}
}

// ZTextChunk builds a zlib-compressed zTXt chunk.
func ZTextChunk(keyword, text string) PNGChunk {
	data := append([]byte(keyword), 0, 0)
	data = append(data, deflate(text)...)
	return PNGChunk{Type: "zTXt", Data: data}
}

// ITextChunk builds an iTXt chunk, optionally compressed.
func ITextChunk(keyword, text string, compressed bool) PNGChunk {
	data := append([]byte(keyword), 0)
	if compressed {
		data = append(data, 1, 0)
	} else {
		data = append(data, 0, 0)
	}
	data = append(data, 0, 0) // empty language tag and translated keyword
	if compressed {
		data = append(data, deflate(text)...)
	} else {
		data = append(data, text...)
	}
	return PNGChunk{Type: "iTXt", Data: data}
}

// VRCXDescription returns the iTXt Description payload VRCX writes into screenshots.
func VRCXDescription(worldID string) PNGChunk {
	payload := fmt.Sprintf(`{"application":"VRCX","version":1,"author":{"id":"usr_00000000-0000-0000-0000-000000000000","displayName":"tester"},"world":{"name":"Test","id":"%s","instanceId":"%s:12345~private"},"players":[]}`, worldID, worldID)
	return ITextChunk("Description", payload, false)
}

// BuildPNG encodes a small decodable image and inserts chunks right after IHDR.
func BuildPNG(t testing.TB, chunks ...PNGChunk) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(40 * y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	encoded := buf.Bytes()

	// signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 crc)
	const afterIHDR = 8 + 25
	out := append([]byte(nil), encoded[:afterIHDR]...)
	for _, chunk := range chunks {
		out = append(out, encodeChunk(chunk)...)
	}
	return append(out, encoded[afterIHDR:]...)
}

// WritePNG writes a PNG built by BuildPNG to path.
func WritePNG(t testing.TB, path string, chunks ...PNGChunk) {
	t.Helper()
	WriteFile(t, path, BuildPNG(t, chunks...))
}

// WriteWorldPNG writes a screenshot whose metadata names worldID.
func WriteWorldPNG(t testing.TB, path, worldID string) {
	t.Helper()
	WritePNG(t, path, VRCXDescription(worldID))
}

func encodeChunk(chunk PNGChunk) []byte {
	out := make([]byte, 8, 12+len(chunk.Data))
	binary.BigEndian.PutUint32(out[:4], uint32(len(chunk.Data)))
	copy(out[4:8], chunk.Type)
	out = append(out, chunk.Data...)
	crc := crc32.NewIEEE()
	crc.Write(out[4:])
	return binary.BigEndian.AppendUint32(out, crc.Sum32())
}

func deflate(text string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return buf.Bytes()
}
