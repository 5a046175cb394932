// Package meshfile reads and writes the interchange document. Paths ending in
// .zst are zstd compressed and carry a one-line JSON header before the
// document; anything else is the bare document.
package meshfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"polycity.ai/internal/protocol"
)

const HeaderVersion = 1

type Header struct {
	Version   int    `json:"version"`
	RunID     string `json:"run_id,omitempty"`
	Seed      int64  `json:"seed"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
	CreatedAt string `json:"created_at"`
}

func NewHeader(runID string, seed int64, doc protocol.MeshDoc) Header {
	return Header{
		Version:   HeaderVersion,
		RunID:     runID,
		Seed:      seed,
		Vertices:  len(doc.Vertices),
		Triangles: len(doc.Faces),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func Compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Write stores doc at path, creating parent directories. hdr is only written
// for compressed files. The file's close error is returned when nothing
// failed before it.
func Write(path string, hdr Header, doc protocol.MeshDoc) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !Compressed(path) {
		bw := bufio.NewWriterSize(f, 256*1024)
		if err := json.NewEncoder(bw).Encode(doc); err != nil {
			return fmt.Errorf("encode mesh: %w", err)
		}
		return bw.Flush()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(doc); err != nil {
		return fmt.Errorf("encode mesh: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// Read loads a document written by Write. The header is zero for plain files.
func Read(path string) (Header, protocol.MeshDoc, error) {
	var (
		hdr Header
		doc protocol.MeshDoc
	)
	f, err := os.Open(path)
	if err != nil {
		return hdr, doc, err
	}
	defer f.Close()

	if !Compressed(path) {
		if err := json.NewDecoder(bufio.NewReaderSize(f, 256*1024)).Decode(&doc); err != nil {
			return hdr, doc, fmt.Errorf("decode mesh: %w", err)
		}
		return hdr, doc, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, doc, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, doc, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, doc, fmt.Errorf("decode header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&doc); err != nil {
		return hdr, doc, fmt.Errorf("decode mesh: %w", err)
	}
	return hdr, doc, nil
}

// ReadHeader decodes only the header line of a compressed file.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	if !Compressed(path) {
		return hdr, fmt.Errorf("%s: plain mesh files have no header", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return hdr, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decode header: %w", err)
	}
	return hdr, nil
}
