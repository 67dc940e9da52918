package storage

import (
	"archive/zip"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/deltaerr"
)

// NumpyAdapter writes each result as a <uuid>.npz archive under
// <datadir>/<run_id>/, with a single "data" key holding the gathered
// array.
type NumpyAdapter struct {
	mu      sync.Mutex
	datadir string
	runDir  string
}

// NewNumpyAdapter creates the adapter. The run directory is created lazily
// on the first StoreMetadata call, once run_id is known.
func NewNumpyAdapter(datadir string) (*NumpyAdapter, error) {
	if datadir == "" {
		return nil, deltaerr.NewConfigError("storage.datadir is required for the numpy backend")
	}
	return &NumpyAdapter{datadir: datadir}, nil
}

func (a *NumpyAdapter) StoreMetadata(cfg *config.Config, runID string, seq analysis.DispatchSequence) (string, error) {
	a.mu.Lock()
	a.runDir = filepath.Join(a.datadir, runID)
	a.mu.Unlock()

	if err := os.MkdirAll(a.runDir, 0o755); err != nil {
		return "", deltaerr.NewBackendError("creating run directory", err)
	}

	data, err := json.Marshal(metadataDoc{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Config:    cfg,
		Sequence:  seq,
	})
	if err != nil {
		return "", deltaerr.NewBackendError("marshaling run metadata", err)
	}
	metaPath := filepath.Join(a.runDir, "metadata.json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return "", deltaerr.NewBackendError("writing metadata document", err)
	}
	return metaPath, nil
}

func (a *NumpyAdapter) StoreResult(result analysis.Result, info ResultInfo) error {
	a.mu.Lock()
	runDir := a.runDir
	a.mu.Unlock()
	if runDir == "" {
		return deltaerr.NewBackendError("StoreResult called before StoreMetadata", nil)
	}

	id, err := newUUID()
	if err != nil {
		return deltaerr.NewBackendError("generating result id", err)
	}
	path := filepath.Join(runDir, id+".npz")

	f, err := os.Create(path)
	if err != nil {
		return deltaerr.NewBackendError("creating result archive", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("data.npy")
	if err != nil {
		return deltaerr.NewBackendError("creating npz entry", err)
	}
	if err := writeNPY(w, result); err != nil {
		return deltaerr.NewBackendError("writing npy payload", err)
	}
	if err := zw.Close(); err != nil {
		return deltaerr.NewBackendError("closing npz archive", err)
	}
	return nil
}

func (a *NumpyAdapter) Close() error { return nil }

// writeNPY writes result.Data as a NPY-format (version 1.0) float64 array
// shaped by result.Dims (or a length-1 one-dimensional array for scalars).
func writeNPY(w interface{ Write([]byte) (int, error) }, result analysis.Result) error {
	shape := result.Dims
	if len(shape) == 0 {
		shape = []int{1}
	}

	shapeStr := ""
	for i, d := range shape {
		if i > 0 {
			shapeStr += ", "
		}
		shapeStr += fmt.Sprintf("%d", d)
	}
	if len(shape) == 1 {
		shapeStr += ","
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shapeStr)
	// Pad the header so magic+version+headerlen+header+pad is a multiple of 64.
	const preludeLen = 10 // magic(6) + version(2) + headerlen(2)
	total := preludeLen + len(header) + 1
	pad := (64 - total%64) % 64
	header += spaces(pad) + "\n"

	if _, err := w.Write([]byte("\x93NUMPY")); err != nil {
		return err
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return err
	}
	headerLen := make([]byte, 2)
	binary.LittleEndian.PutUint16(headerLen, uint16(len(header)))
	if _, err := w.Write(headerLen); err != nil {
		return err
	}
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}

	buf := make([]byte, 8)
	for _, v := range result.Data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// newUUID generates a random, RFC-4122-shaped identifier. No third-party
// UUID library appears anywhere in the example corpus, so this is built on
// crypto/rand directly; see DESIGN.md.
func newUUID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}
