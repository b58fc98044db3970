package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"opcheck/internal/diag"
	"opcheck/internal/probe"
	"opcheck/internal/source"
)

// Current schema version - increment when CachedFile format changes
const cacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки probe-файлов по CacheKey на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedFile is the msgpack payload of one checked file. Spans are kept
// as offsets; the file they point into is rebuilt on load.
type CachedFile struct {
	Schema uint16
	Path   string
	// Diagnostics reported before any case ran (bad declarations).
	Diagnostics []CachedDiagnostic
	Cases       []CachedCase
}

type CachedCase struct {
	Name  string
	Expr  string
	Start uint32
	End   uint32
	// Virtual cases live in their own in-memory file named by
	// probe.VirtualPath.
	Virtual     bool
	Tree        string
	Type        string
	Diagnostics []CachedDiagnostic
	Mismatches  []string
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не копить тысячи файлов в одном месте
	return filepath.Join(c.dir, "probes", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *CachedFile) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry or one written by another schema
// version is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *CachedFile) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}

// toCached converts a file report into its cache payload. Notes and
// primaries outside the case file are stored by offset only.
func toCached(path string, fileDiags []diag.Diagnostic, cases []probe.CaseResult, probeFile source.FileID) *CachedFile {
	out := &CachedFile{Path: path, Diagnostics: cachedDiagnostics(fileDiags)}
	for _, cr := range cases {
		out.Cases = append(out.Cases, CachedCase{
			Name:        cr.Name,
			Expr:        cr.Expr,
			Start:       cr.Span.Start,
			End:         cr.Span.End,
			Virtual:     cr.Span.File != probeFile,
			Tree:        cr.Tree,
			Type:        cr.Type,
			Diagnostics: cachedDiagnostics(cr.Diagnostics),
			Mismatches:  cr.Mismatches,
		})
	}
	return out
}

func cachedDiagnostics(diags []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(diags))
	for _, d := range diags {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		out = append(out, cd)
	}
	return out
}

// fromCached restores case results, recreating the virtual files that
// held cases not found verbatim in the probe file.
func fromCached(fs *source.FileSet, file *source.File, payload *CachedFile) ([]diag.Diagnostic, []probe.CaseResult) {
	fileDiags := restoreDiagnostics(payload.Diagnostics, file.ID)
	cases := make([]probe.CaseResult, 0, len(payload.Cases))
	for _, cc := range payload.Cases {
		id := file.ID
		if cc.Virtual {
			id = fs.AddVirtual(probe.VirtualPath(file.Path, cc.Name), []byte(cc.Expr))
		}
		cases = append(cases, probe.CaseResult{
			Name:        cc.Name,
			Expr:        cc.Expr,
			Span:        source.Span{File: id, Start: cc.Start, End: cc.End},
			Tree:        cc.Tree,
			Type:        cc.Type,
			Diagnostics: restoreDiagnostics(cc.Diagnostics, id),
			Mismatches:  cc.Mismatches,
		})
	}
	return fileDiags, cases
}

func restoreDiagnostics(in []CachedDiagnostic, file source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(in))
	for _, cd := range in {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code),
			source.Span{File: file, Start: cd.Start, End: cd.End}, cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(source.Span{File: file, Start: n.Start, End: n.End}, n.Msg)
		}
		out = append(out, d)
	}
	return out
}
