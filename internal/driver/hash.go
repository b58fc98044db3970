package driver

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest identifies a cached file result.
type Digest [32]byte

// Fingerprint captures the run options that change a file's result.
type Fingerprint struct {
	Checked        int8 // -1 unset, 0 false, 1 true
	Unsafe         int8
	MaxDiagnostics int
}

func triState(v *bool) int8 {
	switch {
	case v == nil:
		return -1
	case *v:
		return 1
	}
	return 0
}

// CacheKey: H(schema || content || options). Содержимое уже хешировано
// при загрузке файла.
func CacheKey(content [32]byte, fp Fingerprint) Digest {
	h := sha256.New()
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], cacheSchemaVersion)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(content[:])
	// #nosec G115 -- int8 tri-state round-trips through a byte
	_, _ = h.Write([]byte{byte(fp.Checked), byte(fp.Unsafe)})
	_ = binary.Write(h, binary.LittleEndian, int64(fp.MaxDiagnostics))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports the unset digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
