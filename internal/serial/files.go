package serial

import (
	"os"
	"path/filepath"
)

const (
	defaultSrcBase = "VehicleConfig"
	defaultDstBase = "NewVehicleConfig"
)

// DefaultPaths fills empty source and destination paths with the names the
// format uses by convention.
func DefaultPaths(f Format, src, dst string) (string, string) {
	if src == "" {
		src = defaultSrcBase + f.Ext()
	}
	if dst == "" {
		dst = defaultDstBase + f.Ext()
	}
	return src, dst
}

// Read loads and decodes a configuration file.
func Read(f Format, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Decode(data)
}

// Write encodes buf and replaces path with the result. The data goes to a
// temporary file in the same directory first, so path is either untouched
// or complete.
func Write(f Format, path string, buf []byte) error {
	return WriteFileAtomic(path, f.Encode(buf), 0o644)
}

// WriteFileAtomic writes data to a sibling temporary file and renames it
// over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		return err
	}
	return os.Rename(name, path)
}
