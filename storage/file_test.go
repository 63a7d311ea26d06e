package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dargueta/gofat32/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePort_RoundTripsSectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 4*storage.SectorSize), 0o644))

	port, err := storage.OpenFilePort(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer port.Close()

	assert.EqualValues(t, 4, port.SectorCount())

	buf := []byte("sector two contents")
	buf = append(buf, make([]byte, storage.SectorSize-len(buf))...)
	require.NoError(t, port.WriteSector(2, buf))

	readBack := make([]byte, storage.SectorSize)
	require.NoError(t, port.ReadSector(2, readBack))
	assert.Equal(t, buf, readBack)
}

func TestOpenFilePort_RejectsUnalignedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, storage.SectorSize+1), 0o644))

	_, err := storage.OpenFilePort(path, os.O_RDWR, 0)
	assert.Error(t, err)
}
