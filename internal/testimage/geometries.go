// Package testimage builds synthetic GPT+FAT32 disk images entirely in
// memory for tests that need to exercise fs.Mount end to end, the way the
// teacher's testing package builds throwaway disk images for its drivers'
// test suites. Named geometries are held in an embedded CSV table, the
// same shape as the teacher's disks.DiskGeometry/GetPredefinedDiskGeometry,
// generalized from real floppy/drive geometries to synthetic FAT32 volume
// shapes and loaded with a working //go:embed directive.
package testimage

import (
	"fmt"

	_ "embed"

	"github.com/gocarina/gocsv"
)

//go:embed geometries.csv
var geometriesRawCSV string

// Geometry describes the shape of a synthetic FAT32 volume to build:
// cluster size in sectors, reserved area size, FAT redundancy, and a
// cluster count comfortably above FAT32's minimum.
type Geometry struct {
	Name              string `csv:"name"`
	SectorsPerCluster uint32 `csv:"sectors_per_cluster"`
	ReservedSectors   uint32 `csv:"reserved_sectors"`
	NumFATs           uint32 `csv:"num_fats"`
	TotalClusters     uint32 `csv:"total_clusters"`
}

var geometries map[string]Geometry

func init() {
	var rows []Geometry
	if err := gocsv.UnmarshalString(geometriesRawCSV, &rows); err != nil {
		panic(err)
	}

	geometries = make(map[string]Geometry, len(rows))
	for _, g := range rows {
		geometries[g.Name] = g
	}
}

// Preset looks up a named geometry defined in geometries.csv.
func Preset(name string) (Geometry, error) {
	g, ok := geometries[name]
	if !ok {
		return Geometry{}, fmt.Errorf("testimage: no predefined geometry named %q", name)
	}
	return g, nil
}
