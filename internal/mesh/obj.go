package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadOBJ reads the vertex positions of a Wavefront OBJ stream. Only "v"
// records are used; faces, normals and texture coordinates are skipped since
// particles bind one-to-one to vertices.
func LoadOBJ(r io.Reader, name string) (*Geometry, error) {
	g := &Geometry{Name: name}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "v" {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("obj line %d: vertex needs 3 coordinates, got %d", line, len(fields)-1)
		}
		for _, f := range fields[1:4] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			g.Positions = append(g.Positions, float32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	if g.Count() == 0 {
		return nil, fmt.Errorf("obj %q: no vertices", name)
	}

	return g, nil
}

func LoadOBJFile(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadOBJ(f, name)
}
