package meshing

import (
	"fmt"

	"nova/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// SectionSize is the edge length of a cubic section in blocks
const SectionSize = 16

// Section is a 16x16x16 block volume, the unit of parallel meshing
type Section struct {
	// Section coordinates; world origin is X*16, Y*16, Z*16.
	X, Y, Z int

	// ChunkID owns every mesh built from this section.
	ChunkID int64

	blocks [SectionSize * SectionSize * SectionSize]uint8
}

// NewSection creates an empty (all air) section
func NewSection(x, y, z int, chunkID int64) *Section {
	return &Section{X: x, Y: y, Z: z, ChunkID: chunkID}
}

func sectionIndex(x, y, z int) int {
	return x*SectionSize*SectionSize + y*SectionSize + z
}

// Set stores a block id at local coordinates; 0 is air
func (s *Section) Set(x, y, z int, block uint8) {
	if !inSection(x, y, z) {
		return
	}
	s.blocks[sectionIndex(x, y, z)] = block
}

// Get returns the block id at local coordinates, air outside the section
func (s *Section) Get(x, y, z int) uint8 {
	if !inSection(x, y, z) {
		return 0
	}
	return s.blocks[sectionIndex(x, y, z)]
}

func inSection(x, y, z int) bool {
	return x >= 0 && x < SectionSize && y >= 0 && y < SectionSize && z >= 0 && z < SectionSize
}

// Origin returns the world-space position of local block (0,0,0)
func (s *Section) Origin() mgl32.Vec3 {
	return mgl32.Vec3{float32(s.X * SectionSize), float32(s.Y * SectionSize), float32(s.Z * SectionSize)}
}

type face struct {
	dx, dy, dz int
	// corners in CCW order seen from outside
	corners [4][3]float32
}

var faces = [6]face{
	{+1, 0, 0, [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{-1, 0, 0, [4][3]float32{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}},
	{0, +1, 0, [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{0, -1, 0, [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{0, 0, +1, [4][3]float32{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}},
	{0, 0, -1, [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

var faceUVs = [4][2]float32{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// BuildSectionMesh emits one quad per block face that touches air, as
// POS_UV vertices in section-local space. Faces on the section border are
// always emitted since neighbours are not consulted.
func BuildSectionMesh(s *Section) geometry.Record {
	stride := geometry.FormatPosUV.Floats()
	vertices := make([]float32, 0, 1024)
	indices := make([]uint32, 0, 512)

	for x := 0; x < SectionSize; x++ {
		for y := 0; y < SectionSize; y++ {
			for z := 0; z < SectionSize; z++ {
				if s.Get(x, y, z) == 0 {
					continue
				}
				for _, f := range faces {
					if s.Get(x+f.dx, y+f.dy, z+f.dz) != 0 {
						continue
					}
					base := uint32(len(vertices) / stride)
					for i, c := range f.corners {
						vertices = append(vertices,
							float32(x)+c[0], float32(y)+c[1], float32(z)+c[2],
							faceUVs[i][0], faceUVs[i][1],
						)
					}
					indices = append(indices, base, base+1, base+2, base+2, base+3, base)
				}
			}
		}
	}

	return geometry.Record{
		Vertices: vertices,
		Indices:  indices,
		Format:   geometry.FormatPosUV,
		OwnerID:  s.ChunkID,
		Position: s.Origin(),
		Type:     geometry.TypeChunk,
	}
}

// Sink receives finished records; meshstore.UploadQueue satisfies it
type Sink interface {
	Push(shader string, rec geometry.Record)
}

// SubmitSection meshes a snapshot of s on the pool and pushes the result to
// sink for the given shader. Sections without visible faces push nothing.
func SubmitSection(pool *WorkerPool, sink Sink, shader string, s *Section) *Job {
	snapshot := *s
	name := fmt.Sprintf("mesh section (%d,%d,%d)", s.X, s.Y, s.Z)
	return pool.Submit(name, func() error {
		rec := BuildSectionMesh(&snapshot)
		if len(rec.Indices) == 0 {
			return nil
		}
		sink.Push(shader, rec)
		return nil
	})
}
