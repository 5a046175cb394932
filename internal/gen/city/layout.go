// Package city assembles a whole city scene: ground, roads and every object
// category placed under the zone rules, merged into one mesh.
package city

import (
	"fmt"

	"polycity.ai/internal/gen/crystal"
	"polycity.ai/internal/gen/flora"
	"polycity.ai/internal/gen/randx"
	"polycity.ai/internal/gen/structures"
	"polycity.ai/internal/mesh"
)

type Category string

const (
	Skyscrapers     Category = "skyscrapers"
	MediumBuildings Category = "medium_buildings"
	Shops           Category = "shops"
	Houses          Category = "houses"
	Streetlights    Category = "streetlights"
	Benches         Category = "benches"
	Humans          Category = "humans"
	Trees           Category = "trees"
	Crystals        Category = "crystals"
)

// Categories lists every category in placement order.
var Categories = []Category{
	Skyscrapers, MediumBuildings, Shops, Houses, Streetlights, Benches, Humans, Trees, Crystals,
}

var groundColor = mesh.Color{0.08, 0.08, 0.12}

// Placement describes one object merged into the scene. Vertices and
// Triangles are the object's own counts.
type Placement struct {
	Category  Category  `json:"category"`
	Index     int       `json:"index"`
	Position  mesh.Vec3 `json:"position"`
	Scale     float64   `json:"scale"`
	Vertices  int       `json:"vertices"`
	Triangles int       `json:"triangles"`
}

// Sink receives every placement as it is merged.
type Sink interface {
	Place(p Placement) error
}

type Stats struct {
	Placed    map[Category]int `json:"placed"`
	Requested map[Category]int `json:"requested"`
	Vertices  int              `json:"vertices"`
	Triangles int              `json:"triangles"`
}

// Total is the number of placed objects over all categories.
func (s Stats) Total() int {
	n := 0
	for _, v := range s.Placed {
		n += v
	}
	return n
}

// Rejected is the number of candidates of cat skipped by an exclusion rule.
func (s Stats) Rejected(cat Category) int {
	return s.Requested[cat] - s.Placed[cat]
}

type Result struct {
	Mesh       *mesh.Mesh
	Stats      Stats
	Placements []Placement
	Roads      []float64
}

type Option func(*options)

type options struct {
	sink Sink
	rand *randx.Rand
}

func WithSink(s Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithRand replaces the layout stream, which defaults to randx.New(cfg.Seed).
func WithRand(r *randx.Rand) Option {
	return func(o *options) { o.rand = r }
}

type builder struct {
	world *mesh.Mesh
	res   *Result
	sink  Sink
}

func (b *builder) place(cat Category, i int, obj *mesh.Mesh, pos mesh.Vec3, scale float64) error {
	b.world.Merge(obj, mesh.Offset(pos), mesh.Scale(scale))
	p := Placement{
		Category:  cat,
		Index:     i,
		Position:  pos,
		Scale:     scale,
		Vertices:  obj.VertexCount(),
		Triangles: obj.TriangleCount(),
	}
	b.res.Placements = append(b.res.Placements, p)
	b.res.Stats.Placed[cat]++
	if b.sink != nil {
		if err := b.sink.Place(p); err != nil {
			return fmt.Errorf("place %s[%d]: %w", cat, i, err)
		}
	}
	return nil
}

// Generate lays out a city. All layout draws come from one stream in a fixed
// order; per-object shape variation comes from sub-streams seeded by the
// object's index, so a given index always yields the same shape.
func Generate(cfg Config, opts ...Option) (*Result, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	r := o.rand
	if r == nil {
		r = randx.New(cfg.Seed)
	}

	res := &Result{
		Stats: Stats{
			Placed:    map[Category]int{},
			Requested: map[Category]int{},
		},
	}
	for _, cat := range Categories {
		res.Stats.Placed[cat] = 0
		res.Stats.Requested[cat] = cfg.Counts.Get(cat)
	}
	b := &builder{world: mesh.New(), res: res, sink: o.sink}

	b.world.Merge(mesh.Box(cfg.GroundSize, 1, cfg.GroundSize, groundColor), mesh.Offset(mesh.Vec3{0, -0.5, 0}))

	res.Roads = RoadOffsets()
	for _, z := range res.Roads {
		b.world.Merge(structures.RoadSegment(cfg.CitySize, RoadWidth, structures.AxisX), mesh.Offset(mesh.Vec3{0, 0, z}))
	}

	steps := []func(*randx.Rand, Config) error{
		b.skyscrapers,
		b.mediumBuildings,
		b.shops,
		b.houses,
		b.streetlights,
		b.benches,
		b.humans,
		b.trees,
		b.crystals,
	}
	for _, step := range steps {
		if err := step(r, cfg); err != nil {
			return nil, err
		}
	}

	res.Mesh = b.world
	res.Stats.Vertices = b.world.VertexCount()
	res.Stats.Triangles = b.world.TriangleCount()
	return res, nil
}

func (b *builder) skyscrapers(r *randx.Rand, cfg Config) error {
	cells := []float64{-1, 0, 1}
	for i := 0; i < cfg.Counts.Skyscrapers; i++ {
		gx := randx.Choose(r, cells) * GridSpacing
		gz := randx.Choose(r, cells) * GridSpacing
		x := gx + r.Uniform(-3, 3)
		z := gz + r.Uniform(-3, 3)
		if SkyscraperCore.Inside(x, z) {
			continue
		}
		floors := r.IntRange(15, 30)
		if err := b.place(Skyscrapers, i, structures.SkyscraperSeeded(int64(i), floors), mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) mediumBuildings(r *randx.Rand, cfg Config) error {
	for i := 0; i < cfg.Counts.MediumBuildings; i++ {
		gx := float64(r.IntRange(-3, 3)) * GridSpacing
		gz := float64(r.IntRange(-3, 3)) * GridSpacing
		x := gx + r.Uniform(-4, 4)
		z := gz + r.Uniform(-4, 4)
		if MediumCore.Inside(x, z) {
			continue
		}
		width := r.Uniform(4, 8)
		depth := r.Uniform(4, 8)
		height := r.Uniform(10, 20)
		floors := int(height/3) + 1
		obj := structures.Building(r, width, height, depth, floors)
		if err := b.place(MediumBuildings, i, obj, mesh.Vec3{x, height / 2, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) shops(r *randx.Rand, cfg Config) error {
	for i := 0; i < cfg.Counts.Shops; i++ {
		x := r.Uniform(-40, 40)
		z := randx.Choose(r, ShopBands) + r.Uniform(-2, 2)
		width := r.Uniform(6, 10)
		if err := b.place(Shops, i, structures.ShopSeeded(int64(i), width), mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) houses(r *randx.Rand, cfg Config) error {
	floorChoices := []int{1, 2, 2, 3}
	for i := 0; i < cfg.Counts.Houses; i++ {
		x, z := Polar(r.Angle(), r.Uniform(HouseRing.Inner, HouseRing.Outer))
		floors := randx.Choose(r, floorChoices)
		if err := b.place(Houses, i, structures.HouseSeeded(int64(i), floors), mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) streetlights(r *randx.Rand, cfg Config) error {
	sides := []float64{-4, 4}
	for i := 0; i < cfg.Counts.Streetlights; i++ {
		x := r.Uniform(-40, 40)
		z := randx.Choose(r, b.res.Roads) + randx.Choose(r, sides)
		obj := structures.Streetlight(r.Uniform(5, 7))
		if err := b.place(Streetlights, i, obj, mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) benches(r *randx.Rand, cfg Config) error {
	sides := []float64{-5, 5}
	for i := 0; i < cfg.Counts.Benches; i++ {
		x := r.Uniform(-35, 35)
		z := randx.Choose(r, b.res.Roads) + randx.Choose(r, sides)
		if err := b.place(Benches, i, structures.Bench(), mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) humans(r *randx.Rand, cfg Config) error {
	for i := 0; i < cfg.Counts.Humans; i++ {
		x := r.Uniform(-50, 50)
		z := r.Uniform(-50, 50)
		if PlazaClear.Inside(x, z) {
			continue
		}
		if err := b.place(Humans, i, structures.HumanoidSeeded(int64(i)), mesh.Vec3{x, 0, z}, 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) trees(r *randx.Rand, cfg Config) error {
	for i := 0; i < cfg.Counts.Trees; i++ {
		x, z := Polar(r.Angle(), r.Uniform(TreeRing.Inner, TreeRing.Outer))
		scale := r.Uniform(0.6, 1.2)
		if err := b.place(Trees, i, flora.TreeSeeded(int64(i), cfg.TreeLevels), mesh.Vec3{x, 0, z}, scale); err != nil {
			return err
		}
	}
	return nil
}

// Crystal shape seeds start at crystalSeedBase.
const crystalSeedBase = 200

func (b *builder) crystals(r *randx.Rand, cfg Config) error {
	for i := 0; i < cfg.Counts.Crystals; i++ {
		x, z := Polar(r.Angle(), r.Uniform(CrystalRing.Inner, CrystalRing.Outer))
		scale := r.Uniform(1.5, 3.0)
		if err := b.place(Crystals, i, crystal.ClusterSeeded(int64(i)+crystalSeedBase), mesh.Vec3{x, 0, z}, scale); err != nil {
			return err
		}
	}
	return nil
}
