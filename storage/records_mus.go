package storage

import (
	"cmp"
	"maps"
	"slices"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// walker visits the fields of a record in a fixed order. The same walk
// function drives sizing, marshalling and unmarshalling.
type walker interface {
	str(p *string)
	f64(p *float64)
	f32(p *float32)
	length(n int) int
	decoding() bool
}

type sizer struct{ size int }

func (s *sizer) str(p *string)    { s.size += ord.String.Size(*p) }
func (s *sizer) f64(p *float64)   { s.size += raw.Float64.Size(*p) }
func (s *sizer) f32(p *float32)   { s.size += raw.Float32.Size(*p) }
func (s *sizer) length(n int) int { s.size += varint.Int.Size(n); return n }
func (s *sizer) decoding() bool   { return false }

type marshaller struct {
	bs []byte
	n  int
}

func (m *marshaller) str(p *string)  { m.n += ord.String.Marshal(*p, m.bs[m.n:]) }
func (m *marshaller) f64(p *float64) { m.n += raw.Float64.Marshal(*p, m.bs[m.n:]) }
func (m *marshaller) f32(p *float32) { m.n += raw.Float32.Marshal(*p, m.bs[m.n:]) }
func (m *marshaller) length(n int) int {
	m.n += varint.Int.Marshal(n, m.bs[m.n:])
	return n
}
func (m *marshaller) decoding() bool { return false }

// unmarshaller stops at the first error; later visits are no-ops.
type unmarshaller struct {
	bs  []byte
	n   int
	err error
}

func (u *unmarshaller) str(p *string) {
	if u.err != nil {
		return
	}
	v, n, err := ord.String.Unmarshal(u.bs[u.n:])
	u.n += n
	u.err = err
	*p = v
}

func (u *unmarshaller) f64(p *float64) {
	if u.err != nil {
		return
	}
	v, n, err := raw.Float64.Unmarshal(u.bs[u.n:])
	u.n += n
	u.err = err
	*p = v
}

func (u *unmarshaller) f32(p *float32) {
	if u.err != nil {
		return
	}
	v, n, err := raw.Float32.Unmarshal(u.bs[u.n:])
	u.n += n
	u.err = err
	*p = v
}

func (u *unmarshaller) length(int) int {
	if u.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(u.bs[u.n:])
	u.n += n
	if err != nil {
		u.err = err
		return 0
	}
	// every element takes at least one byte
	if v < 0 || v > len(u.bs)-u.n {
		u.err = ErrTruncatedData
		return 0
	}
	return v
}

func (u *unmarshaller) decoding() bool { return true }

func walkSlice[S ~[]T, T any](w walker, s *S, fn func(*T)) {
	n := w.length(len(*s))
	if w.decoding() {
		if n == 0 {
			*s = nil
			return
		}
		*s = make(S, n)
	}
	for i := range *s {
		fn(&(*s)[i])
	}
}

// walkMap encodes entries in key order so equal maps encode equally.
func walkMap[M ~map[K]V, K cmp.Ordered, V any](w walker, m *M, key func(*K), fn func(*V)) {
	if w.decoding() {
		n := w.length(0)
		if n == 0 {
			*m = nil
			return
		}
		*m = make(M, n)
		for range n {
			var k K
			var v V
			key(&k)
			fn(&v)
			(*m)[k] = v
		}
		return
	}
	w.length(len(*m))
	for _, k := range slices.Sorted(maps.Keys(*m)) {
		v := (*m)[k]
		key(&k)
		fn(&v)
	}
}

func strKey[K ~string](w walker) func(*K) {
	return func(k *K) {
		s := string(*k)
		w.str(&s)
		*k = K(s)
	}
}

func walkStrings(w walker, s *[]string) { walkSlice(w, s, w.str) }

// recordMUS adapts a walk function to mus.Serializer.
type recordMUS[T any] struct {
	walk func(v *T, w walker)
}

var _ mus.Serializer[core.Variable] = recordMUS[core.Variable]{}

func (s recordMUS[T]) Size(v T) (size int) {
	var z sizer
	s.walk(&v, &z)
	return z.size
}

func (s recordMUS[T]) Marshal(v T, bs []byte) (n int) {
	m := marshaller{bs: bs}
	s.walk(&v, &m)
	return m.n
}

func (s recordMUS[T]) Unmarshal(bs []byte) (v T, n int, err error) {
	u := unmarshaller{bs: bs}
	s.walk(&v, &u)
	return v, u.n, u.err
}

func (s recordMUS[T]) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// Serializers for every persisted record type.
var (
	VariableMUS  = recordMUS[core.Variable]{walk: walkVariable}
	ComponentMUS = recordMUS[core.Component]{walk: walkComponent}
	CellmlMUS    = recordMUS[core.Cellml]{walk: walkCellml}
	SedmlMUS     = recordMUS[core.Sedml]{walk: walkSedml}
	WorkspaceMUS = recordMUS[core.Workspace]{walk: walkWorkspace}
	ImageMUS     = recordMUS[core.Image]{walk: walkImage}
	UnitMUS      = recordMUS[core.Unit]{walk: walkUnit}
	MathMUS      = recordMUS[core.Math]{walk: walkMath}
	IndexMUS     = recordMUS[index.Data]{walk: walkIndexData}
	ClustersMUS  = recordMUS[map[string][]string]{walk: walkClusters}
)

func walkVariable(v *core.Variable, w walker) {
	w.str(&v.ID)
	w.str(&v.Name)
	w.str(&v.ShortName)
	w.str(&v.Type)
	w.f64(&v.Init)
	w.f64(&v.Rate)
	w.str(&v.Unit)
	walkStrings(w, &v.Math)
	walkSlice(w, &v.Dependent, func(d *core.DependentRef) {
		w.str(&d.ID)
		w.str(&d.Name)
	})
	walkStrings(w, &v.Plots)
	w.str(&v.Component)
	walkStrings(w, &v.Leaves)
}

func walkComponent(c *core.Component, w walker) {
	w.str(&c.ID)
	w.str(&c.Name)
	w.str(&c.Cellml)
	walkStrings(w, &c.Variables)
	w.str(&c.Code)
	walkStrings(w, &c.Leaves)
}

func walkCellml(c *core.Cellml, w walker) {
	w.str(&c.ID)
	w.str(&c.URL)
	w.str(&c.Title)
	w.str(&c.ArticleRef)
	w.str(&c.Abstract)
	w.str(&c.Workspace)
	w.str(&c.WorkingDir)
	w.str(&c.File)
	walkStrings(w, &c.Images)
	walkStrings(w, &c.Sedmls)
	walkStrings(w, &c.Leaves)
}

func walkSedml(s *core.Sedml, w walker) {
	w.str(&s.ID)
	w.str(&s.URL)
	w.str(&s.Workspace)
	w.str(&s.Cellml)
	walkMap(w, &s.Variables, strKey[string](w), w.f64)
	walkSlice(w, &s.Outputs, func(o *core.Output) {
		w.str(&o.ID)
		walkSlice(w, &o.Series, func(sr *core.Series) {
			w.str(&sr.X)
			w.str(&sr.Y)
		})
	})
}

func walkWorkspace(ws *core.Workspace, w walker) {
	w.str(&ws.URL)
	walkStrings(w, &ws.Exposures)
}

func walkImage(i *core.Image, w walker) {
	w.str(&i.ID)
	w.str(&i.Path)
	w.str(&i.Title)
	w.str(&i.Cellml)
}

func walkUnit(u *core.Unit, w walker) {
	w.str(&u.ID)
	walkStrings(w, &u.Names)
	w.str(&u.Text)
}

func walkMath(m *core.Math, w walker) {
	w.str(&m.ID)
	w.str(&m.Source)
}

func walkClassSet(cs *core.ClassSet, w walker) {
	walkMap(w, cs, strKey[string](w), func(c *core.Class) {
		w.str(&c.ID)
		w.str(&c.Name)
	})
}

func walkIndexData(d *index.Data, w walker) {
	entity := string(d.Entity)
	w.str(&entity)
	d.Entity = core.EntityType(entity)
	walkStrings(w, &d.IDs)
	walkSlice(w, &d.Classes, func(cs *core.ClassSet) { walkClassSet(cs, w) })
	walkMap(w, &d.Vectors, strKey[core.Variant](w), func(vs *[][]float32) {
		walkSlice(w, vs, func(v *[]float32) { walkSlice(w, v, w.f32) })
	})
	walkMap(w, &d.Texts, strKey[core.Variant](w), func(ts *[]string) { walkStrings(w, ts) })
}

func walkClusters(m *map[string][]string, w walker) {
	walkMap(w, m, strKey[string](w), func(members *[]string) { walkStrings(w, members) })
}
