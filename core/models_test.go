package core

import (
	"math"
	"reflect"
	"testing"
)

func TestCellml_DisplayTitle(t *testing.T) {
	tests := []struct {
		name   string
		cellml Cellml
		want   string
	}{
		{
			name:   "model title",
			cellml: Cellml{Title: "Hodgkin Huxley", ArticleRef: "ref", URL: "e/1/model.cellml"},
			want:   "Hodgkin Huxley",
		},
		{
			name:   "article reference fallback",
			cellml: Cellml{ArticleRef: "A model of the squid axon", URL: "e/1/model.cellml"},
			want:   "A model of the squid axon",
		},
		{
			name:   "url segment fallback",
			cellml: Cellml{URL: "workspace/hh/rawfile/HEAD/hh.cellml"},
			want:   "hh.cellml",
		},
		{
			name:   "url without separator",
			cellml: Cellml{URL: "hh.cellml"},
			want:   "hh.cellml",
		},
		{
			name:   "empty",
			cellml: Cellml{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cellml.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellml_Path(t *testing.T) {
	c := Cellml{WorkingDir: "hodgkin_huxley", File: "hh.cellml"}
	if got := c.Path(); got != "hodgkin_huxley/hh.cellml" {
		t.Errorf("Path() = %q", got)
	}
	if got := (&Cellml{WorkingDir: "x"}).Path(); got != "" {
		t.Errorf("Path() without file = %q, want empty", got)
	}
}

func TestVariable_Values(t *testing.T) {
	v := Variable{Type: VariableTypeState, Init: -75, Rate: math.NaN()}
	if got := v.InitValue(); got == nil || *got != -75 {
		t.Errorf("InitValue() = %v, want -75", got)
	}
	if got := v.RateValue(); got != nil {
		t.Errorf("RateValue() = %v, want nil for NaN rate", *got)
	}

	v = Variable{Type: "algebraic", Init: math.NaN(), Rate: 2}
	if got := v.InitValue(); got != nil {
		t.Errorf("InitValue() = %v, want nil", *got)
	}
	if got := v.RateValue(); got != nil {
		t.Errorf("RateValue() = %v, want nil for non-state variable", *got)
	}
}

func TestPlotRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantSedml string
		wantPlot  string
		wantOK    bool
	}{
		{"s1.plot1", "s1", "plot1", true},
		{"s1.plot.extra", "s1", "plot.extra", true},
		{"s1", "", "", false},
		{".plot", "", "", false},
		{"s1.", "", "", false},
	}
	for _, tt := range tests {
		s, p, ok := PlotRef(tt.ref)
		if s != tt.wantSedml || p != tt.wantPlot || ok != tt.wantOK {
			t.Errorf("PlotRef(%q) = (%q, %q, %v)", tt.ref, s, p, ok)
		}
	}
}

func TestFilterLeaves(t *testing.T) {
	got := FilterLeaves([]string{"http://identifiers.org/go/GO:0005886", "file:model.cellml#x", "sodium"})
	want := []string{"http://identifiers.org/go/GO:0005886", "sodium"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterLeaves() = %v, want %v", got, want)
	}
	if got := FilterLeaves(nil); len(got) != 0 {
		t.Errorf("FilterLeaves(nil) = %v, want empty", got)
	}
}

func TestClassSet_Merge(t *testing.T) {
	a := ClassSet{"c1": {ID: "c1", Name: "membrane"}}
	b := ClassSet{"c1": {ID: "c1", Name: "other"}, "c2": {ID: "c2", Name: "potential"}}

	got := a.Merge(b)
	if len(got) != 2 {
		t.Fatalf("Merge() len = %d, want 2", len(got))
	}
	if got["c1"].Name != "membrane" {
		t.Errorf("Merge() kept %q for c1, want receiver entry", got["c1"].Name)
	}
	if len(a) != 1 {
		t.Errorf("Merge() mutated receiver")
	}
}

func TestSedml_Output(t *testing.T) {
	s := Sedml{Outputs: []Output{{ID: "p1"}, {ID: "p2"}}}
	if o, ok := s.Output("p2"); !ok || o.ID != "p2" {
		t.Errorf("Output(p2) = %v, %v", o, ok)
	}
	if _, ok := s.Output("p3"); ok {
		t.Errorf("Output(p3) found, want missing")
	}
}
