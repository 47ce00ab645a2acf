package settings

import (
	"fmt"
	"math"
	"strconv"
)

// Setting is a single entry in the on-device settings menu. Implementations
// hold their own value and an apply callback that pushes the value into the
// owning subsystem (camera control, LED channel, ...).
type Setting interface {
	ID() string
	Name() string
	// MenuText is the rendered menu line, including the current value.
	MenuText() string
	// Apply pushes the current value to the attached callback.
	Apply()
}

// Steppable settings react to encoder rotation while selected.
type Steppable interface {
	Setting
	// Step adjusts the value by delta encoder detents, clamping or
	// wrapping as appropriate for the type.
	Step(delta int)
}

// Persistable settings round-trip their value through the settings file.
type Persistable interface {
	Setting
	Value() any
	// SetValue restores a previously saved value. Values outside the
	// allowed range are clamped; incompatible types are rejected.
	SetValue(v any) error
}

// Float is a bounded float setting with fixed step and display precision.
type Float struct {
	Key       string
	Label     string
	Min, Max  float64
	Default   float64
	Current   float64
	StepSize  float64
	Precision int
	Suffix    string
	OnApply   func(float64)
}

func (f *Float) ID() string   { return f.Key }
func (f *Float) Name() string { return f.Label }

func (f *Float) MenuText() string {
	return fmt.Sprintf("%s: %s%s", f.Label,
		strconv.FormatFloat(f.Current, 'f', f.Precision, 64), f.Suffix)
}

func (f *Float) Apply() {
	if f.OnApply != nil {
		f.OnApply(f.Current)
	}
}

func (f *Float) Step(delta int) {
	step := f.StepSize
	if step == 0 {
		step = 0.1
	}
	v := f.Current + float64(delta)*step
	ratio := math.Pow(10, float64(f.Precision))
	v = math.Round(v*ratio) / ratio
	f.Current = clampFloat(v, f.Min, f.Max)
}

func (f *Float) Value() any { return f.Current }

func (f *Float) SetValue(v any) error {
	fv, ok := toFloat(v)
	if !ok {
		return fmt.Errorf("setting %s: cannot restore %T as float", f.Key, v)
	}
	f.Current = clampFloat(fv, f.Min, f.Max)
	return nil
}

// Int is a bounded integer setting.
type Int struct {
	Key      string
	Label    string
	Min, Max int
	Default  int
	Current  int
	StepSize int
	Suffix   string
	OnApply  func(int)
}

func (i *Int) ID() string   { return i.Key }
func (i *Int) Name() string { return i.Label }

func (i *Int) MenuText() string {
	return fmt.Sprintf("%s: %d%s", i.Label, i.Current, i.Suffix)
}

func (i *Int) Apply() {
	if i.OnApply != nil {
		i.OnApply(i.Current)
	}
}

func (i *Int) Step(delta int) {
	step := i.StepSize
	if step == 0 {
		step = 1
	}
	i.Current = clampInt(i.Current+delta*step, i.Min, i.Max)
}

func (i *Int) Value() any { return i.Current }

func (i *Int) SetValue(v any) error {
	fv, ok := toFloat(v)
	if !ok {
		return fmt.Errorf("setting %s: cannot restore %T as int", i.Key, v)
	}
	i.Current = clampInt(int(math.Round(fv)), i.Min, i.Max)
	return nil
}

// Option cycles through a fixed list of string values.
type Option struct {
	Key     string
	Label   string
	Options []string
	Default string
	Current string
	OnApply func(string)
}

func (o *Option) ID() string   { return o.Key }
func (o *Option) Name() string { return o.Label }

func (o *Option) MenuText() string {
	return fmt.Sprintf("%s: %s", o.Label, o.Current)
}

func (o *Option) Apply() {
	if o.OnApply != nil {
		o.OnApply(o.Current)
	}
}

func (o *Option) Step(delta int) {
	if len(o.Options) == 0 {
		return
	}
	idx := 0
	for n, opt := range o.Options {
		if opt == o.Current {
			idx = n
			break
		}
	}
	idx = ((idx+delta)%len(o.Options) + len(o.Options)) % len(o.Options)
	o.Current = o.Options[idx]
}

func (o *Option) Value() any { return o.Current }

func (o *Option) SetValue(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("setting %s: cannot restore %T as option", o.Key, v)
	}
	for _, opt := range o.Options {
		if opt == s {
			o.Current = s
			return nil
		}
	}
	return fmt.Errorf("setting %s: %q is not an allowed option", o.Key, s)
}

// Action is a menu entry that runs a callback when selected, e.g. shutdown.
type Action struct {
	Key      string
	Label    string
	OnInvoke func()
}

func (a *Action) ID() string   { return a.Key }
func (a *Action) Name() string { return a.Label }

func (a *Action) MenuText() string { return fmt.Sprintf("<%s>", a.Label) }

func (a *Action) Apply() {
	if a.OnInvoke != nil {
		a.OnInvoke()
	}
}

// Group is a submenu holding child settings.
type Group struct {
	Key      string
	Label    string
	Children []Setting
}

func (g *Group) ID() string   { return g.Key }
func (g *Group) Name() string { return g.Label }

func (g *Group) MenuText() string { return g.Label }

func (g *Group) Apply() {
	for _, c := range g.Children {
		c.Apply()
	}
}

// Flatten returns all leaf settings in menu order, descending into groups.
func Flatten(items []Setting) []Setting {
	var flat []Setting
	for _, s := range items {
		if g, ok := s.(*Group); ok {
			flat = append(flat, Flatten(g.Children)...)
			continue
		}
		flat = append(flat, s)
	}
	return flat
}

// ByID finds a setting by id anywhere in the tree, or nil.
func ByID(items []Setting, id string) Setting {
	for _, s := range Flatten(items) {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
