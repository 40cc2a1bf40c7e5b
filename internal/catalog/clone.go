package catalog

// Clone returns a deep copy so callers cannot reach registry-owned state.
func (c *DatasetConfig) Clone() *DatasetConfig {
	if c == nil {
		return nil
	}
	out := *c
	if c.Layers != nil {
		out.Layers = make([]Layer, len(c.Layers))
		copy(out.Layers, c.Layers)
	}
	if c.ResponsiveLayout != nil {
		rl := &ResponsiveLayout{
			Components: cloneComponents(c.ResponsiveLayout.Components),
		}
		if c.ResponsiveLayout.Columns != nil {
			rl.Columns = make(map[int][]int, len(c.ResponsiveLayout.Columns))
			for w, cols := range c.ResponsiveLayout.Columns {
				rl.Columns[w] = cloneInts(cols)
			}
		}
		out.ResponsiveLayout = rl
	}
	out.StaticLayout = cloneComponents(c.StaticLayout)
	return &out
}

func cloneComponents(in []PlacedComponent) []PlacedComponent {
	if in == nil {
		return nil
	}
	out := make([]PlacedComponent, len(in))
	for i, pc := range in {
		out[i] = pc
		out[i].X = cloneInt(pc.X)
		out[i].Y = cloneInt(pc.Y)
		out[i].W = cloneInt(pc.W)
		out[i].H = cloneInt(pc.H)
		if pc.Props != nil {
			out[i].Props = cloneValue(pc.Props).(map[string]any)
		}
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return At(*v)
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

// cloneValue copies the container types produced by YAML and JSON decoding.
// Scalars are immutable and returned as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	case []int:
		return cloneInts(t)
	case []float64:
		return append([]float64(nil), t...)
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
