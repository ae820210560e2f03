package domain

// Settings is the open key/value bag carried on a membership. It merges
// shallowly: top-level keys from the incoming map win, everything else
// is preserved.
type Settings map[string]any

func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge returns a copy of s with the keys of over laid on top. Neither
// receiver nor argument is modified.
func (s Settings) Merge(over Settings) Settings {
	out := s.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}
