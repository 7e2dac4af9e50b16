package view

import "dit/internal/morse"

// Fragment is the transport form of one rendered character.
type Fragment struct {
	Kind   string   `json:"kind"`
	Label  string   `json:"label"`
	Code   string   `json:"code,omitempty"`
	Blocks []string `json:"blocks,omitempty"`
}

// Fragments converts a transcription into display records. Labels carry the
// raw character; consumers that embed them in markup must escape them.
func Fragments(t morse.Transcription) []Fragment {
	out := make([]Fragment, 0, len(t))
	for _, c := range t {
		frag := Fragment{Kind: c.Kind.String()}
		switch c.Kind {
		case morse.KindSpace:
			frag.Label = spaceLabel
		case morse.KindUnsupported:
			frag.Label = string(c.Original)
		default:
			frag.Label = string(c.Original)
			frag.Code = c.Code()
			frag.Blocks = make([]string, 0, len(c.Symbols))
			for _, sym := range c.Symbols {
				frag.Blocks = append(frag.Blocks, sym.String())
			}
		}
		out = append(out, frag)
	}
	return out
}
