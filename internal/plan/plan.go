package plan

import (
	"slices"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
)

// Candidate is one file proposed for deletion
type Candidate struct {
	File       media.File
	Types      []models.GroupType // every group type that proposed the file
	Descriptor string
}

// Has reports whether the candidate was proposed by group type t
func (c *Candidate) Has(t models.GroupType) bool {
	return slices.Contains(c.Types, t)
}

// Plan is the deduplicated list of delete candidates of a run. Building a
// plan never touches the filesystem.
type Plan struct {
	Candidates []*Candidate

	byPath map[string]*Candidate
}

// Build flattens the groups of every directory into one plan. Within a
// directory candidates are gathered from image groups, copy groups,
// cross-type groups and video groups, in that order. A file proposed by
// several group types becomes one candidate carrying all of them.
func Build(dirs []*models.DirGroups) *Plan {
	p := &Plan{byPath: make(map[string]*Candidate)}

	for _, d := range dirs {
		for _, g := range d.Images {
			for _, f := range g.Delete {
				p.add(f, models.ImageFingerprint, d.Describe(f))
			}
		}
		for _, g := range d.Copies {
			for _, f := range g.Copies {
				p.add(f, models.CopyName, d.Describe(f))
			}
		}
		for _, g := range d.CrossType {
			for _, f := range g.Images {
				p.add(f, models.CrossType, d.Describe(f))
			}
		}
		for _, g := range d.Videos {
			for _, f := range g.Delete {
				p.add(f, models.VideoFingerprint, d.Describe(f))
			}
		}
	}

	return p
}

func (p *Plan) add(f media.File, t models.GroupType, desc string) {
	if c, ok := p.byPath[f.Path]; ok {
		if !c.Has(t) {
			c.Types = append(c.Types, t)
		}
		return
	}

	c := &Candidate{File: f, Types: []models.GroupType{t}, Descriptor: desc}
	p.byPath[f.Path] = c
	p.Candidates = append(p.Candidates, c)
}

// Filter returns a plan holding only the candidates proposed by at least
// one of the given types. Each kept candidate is a copy whose Types are
// narrowed to the given ones, so counts on the result ignore every other
// type. Order is preserved.
func (p *Plan) Filter(types ...models.GroupType) *Plan {
	out := &Plan{byPath: make(map[string]*Candidate)}
	for _, c := range p.Candidates {
		var kept []models.GroupType
		for _, t := range c.Types {
			if slices.Contains(types, t) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			continue
		}

		narrowed := *c
		narrowed.Types = kept
		out.byPath[c.File.Path] = &narrowed
		out.Candidates = append(out.Candidates, &narrowed)
	}
	return out
}

// Len returns the number of candidates
func (p *Plan) Len() int {
	return len(p.Candidates)
}

// Count returns how many candidates were proposed by group type t
func (p *Plan) Count(t models.GroupType) int {
	n := 0
	for _, c := range p.Candidates {
		if c.Has(t) {
			n++
		}
	}
	return n
}

// TotalSize returns the combined size of all candidates in bytes
func (p *Plan) TotalSize() int64 {
	var total int64
	for _, c := range p.Candidates {
		total += c.File.Size
	}
	return total
}

// Contains reports whether path is a candidate
func (p *Plan) Contains(path string) bool {
	_, ok := p.byPath[path]
	return ok
}
