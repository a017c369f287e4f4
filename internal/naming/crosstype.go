package naming

import "mediadupfinder/internal/media"

// Pair is a set of images and videos sharing one file stem
type Pair struct {
	Stem   string
	Videos []media.File
	Images []media.File
}

// CrossTypePairs groups files by stem and returns the stems that have at
// least one video and at least one image. Pairs are ordered by first
// appearance of the stem in files. Only names are compared.
func CrossTypePairs(files []media.File) []Pair {
	var order []string
	byStem := make(map[string]*Pair)

	for _, f := range files {
		stem := f.Stem()
		p, ok := byStem[stem]
		if !ok {
			p = &Pair{Stem: stem}
			byStem[stem] = p
			order = append(order, stem)
		}
		switch f.Kind {
		case media.Video:
			p.Videos = append(p.Videos, f)
		case media.Image:
			p.Images = append(p.Images, f)
		}
	}

	var pairs []Pair
	for _, stem := range order {
		p := byStem[stem]
		if len(p.Videos) > 0 && len(p.Images) > 0 {
			pairs = append(pairs, *p)
		}
	}
	return pairs
}
