package parts

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies a filename within a part set.
type Kind int

const (
	KindUnknown Kind = iota
	KindSingle            // self-contained archive
	KindFirst             // first volume of a multi-part set
	KindVolume            // follow-on volume
)

// Part is one file of a (possibly single-file) archive set.
type Part struct {
	Name    string
	Base    string // set base name: "game" for game.part3.rar, "backup.7z" for backup.7z.001
	Ordinal int    // 1-based volume number, 0 for single archives
	Kind    Kind
}

// Set is a group of parts that belong to the same archive.
type Set struct {
	Base  string
	Parts []Part
}

var (
	partNRegex   = regexp.MustCompile(`(?i)^(.+)\.part(\d+)\.(rar|zip|7z)$`)
	numericRegex = regexp.MustCompile(`^(.+\D)\.(\d{3})$`)
	rarVolRegex  = regexp.MustCompile(`(?i)^(.+)\.r(\d{2})$`)
	zipVolRegex  = regexp.MustCompile(`(?i)^(.+)\.z(\d{2})$`)
)

var singleExtensions = []string{".tar.gz", ".tgz", ".zip", ".rar", ".7z"}

// Detect classifies a filename. Typical patterns: name.part1.rar,
// name.7z.001, name.r00, name.z01, or a plain single archive.
func Detect(name string) Part {
	lower := strings.ToLower(name)
	if m := partNRegex.FindStringSubmatch(name); m != nil {
		ord, _ := strconv.Atoi(m[2])
		kind := KindVolume
		if ord == 1 {
			kind = KindFirst
		}
		return Part{Name: name, Base: m[1], Ordinal: ord, Kind: kind}
	}
	if m := numericRegex.FindStringSubmatch(name); m != nil {
		// The archive extension stays in the base so backup.7z.001 and an
		// unrelated backup.zip never land in the same set
		ord, _ := strconv.Atoi(m[2])
		kind := KindVolume
		if ord == 1 {
			kind = KindFirst
		}
		return Part{Name: name, Base: m[1], Ordinal: ord, Kind: kind}
	}
	if m := rarVolRegex.FindStringSubmatch(name); m != nil {
		// base.rar is the first volume, .r00 follows it
		ord, _ := strconv.Atoi(m[2])
		return Part{Name: name, Base: m[1], Ordinal: ord + 2, Kind: KindVolume}
	}
	if m := zipVolRegex.FindStringSubmatch(name); m != nil {
		ord, _ := strconv.Atoi(m[2])
		return Part{Name: name, Base: m[1], Ordinal: ord + 1, Kind: KindVolume}
	}
	for _, ext := range singleExtensions {
		if strings.HasSuffix(lower, ext) {
			return Part{Name: name, Base: name[:len(name)-len(ext)], Kind: KindSingle}
		}
	}
	return Part{Name: name, Kind: KindUnknown}
}

// IsNumericVolume reports whether name is a .NNN split volume that can
// only be used after concatenation.
func IsNumericVolume(name string) bool {
	return numericRegex.MatchString(name) && !partNRegex.MatchString(name)
}

// IsFirstPart reports whether name is an archive an extractor can be
// pointed at directly.
func IsFirstPart(name string) bool {
	p := Detect(name)
	return p.Kind == KindSingle || p.Kind == KindFirst
}

// volumeScheme names the multi-volume naming convention of a file, so
// sets that share a base name but not a convention stay separate.
func volumeScheme(name string) string {
	switch {
	case partNRegex.MatchString(name):
		return "partn"
	case numericRegex.MatchString(name):
		return "numeric"
	case rarVolRegex.MatchString(name):
		return "rar"
	case zipVolRegex.MatchString(name):
		return "zip"
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// Scan groups the files of a directory into part sets ordered by
// ordinal. Parts group by base name and volume scheme, never by base
// name alone. Unrecognized files are ignored.
func Scan(dir string) ([]Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %v", err)
	}
	type setKey struct {
		base   string
		scheme string
	}
	groups := make(map[setKey][]Part)
	var order []setKey
	var singles []Part
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p := Detect(entry.Name())
		if p.Kind == KindUnknown {
			continue
		}
		if p.Kind == KindSingle {
			singles = append(singles, p)
			continue
		}
		k := setKey{p.Base, volumeScheme(p.Name)}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}
	for _, p := range singles {
		// base.rar next to .rNN volumes is that set's first volume, and
		// base.zip next to .zNN likewise; any other single archive is its
		// own set even when it shares a base name with a volume set
		k := setKey{p.Base, volumeScheme(p.Name)}
		if _, ok := groups[k]; ok && (k.scheme == "rar" || k.scheme == "zip") {
			p.Kind = KindFirst
			p.Ordinal = 1
			groups[k] = append(groups[k], p)
			continue
		}
		k.scheme = "single:" + k.scheme
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}
	var sets []Set
	for _, k := range order {
		group := groups[k]
		sort.Slice(group, func(i, j int) bool { return group[i].Ordinal < group[j].Ordinal })
		sets = append(sets, Set{Base: k.base, Parts: group})
	}
	return sets, nil
}

// First returns the volume extraction should start from.
func (s *Set) First() (Part, bool) {
	for _, p := range s.Parts {
		if p.Kind == KindFirst || p.Kind == KindSingle {
			return p, true
		}
	}
	return Part{}, false
}

// MissingOrdinals reports gaps in the volume sequence. The sequence
// must start at 1 and be contiguous up to the highest ordinal seen.
func (s *Set) MissingOrdinals() []int {
	maxOrd := 0
	present := make(map[int]bool)
	for _, p := range s.Parts {
		if p.Ordinal == 0 {
			continue
		}
		present[p.Ordinal] = true
		if p.Ordinal > maxOrd {
			maxOrd = p.Ordinal
		}
	}
	var missing []int
	for i := 1; i <= maxOrd; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

// InferFilename extracts a local filename from a part URL.
func InferFilename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "download.bin"
	}
	candidate := path.Base(parsed.Path)
	if candidate == "" || candidate == "." || candidate == "/" {
		return "download.bin"
	}
	if unescaped, err := url.PathUnescape(candidate); err == nil {
		candidate = unescaped
	}
	return candidate
}
