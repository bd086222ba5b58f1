package parts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report is the outcome of a part set verification. Extraction must
// not run on a set with a non-empty Missing or Corrupted list.
type Report struct {
	Missing   []string // parts absent from disk (or ordinal gaps)
	Corrupted []string // size or checksum mismatch, with reason
	Verified  []string // parts that passed
}

func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Corrupted) == 0
}

func (r *Report) Summary() string {
	if r.OK() {
		return fmt.Sprintf("all %d parts verified", len(r.Verified))
	}
	var problems []string
	if len(r.Missing) > 0 {
		problems = append(problems, fmt.Sprintf("%d missing", len(r.Missing)))
	}
	if len(r.Corrupted) > 0 {
		problems = append(problems, fmt.Sprintf("%d corrupted", len(r.Corrupted)))
	}
	return strings.Join(problems, ", ")
}

// VerifyManifest checks every manifest part on disk: existence, size,
// then SHA-256.
func VerifyManifest(dir string, manifest *Manifest) (*Report, error) {
	report := &Report{}
	for _, part := range manifest.Parts {
		path := filepath.Join(dir, part.Name)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			report.Missing = append(report.Missing, part.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error checking part %s: %v", part.Name, err)
		}
		if info.Size() != part.Size {
			report.Corrupted = append(report.Corrupted,
				fmt.Sprintf("%s: size %d, expected %d", part.Name, info.Size(), part.Size))
			continue
		}
		sum, _, err := HashFile(path)
		if err != nil {
			return nil, fmt.Errorf("error hashing part %s: %v", part.Name, err)
		}
		if sum != part.SHA256 {
			report.Corrupted = append(report.Corrupted, fmt.Sprintf("%s: checksum mismatch", part.Name))
			continue
		}
		report.Verified = append(report.Verified, part.Name)
	}
	return report, nil
}

// VerifySet checks a scanned set for ordinal gaps. Without a manifest
// there is nothing to compare checksums against.
func VerifySet(set *Set) *Report {
	report := &Report{}
	for _, ord := range set.MissingOrdinals() {
		report.Missing = append(report.Missing, fmt.Sprintf("%s: volume %d", set.Base, ord))
	}
	for _, p := range set.Parts {
		report.Verified = append(report.Verified, p.Name)
	}
	return report
}
