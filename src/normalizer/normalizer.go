package normalizer

import (
	"fmt"
	"os"
	"strings"

	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/log"
)

// Normalizer rewrites legacy section manifests into the canonical {"images": [...]} shape
type Normalizer struct {
	cfg *config.Config
}

// NewNormalizer creates a new manifest normalizer
func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Run normalizes the manifest of every section under normalizer.base_dir
func (n *Normalizer) Run() ([]common.SectionReport, error) {
	sections, err := common.ListSections(n.cfg.Normalizer.BaseDir)
	if err != nil {
		return nil, err
	}

	reports := make([]common.SectionReport, 0, len(sections))
	for _, sec := range sections {
		reports = append(reports, n.NormalizeSection(sec))
	}

	log.Progressf("🎉 Normalization finished.")
	return reports, nil
}

// NormalizeSection rewrites <section>.json in place when it is still a legacy list.
// Canonical manifests are left byte-for-byte untouched.
func (n *Normalizer) NormalizeSection(sec common.Section) common.SectionReport {
	report := common.SectionReport{Section: sec.Name, Path: sec.Path}
	path := common.ManifestPath(sec)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		report.Status = common.StatusMissing
		log.Warnf("⚠️ No manifest found in %s", sec.Name)
		return report
	}

	m, err := common.ReadManifest(path)
	if err != nil {
		report.Fail(err)
		log.Errorf("❌ Error processing %s: %v", sec.Name, err)
		return report
	}

	switch m.Shape {
	case common.ShapeCanonical:
		report.Status = common.StatusUnchanged
		log.Infof("ℹ️ %s.json already normalized", sec.Name)
		return report

	case common.ShapeLegacy:
		canonical := Normalize(m.Legacy, sec.Name, n.cfg.AltText)
		if err := common.WriteJSON(path, canonical); err != nil {
			report.Fail(err)
			log.Errorf("❌ Error processing %s: %v", sec.Name, err)
			return report
		}
		report.Add(common.Result{Source: path, Outputs: []string{path}})
		report.Status = common.StatusDone
		log.Progressf("✅ %s.json normalized (%d images)", sec.Name, len(canonical.Images))
		return report

	default:
		err := fmt.Errorf("unexpected manifest shape %v", m.Shape)
		report.Fail(err)
		log.Errorf("❌ Error processing %s: %v", sec.Name, err)
		return report
	}
}

// Normalize maps legacy entries to canonical images in order. Alt text is
// regenerated from the 1-based position; any previous id or alt is dropped.
func Normalize(entries []common.LegacyEntry, section string, altText func(n int, section string) string) common.Canonical {
	images := make([]common.Image, 0, len(entries))
	for i, entry := range entries {
		images = append(images, common.Image{
			Thumb: StripDotSlash(entry.Thumb),
			Full:  StripDotSlash(entry.Full),
			Alt:   altText(i+1, section),
		})
	}
	return common.Canonical{Images: images}
}

// StripDotSlash removes a single leading "./"
func StripDotSlash(p string) string {
	return strings.TrimPrefix(p, "./")
}
