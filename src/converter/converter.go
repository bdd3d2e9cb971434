package converter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/log"
)

// Converter turns the raw images of each section into full and thumbnail WebP
// variants and writes the section's legacy manifest
type Converter struct {
	cfg       *config.Config
	processor *common.ImageProcessor
	exts      map[string]bool
}

// NewConverter creates a converter for the configured catalog
func NewConverter(cfg *config.Config) (*Converter, error) {
	processor, err := common.NewImageProcessor(cfg.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to create image processor: %w", err)
	}

	return &Converter{
		cfg:       cfg,
		processor: processor,
		exts:      common.ExtensionSet(cfg.Catalog.Extensions),
	}, nil
}

// Run converts every section under converter.base_dir. Only an unreadable
// base directory is returned as an error; everything else lands in the reports.
func (c *Converter) Run() ([]common.SectionReport, error) {
	sections, err := common.ListSections(c.cfg.Converter.BaseDir)
	if err != nil {
		return nil, err
	}

	reports := make([]common.SectionReport, 0, len(sections))
	for _, sec := range sections {
		reports = append(reports, c.ConvertSection(sec))
	}

	return reports, nil
}

// ConvertSection converts the raw images directly inside one section folder
func (c *Converter) ConvertSection(sec common.Section) common.SectionReport {
	report := common.SectionReport{Section: sec.Name, Path: sec.Path}

	fullDir := filepath.Join(sec.Path, c.cfg.Catalog.FullDir)
	thumbsDir := filepath.Join(sec.Path, c.cfg.Catalog.ThumbsDir)
	for _, dir := range []string{fullDir, thumbsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			report.Fail(fmt.Errorf("failed to create output folder: %w", err))
			log.Errorf("❌ %s: %v", sec.Name, report.FolderErr)
			return report
		}
	}

	images, err := common.ListImages(sec.Path, c.exts)
	if err != nil {
		report.Fail(err)
		log.Errorf("❌ %s: %v", sec.Name, err)
		return report
	}

	entries := make([]common.LegacyEntry, 0, len(images))
	for i, name := range images {
		seq := i + 1
		out := common.SequenceName(sec.Name, seq)

		res := c.convertImage(filepath.Join(sec.Path, name), filepath.Join(fullDir, out), filepath.Join(thumbsDir, out))
		res.Seq = seq
		report.Add(res)

		if !res.OK() {
			log.Errorf("❌ Error in %s: %v", res.Source, res.Err)
			if !c.cfg.Converter.KeepFailedEntries {
				continue
			}
		}

		entries = append(entries, common.LegacyEntry{
			ID:    seq,
			Full:  fmt.Sprintf("./%s/%s", c.cfg.Catalog.FullDir, out),
			Thumb: fmt.Sprintf("./%s/%s", c.cfg.Catalog.ThumbsDir, out),
			Alt:   c.cfg.AltText(seq, sec.Name),
		})
	}

	if err := common.WriteJSON(common.ManifestPath(sec), entries); err != nil {
		report.Fail(err)
		log.Errorf("❌ %s: %v", sec.Name, err)
		return report
	}

	report.Status = common.StatusDone
	log.Progressf("✅ %s: %d images converted, %d failed, manifest written", sec.Name, len(images), len(report.Failed()))
	return report
}

// convertImage writes both variants of one source. The two encodes are
// attempted independently so one failing does not skip the other.
func (c *Converter) convertImage(src, fullPath, thumbPath string) common.Result {
	res := common.Result{Source: src}

	img, err := c.processor.Open(src)
	if err != nil {
		res.Err = err
		return res
	}
	rgb := common.ToRGB(img)

	if err := c.processor.EncodeWebP(fullPath, rgb); err != nil {
		res.Err = multierr.Append(res.Err, fmt.Errorf("full variant: %w", err))
	} else {
		res.Outputs = append(res.Outputs, fullPath)
	}

	thumb, err := c.processor.Thumbnail(rgb)
	if err == nil {
		err = c.processor.EncodeWebP(thumbPath, thumb)
	}
	if err != nil {
		res.Err = multierr.Append(res.Err, fmt.Errorf("thumb variant: %w", err))
	} else {
		res.Outputs = append(res.Outputs, thumbPath)
	}

	return res
}

// ConvertTree writes a sibling .webp for every source image below root,
// keeping transparency. Unreadable subdirectories and failed files are
// recorded and the walk continues.
func (c *Converter) ConvertTree(root string) (common.SectionReport, error) {
	report := common.SectionReport{Section: filepath.Base(root), Path: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			report.Add(common.Result{Source: path, Err: err})
			log.Errorf("❌ Error in %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !common.HasExtension(d.Name(), c.exts) {
			return nil
		}

		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".webp"
		res := common.Result{Source: path}

		img, err := c.processor.Open(path)
		if err == nil {
			err = c.processor.EncodeWebP(out, img)
		}
		if err != nil {
			res.Err = err
			log.Errorf("❌ Error in %s: %v", path, err)
		} else {
			res.Outputs = []string{out}
			log.Progressf("✅ %s → %s", filepath.Base(path), filepath.Base(out))
		}
		report.Add(res)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	report.Status = common.StatusDone
	return report, nil
}
