package archiver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/log"
)

// ErrDestinationExists is returned instead of overwriting an archived original
var ErrDestinationExists = errors.New("destination already exists")

// Mover moves raw section images into the section's originals folder
type Mover struct {
	cfg  *config.Config
	exts map[string]bool
}

// NewMover creates a new file mover
func NewMover(cfg *config.Config) *Mover {
	return &Mover{
		cfg:  cfg,
		exts: common.ExtensionSet(cfg.Catalog.Extensions),
	}
}

// GetOriginalsFolder returns the archive folder path for a section
func (m *Mover) GetOriginalsFolder(sec common.Section) string {
	return filepath.Join(sec.Path, m.cfg.Catalog.OriginalsDir)
}

// Run archives every section under archiver.base_dir. Unless
// archiver.continue_on_error is set, the first failed move stops the run and
// is returned along with the reports gathered so far.
func (m *Mover) Run() ([]common.SectionReport, error) {
	sections, err := common.ListSections(m.cfg.Archiver.BaseDir)
	if err != nil {
		return nil, err
	}

	reports := make([]common.SectionReport, 0, len(sections))
	for _, sec := range sections {
		report, err := m.ArchiveSection(sec)
		reports = append(reports, report)
		if err != nil {
			return reports, fmt.Errorf("failed to archive %s: %w", sec.Name, err)
		}
	}

	log.Progressf("✅ All original images were moved to their %s/ folders.", m.cfg.Catalog.OriginalsDir)
	return reports, nil
}

// ArchiveSection moves every raw image of one section into its originals folder
func (m *Mover) ArchiveSection(sec common.Section) (common.SectionReport, error) {
	report := common.SectionReport{Section: sec.Name, Path: sec.Path}
	targetFolder := m.GetOriginalsFolder(sec)

	// Ensure target folder exists
	if err := os.MkdirAll(targetFolder, 0755); err != nil {
		err = fmt.Errorf("failed to create originals folder: %w", err)
		report.Fail(err)
		return report, err
	}

	images, err := common.ListImages(sec.Path, m.exts)
	if err != nil {
		report.Fail(err)
		return report, err
	}

	for _, name := range images {
		src := filepath.Join(sec.Path, name)
		dst, err := m.MoveImage(src, targetFolder)
		if err != nil {
			report.Add(common.Result{Source: src, Err: err})
			log.Errorf("❌ Failed to move %s: %v", src, err)
			if !m.cfg.Archiver.ContinueOnError {
				report.Status = common.StatusFailed
				return report, err
			}
			continue
		}

		report.Add(common.Result{Source: src, Outputs: []string{dst}})
		log.Progressf("📦 Moved: %s → %s/%s/", name, sec.Name, m.cfg.Catalog.OriginalsDir)
	}

	report.Status = common.StatusDone
	return report, nil
}

// MoveImage moves a file into targetFolder keeping its name and returns the new path
func (m *Mover) MoveImage(src, targetFolder string) (string, error) {
	targetPath := filepath.Join(targetFolder, filepath.Base(src))

	// Check if source and target are the same
	if src == targetPath {
		return targetPath, nil
	}

	if _, err := os.Lstat(targetPath); err == nil {
		return "", fmt.Errorf("%s: %w", targetPath, ErrDestinationExists)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check destination: %w", err)
	}

	err := os.Rename(src, targetPath)
	if errors.Is(err, syscall.EXDEV) {
		err = moveAcrossDevices(src, targetPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}

	return targetPath, nil
}

// moveAcrossDevices copies src to dst and removes src once the copy is complete
func moveAcrossDevices(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := copyFile(src, dst, info.Mode()); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}

// copyFile copies a single file
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}

	return dstFile.Close()
}
