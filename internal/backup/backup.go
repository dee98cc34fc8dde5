package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pensionado/internal/config"

	"github.com/rs/zerolog"
)

const (
	filePrefix      = "reservations_"
	fileExt         = ".json"
	timestampLayout = "20060102_150405"
)

// Snapshotter exposes the raw reservation table.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, raw []byte) error
}

// BackupService copies the reservation table into timestamped JSON files.
type BackupService struct {
	source Snapshotter
	config config.BackupConfig
	now    func() time.Time
	logger *zerolog.Logger
}

func NewBackupService(source Snapshotter, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		source: source,
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
}

// PerformBackup writes the current table and returns the file path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := s.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot reservations: %w", err)
	}

	name := filePrefix + s.now().Format(timestampLayout) + fileExt
	backupPath := filepath.Join(s.config.Dir, name)

	tmp, err := os.CreateTemp(s.config.Dir, name+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), backupPath); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	s.logger.Info().Str("path", backupPath).Int("bytes", len(data)).Msg("Backup completed successfully")
	return backupPath, nil
}

// List returns backup file paths, oldest first.
func (s *BackupService) List() ([]string, error) {
	files, err := os.ReadDir(s.config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, file := range files {
		if file.IsDir() || !isBackupName(file.Name()) {
			continue
		}
		out = append(out, filepath.Join(s.config.Dir, file.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Restore loads a backup file back into the store.
func (s *BackupService) Restore(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := s.source.Restore(ctx, data); err != nil {
		return fmt.Errorf("restore %s: %w", filepath.Base(path), err)
	}
	s.logger.Info().Str("path", path).Msg("Backup restored")
	return nil
}

// CleanupOldBackups removes backups older than the retention window and
// returns how many were deleted.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.Dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0

	for _, file := range files {
		if file.IsDir() || !isBackupName(file.Name()) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.Dir, file.Name())); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
				continue
			}
			removed++
		}
	}
	return removed
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt)
}
