// Package ingest walks the library tree and registers image files in
// the catalog so the batch processor has a population to work on.
// Files following the widthxheight suffix convention (photo-300x200.jpg
// next to photo.jpg) are registered as variants of their main file.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pixelpress/internal/assets"
	"pixelpress/internal/codec"
	"pixelpress/internal/config"
	"pixelpress/internal/logging"
)

// variantSuffix matches the derived-size naming convention: a trailing
// -WxH before the extension.
var variantSuffix = regexp.MustCompile(`^(.*)-(\d+x\d+)(\.[^.]+)$`)

// Summary reports one ingestion pass.
type Summary struct {
	Assets   int
	Variants int
	Skipped  int
}

// Scanner registers library images in the catalog.
type Scanner struct {
	cfg    *config.Config
	store  *assets.Store
	logger *slog.Logger
}

// New wires a scanner.
func New(cfg *config.Config, store *assets.Store, logger *slog.Logger) *Scanner {
	return &Scanner{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "ingest")}
}

// Scan walks the library directory and registers every recognized image
// file. Already-registered paths are skipped; derivative files produced
// by pixelpress itself are ignored.
func (s *Scanner) Scan(ctx context.Context) (Summary, error) {
	summary := Summary{}

	var mains []string
	variants := map[string][]string{} // main path -> variant paths
	err := filepath.WalkDir(s.cfg.Paths.LibraryDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if codec.MimeForPath(path) == "" || isDerivative(path) {
			return nil
		}
		if match := variantSuffix.FindStringSubmatch(filepath.Base(path)); match != nil {
			main := filepath.Join(filepath.Dir(path), match[1]+match[3])
			variants[main] = append(variants[main], path)
			return nil
		}
		mains = append(mains, path)
		return nil
	})
	if err != nil {
		return summary, err
	}
	sort.Strings(mains)

	for _, path := range mains {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		asset, registered, err := s.register(ctx, path)
		if err != nil {
			return summary, err
		}
		if registered {
			summary.Assets++
		} else {
			summary.Skipped++
		}
		for _, variantPath := range variants[path] {
			added, err := s.registerVariant(ctx, asset, variantPath)
			if err != nil {
				return summary, err
			}
			if added {
				summary.Variants++
			}
		}
		delete(variants, path)
	}

	// Variant-named files whose main file is gone from disk are still
	// library content; register them as standalone assets so they stay
	// in the optimization population.
	var orphans []string
	for _, paths := range variants {
		orphans = append(orphans, paths...)
	}
	sort.Strings(orphans)
	for _, path := range orphans {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		_, registered, err := s.register(ctx, path)
		if err != nil {
			return summary, err
		}
		if registered {
			summary.Assets++
			s.logger.Debug("registered variant file without a main file",
				logging.String("path", path),
			)
		} else {
			summary.Skipped++
		}
	}

	s.logger.Info("library scan complete",
		logging.Int("assets", summary.Assets),
		logging.Int("variants", summary.Variants),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *Scanner) register(ctx context.Context, path string) (*assets.Asset, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.store.FindByPath(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		// Known path whose file changed on disk: refresh the recorded
		// size so stats stay honest.
		if existing.FileSize != info.Size() {
			if err := s.store.UpdateFileSize(ctx, existing.ID, info.Size()); err != nil {
				return nil, false, err
			}
			existing.FileSize = info.Size()
		}
		return existing, false, nil
	}
	asset, err := s.store.Add(ctx, path, codec.MimeForPath(path), info.Size())
	if errors.Is(err, assets.ErrDuplicatePath) {
		existing, ferr := s.store.FindByPath(ctx, path)
		if ferr != nil {
			return nil, false, ferr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return asset, true, nil
}

func (s *Scanner) registerVariant(ctx context.Context, asset *assets.Asset, path string) (bool, error) {
	existingVariants, err := s.store.Variants(ctx, asset.ID)
	if err != nil {
		return false, err
	}
	for _, variant := range existingVariants {
		if variant.Path == path {
			return false, nil
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if match := variantSuffix.FindStringSubmatch(filepath.Base(path)); match != nil {
		name = match[2]
	}
	if err := s.store.AddVariant(ctx, asset.ID, name, path, info.Size()); err != nil {
		return false, err
	}
	return true, nil
}

// isDerivative reports whether the path is a pixelpress output file
// (original filename with a format extension appended).
func isDerivative(path string) bool {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".webp") && !strings.HasSuffix(lower, ".avif") {
		return false
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return codec.MimeForPath(stem) != ""
}
