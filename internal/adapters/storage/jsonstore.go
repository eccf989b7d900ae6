package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

// uuidPrefix matches a UUID plus separator at the start of a filename, the
// shape previous analysis runs leave on copied captures.
var uuidPrefix = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}_`)

// JSONStore persists analysis artifacts as an on-disk JSON tree:
// {root}/{vendor_slug}/{device_slug}/{analysis_id}.json, with the original
// capture copied alongside. Writes take an advisory per-directory lock;
// reads do not lock.
type JSONStore struct {
	root  string
	log   *slog.Logger
	index *Index

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewJSONStore builds a store rooted at dir. The index is optional.
func NewJSONStore(dir string, index *Index, log *slog.Logger) *JSONStore {
	if log == nil {
		log = slog.Default()
	}
	return &JSONStore{
		root:  dir,
		log:   log,
		index: index,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *JSONStore) dirLock(dir string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[dir]
	if !ok {
		l = &sync.Mutex{}
		s.locks[dir] = l
	}
	return l
}

// Save writes the artifact and copies the capture file beside it. Returns
// the JSON path.
func (s *JSONStore) Save(analysis *domain.BandSteeringAnalysis, capturePath string) (string, error) {
	device := analysis.PrimaryDevice()
	dir := filepath.Join(s.root, vendorSlug(device), deviceSlug(device))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", domain.ErrPersistence, dir, err)
	}

	lock := s.dirLock(dir)
	lock.Lock()
	defer lock.Unlock()

	jsonPath := filepath.Join(dir, analysis.AnalysisID+".json")
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding analysis %s: %v", domain.ErrPersistence, analysis.AnalysisID, err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", domain.ErrPersistence, jsonPath, err)
	}

	if capturePath != "" {
		if err := s.copyCapture(dir, analysis.AnalysisID, capturePath); err != nil {
			s.log.Warn("capture copy failed", "analysis_id", analysis.AnalysisID, "error", err)
		}
	}

	if s.index != nil {
		if err := s.index.Insert(analysis, jsonPath); err != nil {
			s.log.Warn("index insert failed", "analysis_id", analysis.AnalysisID, "error", err)
		}
	}

	s.log.Info("analysis persisted", "analysis_id", analysis.AnalysisID, "path", jsonPath)
	return jsonPath, nil
}

// copyCapture copies the original pcap next to the artifact, stripping any
// stale UUID prefix before adding this run's own.
func (s *JSONStore) copyCapture(dir, analysisID, capturePath string) error {
	base := uuidPrefix.ReplaceAllString(filepath.Base(capturePath), "")
	dst := filepath.Join(dir, analysisID+"_"+base)

	in, err := os.Open(capturePath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Load reads one artifact by ID.
func (s *JSONStore) Load(analysisID string) (*domain.BandSteeringAnalysis, error) {
	path, err := s.findArtifact(analysisID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrPersistence, path, err)
	}
	var analysis domain.BandSteeringAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrPersistence, path, err)
	}
	return &analysis, nil
}

func (s *JSONStore) findArtifact(analysisID string) (string, error) {
	if s.index != nil {
		if path, err := s.index.PathFor(analysisID); err == nil && path != "" {
			if _, statErr := os.Stat(path); statErr == nil {
				return path, nil
			}
		}
	}

	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if d.Name() == analysisID+".json" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: scanning %s: %v", domain.ErrPersistence, s.root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrAnalysisNotFound, analysisID)
	}
	return found, nil
}

// List enumerates every artifact, newest first.
func (s *JSONStore) List() ([]domain.AnalysisSummary, error) {
	var summaries []domain.AnalysisSummary

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		analysis, loadErr := readArtifact(path)
		if loadErr != nil {
			s.log.Warn("skipping unreadable artifact", "path", path, "error", loadErr)
			return nil
		}
		device := analysis.PrimaryDevice()
		summaries = append(summaries, domain.AnalysisSummary{
			AnalysisID:        analysis.AnalysisID,
			Filename:          analysis.Filename,
			AnalysisTimestamp: analysis.AnalysisTimestamp,
			Vendor:            device.Vendor,
			Model:             stringOr(device.Model, ""),
			Verdict:           analysis.Verdict,
			Transitions:       len(analysis.Transitions),
			Path:              path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", domain.ErrPersistence, s.root, err)
	}

	sortSummariesDesc(summaries)
	return summaries, nil
}

// Delete removes one artifact and its copied capture files.
func (s *JSONStore) Delete(analysisID string) error {
	path, err := s.findArtifact(analysisID)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	lock := s.dirLock(dir)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: removing %s: %v", domain.ErrPersistence, path, err)
	}
	// Copied captures share the artifact's UUID prefix.
	matches, _ := filepath.Glob(filepath.Join(dir, analysisID+"_*"))
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			s.log.Warn("removing capture copy failed", "path", m, "error", err)
		}
	}

	if s.index != nil {
		if err := s.index.Remove(analysisID); err != nil {
			s.log.Warn("index remove failed", "analysis_id", analysisID, "error", err)
		}
	}
	return nil
}

// DeleteByVendor removes every artifact under a vendor subtree. Returns the
// number of artifacts removed.
func (s *JSONStore) DeleteByVendor(vendor string) (int, error) {
	dir := filepath.Join(s.root, slugify(vendor))
	count, ids, err := countArtifacts(dir)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("%w: removing %s: %v", domain.ErrPersistence, dir, err)
	}
	s.removeFromIndex(ids)
	return count, nil
}

// DeleteBatch removes a set of artifacts by ID; missing IDs are skipped.
func (s *JSONStore) DeleteBatch(analysisIDs []string) (int, error) {
	deleted := 0
	for _, id := range analysisIDs {
		err := s.Delete(id)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, domain.ErrAnalysisNotFound):
		default:
			return deleted, err
		}
	}
	return deleted, nil
}

// DeleteAll wipes the whole analysis tree.
func (s *JSONStore) DeleteAll() (int, error) {
	count, ids, err := countArtifacts(s.root)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: reading %s: %v", domain.ErrPersistence, s.root, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return 0, fmt.Errorf("%w: removing %s: %v", domain.ErrPersistence, e.Name(), err)
		}
	}
	s.removeFromIndex(ids)
	return count, nil
}

func (s *JSONStore) removeFromIndex(ids []string) {
	if s.index == nil {
		return
	}
	for _, id := range ids {
		if err := s.index.Remove(id); err != nil {
			s.log.Warn("index remove failed", "analysis_id", id, "error", err)
		}
	}
}

func countArtifacts(dir string) (int, []string, error) {
	count := 0
	var ids []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			count++
			ids = append(ids, strings.TrimSuffix(d.Name(), ".json"))
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: scanning %s: %v", domain.ErrPersistence, dir, err)
	}
	return count, ids, nil
}

func readArtifact(path string) (*domain.BandSteeringAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var analysis domain.BandSteeringAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func sortSummariesDesc(summaries []domain.AnalysisSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].AnalysisTimestamp.After(summaries[j].AnalysisTimestamp)
	})
}

func vendorSlug(device domain.DeviceInfo) string {
	if device.Vendor == "" {
		return "unknown"
	}
	return slugify(device.Vendor)
}

func deviceSlug(device domain.DeviceInfo) string {
	if device.Model != nil && *device.Model != "" {
		return slugify(*device.Model)
	}
	if device.MAC != "" {
		return strings.ReplaceAll(strings.ToLower(device.MAC), ":", "-")
	}
	return "unknown"
}

var slugStrip = regexp.MustCompile(`[^a-z0-9._-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = slugStrip.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
