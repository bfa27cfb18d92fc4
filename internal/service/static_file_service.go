package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"nsn-odds-data/internal/apierr"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GenerateOutcome is the result of one static file generation.
type GenerateOutcome string

const (
	OutcomeUpdated   GenerateOutcome = "updated"
	OutcomeUnchanged GenerateOutcome = "unchanged"
	OutcomeNoData    GenerateOutcome = "no_data"
)

const defaultSport = "football"

var (
	unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	staticName    = regexp.MustCompile(`^[A-Za-z0-9_-]+\.json$`)
)

type RequestDataStore interface {
	GetOrCreate(ctx context.Context, provider, providerID, sport, market string) (*domain.RequestData, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.RequestData, error)
	ListActive(ctx context.Context) ([]*domain.RequestData, error)
	ListExpired(ctx context.Context, cutoff time.Time) ([]*domain.RequestData, error)
	MarkRefreshed(ctx context.Context, id uuid.UUID, eventDate *time.Time, isEnded bool, at time.Time) error
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type StaticFileStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.StaticFile, error)
	GetByRequestData(ctx context.Context, requestDataID uuid.UUID) (*domain.StaticFile, error)
	Create(ctx context.Context, requestDataID uuid.UUID, path string) (*domain.StaticFile, error)
	UpdateContent(ctx context.Context, id uuid.UUID, hash string, lastModified int64) error
	ListPaths(ctx context.Context, requestDataIDs []uuid.UUID) ([]string, error)
}

type OddsFetcher interface {
	GetOdds(ctx context.Context, eventID string, bookmakers []string, market domain.Market) (domain.MarketOdds, error)
}

// StaticDocument is the JSON written to disk for each generated file.
type StaticDocument struct {
	LastModified int64      `json:"lastModified"`
	Data         StaticData `json:"data"`
	IsEnded      bool       `json:"isEnded"`
	Hash         string     `json:"hash"`
}

type StaticData struct {
	Event      domain.EventData `json:"event"`
	Market     string           `json:"market"`
	Bookmakers any              `json:"bookmakers"`
}

type RefreshResult struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	NoData    int `json:"no_data"`
	Errors    int `json:"errors"`
}

type CleanupResult struct {
	RequestsDeleted int64 `json:"request_data_deleted"`
	FilesDeleted    int   `json:"files_deleted"`
	DirsRemoved     int   `json:"directories_removed"`
	CutoffDate      int64 `json:"cutoff_date"`
}

// StaticFileService writes odds snapshots to disk and keeps their records current.
type StaticFileService struct {
	tracer            trace.Tracer
	requests          RequestDataStore
	files             StaticFileStore
	odds              OddsFetcher
	root              string
	defaultBookmakers []string
	now               func() time.Time
}

func NewStaticFileService(
	tracer trace.Tracer,
	requests RequestDataStore,
	files StaticFileStore,
	odds OddsFetcher,
	root string,
	defaultBookmakers []string,
) *StaticFileService {
	return &StaticFileService{
		tracer:            tracer,
		requests:          requests,
		files:             files,
		odds:              odds,
		root:              root,
		defaultBookmakers: defaultBookmakers,
		now:               time.Now,
	}
}

func (s *StaticFileService) Root() string { return s.root }

// Prepare returns the request record for eventID and market along with its
// static file, creating either when missing.
func (s *StaticFileService) Prepare(ctx context.Context, eventID string, market domain.Market) (*domain.RequestData, *domain.StaticFile, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.prepare")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil, apierr.Validation("event_id is required")
	}

	rd, err := s.requests.GetOrCreate(ctx, domain.ProviderOddsAPI, eventID, defaultSport, string(market))
	if err != nil {
		return nil, nil, apierr.Database(err)
	}

	file, err := s.files.GetByRequestData(ctx, rd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		file, err = s.files.Create(ctx, rd.ID, s.newPath(eventID))
	}
	if err != nil {
		return nil, nil, apierr.Database(err)
	}
	return rd, file, nil
}

// newPath builds {YYYY}/{MM}/odds-{id}-{8 hex}.json relative to the root.
func (s *StaticFileService) newPath(providerID string) string {
	now := s.now().UTC()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("odds-%s-%s.json", unsafeIDChars.ReplaceAllString(providerID, "_"), suffix)
	return fmt.Sprintf("%04d/%02d/%s", now.Year(), int(now.Month()), name)
}

// HashOdds returns the md5 of odds serialized with sorted keys, ignoring the
// generation timestamp, timestamps filled from it and any previously stored hash.
func HashOdds(odds domain.MarketOdds) (string, error) {
	raw, err := json.Marshal(odds)
	if err != nil {
		return "", fmt.Errorf("encode odds: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode odds: %w", err)
	}
	var generatedAt string
	if meta, ok := doc["metadata"].(map[string]any); ok {
		generatedAt, _ = meta["generated_at"].(string)
		delete(meta, "generated_at")
		delete(meta, "hash")
	}
	if generatedAt != "" {
		dropFilledTimes(doc, generatedAt)
	}
	// encoding/json writes map keys in sorted order.
	canonical, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode canonical odds: %w", err)
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// dropFilledTimes removes updated_at and commence_time values equal to the
// generation time. Transformers fill missing upstream timestamps with it.
func dropFilledTimes(v any, generatedAt string) {
	switch node := v.(type) {
	case map[string]any:
		for _, k := range []string{"updated_at", "commence_time"} {
			if ts, ok := node[k].(string); ok && ts == generatedAt {
				delete(node, k)
			}
		}
		for _, child := range node {
			dropFilledTimes(child, generatedAt)
		}
	case []any:
		for _, child := range node {
			dropFilledTimes(child, generatedAt)
		}
	}
}

// Generate fetches current odds for rd and rewrites file when the content
// changed or force is set.
func (s *StaticFileService) Generate(ctx context.Context, rd *domain.RequestData, file *domain.StaticFile, bookmakers []string, force bool) (GenerateOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.generate")
	defer span.End()
	span.SetAttributes(attribute.String("provider.id", rd.ProviderID), attribute.String("market", rd.Market))

	if len(bookmakers) == 0 {
		bookmakers = s.defaultBookmakers
	}
	odds, err := s.odds.GetOdds(ctx, rd.ProviderID, bookmakers, domain.ParseMarket(rd.Market))
	if err != nil {
		return "", err
	}
	if odds == nil {
		log.Printf("No odds data for event %s", rd.ProviderID)
		return OutcomeNoData, nil
	}

	hash, err := HashOdds(odds)
	if err != nil {
		return "", err
	}
	meta := odds.Meta()
	meta.Hash = hash
	event := odds.EventInfo()
	now := s.now()

	if !force && file.Hash != nil && *file.Hash == hash {
		if err := s.requests.MarkRefreshed(ctx, rd.ID, &event.CommenceTime, meta.IsEnded, now); err != nil {
			return "", apierr.Database(err)
		}
		return OutcomeUnchanged, nil
	}

	lastModified := now.Unix()
	doc := StaticDocument{
		LastModified: lastModified,
		Data: StaticData{
			Event:      event,
			Market:     odds.MarketKey(),
			Bookmakers: odds.BookmakerList(),
		},
		IsEnded: meta.IsEnded,
		Hash:    hash,
	}
	if err := writeFileAtomic(filepath.Join(s.root, filepath.FromSlash(file.Path)), doc); err != nil {
		return "", err
	}

	if err := s.files.UpdateContent(ctx, file.ID, hash, lastModified); err != nil {
		return "", apierr.Database(err)
	}
	if err := s.requests.MarkRefreshed(ctx, rd.ID, &event.CommenceTime, meta.IsEnded, now); err != nil {
		return "", apierr.Database(err)
	}
	file.Hash = &hash
	file.LastModified = &lastModified

	log.Printf("Generated static file: %s", file.Path)
	return OutcomeUpdated, nil
}

// GenerateByID loads the static file and its request record, then generates it.
func (s *StaticFileService) GenerateByID(ctx context.Context, staticFileID uuid.UUID, bookmakers []string) (GenerateOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.generate-by-id")
	defer span.End()

	file, err := s.files.Get(ctx, staticFileID)
	if err != nil {
		return "", fmt.Errorf("load static file %s: %w", staticFileID, err)
	}
	rd, err := s.requests.Get(ctx, file.RequestDataID)
	if err != nil {
		return "", fmt.Errorf("load request data %s: %w", file.RequestDataID, err)
	}
	return s.Generate(ctx, rd, file, bookmakers, false)
}

// RefreshActive regenerates every non-ended record whose refresh tier has elapsed.
func (s *StaticFileService) RefreshActive(ctx context.Context) (RefreshResult, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.refresh-active")
	defer span.End()

	var res RefreshResult
	active, err := s.requests.ListActive(ctx)
	if err != nil {
		return res, apierr.Database(err)
	}

	now := s.now()
	for _, rd := range active {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !rd.NeedsRefresh(now) {
			continue
		}
		res.Checked++

		file, err := s.files.GetByRequestData(ctx, rd.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("Failed to load static file for %s: %v", rd.ProviderID, err)
			res.Errors++
			continue
		}

		outcome, err := s.Generate(ctx, rd, file, nil, false)
		if err != nil {
			log.Printf("Failed to refresh %s: %v", rd.ProviderID, err)
			res.Errors++
			continue
		}
		switch outcome {
		case OutcomeUpdated:
			res.Updated++
		case OutcomeUnchanged:
			res.Unchanged++
		case OutcomeNoData:
			res.NoData++
		}
	}

	log.Printf("Odds refresh completed: %d checked, %d updated, %d unchanged, %d errors",
		res.Checked, res.Updated, res.Unchanged, res.Errors)
	return res, nil
}

// FileInfo returns the static file generated for a request record.
func (s *StaticFileService) FileInfo(ctx context.Context, requestID uuid.UUID) (*domain.StaticFile, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.file-info")
	defer span.End()

	file, err := s.files.GetByRequestData(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierr.NotFound("File not found")
	}
	if err != nil {
		return nil, apierr.Database(err)
	}
	return file, nil
}

// ReadFile returns the contents of {year}/{month}/{name} under the root.
func (s *StaticFileService) ReadFile(year, month, name string) ([]byte, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1000 || y > 9999 {
		return nil, apierr.NotFound("File not found")
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil, apierr.NotFound("File not found")
	}
	if !staticName.MatchString(name) {
		return nil, apierr.NotFound("File not found")
	}

	data, err := os.ReadFile(filepath.Join(s.root, fmt.Sprintf("%04d", y), fmt.Sprintf("%02d", m), name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, apierr.NotFound("File not found")
	}
	if err != nil {
		return nil, fmt.Errorf("read static file: %w", err)
	}
	return data, nil
}

// Cleanup deletes records past the retention window together with their
// files and any month or year directories left empty.
func (s *StaticFileService) Cleanup(ctx context.Context, retentionDays int) (*CleanupResult, error) {
	ctx, span := s.tracer.Start(ctx, "static-file-service.cleanup")
	defer span.End()

	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	res := &CleanupResult{CutoffDate: cutoff.Unix()}

	expired, err := s.requests.ListExpired(ctx, cutoff)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if len(expired) == 0 {
		return res, nil
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, rd := range expired {
		ids = append(ids, rd.ID)
	}
	paths, err := s.files.ListPaths(ctx, ids)
	if err != nil {
		return nil, apierr.Database(err)
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		full := filepath.Join(s.root, filepath.FromSlash(p))
		if err := os.Remove(full); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Printf("Failed to remove %s: %v", full, err)
			}
			continue
		}
		res.FilesDeleted++
		month := filepath.Dir(full)
		dirs[month] = struct{}{}
		dirs[filepath.Dir(month)] = struct{}{}
	}
	res.DirsRemoved = removeEmptyDirs(s.root, dirs)

	deleted, err := s.requests.Delete(ctx, ids)
	if err != nil {
		return nil, apierr.Database(err)
	}
	res.RequestsDeleted = deleted

	log.Printf("Cleanup removed %d records, %d files, %d directories", deleted, res.FilesDeleted, res.DirsRemoved)
	return res, nil
}

// removeEmptyDirs removes the given directories when empty, deepest first,
// never touching root itself.
func removeEmptyDirs(root string, dirs map[string]struct{}) int {
	ordered := make([]string, 0, len(dirs))
	for d := range dirs {
		if filepath.Clean(d) != filepath.Clean(root) {
			ordered = append(ordered, d)
		}
	}
	// Month directories are longer than their year parents.
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	removed := 0
	for _, d := range ordered {
		entries, err := os.ReadDir(d)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(d); err == nil {
			removed++
		}
	}
	return removed
}

// writeFileAtomic encodes v as indented JSON into a temp file next to path
// and renames it into place.
func writeFileAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create static dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".odds-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("write static file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close static file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod static file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename static file: %w", err)
	}
	return nil
}
