// featureflag/feature_flag.go
package featureflag

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/coregate/cache"
	"github.com/dev-mohitbeniwal/coregate/config"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/metrics"
	"github.com/dev-mohitbeniwal/coregate/util"
)

// DefaultValue is what callers pass when they have no preference. It is
// forwarded to the authority, never used as a local fallback.
const DefaultValue = true

// CallbackFunc receives the resolved flag status.
type CallbackFunc func(ctx context.Context, status bool) error

type IFeatureFlag interface {
	GetStatusFlag(ctx context.Context, flagCtx FlagContext, flag string, defaultValue bool) (bool, error)
	CbStatusFlag(ctx context.Context, cb CallbackFunc, flagCtx FlagContext, flag string, defaultValue bool) error
}

// Options overrides the flag authority settings. Zero values fall back to
// CORE_URL, then the built-in URL, and a 30 minute TTL.
type Options struct {
	TTL        time.Duration
	CoreURL    string
	HTTPClient *http.Client
	Coalesce   bool
}

type FeatureFlag struct {
	resolver       *cache.Resolver[FlagRecord]
	httpClient     *http.Client
	coreURL        string
	ttl            time.Duration
	validationUtil *util.ValidationUtil
}

func NewFeatureFlag(store cache.Store, opts *Options) *FeatureFlag {
	if opts == nil {
		opts = &Options{}
	}

	ff := &FeatureFlag{
		httpClient:     opts.HTTPClient,
		coreURL:        opts.CoreURL,
		ttl:            opts.TTL,
		validationUtil: util.NewValidationUtil(),
	}
	if ff.ttl <= 0 {
		ff.ttl = config.DefaultFeatureFlagTTL
	}
	if ff.coreURL == "" {
		ff.coreURL = os.Getenv("CORE_URL")
	}
	if ff.coreURL == "" {
		ff.coreURL = config.DefaultFeatureFlagURL
	}
	if ff.httpClient == nil {
		ff.httpClient = http.DefaultClient
	}

	ff.resolver = cache.NewResolver[FlagRecord](store, ff.validateRecord, cache.Options{
		Name:     "feature-flag",
		Coalesce: opts.Coalesce,
	})
	return ff
}

// GetStatusFlag returns the flag value for ctx, from cache when possible.
func (f *FeatureFlag) GetStatusFlag(ctx context.Context, flagCtx FlagContext, flag string, defaultValue bool) (bool, error) {
	record, err := f.getFlag(ctx, flagCtx, flag, defaultValue)
	if err != nil {
		return false, err
	}
	return record.Value(), nil
}

// CbStatusFlag resolves the flag exactly like GetStatusFlag and hands the
// result to cb.
func (f *FeatureFlag) CbStatusFlag(ctx context.Context, cb CallbackFunc, flagCtx FlagContext, flag string, defaultValue bool) error {
	status, err := f.GetStatusFlag(ctx, flagCtx, flag, defaultValue)
	if err != nil {
		return err
	}
	return cb(ctx, status)
}

func (f *FeatureFlag) getFlag(ctx context.Context, flagCtx FlagContext, flag string, defaultValue bool) (FlagRecord, error) {
	cacheKey := GenerateCacheKey(flag, flagCtx)
	return f.resolver.Resolve(ctx, cacheKey, f.ttl, func(ctx context.Context) (FlagRecord, error) {
		return f.fetchFlag(ctx, flagCtx, flag, defaultValue)
	})
}

func (f *FeatureFlag) fetchFlag(ctx context.Context, flagCtx FlagContext, flag string, defaultValue bool) (record FlagRecord, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ObserveAuthority("feature-flag", outcome, time.Since(start))
	}()

	payload, err := json.Marshal(flagRequest{
		Context:      flagCtx,
		FlagName:     flag,
		DefaultValue: defaultValue,
	})
	if err != nil {
		return FlagRecord{}, fmt.Errorf("failed to marshal flag request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.coreURL, bytes.NewReader(payload))
	if err != nil {
		return FlagRecord{}, fmt.Errorf("failed to build flag request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Error("Flag authority unreachable", zap.String("flag", flag), zap.Error(err))
		return FlagRecord{}, fmt.Errorf("failed to fetch flag %q: %w: %w", flag, coregate_errors.ErrAuthorityUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FlagRecord{}, fmt.Errorf("failed to read flag response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Flag authority returned an error",
			zap.String("flag", flag),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return FlagRecord{}, &coregate_errors.RemoteAuthorityError{
			Flag:       flag,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var parsed flagResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return FlagRecord{}, &coregate_errors.MalformedResponseError{Flag: flag, Body: string(body), Err: err}
	}
	if err := f.validationUtil.ValidateStruct(parsed); err != nil {
		logger.Error("Flag authority response failed validation",
			zap.String("flag", flag),
			zap.Error(err),
			zap.ByteString("body", body))
		return FlagRecord{}, &coregate_errors.MalformedResponseError{Flag: flag, Body: string(body), Err: err}
	}

	logger.Debug("Flag fetched from authority",
		zap.String("flag", flag),
		zap.Bool("value", parsed.Data.Value()))
	return *parsed.Data, nil
}

func (f *FeatureFlag) validateRecord(record FlagRecord) error {
	return f.validationUtil.ValidateStruct(record)
}
