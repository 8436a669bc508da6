// signature/signature_service.go
package signature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/coregate/cache"
	"github.com/dev-mohitbeniwal/coregate/config"
	coregate_errors "github.com/dev-mohitbeniwal/coregate/errors"
	logger "github.com/dev-mohitbeniwal/coregate/logging"
	"github.com/dev-mohitbeniwal/coregate/metrics"
	"github.com/dev-mohitbeniwal/coregate/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ISignatureService interface {
	UseSignature(req *Request) error
	VerifySignature(ctx context.Context, req *Request) (*Credential, error)
	EncryptSignature(query, body, publicKey string) (string, error)
}

type Options struct {
	CoreURL    string
	TTL        time.Duration
	SaltRounds int
	HTTPClient *http.Client
	Coalesce   bool
}

type SignatureService struct {
	resolver       *cache.Resolver[Credential]
	httpClient     *http.Client
	coreURL        string
	ttl            time.Duration
	saltRounds     int
	validationUtil *util.ValidationUtil
}

func NewSignatureService(store cache.Store, opts *Options) *SignatureService {
	if opts == nil {
		opts = &Options{}
	}

	s := &SignatureService{
		httpClient:     opts.HTTPClient,
		coreURL:        strings.TrimRight(opts.CoreURL, "/"),
		ttl:            opts.TTL,
		saltRounds:     opts.SaltRounds,
		validationUtil: util.NewValidationUtil(),
	}
	if s.coreURL == "" {
		s.coreURL = config.DefaultCoreURL
	}
	if s.ttl <= 0 {
		s.ttl = config.DefaultSignatureTTL
	}
	if s.saltRounds == 0 {
		s.saltRounds = config.DefaultSaltRounds
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}

	s.resolver = cache.NewResolver[Credential](store, s.validateCredential, cache.Options{
		Name:      "signature",
		Coalesce:  opts.Coalesce,
		RedactKey: redactCacheKey,
	})
	return s
}

// UseSignature only checks that an API key is present.
func (s *SignatureService) UseSignature(req *Request) error {
	if req.Header(HeaderAPIKey) == "" {
		return reject("api key header missing")
	}
	return nil
}

// VerifySignature runs the full check and returns the caller's credential.
// Every failure is a *MissingSignatureError.
func (s *SignatureService) VerifySignature(ctx context.Context, req *Request) (*Credential, error) {
	publicKey := req.Header(HeaderAPIKey)
	encryption := req.Header(HeaderSignature)
	if publicKey == "" || encryption == "" {
		return nil, reject("api key or signature header missing")
	}

	query, err := CanonicalQuery(req.Query)
	if err != nil {
		return nil, reject(fmt.Sprintf("query not encodable: %v", err))
	}
	body := CanonicalBody(req.Body)

	return s.VerifySignatureKey(ctx, query, body, publicKey, encryption)
}

// VerifySignatureKey resolves the credential for publicKey and compares the
// signature against the canonical query and body.
func (s *SignatureService) VerifySignatureKey(ctx context.Context, query, body, publicKey, encryption string) (*Credential, error) {
	credential, err := s.resolver.Resolve(ctx, cacheKey(publicKey), s.ttl, func(ctx context.Context) (Credential, error) {
		return s.fetchCredential(ctx, publicKey)
	})
	if err != nil {
		return nil, reject(fmt.Sprintf("credential unavailable: %v", err))
	}

	if err := s.CompareSignature(query, body, publicKey, encryption); err != nil {
		return nil, err
	}
	return &credential, nil
}

// CompareSignature checks encryption against the signing payload.
func (s *SignatureService) CompareSignature(query, body, publicKey, encryption string) error {
	if !Compare(SigningPayload(query, body, publicKey), encryption) {
		return reject("signature mismatch")
	}
	return nil
}

// EncryptSignature signs with the service's configured cost.
func (s *SignatureService) EncryptSignature(query, body, publicKey string) (string, error) {
	return EncryptSignature(query, body, publicKey, s.saltRounds)
}

func (s *SignatureService) fetchCredential(ctx context.Context, publicKey string) (credential Credential, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ObserveAuthority("signature", outcome, time.Since(start))
	}()

	endpoint := s.coreURL + "/signature/verify/" + url.PathEscape(publicKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to build credential request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// *url.Error carries the request URL, which contains the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		logger.Error("Credential authority unreachable",
			zap.String("keyFingerprint", Fingerprint(publicKey)),
			zap.Error(err))
		return Credential{}, fmt.Errorf("failed to fetch credential: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to read credential response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("credential authority returned status %d", resp.StatusCode)
	}

	var parsed credentialResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Credential{}, fmt.Errorf("failed to decode credential response: %w", err)
	}
	if err := s.validationUtil.ValidateStruct(parsed); err != nil {
		return Credential{}, err
	}
	return *parsed.Data, nil
}

func (s *SignatureService) validateCredential(c Credential) error {
	return s.validationUtil.ValidateStruct(c)
}

const cacheKeyPrefix = "signature:"

func cacheKey(publicKey string) string {
	return cacheKeyPrefix + publicKey
}

func redactCacheKey(key string) string {
	return cacheKeyPrefix + Fingerprint(strings.TrimPrefix(key, cacheKeyPrefix))
}

func reject(reason string) error {
	logger.Debug("Request not authenticated", zap.String("reason", reason))
	return coregate_errors.NewMissingSignature(reason)
}
