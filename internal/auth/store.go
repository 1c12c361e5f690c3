package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/gcalctl/internal/logging"
	"github.com/teemow/gcalctl/internal/tokenstore"
)

// Store owns the persisted credential for one account. It is the only
// writer of the stored representation; callers only ever receive read-only
// credentials valid for the current invocation.
type Store struct {
	conf    *oauth2.Config
	backend tokenstore.Store
	consent Consent
	logger  *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// NewStore creates a credential store backed by the given persistence
// backend and consent flow. conf carries the application identity (client
// ID/secret and endpoints); its scope list is ignored in favor of the
// scopes passed to Acquire.
func NewStore(conf *oauth2.Config, backend tokenstore.Store, consent Consent, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		conf:    conf,
		backend: backend,
		consent: consent,
		logger:  logger,
		now:     time.Now,
	}
}

// Acquire returns a credential covering the required scopes, performing the
// minimum necessary work:
//
//   - the stored credential is returned unchanged when its access token is
//     still fresh (no network call, no rewrite)
//   - an expired credential with a refresh token is refreshed, persisted
//     and returned
//   - otherwise the full interactive authorization flow runs, blocking
//     until the user completes or declines consent
//
// A stored credential whose scopes don't cover the request is discarded and
// re-authorized; it is never refreshed with insufficient scope. A rejected
// or unreachable refresh falls through to interactive authorization rather
// than failing, so a revoked refresh token never strands the user. Every
// path that creates or mutates a credential persists it before returning.
func (s *Store) Acquire(ctx context.Context, requiredScopes []string) (*Credential, error) {
	cred, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if cred != nil && !cred.Covers(requiredScopes) {
		s.logger.Info("stored credential was granted for different scopes, re-authorization required")
		if err := s.backend.Delete(ctx); err != nil {
			return nil, failuref(StorageError, "removing credential with stale scopes: %v", err)
		}
		cred = nil
	}

	if cred != nil {
		if cred.Fresh(s.now()) {
			return cred, nil
		}
		if cred.RefreshToken != "" {
			refreshed, err := s.refresh(ctx, cred)
			if err == nil {
				if err := s.persist(ctx, refreshed); err != nil {
					return nil, err
				}
				s.logger.Debug("access token refreshed",
					slog.Time("expiry", refreshed.Expiry),
					slog.String("access_token", logging.SanitizeToken(refreshed.AccessToken)))
				return refreshed, nil
			}
			// A revoked refresh token is an expected, recoverable
			// condition; fall through to interactive authorization.
			s.logger.Warn("token refresh failed, falling back to interactive authorization",
				slog.String("kind", string(KindOf(err))), logging.Err(err))
		}
	}

	cred, err = s.authorize(ctx, requiredScopes)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, cred); err != nil {
		return nil, err
	}
	s.logger.Info("authorization complete", slog.Time("expiry", cred.Expiry))
	return cred, nil
}

// Stored returns the persisted credential without validating or refreshing
// it, or nil if none exists. Used for status reporting only.
func (s *Store) Stored(ctx context.Context) (*Credential, error) {
	return s.load(ctx)
}

// Forget deletes the persisted credential. The next Acquire will run the
// interactive authorization flow.
func (s *Store) Forget(ctx context.Context) error {
	if err := s.backend.Delete(ctx); err != nil {
		return failuref(StorageError, "removing stored credential: %v", err)
	}
	return nil
}

// load reads and parses the persisted credential. Absence is not an error;
// it signals that authorization is required. An unparseable file is treated
// the same as an absent one (and removed), so a corrupted credential causes
// one re-authorization instead of a hard failure or a reauth loop.
func (s *Store) load(ctx context.Context) (*Credential, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, failuref(StorageError, "reading stored credential: %v", err)
	}

	cred, err := unmarshalCredential(data)
	if err != nil {
		s.logger.Warn("stored credential is unreadable, re-authorization required", logging.Err(err))
		if err := s.backend.Delete(ctx); err != nil {
			return nil, failuref(StorageError, "removing corrupted credential: %v", err)
		}
		return nil, nil
	}
	return cred, nil
}

// refresh exchanges the refresh token for a new access token. The refresh
// token is preserved unless the server rotates it.
func (s *Store) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	// An empty access token forces the token source to hit the refresh
	// endpoint instead of applying its own freshness rules.
	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyTokenError(err)
	}

	next := fromToken(tok, cred.Scopes)
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}
	return next, nil
}

// authorize runs the interactive authorization-code flow: consent in the
// browser, then exchange of the resulting code. Unlike refresh, a failed
// exchange here is terminal for the invocation.
func (s *Store) authorize(ctx context.Context, scopes []string) (*Credential, error) {
	conf := *s.conf
	conf.Scopes = scopes
	state := uuid.NewString()

	grant, err := s.consent.Authorize(ctx, &conf, state)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return nil, f
		}
		return nil, failuref(NetworkError, "consent flow failed: %v", err)
	}

	conf.RedirectURL = grant.RedirectURL
	tok, err := conf.Exchange(ctx, grant.Code)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if tok.AccessToken == "" {
		return nil, failuref(InvalidGrant, "token exchange returned no access token")
	}
	return fromToken(tok, scopes), nil
}

// persist durably stores the credential. Losing the ability to persist is
// surfaced, not swallowed: it would silently force a re-authorization on
// every run.
func (s *Store) persist(ctx context.Context, cred *Credential) error {
	data, err := cred.marshal()
	if err != nil {
		return failuref(StorageError, "encoding credential: %v", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return failuref(StorageError, "persisting credential: %v", err)
	}
	return nil
}

// classifyTokenError maps an error from the token endpoint onto the failure
// taxonomy: a definitive rejection by the server is InvalidGrant, anything
// else (unreachable endpoint, 5xx) is a retryable NetworkError.
func classifyTokenError(err error) *Failure {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		if rerr.Response != nil && rerr.Response.StatusCode >= 500 {
			return &Failure{Kind: NetworkError, Err: err}
		}
		return &Failure{Kind: InvalidGrant, Err: err}
	}
	return &Failure{Kind: NetworkError, Err: err}
}
