package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"city-events-api/internal/domain/entity"
	"city-events-api/pkg/errors"
	"city-events-api/pkg/signer"
)

type memGrants struct {
	grants map[string]*entity.AccessGrant
}

func (m *memGrants) Create(_ context.Context, grant *entity.AccessGrant) error {
	m.grants[grant.APIKey] = grant
	return nil
}

func (m *memGrants) GetByAPIKey(_ context.Context, apiKey string) (*entity.AccessGrant, error) {
	g, ok := m.grants[apiKey]
	if !ok {
		return nil, errors.New(errors.CodeKeyNotGranted, "api key not granted")
	}
	return g, nil
}

func (m *memGrants) GetByName(_ context.Context, name string) (*entity.AccessGrant, error) {
	for _, g := range m.grants {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, errors.New(errors.CodeKeyNotGranted, "access grant not found")
}

func (m *memGrants) Revoke(_ context.Context, apiKey string) error {
	if g, ok := m.grants[apiKey]; ok {
		g.Revoke()
	}
	return nil
}

func (m *memGrants) DeleteByName(_ context.Context, name string) error {
	for k, g := range m.grants {
		if g.Name == name {
			delete(m.grants, k)
		}
	}
	return nil
}

func newAuthRouter(grants *memGrants) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SignatureAuth(SignatureAuthConfig{
		Enabled:   true,
		ClockSkew: 5 * time.Minute,
		SkipPaths: []string{"/health", "/metrics"},
	}, grants))
	r.POST("/v1/events/lookup", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"api_key": c.GetString("api_key")})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signedRequest(secret, apiKey, body string, at time.Time) *http.Request {
	s := signer.New(5 * time.Minute)
	req := httptest.NewRequest(http.MethodPost, "/v1/events/lookup", strings.NewReader(body))
	req.Header.Set(APIKeyHeader, apiKey)
	req.Header.Set(SignatureDateHeader, at.UTC().Format(signer.DateLayout))
	req.Header.Set(SignatureHeader, s.Sign(secret, http.MethodPost, "/v1/events/lookup", at, []byte(body)))
	return req
}

func TestSignatureAuthAcceptsValidSignature(t *testing.T) {
	grants := &memGrants{grants: map[string]*entity.AccessGrant{
		"cek_abc": entity.NewAccessGrant("lookup-grant", "event-lookup", "cek_abc", "topsecret"),
	}}
	r := newAuthRouter(grants)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("topsecret", "cek_abc", `{"city":"Miami"}`, time.Now()))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestSignatureAuthRejectsMissingHeaders(t *testing.T) {
	r := newAuthRouter(&memGrants{grants: map[string]*entity.AccessGrant{}})

	req := httptest.NewRequest(http.MethodPost, "/v1/events/lookup", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSignatureAuthRejectsUnknownKey(t *testing.T) {
	r := newAuthRouter(&memGrants{grants: map[string]*entity.AccessGrant{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("topsecret", "cek_missing", `{}`, time.Now()))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestSignatureAuthRejectsRevokedGrant(t *testing.T) {
	grant := entity.NewAccessGrant("lookup-grant", "event-lookup", "cek_abc", "topsecret")
	grant.Revoke()
	r := newAuthRouter(&memGrants{grants: map[string]*entity.AccessGrant{"cek_abc": grant}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("topsecret", "cek_abc", `{}`, time.Now()))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestSignatureAuthRejectsTamperedBody(t *testing.T) {
	grants := &memGrants{grants: map[string]*entity.AccessGrant{
		"cek_abc": entity.NewAccessGrant("lookup-grant", "event-lookup", "cek_abc", "topsecret"),
	}}
	r := newAuthRouter(grants)

	req := signedRequest("topsecret", "cek_abc", `{"city":"Miami"}`, time.Now())
	req.Body = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"city":"Boston"}`)).Body

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSignatureAuthRejectsStaleDate(t *testing.T) {
	grants := &memGrants{grants: map[string]*entity.AccessGrant{
		"cek_abc": entity.NewAccessGrant("lookup-grant", "event-lookup", "cek_abc", "topsecret"),
	}}
	r := newAuthRouter(grants)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest("topsecret", "cek_abc", `{}`, time.Now().Add(-time.Hour)))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestSignatureAuthSkipsConfiguredPaths(t *testing.T) {
	r := newAuthRouter(&memGrants{grants: map[string]*entity.AccessGrant{}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
