package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/proposal-wizard/internal/platform/httpx"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

const fakePDF = "%PDF-1.7\nfake"

func sampleDocument() proposal.RenderDocument {
	p := proposal.New(proposal.NewOptions{ID: "p-1", Now: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)})
	p.Metadata.ProposalNumber = "VSP/2024/001"
	p.ClientDetails.ClientName = "Acme Chemicals"
	p.ClientDetails.ClientAddress = proposal.Address{City: "Pune", Country: "India"}
	p.ClientDetails.Contacts = []proposal.Contact{{ID: "c1", Name: "Asha Rao", Designation: "Purchase Head"}}
	p.ClientDetails.Sites = []proposal.Site{{ID: "s1", Name: "Chakan plant", City: "Pune"}}
	p.ClientDetails.SelectedSiteID = "s1"
	p.TechnicalSpecs.Equipment = []proposal.Equipment{{ID: "e1", LineItemNo: 1, TagNumber: "P-101", Type: "Centrifugal Pump", Quantity: 2}}
	p.Commercials.PricingItems = []proposal.PricingItem{{ID: "i1", LineItemNo: 1, Description: "Pump set", Quantity: 3, UnitPrice: 1500}}
	return proposal.Flatten(p)
}

type stubGenerator struct {
	pdf []byte
	err error
	got proposal.RenderDocument
}

func (s *stubGenerator) Generate(_ context.Context, doc proposal.RenderDocument) ([]byte, error) {
	s.got = doc
	return s.pdf, s.err
}

// ============================================================================
// GOTENBERG CLIENT
// ============================================================================

func TestClientRenderHTMLSendsA4Options(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "8.27", r.FormValue("paperWidth"))
		assert.Equal(t, "11.69", r.FormValue("paperHeight"))
		assert.Equal(t, "0", r.FormValue("marginTop"))
		assert.Equal(t, "true", r.FormValue("printBackground"))

		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)
		html, _ := io.ReadAll(file)
		assert.Contains(t, string(html), "hello")

		_, _ = w.Write([]byte(fakePDF))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/").RenderHTML(context.Background(), "<p>hello</p>")
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(pdf))
}

func TestClientRenderHTMLReportsGotenbergError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<p/>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL).Ping(context.Background()))
	assert.Error(t, NewClient("").Ping(context.Background()))
}

// ============================================================================
// TEMPLATE RENDERER
// ============================================================================

type captureHTML struct{ html string }

func (c *captureHTML) RenderHTML(_ context.Context, html string) ([]byte, error) {
	c.html = html
	return []byte(fakePDF), nil
}

func TestProposalRendererFillsTemplate(t *testing.T) {
	capture := &captureHTML{}
	renderer, err := NewProposalRenderer(capture)
	require.NoError(t, err)

	pdf, err := renderer.Generate(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(pdf))

	html := capture.html
	assert.Contains(t, html, "VSP/2024/001")
	assert.Contains(t, html, "Acme Chemicals")
	assert.Contains(t, html, "Pune, India")
	assert.Contains(t, html, "Asha Rao")
	assert.Contains(t, html, "Site: Chakan plant, Pune")
	assert.Contains(t, html, "P-101")
	assert.Contains(t, html, "Pump set")
	assert.Contains(t, html, "4,500.00")
	assert.Contains(t, html, "5,310.00")
	assert.Contains(t, html, "EX WORKS")
}

func TestProposalRendererEscapesInput(t *testing.T) {
	capture := &captureHTML{}
	renderer, err := NewProposalRenderer(capture)
	require.NoError(t, err)

	doc := sampleDocument()
	doc.ClientName = "<script>alert(1)</script>"
	_, err = renderer.Generate(context.Background(), doc)
	require.NoError(t, err)
	assert.NotContains(t, capture.html, "<script>alert(1)</script>")
}

func TestProposalRendererWrapsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	renderer, err := NewProposalRenderer(NewClient(srv.URL))
	require.NoError(t, err)
	_, err = renderer.Generate(context.Background(), sampleDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VSP/2024/001")
}

// ============================================================================
// HTTP HANDLER
// ============================================================================

func TestGenerateReturnsAttachment(t *testing.T) {
	gen := &stubGenerator{pdf: []byte(fakePDF)}
	h := NewHandler(HandlerConfig{Generator: gen})

	body, _ := json.Marshal(sampleDocument())
	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(string(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Proposal_VSP_2024_001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, fakePDF, rec.Body.String())
	assert.Equal(t, "Acme Chemicals", gen.got.ClientName)
}

func TestGenerateAcceptsNestedProposal(t *testing.T) {
	gen := &stubGenerator{pdf: []byte(fakePDF)}
	h := NewHandler(HandlerConfig{Generator: gen})

	p := proposal.New(proposal.NewOptions{ID: "p-2"})
	p.ClientDetails.ClientName = "Nested Ltd"
	p.Commercials.PricingItems = []proposal.PricingItem{{Quantity: 2, UnitPrice: 100}}
	body, _ := json.Marshal(p)

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(string(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nested Ltd", gen.got.ClientName)
	assert.Equal(t, p.Metadata.ProposalNumber, gen.got.OfferNumber)
	assert.Equal(t, 236.0, gen.got.GrandTotal)
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	gen := &stubGenerator{pdf: []byte(fakePDF)}
	h := NewHandler(HandlerConfig{Generator: gen})

	for _, payload := range []string{`{}`, `{"offerNumber":"X-1"}`, `{"offerNumber":"X-1","clientName":"   "}`} {
		rec := httptest.NewRecorder()
		h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(payload)))

		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
		var body httpx.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Missing required fields", body.Error)
		assert.Equal(t, "offerNumber and clientName are required", body.Message)
	}
}

func TestGenerateRenderFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{Generator: &stubGenerator{err: errors.New("gotenberg unreachable")}})

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(`{"offerNumber":"X-1","clientName":"Acme"}`)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PDF Generation Failed", body.Error)
	assert.Equal(t, "gotenberg unreachable", body.Message)
	assert.NotEmpty(t, body.Timestamp)
}

func TestGenerateBodyLimit(t *testing.T) {
	h := NewHandler(HandlerConfig{Generator: &stubGenerator{pdf: []byte(fakePDF)}, MaxBodyBytes: 16})

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(`{"offerNumber":"X-1","clientName":"Acme"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerateInvalidJSON(t *testing.T) {
	h := NewHandler(HandlerConfig{Generator: &stubGenerator{pdf: []byte(fakePDF)}})
	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(`{nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := NewHandler(HandlerConfig{ServiceName: "Proposal PDF Generator"})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Proposal PDF Generator", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestNotFoundPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body.Error)
	assert.Equal(t, "Route GET /nope not found", body.Message)
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"VSP/2024/001":    "Proposal_VSP_2024_001.pdf",
		`A\B:C*D?E"F<G>H|`: "Proposal_A_B_C_D_E_F_G_H_.pdf",
		"PROP 17 rev\tA":  "Proposal_PROP_17_rev_A.pdf",
		"PROP-1":          "Proposal_PROP-1.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, Filename(in), in)
	}
}

// ============================================================================
// API CLIENT
// ============================================================================

func TestAPIClientRoundTripsThroughHandler(t *testing.T) {
	h := NewHandler(HandlerConfig{Generator: &stubGenerator{pdf: []byte(fakePDF)}})
	srv := httptest.NewServer(http.HandlerFunc(h.Generate))
	defer srv.Close()

	pdf, err := NewAPIClient(srv.URL, srv.Client()).Generate(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(pdf))
}

func TestAPIClientDecodesErrorPayload(t *testing.T) {
	h := NewHandler(HandlerConfig{Generator: &stubGenerator{err: errors.New("chromium timeout")}})
	srv := httptest.NewServer(http.HandlerFunc(h.Generate))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, srv.Client()).Generate(context.Background(), sampleDocument())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "chromium timeout", apiErr.Error())
}

func TestAPIClientRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, srv.Client()).Generate(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, ErrMalformedPDF)
}

func TestAPIClientStatusOnlyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL, nil).Generate(context.Background(), sampleDocument())
	require.Error(t, err)
	assert.Equal(t, "server error: 502", err.Error())
}
