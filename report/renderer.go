package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
	"github.com/odyssey-erp/proposal-wizard/web"
)

const proposalTemplate = "proposal_pdf.html"

// HTMLRenderer converts HTML into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ProposalRenderer fills the proposal template and hands it to Gotenberg.
type ProposalRenderer struct {
	pdf       HTMLRenderer
	templates *template.Template
	now       func() time.Time
}

// NewProposalRenderer parses the embedded proposal template.
func NewProposalRenderer(pdf HTMLRenderer) (*ProposalRenderer, error) {
	r := &ProposalRenderer{pdf: pdf, now: time.Now}
	tpl, err := template.New(proposalTemplate).Funcs(r.funcMap()).ParseFS(
		web.Templates, "templates/reports/"+proposalTemplate,
	)
	if err != nil {
		return nil, fmt.Errorf("parse proposal template: %w", err)
	}
	r.templates = tpl
	return r, nil
}

func (r *ProposalRenderer) funcMap() template.FuncMap {
	printer := message.NewPrinter(language.English)
	return template.FuncMap{
		"money": func(code proposal.Currency, amount float64) string {
			return formatMoney(printer, code, amount)
		},
		"formatQty": func(qty float64) string {
			s := fmt.Sprintf("%.4f", qty)
			s = strings.TrimRight(s, "0")
			s = strings.TrimRight(s, ".")
			return s
		},
		"address": func(doc proposal.RenderDocument) string {
			parts := []string{doc.AddressLine1, doc.AddressLine2, doc.City, doc.State, doc.Pincode, doc.Country}
			out := parts[:0]
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return strings.Join(out, ", ")
		},
		"priceBasis": func(basis string) string {
			return strings.ToUpper(strings.ReplaceAll(basis, "_", " "))
		},
		"join": strings.Join,
		"now": func() string {
			return r.now().Format("02 Jan 2006 15:04")
		},
	}
}

// formatMoney renders amount with the currency's symbol and English digit grouping.
func formatMoney(p *message.Printer, code proposal.Currency, amount float64) string {
	digits := p.Sprintf("%.2f", amount)
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return digits
	}
	return p.Sprint(currency.NarrowSymbol(unit)) + " " + digits
}

// HTML executes the template for doc.
func (r *ProposalRenderer) HTML(doc proposal.RenderDocument) (string, error) {
	buf := &bytes.Buffer{}
	if err := r.templates.ExecuteTemplate(buf, proposalTemplate, doc); err != nil {
		return "", fmt.Errorf("render proposal template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders doc to PDF.
func (r *ProposalRenderer) Generate(ctx context.Context, doc proposal.RenderDocument) ([]byte, error) {
	if r == nil || r.pdf == nil {
		return nil, fmt.Errorf("proposal renderer not initialized")
	}
	html, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}
	pdf, err := r.pdf.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert proposal %s: %w", doc.OfferNumber, err)
	}
	return pdf, nil
}
