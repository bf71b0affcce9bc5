package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
	"github.com/odyssey-erp/proposal-wizard/report"
)

func (e *env) renderCmd() *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a proposal PDF through the render service",
		Long: `Render the open draft, or the proposal read from --file, to a PDF.
Input files may be JSON or YAML and hold either a full proposal or the flat
render document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				pdf []byte
				doc proposal.RenderDocument
				err error
			)
			if input != "" {
				doc, err = readDocument(input)
				if err != nil {
					return err
				}
				pdf, err = e.opts.NewExporter(e.settings.serverURL).Generate(ctx, doc)
			} else {
				s, openErr := e.open(ctx)
				if openErr != nil {
					return openErr
				}
				doc = proposal.Flatten(s.store.Current())
				pdf, err = s.store.Export(ctx)
			}
			if err != nil {
				return err
			}
			if output == "" {
				output = report.Filename(doc.OfferNumber)
			}
			if output == "-" {
				_, err := e.out().Write(pdf)
				return err
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}
			fmt.Fprintf(e.out(), "wrote %s (%d bytes)\n", output, len(pdf))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "file", "f", "", "Proposal file (.json, .yaml or .yml); defaults to the open draft")
	cmd.Flags().StringVarP(&output, "out", "o", "", `Output path, "-" for stdout; defaults to Proposal_<offer>.pdf`)
	return cmd
}

// readDocument loads a render document from a JSON or YAML file holding either
// a nested proposal or the flat document.
func readDocument(path string) (proposal.RenderDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return proposal.RenderDocument{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return proposal.RenderDocument{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return proposal.RenderDocument{}, fmt.Errorf("parse %s: %w", path, err)
	}
	_, flat := probe["offerNumber"]
	_, nested := probe["metadata"]
	if nested && !flat {
		var p proposal.Proposal
		if err := json.Unmarshal(data, &p); err != nil {
			return proposal.RenderDocument{}, fmt.Errorf("parse %s: %w", path, err)
		}
		p.Commercials.ApplyTotals()
		return proposal.Flatten(&p), nil
	}
	var doc proposal.RenderDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return proposal.RenderDocument{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// yamlToJSON re-encodes a YAML document as JSON so the json tags of the
// proposal types apply to both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML prints v as block YAML using its JSON field names.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	blockStyle(&node)
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// blockStyle drops the flow and quoting styles inherited from JSON. The
// encoder still quotes strings that would otherwise resolve to another type.
func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = 0
	case yaml.ScalarNode:
		if n.Style == yaml.DoubleQuotedStyle {
			n.Style = 0
		}
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}
