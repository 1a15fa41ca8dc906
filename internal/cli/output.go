package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/prodcfg/internal/check"
	"github.com/mesh-intelligence/prodcfg/pkg/delta"
	"github.com/mesh-intelligence/prodcfg/pkg/types"
)

type entryView struct {
	Type        string `json:"type"`
	Container   string `json:"container"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type messageView struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type reportView struct {
	ProductCmpt string        `json:"product_cmpt"`
	Clean       bool          `json:"clean"`
	Delta       []entryView   `json:"delta"`
	Messages    []messageView `json:"messages"`
}

func entryViews(d *delta.Delta) []entryView {
	views := make([]entryView, 0, d.Len())
	for _, e := range d.Entries() {
		views = append(views, entryView{
			Type:        e.Type().String(),
			Container:   e.Container().Name(),
			Name:        e.Name(),
			Description: e.Description(),
		})
	}
	return views
}

func messageViews(list types.MessageList) []messageView {
	views := make([]messageView, 0, len(list))
	for _, m := range list {
		views = append(views, messageView{Code: m.Code, Severity: m.Severity.String(), Text: m.Text})
	}
	return views
}

func newReportView(r *check.Report) reportView {
	return reportView{
		ProductCmpt: r.ProductCmpt,
		Clean:       r.IsClean(),
		Delta:       entryViews(r.Delta),
		Messages:    messageViews(r.Messages),
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDelta(w io.Writer, name string, d *delta.Delta) {
	if d.IsEmpty() {
		fmt.Fprintf(w, "%s: conforms\n", name)
		return
	}
	fmt.Fprintf(w, "%s: %d delta entries\n", name, d.Len())
	for _, e := range entryViews(d) {
		fmt.Fprintf(w, "  %-34s %-24s %s\n", e.Type, e.Container+" "+e.Name, e.Description)
	}
}

func printMessages(w io.Writer, list types.MessageList) {
	for _, m := range list {
		fmt.Fprintf(w, "  %s\n", m)
	}
}
