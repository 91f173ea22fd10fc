package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/crunchy-cli/internal/config"
	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// segmentView is the listing shape of one catalogue entry.
type segmentView struct {
	Name     string           `json:"name"`
	Workflow string           `json:"workflow"`
	Options  pipeline.Options `json:"options"`
	Titles   []string         `json:"titles"`
}

var segmentsJSON bool

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "List the segment catalogue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		segs, err := config.LoadSegments(cfg.Run.SegmentsFile)
		if err != nil {
			return err
		}
		if segmentsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(segmentList(segs))
		}
		formatSegments(os.Stdout, segs)
		return nil
	},
}

func segmentList(segs config.Segments) []segmentView {
	out := make([]segmentView, 0, len(segs))
	for _, name := range segs.Names() {
		s := segs[name]
		out = append(out, segmentView{Name: s.Name, Workflow: s.Workflow, Options: s.Options, Titles: s.Titles})
	}
	return out
}

// formatSegments writes a tabular view of the catalogue to out.
func formatSegments(out io.Writer, segs config.Segments) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEGMENT\tWORKFLOW\tFUNDING\tLEAD\tTITLES")
	_, _ = fmt.Fprintln(w, "-------\t--------\t-------\t----\t------")

	for _, s := range segmentList(segs) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			s.Workflow,
			yesNo(s.Options.NeedsFundingAmount),
			yesNo(s.Options.NeedsLeadInvestor),
			strings.Join(s.Titles, ", "),
		)
	}
	_ = w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	segmentsCmd.Flags().BoolVar(&segmentsJSON, "json", false, "print the catalogue as JSON")
	rootCmd.AddCommand(segmentsCmd)
}
