package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

// contentPreview bounds evidence text in the text rendering of retrieve.
const contentPreview = 160

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type sizeOutput struct {
	Size        string   `json:"size"`
	Explanation []string `json:"explanation"`
}

func toSizeOutput(rec *sizing.Recommendation) *sizeOutput {
	if rec == nil {
		return nil
	}
	out := &sizeOutput{Size: rec.Size, Explanation: make([]string, 0, len(rec.Explanation))}
	for _, l := range rec.Explanation {
		out.Explanation = append(out.Explanation, l.String())
	}
	return out
}

type replyOutput struct {
	Reply          string               `json:"reply"`
	Intent         string               `json:"intent"`
	Sources        []assistantuc.Source `json:"sources,omitempty"`
	Recommendation *sizeOutput          `json:"recommendation,omitempty"`
	Fallback       bool                 `json:"fallback"`
}

func printReply(w io.Writer, r assistantuc.Reply, asJSON bool) error {
	if asJSON {
		return writeJSON(w, replyOutput{
			Reply:          r.Text,
			Intent:         string(r.Intent),
			Sources:        r.Sources,
			Recommendation: toSizeOutput(r.Recommendation),
			Fallback:       r.Fallback,
		})
	}
	fmt.Fprintln(w, r.Text)
	if len(r.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Sources:")
		for _, s := range r.Sources {
			fmt.Fprintf(w, "  %.3f  %s\n", s.Score, s.URL)
		}
	}
	return nil
}

type evidenceOutput struct {
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Origin  string  `json:"origin"`
	Content string  `json:"content"`
}

type retrieveOutput struct {
	Intent   string           `json:"intent"`
	Term     string           `json:"term,omitempty"`
	Evidence []evidenceOutput `json:"evidence"`
	Context  string           `json:"context"`
}

func printRetrieve(w io.Writer, tag string, res retrievaluc.Result, asJSON bool) error {
	if asJSON {
		out := retrieveOutput{Intent: tag, Term: res.Term, Context: res.Context, Evidence: []evidenceOutput{}}
		for _, it := range res.Items {
			out.Evidence = append(out.Evidence, evidenceOutput{
				URL:     it.URL(),
				Score:   it.Score(),
				Origin:  string(it.Origin()),
				Content: it.Content(),
			})
		}
		return writeJSON(w, out)
	}

	fmt.Fprintf(w, "intent: %s", tag)
	if res.Term != "" {
		fmt.Fprintf(w, "  term: %q", res.Term)
	}
	fmt.Fprintln(w)
	if len(res.Items) == 0 {
		fmt.Fprintln(w, "no evidence found")
		return nil
	}
	for i, it := range res.Items {
		fmt.Fprintf(w, "%d. %.3f [%s] %s\n", i+1, it.Score(), it.Origin(), it.URL())
		fmt.Fprintf(w, "   %s\n", preview(it.Content(), contentPreview))
	}
	return nil
}

func printSize(w io.Writer, ans assistantuc.SizeAnswer, asJSON bool) error {
	if asJSON {
		return writeJSON(w, struct {
			Reply          string      `json:"reply"`
			Recommendation *sizeOutput `json:"recommendation,omitempty"`
		}{ans.Text, toSizeOutput(ans.Recommendation)})
	}
	fmt.Fprintln(w, ans.Text)
	return nil
}

func printIngest(w io.Writer, res ingestuc.Result, asJSON bool) error {
	if asJSON {
		return writeJSON(w, struct {
			RunID      string `json:"run_id"`
			Pages      int    `json:"pages"`
			Chunks     int    `json:"chunks"`
			Skipped    int    `json:"skipped"`
			Failed     int    `json:"failed"`
			DurationMs int64  `json:"duration_ms"`
		}{res.RunID, res.Pages, res.Chunks, res.Skipped, res.Failed, res.Duration.Milliseconds()})
	}
	fmt.Fprintf(w, "run %s: %d pages, %d chunks, %d skipped, %d failed in %s\n",
		res.RunID, res.Pages, res.Chunks, res.Skipped, res.Failed, res.Duration.Round(time.Millisecond))
	return nil
}

// preview collapses whitespace and cuts s to at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
