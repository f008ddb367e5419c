package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/cadre/internal/learning"
	"github.com/ShayCichocki/cadre/pkg/models"
)

var (
	learnInputs   []string
	learnOutputs  []string
	learnContexts []string
	learnContext  string
	learnArchive  bool
	learnLimit    int
	learnSession  bool
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Record and inspect learning patterns",
	Long: `Record learning patterns into the session log and inspect them.

A pattern relates an input payload to an output payload. Confidence, learning
depth and recursive improvement count are derived from the patterns already
in the log.

Usage:
  cadre learn record <kind> --in k=v --out k=v [--context tag]
  cadre learn list [--context tag | --archive]
  cadre learn search <query> [--session] [--limit n]
  cadre learn stats

Kinds: prerequisite, transformation, synthesis, meta-learning

Examples:
  cadre learn record transformation --in draft=v1 --out draft=v2 --out review=ok --context authentic-collaboration
  cadre learn list --context authentic-collaboration`,
}

var learnRecordCmd = &cobra.Command{
	Use:   "record <kind>",
	Short: "Record a pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runLearnRecord,
}

var learnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patterns",
	Args:  cobra.NoArgs,
	RunE:  runLearnList,
}

var learnSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank archived patterns by relevance to a query",
	Long: `Rank patterns by BM25 relevance over their kind, payloads and contexts,
weighted by confidence and recency. Searches the archive across all sessions
unless --session is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLearnSearch,
}

var learnStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning metrics and archived pattern counts",
	Args:  cobra.NoArgs,
	RunE:  runLearnStats,
}

func init() {
	learnRecordCmd.Flags().StringArrayVar(&learnInputs, "in", nil, "Input entry as key=value (repeatable)")
	learnRecordCmd.Flags().StringArrayVar(&learnOutputs, "out", nil, "Output entry as key=value (repeatable)")
	learnRecordCmd.Flags().StringArrayVar(&learnContexts, "context", nil, "Context tag (repeatable)")

	learnListCmd.Flags().StringVar(&learnContext, "context", "", "List archived patterns from every session with this context")
	learnListCmd.Flags().BoolVar(&learnArchive, "archive", false, "List this session's patterns from the archive")

	learnCmd.AddCommand(learnRecordCmd)
	learnCmd.AddCommand(learnListCmd)
	learnSearchCmd.Flags().IntVar(&learnLimit, "limit", 0, "Maximum results (default 10)")
	learnSearchCmd.Flags().BoolVar(&learnSession, "session", false, "Only search the current session")

	learnCmd.AddCommand(learnSearchCmd)
	learnCmd.AddCommand(learnStatsCmd)
}

func runLearnRecord(cmd *cobra.Command, args []string) error {
	input, err := parseKV(learnInputs)
	if err != nil {
		return fmt.Errorf("--in: %w", err)
	}
	output, err := parseKV(learnOutputs)
	if err != nil {
		return fmt.Errorf("--out: %w", err)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.engine.RecordPattern(models.PatternKind(args[0]), models.NewPayload(input), models.NewPayload(output), learnContexts)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(p); err != nil {
			return err
		}
	} else {
		fmt.Println("Pattern recorded:")
		printPattern(p)
	}
	return s.Save()
}

func runLearnList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var patterns []models.LearningPattern
	switch {
	case learnContext != "":
		patterns, err = s.patterns.ListByContext(learnContext)
	case learnArchive:
		patterns, err = s.patterns.ListBySession(s.engine.SessionID())
	default:
		patterns = s.engine.Patterns()
	}
	if err != nil {
		return fmt.Errorf("list patterns: %w", err)
	}

	if jsonOutput {
		return printJSON(patterns)
	}
	if len(patterns) == 0 {
		fmt.Println("No patterns recorded.")
		return nil
	}
	for _, p := range patterns {
		printPattern(p)
	}
	return nil
}

func runLearnSearch(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	query := strings.Join(args, " ")
	var hits []learning.ScoredPattern
	if learnSession {
		hits = s.engine.SearchPatterns(query, learnLimit)
	} else if hits, err = s.patterns.Search(query, learnLimit); err != nil {
		return fmt.Errorf("search patterns: %w", err)
	}

	if jsonOutput {
		return printJSON(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No patterns found matching query.")
		return nil
	}
	fmt.Printf("Found %d pattern(s):\n\n", len(hits))
	for _, h := range hits {
		fmt.Printf("[%.3f] ", h.Score)
		printPattern(h.Pattern)
	}
	return nil
}

func runLearnStats(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.patterns.CountByKind()
	if err != nil {
		return fmt.Errorf("count patterns: %w", err)
	}
	m := s.engine.Metrics()

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"sessionId": s.engine.SessionID(),
			"metrics":   m,
			"archived":  counts,
		})
	}

	fmt.Printf("Session: %s\n", s.engine.SessionID())
	fmt.Printf("  Learning velocity: %.2f\n", m.LearningVelocity)
	fmt.Printf("  Transformation effectiveness: %.2f\n", m.TransformationEffectiveness)
	fmt.Printf("  Emergence quotient: %.2f\n", m.EmergenceQuotient)
	fmt.Println()
	fmt.Println("Archived patterns:")
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	if len(kinds) == 0 {
		fmt.Println("  (none)")
	}
	for _, k := range kinds {
		fmt.Printf("  %-16s %d\n", k, counts[models.PatternKind(k)])
	}
	return nil
}

// parseKV turns key=value entries into a map. Later duplicates win.
func parseKV(entries []string) (map[string]string, error) {
	data := make(map[string]string, len(entries))
	for _, e := range entries {
		key, value, ok := strings.Cut(e, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", e)
		}
		data[key] = value
	}
	return data, nil
}
