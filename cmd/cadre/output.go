package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/ShayCichocki/cadre/pkg/models"
)

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDelegation(result models.DelegationResult) {
	req := result.Requirement
	fmt.Printf("Task: %s\n", req.Description)
	fmt.Printf("  Tier: %s\n", req.Tier)
	fmt.Printf("  Domains: %s\n", strings.Join(req.Domains, ", "))
	fmt.Printf("  Urgency: %s\n", req.Urgency)
	fmt.Printf("  Multiple perspectives: %t\n", req.RequiresMultiplePerspectives)
	fmt.Println()

	if !result.Eligible() {
		printStatus("✗", "No eligible agent", color.FgRed)
	} else {
		printStatus("✓", "Primary: "+result.PrimaryAgentID, color.FgGreen)
		if len(result.Team) > 1 {
			fmt.Printf("  Team: %s\n", strings.Join(result.Team, ", "))
		}
	}
	fmt.Printf("  %s\n", result.Rationale)
}

func printPattern(p models.LearningPattern) {
	fmt.Printf("%s  %-14s confidence=%.2f depth=%d improvements=%d\n",
		p.ID, p.Kind, p.Confidence, p.LearningDepth, p.RecursiveImprovementCount)
	if len(p.Contexts) > 0 {
		fmt.Printf("    contexts: %s\n", strings.Join(p.Contexts, ", "))
	}
}

func printWorker(w models.WorkerState) {
	stateColor := color.FgYellow
	switch w.State {
	case models.WorkerActive:
		stateColor = color.FgGreen
	case models.WorkerArchived:
		stateColor = color.FgHiBlack
	}
	fmt.Printf("%-14s %-22s %s score=%.2f",
		w.ID, w.Name, color.New(stateColor).Sprintf("%-8s", w.State), w.CapabilityScore)
	if !w.LastActivation.IsZero() {
		fmt.Printf(" last=%s", w.LastActivation.Format("2006-01-02 15:04"))
	}
	fmt.Println()
}
