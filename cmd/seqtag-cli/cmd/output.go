package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"seqtag/internal/application/commands"
	"seqtag/internal/domain"
)

var (
	addColor    = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	failColor   = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

func formatRecord(r domain.Record) string {
	if r.Info == "" {
		return fmt.Sprintf("%s %s", r.ID, r.Name)
	}
	return fmt.Sprintf("%s %s %s", r.ID, r.Name, dimColor.Sprint(r.Info))
}

// printSetResult prints the plan on dry run, otherwise the applied changes
// and every failure
func printSetResult(w io.Writer, r *commands.SetRelationResult) {
	if r.DryRun {
		for _, id := range domain.Sorted(r.Plan.ToAdd) {
			fmt.Fprintln(w, addColor.Sprint("+ "+id))
		}
		for _, id := range domain.Sorted(r.Plan.ToRemove) {
			fmt.Fprintln(w, removeColor.Sprint("- "+id))
		}
		fmt.Fprintln(w, r.Message)
		return
	}

	for _, id := range r.Result.Add.Succeeded {
		fmt.Fprintln(w, addColor.Sprint("+ "+id))
	}
	for _, id := range r.Result.Remove.Succeeded {
		fmt.Fprintln(w, removeColor.Sprint("- "+id))
	}
	for _, f := range r.Result.Failed() {
		fmt.Fprintf(w, "%s %s %s: %s\n", failColor.Sprint("FAILED"), f.Op, f.ID, f.Err)
	}
	fmt.Fprintln(w, r.Message)
}
