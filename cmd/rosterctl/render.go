package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"hospital-roster/internal/client"
	"hospital-roster/internal/roster"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func writeHospitals(w io.Writer, hospitals []roster.Hospital) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tSTATE\tBEDS\tRATING\tADMIN")
	for _, h := range hospitals {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%.1f\t%s\n",
			h.ID, h.Name, h.Type, h.Status, orDash(strings.ToUpper(h.State)), h.Beds, h.Rating, orDash(h.AdminName()))
	}
	return tw.Flush()
}

func writeAdmins(w io.Writer, admins []roster.Admin) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tPRIMARY")
	for _, a := range admins {
		primary := ""
		if a.IsPrimary {
			primary = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, orDash(a.DisplayName()), orDash(a.Email), orDash(a.Phone), primary)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, s roster.Stats) error {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d hospitals", s.Total)))

	tw := newTable(w)
	fmt.Fprintf(tw, "Beds\t%d (avg %.1f)\n", s.TotalBeds, s.AverageBeds)
	fmt.Fprintf(tw, "Doctors\t%d\n", s.TotalDoctors)
	fmt.Fprintf(tw, "Average rating\t%.2f\n", s.AverageRating)
	fmt.Fprintf(tw, "Admin coverage\t%.0f%% (%d)\n", s.AdminCoverage*100, s.WithAdmin)
	fmt.Fprintf(tw, "Active\t%.0f%%\n", s.ActiveRatio*100)
	for _, st := range sortedKeys(s.ByStatus) {
		fmt.Fprintf(tw, "  %s\t%d\n", st, s.ByStatus[roster.Status(st)])
	}
	return tw.Flush()
}

func sortedKeys(m map[roster.Status]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

func writeSave(w io.Writer, res *client.SaveResult) error {
	c := res.AddedAdminsCount
	if c.Total == 0 && res.RemovedAdmins == 0 {
		fmt.Fprintln(w, "Nothing to save")
		return nil
	}
	if c.Total > 0 {
		fmt.Fprintf(w, "Added %d of %d admins\n", c.Successful, c.Total)
	}
	if res.RemovedAdmins > 0 {
		fmt.Fprintf(w, "Removed %d admins\n", res.RemovedAdmins)
	}
	for _, a := range res.FailedAdmins() {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("  %s: %s", a.Email, a.Error)))
	}
	return nil
}

// explain prints field errors one per line before returning err
func explain(cmd *cobra.Command, err error) error {
	var verrs roster.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(fmt.Sprintf("%s: %s", k, verrs[k])))
	}
	return errors.New("validation failed")
}
