package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"stadtwache/internal/domain"
)

const dateLayout = "02.01.2006 15:04"

func table(w io.Writer, header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func printPairs(w io.Writer, pairs [][2]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", p[0], p[1])
	}
	_ = tw.Flush()
}

func when(t time.Time) string {
	return t.Local().Format(dateLayout)
}

func answer(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func printNews(w io.Writer, items []domain.NewsItem, admin bool) {
	if !admin {
		for _, n := range items {
			fmt.Fprintf(w, "[%s] %s (%s)\n  %s\n", when(n.Date), n.Title, n.Priority, n.Content)
		}
		return
	}
	table(w, "ID\tDATUM\tPRIORITÄT\tVERÖFFENTLICHT\tTITEL", func(tw io.Writer) {
		for _, n := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", n.ID, when(n.Date), n.Priority, n.Published, n.Title)
		}
	})
}

func printApplications(w io.Writer, items []domain.Application) {
	table(w, "ID\tEINGANG\tSTATUS\tNAME\tPOSITION\tANTWORT", func(tw io.Writer) {
		for _, a := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, when(a.CreatedAt), a.Status, a.Name, a.Position, answer(a.AdminResponse))
		}
	})
}

func printFeedback(w io.Writer, items []domain.Feedback) {
	table(w, "ID\tEINGANG\tSTATUS\tBEWERTUNG\tBETREFF\tANTWORT", func(tw io.Writer) {
		for _, f := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/5\t%s\t%s\n", f.ID, when(f.CreatedAt), f.Status, f.Rating, f.Subject, answer(f.AdminResponse))
		}
	})
}

func printReports(w io.Writer, items []domain.Report) {
	table(w, "ID\tEINGANG\tSTATUS\tART\tORT\tTATZEIT", func(tw io.Writer) {
		for _, r := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s %s\n", r.ID, when(r.CreatedAt), r.Status, r.IncidentType, r.Location, r.IncidentDate, r.IncidentTime)
		}
	})
}

func printMessages(w io.Writer, items []domain.ChatMessage) {
	table(w, "ID\tEINGANG\tSTATUS\tVON\tNACHRICHT", func(tw io.Writer) {
		for _, m := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s <%s>\t%s\n", m.ID, when(m.CreatedAt), m.Status, m.VisitorName, m.VisitorEmail, m.Message)
		}
	})
}

func printButtons(w io.Writer, items []domain.ChatButton) {
	table(w, "ID\tPOS\tAKTIV\tAKTION\tLABEL\tWERT", func(tw io.Writer) {
		for _, b := range items {
			fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\t%s\n", b.ID, b.Order, b.Active, b.Action, b.Label, b.Value)
		}
	})
}
