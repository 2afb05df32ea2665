package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/roach88/pantry/internal/model"
	"github.com/roach88/pantry/internal/stats"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type articleList []model.Article

func (l articleList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No articles.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tMIN\tSHELF LIFE")
	for _, a := range l {
		shelf := "-"
		if d := a.ExpirationDays(); d > 0 {
			shelf = strconv.FormatUint(uint64(d), 10) + "d"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", a.ID, a.Name, orDash(a.Brand), a.MinimumAmount, shelf)
	}
	return tw.Flush()
}

type locationList []model.Location

func (l locationList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No locations.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tIMAGES\tNOTES")
	for _, loc := range l {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", loc.ID, loc.Name, len(loc.ImageIDs), orDash(loc.Notes))
	}
	return tw.Flush()
}

type assignmentList []model.Assignment

func (l assignmentList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No assignments.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tARTICLE\tLOCATION\tAMOUNT\tADDED\tEXPIRES\tCONSUMED")
	for _, a := range l {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			a.ID, a.ArticleID, a.LocationID, a.Amount,
			orDash(a.AddedDate), orDash(a.ExpirationDate), orDash(a.ConsumedDate))
	}
	return tw.Flush()
}

// articleDetail is the payload of "article show".
type articleDetail struct {
	Article     model.Article      `json:"article"`
	Assignments []model.Assignment `json:"assignments"`
	Stock       uint32             `json:"stock"`
}

func (d articleDetail) renderText(w io.Writer) error {
	a := d.Article
	fmt.Fprintf(w, "Article %d: %s\n", a.ID, a.Name)
	fmt.Fprintf(w, "  Brand:        %s\n", orDash(a.Brand))
	fmt.Fprintf(w, "  Abbreviation: %s\n", orDash(a.Abbreviation))
	fmt.Fprintf(w, "  Minimum:      %d\n", a.MinimumAmount)
	fmt.Fprintf(w, "  Shelf life:   %d days\n", a.ExpirationDays())
	fmt.Fprintf(w, "  Notes:        %s\n", orDash(a.Notes))
	fmt.Fprintf(w, "  Images:       %v\n", a.ImageIDs)
	fmt.Fprintf(w, "  In stock:     %d", d.Stock)
	if d.Stock < a.MinimumAmount {
		fmt.Fprint(w, " (below minimum)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)
	return assignmentList(d.Assignments).renderText(w)
}

// locationDetail is the payload of "location show".
type locationDetail struct {
	Location    model.Location     `json:"location"`
	Assignments []model.Assignment `json:"assignments"`
}

func (d locationDetail) renderText(w io.Writer) error {
	l := d.Location
	fmt.Fprintf(w, "Location %d: %s\n", l.ID, l.Name)
	fmt.Fprintf(w, "  Notes:  %s\n", orDash(l.Notes))
	fmt.Fprintf(w, "  Images: %v\n", l.ImageIDs)
	fmt.Fprintln(w)
	return assignmentList(d.Assignments).renderText(w)
}

type periodList []stats.Period

func (l periodList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PERIOD\tADDED\tCONSUMED")
	for _, p := range l {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", p.Period, p.Added, p.Consumed)
	}
	return tw.Flush()
}

// message is a one-line text payload that still carries structured data
// in JSON output.
type message struct {
	Text string `json:"-"`
	Data any    `json:"-"`
}

func (m message) renderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, m.Text)
	return err
}

// MarshalJSON emits Data so JSON consumers get the structured payload.
func (m message) MarshalJSON() ([]byte, error) {
	return jsonMarshal(m.Data)
}

// stock sums the amounts of unconsumed batches.
func stock(assignments []model.Assignment) uint32 {
	var n uint32
	for _, a := range assignments {
		if !a.Consumed() {
			n += a.Amount
		}
	}
	return n
}
