package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	trackAdmin "github.com/MrEthical07/trackAdmin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func table(out io.Writer, header string, rows func(w io.Writer)) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func printUsers(out io.Writer, users []trackAdmin.User) {
	table(out, "ID\tNAME\tEMAIL\tPHONE", func(w io.Writer) {
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Phone)
		}
	})
}

func printEvents(out io.Writer, events []trackAdmin.Event) {
	table(out, "ID\tDATE\tTYPE\tTRACK\tDRIVER PRICE\tSPECTATOR PRICE", func(w io.Writer) {
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.2f\t%.2f\n", e.ID, e.Date, e.EventType, e.TrackID, e.DriverPrice, e.SpectatorPrice)
		}
	})
}

func printTracks(out io.Writer, tracks []trackAdmin.Track) {
	table(out, "ID\tSTATE\tADDRESS\tCONFIGS", func(w io.Writer) {
		for _, t := range tracks {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", t.ID, t.State, t.Address, len(t.TrackConfigs))
		}
	})
}

func printFaceToFace(out io.Writer, races []trackAdmin.FaceToFace) {
	table(out, "ID\tSTART\tEVENT\tUSER 1\tUSER 2", func(w io.Writer) {
		for _, f := range races {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", f.ID, f.StartTime, f.EventID, f.User1ID, f.User2ID)
		}
	})
}

func printCars(out io.Writer, cars []trackAdmin.Car) {
	table(out, "ID\tUSER\tBRAND\tMODEL\tHP", func(w io.Writer) {
		for _, c := range cars {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n", c.ID, c.UserID, c.Brand, c.Model, c.Horsepower)
		}
	})
}

func printSchedules(out io.Writer, schedules []trackAdmin.Schedule) {
	table(out, "ID\tNAME", func(w io.Writer) {
		for _, s := range schedules {
			fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Name)
		}
	})
}

func printDashboard(out io.Writer, c trackAdmin.DashboardCounts) {
	table(out, "USERS\tEVENTS\tFACE-TO-FACE\tTRACKS", func(w io.Writer) {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", c.Users, c.Events, c.FaceToFace, c.Tracks)
	})
}

func printStatus(out io.Writer, s trackAdmin.Status) {
	expiry := "-"
	if !s.AccessExpiry.IsZero() {
		expiry = s.AccessExpiry.Local().Format(time.RFC3339)
	}
	table(out, "API\tAUTH\tEXPIRES\tMONITOR", func(w io.Writer) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.APIBaseURL, s.AuthLabel(), expiry, strconv.FormatBool(s.MonitorArmed))
	})
}

func writeMetrics(out io.Writer, c prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
